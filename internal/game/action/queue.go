package action

import (
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/object"
)

type delayed struct {
	remaining float64
	action    Action
}

// Queue is one creature's command queue. The front action executes every
// tick until it completes; delayed actions join the back of the queue once
// their timer expires.
type Queue struct {
	logger  *zap.Logger
	items   []Action
	delayed []delayed
}

// NewQueue creates an empty queue.
func NewQueue(logger *zap.Logger) *Queue {
	return &Queue{logger: logger}
}

// Add appends an action to the back of the queue.
func (q *Queue) Add(a Action) {
	q.items = append(q.items, a)
	q.logger.Debug("action queued", zap.Stringer("type", a.Type()))
}

// AddDelayed schedules an action to join the queue after delay seconds.
func (q *Queue) AddDelayed(a Action, delay float64) {
	if delay <= 0 {
		q.Add(a)
		return
	}
	q.delayed = append(q.delayed, delayed{remaining: delay, action: a})
}

// Len returns the number of queued actions, excluding delayed ones still
// waiting on their timer.
func (q *Queue) Len() int { return len(q.items) }

// Current returns the front action, nil when the queue is empty.
func (q *Queue) Current() Action {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// Clear cancels every queued and delayed action.
func (q *Queue) Clear(actor *object.Creature) {
	for _, a := range q.items {
		if !a.Completed() {
			a.Cancel(actor)
		}
	}
	for _, d := range q.delayed {
		if !d.action.Completed() {
			d.action.Cancel(actor)
		}
	}
	q.items = q.items[:0]
	q.delayed = q.delayed[:0]
}

// Update moves due delayed actions into the queue, executes the front
// action and drops it once completed. A dead actor has every action
// cancelled instead.
func (q *Queue) Update(actor *object.Creature, dt float64) {
	if actor.IsDead() {
		q.Clear(actor)
		return
	}

	waiting := q.delayed[:0]
	for _, d := range q.delayed {
		d.remaining -= dt
		if d.remaining <= 0 {
			q.items = append(q.items, d.action)
			continue
		}
		waiting = append(waiting, d)
	}
	q.delayed = waiting

	for len(q.items) > 0 && q.items[0].Completed() {
		q.items = q.items[1:]
	}
	if len(q.items) == 0 {
		return
	}

	q.items[0].Execute(actor, dt)
	if q.items[0].Completed() {
		q.items = q.items[1:]
	}
}
