package combat

import (
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/object"
)

// Combat owns every in-flight round: it routes new actions into existing
// rounds or starts fresh ones, advances round timers, and fires end-of-round
// hooks. Actions never mutate rounds themselves.
type Combat struct {
	tuning  Tuning
	objects *object.Registry
	runner  ScriptRunner
	logger  *zap.Logger

	// rounds in creation order; finished rounds are pruned once their
	// actions complete.
	rounds []*Round
}

// New creates a combat ledger over the given object registry. runner may be
// nil to disable script hooks.
func New(tuning Tuning, objects *object.Registry, runner ScriptRunner, logger *zap.Logger) *Combat {
	return &Combat{
		tuning:  tuning,
		objects: objects,
		runner:  runner,
		logger:  logger,
	}
}

// Tuning returns the ledger's timers.
func (c *Combat) Tuning() Tuning { return c.tuning }

// SetScriptRunner wires the script hook runner after construction.
func (c *Combat) SetScriptRunner(runner ScriptRunner) { c.runner = runner }

// Rounds returns the live rounds in creation order.
func (c *Combat) Rounds() []*Round { return c.rounds }

// AddAction registers a with the ledger on behalf of actor and returns the
// round it fights in. Re-registering the same action each tick returns its
// existing round unchanged.
//
// A new action whose attacker/target pair is the exact reverse of a
// still-open solo round joins that round as the second slot, turning the
// exchange into a duel. Rounds are scanned oldest first and the first match
// wins. Otherwise a fresh round is created and both sides enter combat
// stance.
func (c *Combat) AddAction(actor object.Object, a Action) *Round {
	for _, round := range c.rounds {
		if round.contains(a) {
			return round
		}
	}

	target := a.Target()

	for _, round := range c.rounds {
		if round.state == RoundFinished || len(round.actions) != 1 {
			continue
		}
		first := round.actions[0]
		if first.Attacker == target && first.Target == actor.ID() {
			round.appendAction(RoundAction{Action: a, Attacker: actor.ID(), Target: target})
			c.logger.Debug("duel joined",
				zap.Uint32("attacker", uint32(actor.ID())),
				zap.Uint32("target", uint32(target)))
			return round
		}
	}

	round := newRound(RoundAction{Action: a, Attacker: actor.ID(), Target: target})
	c.rounds = append(c.rounds, round)

	c.activateCombat(actor.ID())
	c.activateCombat(target)

	c.logger.Debug("round started",
		zap.Uint32("attacker", uint32(actor.ID())),
		zap.Uint32("target", uint32(target)))

	return round
}

// Update advances every round's timeline by dt, in creation order.
//
// Pending becomes FirstAction one tick after creation. The midpoint opens
// the second slot's turn; reaching the full round duration finishes the
// round, runs each participant's end-of-round script and schedules their
// stance cool-down. Finished rounds are dropped once both actions complete.
func (c *Combat) Update(dt float64) {
	for _, round := range c.rounds {
		round.time += dt

		switch round.state {
		case RoundPending:
			round.state = RoundFirstAction
		case RoundFirstAction:
			if round.time >= 0.5*c.tuning.RoundDuration {
				round.state = RoundSecondAction
			}
		case RoundSecondAction:
			if round.time >= c.tuning.RoundDuration {
				round.state = RoundFinished
				c.finishRound(round)
			}
		case RoundFinished:
			// Waiting for its actions to complete.
		}
	}

	live := c.rounds[:0]
	for _, round := range c.rounds {
		if round.state == RoundFinished && round.completed() {
			continue
		}
		live = append(live, round)
	}
	c.rounds = live
}

// finishRound runs every unique participant's end-of-round script and
// schedules their combat stance to drop.
func (c *Combat) finishRound(round *Round) {
	seen := make(map[object.ID]struct{}, 4)
	for _, ra := range round.actions {
		for _, id := range [2]object.ID{ra.Attacker, ra.Target} {
			if !id.IsValid() {
				continue
			}
			if _, done := seen[id]; done {
				continue
			}
			seen[id] = struct{}{}

			creature, ok := c.objects.Creature(id)
			if !ok {
				continue
			}
			if script := creature.OnEndRoundScript(); script != "" && c.runner != nil {
				c.runner.Run(script, id, object.InvalidID)
			}
			creature.DeactivateCombatAfter(c.tuning.DeactivateDelay)
		}
	}

	c.logger.Debug("round finished", zap.Float64("time", round.time))
}

// activateCombat puts a participant into combat stance when it is a
// creature; other kinds have no stance.
func (c *Combat) activateCombat(id object.ID) {
	if !id.IsValid() {
		return
	}
	if creature, ok := c.objects.Creature(id); ok {
		creature.ActivateCombat()
	}
}
