package combat

import "github.com/dkoller/skirmish/internal/game/object"

// RoundState is the coarse timeline of one combat round, independent of each
// action's own attack schedule.
type RoundState int

const (
	RoundPending RoundState = iota
	RoundFirstAction
	RoundSecondAction
	RoundFinished
)

// String returns the state name.
func (s RoundState) String() string {
	switch s {
	case RoundPending:
		return "pending"
	case RoundFirstAction:
		return "first-action"
	case RoundSecondAction:
		return "second-action"
	case RoundFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// RoundAction is one attacker/target pair contending in a round.
type RoundAction struct {
	Action   Action
	Attacker object.ID
	Target   object.ID
}

// Round is the ledger entry for one exchange: up to two role-reversed
// actions and a coarse timer that staggers their turns.
//
// Invariant: a round never holds more than two actions. Mutation is the
// ledger's job; actions only read state.
type Round struct {
	actions []RoundAction
	state   RoundState
	duel    bool
	time    float64
}

func newRound(first RoundAction) *Round {
	return &Round{actions: []RoundAction{first}}
}

// State returns the round's coarse timeline state.
func (r *Round) State() RoundState { return r.state }

// Duel reports whether a second, role-reversed action joined the round.
func (r *Round) Duel() bool { return r.duel }

// Time returns seconds elapsed since the round was created.
func (r *Round) Time() float64 { return r.time }

// Actions returns the round's action entries in slot order.
func (r *Round) Actions() []RoundAction { return r.actions }

// contains reports whether the round already registered a.
func (r *Round) contains(a Action) bool {
	for _, ra := range r.actions {
		if ra.Action.ID() == a.ID() {
			return true
		}
	}
	return false
}

// appendAction adds the retaliating action and marks the round a duel.
//
// Precondition: the round holds exactly one action.
func (r *Round) appendAction(ra RoundAction) {
	if len(r.actions) != 1 {
		panic("combat: Round.appendAction precondition violated: round must hold exactly one action")
	}
	r.actions = append(r.actions, ra)
	r.duel = true
}

// CanExecute reports whether it is a's turn: the action in slot 0 swings
// during FirstAction, the one in slot 1 during SecondAction. Actions not in
// the round never execute.
func (r *Round) CanExecute(a Action) bool {
	for slot, ra := range r.actions {
		if ra.Action.ID() != a.ID() {
			continue
		}
		switch slot {
		case 0:
			return r.state == RoundFirstAction
		case 1:
			return r.state == RoundSecondAction
		}
	}
	return false
}

// completed reports whether every registered action has finished.
func (r *Round) completed() bool {
	for _, ra := range r.actions {
		if !ra.Action.Completed() {
			return false
		}
	}
	return true
}
