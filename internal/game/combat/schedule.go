package combat

// ScheduleState is one stage of an attack's per-action timeline.
type ScheduleState int

const (
	WaitAttack ScheduleState = iota
	Attack
	WaitDamage
	Damage
	WaitFinish
	Finish
)

// String returns the stage name.
func (s ScheduleState) String() string {
	switch s {
	case WaitAttack:
		return "wait-attack"
	case Attack:
		return "attack"
	case WaitDamage:
		return "wait-damage"
	case Damage:
		return "damage"
	case WaitFinish:
		return "wait-finish"
	case Finish:
		return "finish"
	default:
		return "unknown"
	}
}

// AttackSchedule drives one action's attack timeline against the round it
// shares with the ledger. Attack and Damage are fired exactly once each;
// Finish is terminal.
//
// Invariant: states only ever advance, never regress.
type AttackSchedule struct {
	state       ScheduleState
	time        float64
	damageDelay float64
}

// NewAttackSchedule creates a schedule in WaitAttack whose Damage stage
// fires once damageDelay seconds have elapsed since the action started.
func NewAttackSchedule(damageDelay float64) *AttackSchedule {
	return &AttackSchedule{damageDelay: damageDelay}
}

// State returns the current stage without advancing.
func (s *AttackSchedule) State() ScheduleState { return s.state }

// Update advances the timeline by dt and returns the stage the action must
// act on this tick.
//
// WaitAttack holds until the round grants the action its turn. Attack and
// Damage each fall through to their wait stage on the following tick.
// WaitFinish holds until the whole round finishes.
func (s *AttackSchedule) Update(round *Round, action Action, dt float64) ScheduleState {
	s.time += dt

	switch s.state {
	case WaitAttack:
		if round.CanExecute(action) {
			s.state = Attack
		}
	case Attack:
		s.state = WaitDamage
	case WaitDamage:
		if s.time >= s.damageDelay {
			s.state = Damage
		}
	case Damage:
		s.state = WaitFinish
	case WaitFinish:
		if round.State() == RoundFinished {
			s.state = Finish
		}
	case Finish:
		// Terminal.
	}

	return s.state
}
