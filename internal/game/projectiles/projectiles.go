// Package projectiles schedules and flies ranged weapon bolts for the time
// span of a single attack action.
package projectiles

import (
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/object"
)

// AttackType selects a discharge pattern. Basic is an ordinary single
// attack; the rest correspond to ranged feats.
type AttackType int

const (
	AttackBasic AttackType = iota + 1
	AttackRapid
	AttackSniper
	AttackPower
)

// String returns the pattern name.
func (t AttackType) String() string {
	switch t {
	case AttackBasic:
		return "basic"
	case AttackRapid:
		return "rapid"
	case AttackSniper:
		return "sniper"
	case AttackPower:
		return "power"
	default:
		return "unknown"
	}
}

// Launch is one bolt within a discharge pattern: when it leaves the weapon,
// relative to the start of the attack action, and which hand fires it.
type Launch struct {
	Time float64     `yaml:"time"`
	Hand object.Slot `yaml:"hand"`
}

// Spec is a full discharge pattern for one weapon class and attack type.
// Misses is how many of the pattern's trailing bolts sail wide of the target
// instead of landing on it.
type Spec struct {
	Launches []Launch `yaml:"launches"`
	Misses   int      `yaml:"misses"`
}

// A missed bolt overshoots the impact point by this many units before it is
// retired.
const missOvershoot float32 = 4

// Projectile is one bolt in flight toward a fixed impact point.
type Projectile struct {
	position object.Point
	target   object.Point
	miss     bool
}

// Position returns where the bolt currently is.
func (p *Projectile) Position() object.Point { return p.position }

// Missed reports whether the bolt is a cosmetic miss sailing wide of its
// mark.
func (p *Projectile) Missed() bool { return p.miss }

// Update flies the bolt dt seconds closer to its impact point at the given
// speed and reports whether it arrived.
func (p *Projectile) Update(dt float64, speed float32) bool {
	dx := p.target.X - p.position.X
	dy := p.target.Y - p.position.Y
	dz := p.target.Z - p.position.Z
	dist := p.position.DistanceTo(p.target)

	step := speed * float32(dt)
	if step >= dist {
		p.position = p.target
		return true
	}

	scale := step / dist
	p.position.X += dx * scale
	p.position.Y += dy * scale
	p.position.Z += dz * scale
	return false
}

type pendingLaunch struct {
	at   float64
	hand object.Slot
	miss bool
}

// Sequence owns every bolt of one attack action: the not-yet-fired launches
// of the discharge pattern and the bolts currently in flight. One Sequence
// lives exactly as long as its action; Reset clears it for reuse.
type Sequence struct {
	speed    float32
	logger   *zap.Logger
	elapsed  float64
	pending  []pendingLaunch
	inFlight []*Projectile
	fired    int
}

// NewSequence creates an empty sequence flying bolts at the given speed in
// units per second.
//
// Precondition: speed is positive and logger is non-nil.
func NewSequence(speed float32, logger *zap.Logger) *Sequence {
	if speed <= 0 {
		panic("projectiles: sequence speed must be positive")
	}
	return &Sequence{speed: speed, logger: logger}
}

// AddFromSpec schedules every launch of the discharge pattern, measured from
// the sequence's current elapsed time. The pattern's trailing Misses launches
// fly past the target instead of landing on it.
func (s *Sequence) AddFromSpec(spec *Spec) {
	for i, l := range spec.Launches {
		s.pending = append(s.pending, pendingLaunch{
			at:   s.elapsed + l.Time,
			hand: l.Hand,
			miss: i >= len(spec.Launches)-spec.Misses,
		})
	}
}

// Update advances the clock, fires launches that have come due from the
// attacker's position toward the target, and flies every bolt already in
// the air. Arrived bolts are removed.
func (s *Sequence) Update(dt float64, attacker *object.Creature, target object.Object) {
	s.elapsed += dt

	live := s.inFlight[:0]
	for _, p := range s.inFlight {
		if !p.Update(dt, s.speed) {
			live = append(live, p)
		}
	}
	s.inFlight = live

	remaining := s.pending[:0]
	for _, l := range s.pending {
		if l.at > s.elapsed {
			remaining = append(remaining, l)
			continue
		}
		s.fired++
		impact := target.Position()
		if l.miss {
			impact = overshoot(attacker.Position(), impact)
		}
		s.inFlight = append(s.inFlight, &Projectile{
			position: attacker.Position(),
			target:   impact,
			miss:     l.miss,
		})
		s.logger.Debug("projectile fired",
			zap.String("attacker", attacker.Tag()),
			zap.String("target", target.Tag()),
			zap.Stringer("hand", l.hand),
			zap.Bool("miss", l.miss))
	}
	s.pending = remaining
}

// overshoot extends the flight line past the impact point so a missed bolt
// sails by before it is retired.
func overshoot(from, to object.Point) object.Point {
	dist := from.DistanceTo(to)
	if dist == 0 {
		return to
	}
	scale := missOvershoot / dist
	return object.Point{
		X: to.X + (to.X-from.X)*scale,
		Y: to.Y + (to.Y-from.Y)*scale,
		Z: to.Z + (to.Z-from.Z)*scale,
	}
}

// InFlight returns the number of bolts currently in the air.
func (s *Sequence) InFlight() int { return len(s.inFlight) }

// Bolts returns the bolts currently in the air, oldest first.
func (s *Sequence) Bolts() []*Projectile { return s.inFlight }

// Fired returns how many bolts have left the weapon so far.
func (s *Sequence) Fired() int { return s.fired }

// Reset removes every pending launch and in-flight bolt and rewinds the
// clock.
func (s *Sequence) Reset() {
	s.elapsed = 0
	s.pending = s.pending[:0]
	s.inFlight = s.inFlight[:0]
	s.fired = 0
}
