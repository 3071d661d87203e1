// Package object models the entities combat acts upon: creatures with
// equipment, abilities and combat stance, the items they wield, and the
// damage effects applied to them.
package object

import (
	"fmt"
	"math"
)

// ID identifies one object in an area. The zero value is the invalid id, so
// an uninitialized reference never aliases a real object.
type ID uint32

// InvalidID is the null object reference.
const InvalidID ID = 0

// IsValid reports whether the id refers to an object.
func (id ID) IsValid() bool { return id != InvalidID }

// Kind is the closed set of object kinds. Code branches on Kind instead of
// downcasting, so an unknown kind is impossible by construction.
type Kind int

const (
	KindCreature Kind = iota
	KindPlaceable
	KindDoor
	KindItem
)

// String returns a lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindCreature:
		return "creature"
	case KindPlaceable:
		return "placeable"
	case KindDoor:
		return "door"
	case KindItem:
		return "item"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Point is a position in area space.
type Point struct {
	X, Y, Z float32
}

// DistanceTo returns the euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float32 {
	dx := float64(q.X - p.X)
	dy := float64(q.Y - p.Y)
	dz := float64(q.Z - p.Z)
	return float32(math.Sqrt(dx*dx + dy*dy + dz*dz))
}

// Object is the surface combat needs from anything that can be attacked.
// The concrete types are Creature and Placeable; Kind discriminates.
type Object interface {
	ID() ID
	Kind() Kind
	Tag() string

	Position() Point
	SetPosition(Point)
	Facing() float32
	SetFacing(float32)
	// Face turns the object toward target.
	Face(target Point)

	IsDead() bool
	// ApplyDamage applies one instantaneous damage effect.
	ApplyDamage(DamageEffect)
}

// facingTo returns the heading from p toward target.
func facingTo(p, target Point) float32 {
	return float32(math.Atan2(float64(target.Y-p.Y), float64(target.X-p.X)))
}

// Placeable is a static, non-creature target (a container, a turret mount).
// It takes damage at a fixed defense and never fights back.
type Placeable struct {
	id       ID
	tag      string
	position Point
	facing   float32

	hp   int
	dead bool
}

// NewPlaceable creates a placeable with the given hit points.
func NewPlaceable(id ID, tag string, hp int) *Placeable {
	return &Placeable{id: id, tag: tag, hp: hp}
}

func (p *Placeable) ID() ID               { return p.id }
func (p *Placeable) Kind() Kind           { return KindPlaceable }
func (p *Placeable) Tag() string          { return p.tag }
func (p *Placeable) Position() Point      { return p.position }
func (p *Placeable) SetPosition(pt Point) { p.position = pt }
func (p *Placeable) Facing() float32      { return p.facing }
func (p *Placeable) SetFacing(f float32)  { p.facing = f }
func (p *Placeable) Face(target Point)    { p.facing = facingTo(p.position, target) }

// IsDead reports whether the placeable has been destroyed.
func (p *Placeable) IsDead() bool { return p.dead }

// ApplyDamage reduces hit points, flooring at zero.
//
// Postcondition: hp >= 0; dead once hp reaches 0.
func (p *Placeable) ApplyDamage(e DamageEffect) {
	p.hp -= e.Amount
	if p.hp <= 0 {
		p.hp = 0
		p.dead = true
	}
}
