package object

import "github.com/dkoller/skirmish/internal/game/dice"

// WieldType classifies how a weapon is held. The numeric values feed attack
// animation names and projectile table lookups, so they are part of the
// contract, not an implementation detail.
type WieldType int

const (
	WieldNone           WieldType = 0
	WieldStunBaton      WieldType = 1
	WieldSingleBlade    WieldType = 2
	WieldTwoHandedBlade WieldType = 3
	WieldDoubleBlade    WieldType = 4
	WieldBlasterPistol  WieldType = 5
	WieldBlasterRifle   WieldType = 6
	WieldHeavyWeapon    WieldType = 7
)

// IsRanged reports whether the wield type fires projectiles.
func (w WieldType) IsRanged() bool {
	switch w {
	case WieldBlasterPistol, WieldBlasterRifle, WieldHeavyWeapon:
		return true
	default:
		return false
	}
}

// IsMelee reports whether the wield type is a hand-to-hand weapon.
func (w WieldType) IsMelee() bool {
	switch w {
	case WieldStunBaton, WieldSingleBlade, WieldTwoHandedBlade, WieldDoubleBlade:
		return true
	default:
		return false
	}
}

// Slot is an equipment slot on a creature.
type Slot int

const (
	SlotMainHand Slot = iota
	SlotOffHand
)

// String returns the slot name.
func (s Slot) String() string {
	switch s {
	case SlotMainHand:
		return "mainhand"
	case SlotOffHand:
		return "offhand"
	default:
		return "unknown"
	}
}

// Item is a wieldable weapon. Damage is a dice expression whose modifier is
// the weapon's flat damage bonus.
type Item struct {
	tag   string
	wield WieldType

	damage             dice.Expression
	damageType         DamageType
	criticalThreat     int // threat range width; 1 means only a 20 threatens
	criticalMultiplier int

	ammunition string // projectile model resref, ranged weapons only
}

// NewItem creates a weapon.
//
// Precondition: criticalThreat >= 1 and criticalMultiplier >= 1.
func NewItem(tag string, wield WieldType, damage dice.Expression, damageType DamageType, criticalThreat, criticalMultiplier int) *Item {
	if criticalThreat < 1 || criticalMultiplier < 1 {
		panic("object: NewItem precondition violated: critical threat and multiplier must be >= 1")
	}
	return &Item{
		tag:                tag,
		wield:              wield,
		damage:             damage,
		damageType:         damageType,
		criticalThreat:     criticalThreat,
		criticalMultiplier: criticalMultiplier,
	}
}

func (i *Item) Tag() string             { return i.tag }
func (i *Item) WieldType() WieldType    { return i.wield }
func (i *Item) Damage() dice.Expression { return i.damage }
func (i *Item) DamageType() DamageType  { return i.damageType }

// CriticalThreat returns the width of the critical threat range.
func (i *Item) CriticalThreat() int { return i.criticalThreat }

// CriticalMultiplier returns the damage multiplier on a confirmed critical.
func (i *Item) CriticalMultiplier() int { return i.criticalMultiplier }

// IsRanged reports whether the weapon attacks at range.
func (i *Item) IsRanged() bool { return i.wield.IsRanged() }

// Ammunition returns the projectile model resref, empty for melee weapons.
func (i *Item) Ammunition() string { return i.ammunition }

// SetAmmunition assigns the projectile model fired by a ranged weapon.
func (i *Item) SetAmmunition(resref string) { i.ammunition = resref }
