package object

// Abilities are the raw ability scores feeding attack and defense math.
type Abilities struct {
	Strength  int
	Dexterity int
}

// Modifier converts an ability score to its modifier: (score - 10) / 2,
// rounded toward negative infinity.
func Modifier(score int) int {
	d := score - 10
	if d < 0 {
		// Go integer division truncates toward zero; ability modifiers
		// round down.
		return (d - 1) / 2
	}
	return d / 2
}

// Creature is a combat-capable object: it wields weapons, takes damage,
// navigates, plays animations, and carries a combat stance that the round
// ledger activates and deactivates.
type Creature struct {
	id       ID
	tag      string
	position Point
	facing   float32

	maxHP int
	hp    int
	dead  bool

	abilities   Abilities
	baseDefense int
	attackBonus int // aggregate combat-bonus effects currently applied

	equipment   map[Slot]*Item
	appearance  int // appearance row, drives droid projectile lookups
	animVariant int // seed for attack animation variant selection
	walkSpeed   float32

	inCombat           bool
	deactivateDelay    float64
	deactivatePending  bool
	movementRestricted bool

	onAttacked string
	onEndRound string

	lastAttacker ID

	animations []string
}

// CreatureOption configures a Creature at construction.
type CreatureOption func(*Creature)

// WithAbilities sets the creature's ability scores.
func WithAbilities(a Abilities) CreatureOption {
	return func(c *Creature) { c.abilities = a }
}

// WithDefense sets the creature's base defense value.
func WithDefense(defense int) CreatureOption {
	return func(c *Creature) { c.baseDefense = defense }
}

// WithAppearance sets the appearance row used by droid projectile lookups.
func WithAppearance(row int) CreatureOption {
	return func(c *Creature) { c.appearance = row }
}

// WithAnimVariant seeds attack animation variant selection.
func WithAnimVariant(v int) CreatureOption {
	return func(c *Creature) { c.animVariant = v }
}

// WithWalkSpeed sets navigation speed in units per second.
func WithWalkSpeed(speed float32) CreatureOption {
	return func(c *Creature) { c.walkSpeed = speed }
}

// WithScripts assigns the creature's attacked and end-of-round script hooks.
func WithScripts(onAttacked, onEndRound string) CreatureOption {
	return func(c *Creature) {
		c.onAttacked = onAttacked
		c.onEndRound = onEndRound
	}
}

// NewCreature creates a creature with maxHP hit points.
//
// Precondition: id is valid and maxHP > 0.
func NewCreature(id ID, tag string, maxHP int, opts ...CreatureOption) *Creature {
	if !id.IsValid() {
		panic("object: NewCreature precondition violated: invalid id")
	}
	if maxHP <= 0 {
		panic("object: NewCreature precondition violated: maxHP must be > 0")
	}
	c := &Creature{
		id:          id,
		tag:         tag,
		maxHP:       maxHP,
		hp:          maxHP,
		abilities:   Abilities{Strength: 10, Dexterity: 10},
		baseDefense: 10,
		equipment:   make(map[Slot]*Item),
		walkSpeed:   4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Creature) ID() ID              { return c.id }
func (c *Creature) Kind() Kind          { return KindCreature }
func (c *Creature) Tag() string         { return c.tag }
func (c *Creature) Position() Point     { return c.position }
func (c *Creature) SetPosition(p Point) { c.position = p }
func (c *Creature) Facing() float32     { return c.facing }
func (c *Creature) SetFacing(f float32) { c.facing = f }
func (c *Creature) Face(target Point)   { c.facing = facingTo(c.position, target) }

// HP returns current hit points.
func (c *Creature) HP() int { return c.hp }

// IsDead reports whether the creature's hit points are exhausted.
func (c *Creature) IsDead() bool { return c.dead }

// ApplyDamage applies an instantaneous damage effect.
//
// Postcondition: hp >= 0; dead once hp reaches 0. The effect's source is
// remembered as the last attacker when valid.
func (c *Creature) ApplyDamage(e DamageEffect) {
	c.hp -= e.Amount
	if c.hp <= 0 {
		c.hp = 0
		c.dead = true
	}
	if e.Source.IsValid() {
		c.lastAttacker = e.Source
	}
}

// Equip places item in slot, replacing any previous item.
func (c *Creature) Equip(slot Slot, item *Item) { c.equipment[slot] = item }

// Equipped returns the item in slot, nil when the slot is empty.
func (c *Creature) Equipped(slot Slot) *Item { return c.equipment[slot] }

// IsDualWielding reports whether both hand slots are occupied.
func (c *Creature) IsDualWielding() bool {
	return c.equipment[SlotMainHand] != nil && c.equipment[SlotOffHand] != nil
}

// WieldType classifies the creature's current armament by its main-hand
// weapon; an empty main hand is unarmed.
func (c *Creature) WieldType() WieldType {
	if w := c.equipment[SlotMainHand]; w != nil {
		return w.WieldType()
	}
	return WieldNone
}

// AbilityModifier returns the modifier of the given ability score.
func (c *Creature) AbilityModifier(score func(Abilities) int) int {
	return Modifier(score(c.abilities))
}

// StrengthModifier returns the melee attack modifier.
func (c *Creature) StrengthModifier() int { return Modifier(c.abilities.Strength) }

// DexterityModifier returns the ranged attack modifier.
func (c *Creature) DexterityModifier() int { return Modifier(c.abilities.Dexterity) }

// Defense returns the value an attack roll must meet or beat.
func (c *Creature) Defense() int { return c.baseDefense + Modifier(c.abilities.Dexterity) }

// AttackBonus returns the aggregate of combat-bonus effects on the creature.
func (c *Creature) AttackBonus() int { return c.attackBonus }

// AddAttackBonus adjusts the aggregate combat bonus by delta.
func (c *Creature) AddAttackBonus(delta int) { c.attackBonus += delta }

// Appearance returns the creature's appearance row.
func (c *Creature) Appearance() int { return c.appearance }

// AnimVariant returns the attack animation variant seed.
func (c *Creature) AnimVariant() int { return c.animVariant }

// ActivateCombat puts the creature into combat stance and cancels any
// pending deactivation.
func (c *Creature) ActivateCombat() {
	c.inCombat = true
	c.deactivatePending = false
	c.deactivateDelay = 0
}

// DeactivateCombatAfter schedules the combat stance to drop once delay
// seconds elapse with no re-activation.
func (c *Creature) DeactivateCombatAfter(delay float64) {
	if !c.inCombat || c.deactivatePending {
		return
	}
	c.deactivatePending = true
	c.deactivateDelay = delay
}

// UpdateStance advances the deactivation countdown.
func (c *Creature) UpdateStance(dt float64) {
	if !c.deactivatePending {
		return
	}
	c.deactivateDelay -= dt
	if c.deactivateDelay <= 0 {
		c.inCombat = false
		c.deactivatePending = false
		c.deactivateDelay = 0
	}
}

// InCombat reports whether the creature is in combat stance.
func (c *Creature) InCombat() bool { return c.inCombat }

// SetMovementRestricted locks or unlocks navigation. Attacks lock movement
// for the duration of the swing.
func (c *Creature) SetMovementRestricted(restricted bool) { c.movementRestricted = restricted }

// MovementRestricted reports whether navigation is locked.
func (c *Creature) MovementRestricted() bool { return c.movementRestricted }

// NavigateTo moves toward dest at walk speed, stopping within distance.
//
// Postcondition: returns true iff the creature is within distance of dest
// after the move. Restricted creatures never move.
func (c *Creature) NavigateTo(dest Point, distance float32, dt float64) bool {
	if c.position.DistanceTo(dest) <= distance {
		return true
	}
	if c.movementRestricted {
		return false
	}
	c.Face(dest)
	remaining := c.position.DistanceTo(dest)
	step := c.walkSpeed * float32(dt)
	if step >= remaining-distance {
		step = remaining - distance
	}
	frac := step / remaining
	c.position.X += (dest.X - c.position.X) * frac
	c.position.Y += (dest.Y - c.position.Y) * frac
	c.position.Z += (dest.Z - c.position.Z) * frac
	return c.position.DistanceTo(dest) <= distance
}

// PlayAnimation records the animation cue. Playback itself is a presentation
// concern; the history is observable for diagnostics and tests.
func (c *Creature) PlayAnimation(name string) {
	c.animations = append(c.animations, name)
}

// LastAnimation returns the most recent animation cue, empty if none.
func (c *Creature) LastAnimation() string {
	if len(c.animations) == 0 {
		return ""
	}
	return c.animations[len(c.animations)-1]
}

// Animations returns the full animation cue history.
func (c *Creature) Animations() []string { return c.animations }

// OnAttackedScript returns the resref of the creature's attacked hook,
// empty if none.
func (c *Creature) OnAttackedScript() string { return c.onAttacked }

// OnEndRoundScript returns the resref of the creature's end-of-round hook,
// empty if none.
func (c *Creature) OnEndRoundScript() string { return c.onEndRound }

// SetLastAttacker records who attacked the creature most recently.
func (c *Creature) SetLastAttacker(id ID) { c.lastAttacker = id }

// LastAttacker returns the most recent attacker, InvalidID if never attacked.
func (c *Creature) LastAttacker() ID { return c.lastAttacker }
