package object

// DamageType is the flavor of a damage effect, taken from the wounding
// weapon's damage flags.
type DamageType int

const (
	DamageUniversal DamageType = iota
	DamageBludgeoning
	DamagePiercing
	DamageSlashing
	DamageEnergy
	DamageIon
	DamageFire
	DamageCold
	DamageElectrical
	DamageSonic
)

// String returns a lower-case damage type name.
func (t DamageType) String() string {
	switch t {
	case DamageUniversal:
		return "universal"
	case DamageBludgeoning:
		return "bludgeoning"
	case DamagePiercing:
		return "piercing"
	case DamageSlashing:
		return "slashing"
	case DamageEnergy:
		return "energy"
	case DamageIon:
		return "ion"
	case DamageFire:
		return "fire"
	case DamageCold:
		return "cold"
	case DamageElectrical:
		return "electrical"
	case DamageSonic:
		return "sonic"
	default:
		return "unknown"
	}
}

// DamagePower grades a damage effect's penetration. Weapon attacks always
// deal PowerNormal damage.
type DamagePower int

const (
	PowerNormal DamagePower = iota
	PowerEnergized
	PowerSupreme
)

// DamageEffect is one instantaneous packet of damage, applied
// attacker-to-target when an attack buffer is flushed.
type DamageEffect struct {
	Amount int
	Type   DamageType
	Power  DamagePower
	// Source is the attacker, InvalidID when the damage has no author
	// (environmental or cutscene-scripted).
	Source ID
}
