package projectiles

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dkoller/skirmish/internal/game/object"
)

type humanoidKey struct {
	wield  object.WieldType
	attack AttackType
}

type droidKey struct {
	appearance int
	attack     AttackType
}

// Table maps weapon classes to discharge patterns. Droid appearances carry
// their own rows because their built-in weapons ignore the wield type.
type Table struct {
	humanoids map[humanoidKey]*Spec
	droids    map[droidKey]*Spec
}

// Get returns the discharge pattern for the attack, or nil when the table
// has no row for it. Droid rows are consulted first; the wield lookup only
// applies to ranged weapon classes, so melee attacks never fire bolts.
func (t *Table) Get(attack AttackType, wield object.WieldType, appearance int) *Spec {
	if spec, ok := t.droids[droidKey{appearance: appearance, attack: attack}]; ok {
		return spec
	}
	if !wield.IsRanged() {
		return nil
	}
	return t.humanoids[humanoidKey{wield: wield, attack: attack}]
}

type tableFile struct {
	Humanoids []struct {
		Wield  int `yaml:"wield"`
		Attack int `yaml:"attack"`
		Spec   `yaml:",inline"`
	} `yaml:"humanoids"`
	Droids []struct {
		Appearance int `yaml:"appearance"`
		Attack     int `yaml:"attack"`
		Spec       `yaml:",inline"`
	} `yaml:"droids"`
}

// LoadTable reads a YAML discharge table.
func LoadTable(r io.Reader) (*Table, error) {
	var file tableFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("projectiles: decode table: %w", err)
	}

	t := &Table{
		humanoids: make(map[humanoidKey]*Spec, len(file.Humanoids)),
		droids:    make(map[droidKey]*Spec, len(file.Droids)),
	}
	for _, row := range file.Humanoids {
		spec := row.Spec
		t.humanoids[humanoidKey{
			wield:  object.WieldType(row.Wield),
			attack: AttackType(row.Attack),
		}] = &spec
	}
	for _, row := range file.Droids {
		spec := row.Spec
		t.droids[droidKey{
			appearance: row.Appearance,
			attack:     AttackType(row.Attack),
		}] = &spec
	}
	return t, nil
}

// DefaultTable covers the stock ranged weapon classes. Pistols fire a single
// bolt per basic attack, rifles a short two-bolt burst, heavy weapons one
// slow bolt. The feat patterns widen those.
func DefaultTable() *Table {
	h := map[humanoidKey]*Spec{
		{object.WieldBlasterPistol, AttackBasic}: {
			Launches: []Launch{{Time: 0, Hand: object.SlotMainHand}},
		},
		{object.WieldBlasterPistol, AttackRapid}: {
			Launches: []Launch{
				{Time: 0, Hand: object.SlotMainHand},
				{Time: 0.3, Hand: object.SlotMainHand},
			},
			Misses: 1,
		},
		{object.WieldBlasterPistol, AttackSniper}: {
			Launches: []Launch{{Time: 0.2, Hand: object.SlotMainHand}},
		},
		{object.WieldBlasterPistol, AttackPower}: {
			Launches: []Launch{{Time: 0.1, Hand: object.SlotMainHand}},
		},
		{object.WieldBlasterRifle, AttackBasic}: {
			Launches: []Launch{
				{Time: 0, Hand: object.SlotMainHand},
				{Time: 0.2, Hand: object.SlotMainHand},
			},
			Misses: 1,
		},
		{object.WieldBlasterRifle, AttackRapid}: {
			Launches: []Launch{
				{Time: 0, Hand: object.SlotMainHand},
				{Time: 0.2, Hand: object.SlotMainHand},
				{Time: 0.4, Hand: object.SlotMainHand},
			},
			Misses: 2,
		},
		{object.WieldBlasterRifle, AttackSniper}: {
			Launches: []Launch{{Time: 0.2, Hand: object.SlotMainHand}},
		},
		{object.WieldBlasterRifle, AttackPower}: {
			Launches: []Launch{{Time: 0.1, Hand: object.SlotMainHand}},
		},
		{object.WieldHeavyWeapon, AttackBasic}: {
			Launches: []Launch{{Time: 0.3, Hand: object.SlotMainHand}},
		},
		{object.WieldHeavyWeapon, AttackPower}: {
			Launches: []Launch{{Time: 0.3, Hand: object.SlotMainHand}},
		},
	}
	return &Table{humanoids: h, droids: map[droidKey]*Spec{}}
}
