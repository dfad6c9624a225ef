// Package combat provides the tactical combat core: units, battle
// snapshots, the utility-scoring decision engine, and the captain command
// system.
package combat

import (
	"github.com/tomtomtomdev/Guildmaster-sub001/internal/hexmap"
)

// Team identifies which side a unit fights for.
type Team uint8

const (
	TeamPlayer Team = iota
	TeamEnemy
)

// TeamName returns a human-readable team name.
func TeamName(t Team) string {
	if t == TeamPlayer {
		return "player"
	}
	return "enemy"
}

// Class determines a unit's combat archetype and which movement heuristics
// apply to it.
type Class uint8

const (
	ClassWarrior Class = iota // Melee frontline
	ClassRanger               // Ranged skirmisher
	ClassMage                 // Caster, keeps distance
	ClassHealer               // Support caster
)

// ClassName returns a human-readable class name.
func ClassName(c Class) string {
	switch c {
	case ClassWarrior:
		return "warrior"
	case ClassRanger:
		return "ranger"
	case ClassMage:
		return "mage"
	case ClassHealer:
		return "healer"
	default:
		return "unknown"
	}
}

// IntTier classifies a unit's tactical acumen. It drives noise magnitude
// and mistake probability in decision scoring.
type IntTier uint8

const (
	IntTierLow IntTier = iota
	IntTierMedium
	IntTierHigh
)

// TierName returns a human-readable tier name.
func TierName(t IntTier) string {
	switch t {
	case IntTierLow:
		return "low"
	case IntTierMedium:
		return "medium"
	case IntTierHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Stats is a unit's mental and social stat block. Physical combat numbers
// live on the unit itself.
type Stats struct {
	Strength  int `json:"strength"`
	Intellect int `json:"intellect"`
	Charisma  int `json:"charisma"`
	Morale    int `json:"morale"`  // 0-100, shifts with battle events
	Loyalty   int `json:"loyalty"` // 0-10 trait
	Stress    int `json:"stress"`  // 0-100
	Bravery   int `json:"bravery"` // 0-10 trait, 5 = neutral
	Caution   int `json:"caution"` // 0-10 trait, 5 = neutral
}

// StatusEffect is an active buff or debuff on a unit.
type StatusEffect struct {
	AbilityID  string     `json:"ability_id"`
	Effect     EffectKind `json:"effect"`
	Power      int        `json:"power"`
	RoundsLeft int        `json:"rounds_left"`
}

// Unit is a combatant. The decision engine treats it as an opaque
// capability-bearing record; only the resolution layer mutates position and
// resources.
type Unit struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Team  Team   `json:"team"`
	Class Class  `json:"class"`

	// Position is nil once the unit is removed from the field.
	Position *hexmap.HexCoord `json:"position,omitempty"`

	HP         int `json:"hp"`
	MaxHP      int `json:"max_hp"`
	Mana       int `json:"mana"`
	MaxMana    int `json:"max_mana"`
	Stamina    int `json:"stamina"`
	MaxStamina int `json:"max_stamina"`

	MovementSpeed int      `json:"movement_speed"`
	Abilities     []string `json:"abilities"` // Catalog IDs
	Stats         Stats    `json:"stats"`
	Threat        int      `json:"threat"` // Threat rating other units weigh when targeting

	Alive     bool           `json:"alive"`
	Defending bool           `json:"defending"` // Set by Defend, cleared at the unit's next turn
	Statuses  []StatusEffect `json:"statuses,omitempty"`
}

// IntTier derives the intelligence tier from the unit's intellect stat.
func (u *Unit) IntTier() IntTier {
	switch {
	case u.Stats.Intellect >= 14:
		return IntTierHigh
	case u.Stats.Intellect >= 8:
		return IntTierMedium
	default:
		return IntTierLow
	}
}

// CommandRating scores the unit as a potential captain: (INT + CHA) / 2 in
// integer division.
func (u *Unit) CommandRating() int {
	return (u.Stats.Intellect + u.Stats.Charisma) / 2
}

// HPFraction returns current HP as a fraction of maximum.
func (u *Unit) HPFraction() float64 {
	if u.MaxHP <= 0 {
		return 0
	}
	return float64(u.HP) / float64(u.MaxHP)
}

// IsMelee reports whether the unit fights at distance 1.
func (u *Unit) IsMelee() bool {
	return u.Class == ClassWarrior
}

// OnField reports whether the unit is alive and standing on the grid.
func (u *Unit) OnField() bool {
	return u.Alive && u.Position != nil
}

// Resource returns the current and maximum value of the given resource pool.
func (u *Unit) Resource(kind ResourceKind) (cur, max int) {
	if kind == ResourceStamina {
		return u.Stamina, u.MaxStamina
	}
	return u.Mana, u.MaxMana
}

// CanAfford reports whether the unit can pay an ability's resource cost.
func (u *Unit) CanAfford(a Ability) bool {
	cur, _ := u.Resource(a.Resource)
	return cur >= a.Cost
}

// PayCost deducts an ability's resource cost.
func (u *Unit) PayCost(a Ability) {
	if a.Resource == ResourceStamina {
		u.Stamina -= a.Cost
	} else {
		u.Mana -= a.Cost
	}
}
