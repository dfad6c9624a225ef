package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tomtomtomdev/Guildmaster-sub001/internal/combat"
)

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

// LoadAbilities reads an abilities data file and builds the catalog.
func LoadAbilities(path string) (combat.Catalog, error) {
	var cfg AbilitiesConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, fmt.Errorf("load abilities: %w", err)
	}
	return BuildCatalog(cfg)
}

// BuildCatalog converts parsed ability definitions into the runtime catalog,
// validating every enum field.
func BuildCatalog(cfg AbilitiesConfig) (combat.Catalog, error) {
	catalog := make(combat.Catalog, len(cfg.Abilities))
	for _, def := range cfg.Abilities {
		if def.ID == "" {
			return nil, fmt.Errorf("ability with empty id")
		}
		if _, dup := catalog[def.ID]; dup {
			return nil, fmt.Errorf("duplicate ability id %q", def.ID)
		}

		resource, err := parseResource(def.Resource)
		if err != nil {
			return nil, fmt.Errorf("ability %q: %w", def.ID, err)
		}
		target, err := parseTarget(def.Target)
		if err != nil {
			return nil, fmt.Errorf("ability %q: %w", def.ID, err)
		}
		effect, err := parseEffect(def.Effect)
		if err != nil {
			return nil, fmt.Errorf("ability %q: %w", def.ID, err)
		}

		catalog[def.ID] = combat.Ability{
			ID:       def.ID,
			Name:     def.Name,
			Resource: resource,
			Cost:     def.Cost,
			Target:   target,
			Range:    def.Range,
			Radius:   def.Radius,
			Power:    def.Power,
			Duration: def.Duration,
			Passive:  def.Passive,
			Effect:   effect,
		}
	}
	return catalog, nil
}

func parseResource(s string) (combat.ResourceKind, error) {
	switch s {
	case "mana", "":
		return combat.ResourceMana, nil
	case "stamina":
		return combat.ResourceStamina, nil
	default:
		return 0, fmt.Errorf("unknown resource %q", s)
	}
}

func parseTarget(s string) (combat.TargetKind, error) {
	switch s {
	case "self":
		return combat.TargetSelf, nil
	case "enemy":
		return combat.TargetEnemy, nil
	case "ally":
		return combat.TargetAlly, nil
	case "area":
		return combat.TargetArea, nil
	default:
		return 0, fmt.Errorf("unknown target %q", s)
	}
}

func parseEffect(s string) (combat.EffectKind, error) {
	switch s {
	case "damage":
		return combat.EffectDamage, nil
	case "heal":
		return combat.EffectHeal, nil
	case "buff":
		return combat.EffectBuff, nil
	case "debuff":
		return combat.EffectDebuff, nil
	default:
		return 0, fmt.Errorf("unknown effect %q", s)
	}
}

// DefaultAbilities returns the built-in catalog used when no data file is
// supplied. Mirrors data/abilities.yaml.
func DefaultAbilities() combat.Catalog {
	catalog, err := BuildCatalog(AbilitiesConfig{Abilities: []AbilityDef{
		{ID: "power_strike", Name: "Power Strike", Resource: "stamina", Cost: 10, Target: "enemy", Range: 1, Power: 12, Effect: "damage"},
		{ID: "piercing_shot", Name: "Piercing Shot", Resource: "stamina", Cost: 8, Target: "enemy", Range: 5, Power: 9, Effect: "damage"},
		{ID: "firebolt", Name: "Firebolt", Resource: "mana", Cost: 8, Target: "enemy", Range: 5, Power: 10, Effect: "damage"},
		{ID: "fireball", Name: "Fireball", Resource: "mana", Cost: 18, Target: "area", Range: 5, Radius: 1, Power: 8, Effect: "damage"},
		{ID: "mend_wounds", Name: "Mend Wounds", Resource: "mana", Cost: 10, Target: "ally", Range: 4, Power: 14, Effect: "heal"},
		{ID: "battle_hymn", Name: "Battle Hymn", Resource: "mana", Cost: 12, Target: "area", Range: 2, Radius: 2, Power: 4, Duration: 3, Effect: "buff"},
		{ID: "expose_weakness", Name: "Expose Weakness", Resource: "mana", Cost: 8, Target: "enemy", Range: 4, Power: 4, Duration: 3, Effect: "debuff"},
		{ID: "iron_skin", Name: "Iron Skin", Resource: "stamina", Cost: 0, Target: "self", Passive: true, Effect: "buff"},
	}})
	if err != nil {
		panic(err) // Static data, validated by tests
	}
	return catalog
}
