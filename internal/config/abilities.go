// Package config loads the ability catalog from YAML data files.
package config

// AbilitiesConfig is the top-level abilities data file.
type AbilitiesConfig struct {
	Abilities []AbilityDef `yaml:"abilities"`
}

// AbilityDef is one catalog entry as written in the data file.
type AbilityDef struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Resource string `yaml:"resource"` // mana | stamina
	Cost     int    `yaml:"cost"`
	Target   string `yaml:"target"` // self | enemy | ally | area
	Range    int    `yaml:"range"`
	Radius   int    `yaml:"radius"`
	Power    int    `yaml:"power"`
	Duration int    `yaml:"duration"`
	Passive  bool   `yaml:"passive"`
	Effect   string `yaml:"effect"` // damage | heal | buff | debuff
	Note     string `yaml:"note"`
}
