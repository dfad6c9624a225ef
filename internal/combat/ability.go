package combat

// ResourceKind is the pool an ability draws from.
type ResourceKind uint8

const (
	ResourceMana ResourceKind = iota
	ResourceStamina
)

// TargetKind constrains what an ability may be aimed at.
type TargetKind uint8

const (
	TargetSelf TargetKind = iota
	TargetEnemy
	TargetAlly
	TargetArea // Any in-bounds origin hex within range
)

// EffectKind is what an ability does when it lands.
type EffectKind uint8

const (
	EffectDamage EffectKind = iota
	EffectHeal
	EffectBuff
	EffectDebuff
)

// Ability is an immutable data record from the catalog. Scoring and
// resolution are pure functions over this record plus unit/state; no
// behavior is hardcoded per ability.
type Ability struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Resource ResourceKind `json:"resource"`
	Cost     int          `json:"cost"`
	Target   TargetKind   `json:"target"`
	Range    int          `json:"range"`
	Radius   int          `json:"radius"` // Area abilities only
	Power    int          `json:"power"`
	Duration int          `json:"duration"` // Rounds, for buffs/debuffs
	Passive  bool         `json:"passive"`
	Effect   EffectKind   `json:"effect"`
}

// Catalog maps ability ID to its record. Built once at startup and treated
// as read-only afterwards.
type Catalog map[string]Ability
