package models

import "time"

// Mission is a reusable task template owned by a sector. Reward and boost
// fields are read-only from the reward engine's perspective.
type Mission struct {
	ID               string    `db:"id" json:"id"`
	SectorID         string    `db:"sector_id" json:"sector_id"`
	ClassID          string    `db:"class_id" json:"class_id"`
	Title            string    `db:"title" json:"title"`
	Description      string    `db:"description" json:"description"`
	XPReward         int       `db:"xp_reward" json:"xp_reward"`
	CoinReward       int       `db:"coin_reward" json:"coin_reward"`
	ThirstBoost      int       `db:"thirst_boost" json:"thirst_boost"`
	HungerBoost      int       `db:"hunger_boost" json:"hunger_boost"`
	HappinessBoost   int       `db:"happiness_boost" json:"happiness_boost"`
	CleanlinessBoost int       `db:"cleanliness_boost" json:"cleanliness_boost"`
	CooldownHours    *int      `db:"cooldown_hours" json:"cooldown_hours,omitempty"`
	MaxCompletions   *int      `db:"max_completions" json:"max_completions,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// MissionFilter captures filtering criteria for listing missions.
type MissionFilter struct {
	SectorID string
	ClassID  string
	Search   string
	Page     int
	PageSize int
}
