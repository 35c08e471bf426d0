package models

import "time"

// Mascot is the class-owned virtual pet. One row per class; stats are kept
// within [0,100], xp is monotonically non-decreasing and level is derived
// from it.
type Mascot struct {
	ClassID           string    `db:"class_id" json:"class_id"`
	Thirst            int       `db:"thirst" json:"thirst"`
	Hunger            int       `db:"hunger" json:"hunger"`
	Happiness         int       `db:"happiness" json:"happiness"`
	Cleanliness       int       `db:"cleanliness" json:"cleanliness"`
	Level             int       `db:"level" json:"level"`
	XP                int       `db:"xp" json:"xp"`
	Coins             int       `db:"coins" json:"coins"`
	EquippedHat       *string   `db:"equipped_hat" json:"equipped_hat,omitempty"`
	EquippedAccessory *string   `db:"equipped_accessory" json:"equipped_accessory,omitempty"`
	EquippedColor     *string   `db:"equipped_color" json:"equipped_color,omitempty"`
	LastDecayAt       time.Time `db:"last_decay_at" json:"last_decay_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// NewMascot returns the initial mascot state for a freshly created class.
func NewMascot(classID string, now time.Time) *Mascot {
	return &Mascot{
		ClassID:     classID,
		Thirst:      100,
		Hunger:      100,
		Happiness:   100,
		Cleanliness: 100,
		Level:       1,
		XP:          0,
		Coins:       0,
		LastDecayAt: now,
		UpdatedAt:   now,
	}
}
