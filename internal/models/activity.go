package models

import "time"

// ActivityType categorises feed entries.
type ActivityType string

const (
	ActivityMissionCompleted ActivityType = "MISSION_COMPLETED"
	ActivityLevelUp          ActivityType = "LEVEL_UP"
	ActivityPurchase         ActivityType = "PURCHASE"
)

// Activity is an append-only class feed entry. Rows are never updated or
// deleted.
type Activity struct {
	ID        string       `db:"id" json:"id"`
	ClassID   string       `db:"class_id" json:"class_id"`
	UserID    string       `db:"user_id" json:"user_id"`
	Type      ActivityType `db:"type" json:"type"`
	Content   string       `db:"content" json:"content"`
	ImageURL  *string      `db:"image_url" json:"image_url,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}
