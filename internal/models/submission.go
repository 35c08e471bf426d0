package models

import "time"

// SubmissionStatus represents the lifecycle state of a submission.
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "PENDING"
	SubmissionCompleted SubmissionStatus = "COMPLETED"
	SubmissionRejected  SubmissionStatus = "REJECTED"
)

// Terminal reports whether the status admits no further transitions.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionCompleted || s == SubmissionRejected
}

// Submission records one acceptance of a mission by a student. At most one
// submission per (user, mission) may be PENDING at any time.
type Submission struct {
	ID        string           `db:"id" json:"id"`
	MissionID string           `db:"mission_id" json:"mission_id"`
	UserID    string           `db:"user_id" json:"user_id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	PhotoURL  *string          `db:"photo_url" json:"photo_url,omitempty"`
	Status    SubmissionStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// SubmissionFilter captures filtering criteria for listing submissions.
type SubmissionFilter struct {
	ClassID   string
	UserID    string
	MissionID string
	Status    SubmissionStatus
	Page      int
	PageSize  int
}

// ReviewDecision is a teacher's verdict on a pending submission.
type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "approve"
	DecisionReject  ReviewDecision = "reject"
)
