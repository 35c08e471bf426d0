package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gruenhof/schoolyard-api/internal/models"
	"github.com/gruenhof/schoolyard-api/internal/reward"
)

// SubmissionRepository manages persistence for mission submissions and
// owns the transactional approve-with-reward unit.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a new repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = "id, mission_id, user_id, class_id, photo_url, status, created_at, updated_at"

// Create inserts a new PENDING submission. The partial unique index on
// (user_id, mission_id) WHERE status = 'PENDING' makes concurrent accepts
// for the same pair fail with a unique violation.
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sub.Status = models.SubmissionPending
	sub.CreatedAt = now
	sub.UpdatedAt = now
	const query = `INSERT INTO submissions (id, mission_id, user_id, class_id, photo_url, status, created_at, updated_at)
VALUES (:id, :mission_id, :user_id, :class_id, :photo_url, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// FindByID returns a submission by id.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	query := fmt.Sprintf("SELECT %s FROM submissions WHERE id = $1", submissionColumns)
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// HasPending reports whether the user already has a PENDING submission for
// the mission.
func (r *SubmissionRepository) HasPending(ctx context.Context, userID, missionID string) (bool, error) {
	var count int
	const query = "SELECT COUNT(*) FROM submissions WHERE user_id = $1 AND mission_id = $2 AND status = 'PENDING'"
	if err := r.db.GetContext(ctx, &count, query, userID, missionID); err != nil {
		return false, fmt.Errorf("count pending submissions: %w", err)
	}
	return count > 0, nil
}

// CountCompleted returns how many times the user completed the mission.
func (r *SubmissionRepository) CountCompleted(ctx context.Context, userID, missionID string) (int, error) {
	var count int
	const query = "SELECT COUNT(*) FROM submissions WHERE user_id = $1 AND mission_id = $2 AND status = 'COMPLETED'"
	if err := r.db.GetContext(ctx, &count, query, userID, missionID); err != nil {
		return 0, fmt.Errorf("count completed submissions: %w", err)
	}
	return count, nil
}

// LatestCompletedAt returns the time of the user's most recent completion
// of the mission, or nil when there is none.
func (r *SubmissionRepository) LatestCompletedAt(ctx context.Context, userID, missionID string) (*time.Time, error) {
	var ts sql.NullTime
	const query = "SELECT MAX(updated_at) FROM submissions WHERE user_id = $1 AND mission_id = $2 AND status = 'COMPLETED'"
	if err := r.db.GetContext(ctx, &ts, query, userID, missionID); err != nil {
		return nil, fmt.Errorf("latest completion: %w", err)
	}
	if !ts.Valid {
		return nil, nil
	}
	return &ts.Time, nil
}

// AttachPhoto sets the photo reference on a still-pending submission.
// Returns sql.ErrNoRows when the submission left PENDING in the meantime.
func (r *SubmissionRepository) AttachPhoto(ctx context.Context, id, photoURL string, now time.Time) (*models.Submission, error) {
	var sub models.Submission
	query := fmt.Sprintf(`UPDATE submissions SET photo_url = $2, updated_at = $3
WHERE id = $1 AND status = 'PENDING' RETURNING %s`, submissionColumns)
	if err := r.db.GetContext(ctx, &sub, query, id, photoURL, now); err != nil {
		return nil, err
	}
	return &sub, nil
}

// List returns submissions per provided filter.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ClassID != "" {
		where = append(where, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.UserID != "" {
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.MissionID != "" {
		where = append(where, fmt.Sprintf("mission_id = $%d", len(args)+1))
		args = append(args, filter.MissionID)
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM submissions WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		submissionColumns, whereClause, size, offset)
	var subs []models.Submission
	if err := r.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM submissions WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}
	return subs, total, nil
}

// Reject moves a pending submission to REJECTED. Returns sql.ErrNoRows
// when the submission is no longer PENDING, so concurrent reviews cannot
// both succeed.
func (r *SubmissionRepository) Reject(ctx context.Context, id string, now time.Time) (*models.Submission, error) {
	var sub models.Submission
	query := fmt.Sprintf(`UPDATE submissions SET status = 'REJECTED', updated_at = $2
WHERE id = $1 AND status = 'PENDING' RETURNING %s`, submissionColumns)
	if err := r.db.GetContext(ctx, &sub, query, id, now); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ApproveWithReward transitions a pending submission to COMPLETED and
// applies the mission reward to the class mascot as one transaction. The
// mascot row is locked for the read-modify-write, so concurrent approvals
// against the same mascot serialize. When the submission already left
// PENDING the status update matches no row and sql.ErrNoRows is returned
// with nothing committed.
func (r *SubmissionRepository) ApproveWithReward(ctx context.Context, submissionID string, mission *models.Mission, eng reward.Engine, userName string) (sub *models.Submission, mascot *models.Mascot, activities []models.Activity, err error) {
	now := time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("begin review transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var s models.Submission
	statusQuery := fmt.Sprintf(`UPDATE submissions SET status = 'COMPLETED', updated_at = $2
WHERE id = $1 AND status = 'PENDING' RETURNING %s`, submissionColumns)
	if err = tx.GetContext(ctx, &s, statusQuery, submissionID, now); err != nil {
		return nil, nil, nil, err
	}

	var m models.Mascot
	lockQuery := fmt.Sprintf("SELECT %s FROM mascots WHERE class_id = $1 FOR UPDATE", mascotColumns)
	if err = tx.GetContext(ctx, &m, lockQuery, s.ClassID); err != nil {
		return nil, nil, nil, fmt.Errorf("lock mascot: %w", err)
	}

	eng.ApplyDecay(&m, now)
	outcome := eng.Apply(&m, mission, s.UserID, userName, now)

	if _, err = tx.NamedExecContext(ctx, mascotUpdate, &m); err != nil {
		return nil, nil, nil, fmt.Errorf("persist mascot reward: %w", err)
	}

	const activityQuery = `INSERT INTO activities (id, class_id, user_id, type, content, image_url, created_at)
VALUES (:id, :class_id, :user_id, :type, :content, :image_url, :created_at)`
	for i := range outcome.Activities {
		if _, err = tx.NamedExecContext(ctx, activityQuery, outcome.Activities[i]); err != nil {
			return nil, nil, nil, fmt.Errorf("insert activity: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, nil, fmt.Errorf("commit review: %w", err)
	}
	return &s, &m, outcome.Activities, nil
}
