package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gruenhof/schoolyard-api/internal/models"
)

// ActivityRepository reads the append-only class activity feed. Writes
// happen inside the reward transaction, never through this repository.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs a new repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// ListByClass returns the newest feed entries for a class.
func (r *ActivityRepository) ListByClass(ctx context.Context, classID string, page, pageSize int) ([]models.Activity, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`SELECT id, class_id, user_id, type, content, image_url, created_at
FROM activities WHERE class_id = $1 ORDER BY created_at DESC LIMIT %d OFFSET %d`, pageSize, offset)
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, classID); err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM activities WHERE class_id = $1", classID); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}
	return activities, total, nil
}
