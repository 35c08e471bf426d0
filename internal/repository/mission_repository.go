package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gruenhof/schoolyard-api/internal/models"
)

// MissionRepository manages persistence for mission templates.
type MissionRepository struct {
	db *sqlx.DB
}

// NewMissionRepository constructs a new repository.
func NewMissionRepository(db *sqlx.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

const missionSelect = `SELECT m.id, m.sector_id, s.class_id, m.title, m.description,
m.xp_reward, m.coin_reward, m.thirst_boost, m.hunger_boost, m.happiness_boost, m.cleanliness_boost,
m.cooldown_hours, m.max_completions, m.created_at, m.updated_at
FROM missions m JOIN sectors s ON s.id = m.sector_id`

// FindByID returns a mission with its owning class resolved through the
// sector.
func (r *MissionRepository) FindByID(ctx context.Context, id string) (*models.Mission, error) {
	var mission models.Mission
	query := missionSelect + " WHERE m.id = $1"
	if err := r.db.GetContext(ctx, &mission, query, id); err != nil {
		return nil, err
	}
	return &mission, nil
}

// List returns missions per provided filter.
func (r *MissionRepository) List(ctx context.Context, filter models.MissionFilter) ([]models.Mission, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.SectorID != "" {
		where = append(where, fmt.Sprintf("m.sector_id = $%d", len(args)+1))
		args = append(args, filter.SectorID)
	}
	if filter.ClassID != "" {
		where = append(where, fmt.Sprintf("s.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("m.title ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
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

	query := fmt.Sprintf("%s WHERE %s ORDER BY m.created_at LIMIT %d OFFSET %d", missionSelect, whereClause, size, offset)
	var missions []models.Mission
	if err := r.db.SelectContext(ctx, &missions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list missions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM missions m JOIN sectors s ON s.id = m.sector_id WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count missions: %w", err)
	}
	return missions, total, nil
}

// Create inserts a new mission.
func (r *MissionRepository) Create(ctx context.Context, mission *models.Mission) error {
	if mission.ID == "" {
		mission.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	mission.CreatedAt = now
	mission.UpdatedAt = now
	const query = `INSERT INTO missions (id, sector_id, title, description, xp_reward, coin_reward,
thirst_boost, hunger_boost, happiness_boost, cleanliness_boost, cooldown_hours, max_completions, created_at, updated_at)
VALUES (:id, :sector_id, :title, :description, :xp_reward, :coin_reward,
:thirst_boost, :hunger_boost, :happiness_boost, :cleanliness_boost, :cooldown_hours, :max_completions, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mission); err != nil {
		return fmt.Errorf("create mission: %w", err)
	}
	return nil
}

// Update modifies an existing mission template.
func (r *MissionRepository) Update(ctx context.Context, mission *models.Mission) error {
	mission.UpdatedAt = time.Now().UTC()
	const query = `UPDATE missions SET title = :title, description = :description,
xp_reward = :xp_reward, coin_reward = :coin_reward,
thirst_boost = :thirst_boost, hunger_boost = :hunger_boost,
happiness_boost = :happiness_boost, cleanliness_boost = :cleanliness_boost,
cooldown_hours = :cooldown_hours, max_completions = :max_completions, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, mission); err != nil {
		return fmt.Errorf("update mission: %w", err)
	}
	return nil
}

// Delete removes a mission template.
func (r *MissionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM missions WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete mission: %w", err)
	}
	return nil
}
