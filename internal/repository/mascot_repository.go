package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gruenhof/schoolyard-api/internal/models"
	"github.com/gruenhof/schoolyard-api/internal/reward"
)

// MascotRepository manages persistence for class mascots.
type MascotRepository struct {
	db *sqlx.DB
}

// NewMascotRepository constructs a new repository.
func NewMascotRepository(db *sqlx.DB) *MascotRepository {
	return &MascotRepository{db: db}
}

const mascotColumns = `class_id, thirst, hunger, happiness, cleanliness, level, xp, coins,
equipped_hat, equipped_accessory, equipped_color, last_decay_at, updated_at`

const mascotUpdate = `UPDATE mascots SET thirst = :thirst, hunger = :hunger, happiness = :happiness,
cleanliness = :cleanliness, level = :level, xp = :xp, coins = :coins,
last_decay_at = :last_decay_at, updated_at = :updated_at
WHERE class_id = :class_id`

// Get returns the mascot of a class without touching decay state.
func (r *MascotRepository) Get(ctx context.Context, classID string) (*models.Mascot, error) {
	var mascot models.Mascot
	query := fmt.Sprintf("SELECT %s FROM mascots WHERE class_id = $1", mascotColumns)
	if err := r.db.GetContext(ctx, &mascot, query, classID); err != nil {
		return nil, err
	}
	return &mascot, nil
}

// GetRefreshed returns the mascot after applying any pending stat decay.
// The recomputation happens under a row lock so concurrent reward
// applications and reads serialize instead of overwriting each other.
func (r *MascotRepository) GetRefreshed(ctx context.Context, classID string, eng reward.Engine, now time.Time) (mascot *models.Mascot, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin mascot transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var m models.Mascot
	query := fmt.Sprintf("SELECT %s FROM mascots WHERE class_id = $1 FOR UPDATE", mascotColumns)
	if err = tx.GetContext(ctx, &m, query, classID); err != nil {
		return nil, err
	}

	if eng.ApplyDecay(&m, now) {
		if _, err = tx.NamedExecContext(ctx, mascotUpdate, &m); err != nil {
			return nil, fmt.Errorf("persist mascot decay: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mascot refresh: %w", err)
	}
	return &m, nil
}
