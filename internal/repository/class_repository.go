package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gruenhof/schoolyard-api/internal/models"
)

// ClassRepository manages persistence for classes, sectors and memberships.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// CreateWithMascot inserts a class together with its mascot in one
// transaction. A class without a mascot must never be observable.
func (r *ClassRepository) CreateWithMascot(ctx context.Context, class *models.Class) (err error) {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin class transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const classQuery = `INSERT INTO classes (id, name, school, created_by, created_at, updated_at)
VALUES (:id, :name, :school, :created_by, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, classQuery, class); err != nil {
		return fmt.Errorf("insert class: %w", err)
	}

	mascot := models.NewMascot(class.ID, now)
	const mascotQuery = `INSERT INTO mascots (class_id, thirst, hunger, happiness, cleanliness, level, xp, coins, last_decay_at, updated_at)
VALUES (:class_id, :thirst, :hunger, :happiness, :cleanliness, :level, :xp, :coins, :last_decay_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, mascotQuery, mascot); err != nil {
		return fmt.Errorf("insert mascot: %w", err)
	}

	const memberQuery = `INSERT INTO class_members (class_id, user_id, role, created_at) VALUES ($1, $2, $3, $4)`
	if _, err = tx.ExecContext(ctx, memberQuery, class.ID, class.CreatedBy, models.RoleTeacher, now); err != nil {
		return fmt.Errorf("insert class membership: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit class: %w", err)
	}
	return nil
}

// FindByID returns the class with the given id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	var class models.Class
	const query = "SELECT id, name, school, created_by, created_at, updated_at FROM classes WHERE id = $1"
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// AddMember links a user to a class.
func (r *ClassRepository) AddMember(ctx context.Context, classID, userID string, role models.UserRole) error {
	const query = `INSERT INTO class_members (class_id, user_id, role, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, classID, userID, role, time.Now().UTC()); err != nil {
		return fmt.Errorf("add class member: %w", err)
	}
	return nil
}

// MemberRole returns the role a user holds in a class, or sql.ErrNoRows
// when the user is not a member.
func (r *ClassRepository) MemberRole(ctx context.Context, classID, userID string) (models.UserRole, error) {
	var role models.UserRole
	const query = "SELECT role FROM class_members WHERE class_id = $1 AND user_id = $2"
	if err := r.db.GetContext(ctx, &role, query, classID, userID); err != nil {
		return "", err
	}
	return role, nil
}

// IsMember reports whether a user belongs to a class.
func (r *ClassRepository) IsMember(ctx context.Context, classID, userID string) (bool, error) {
	if _, err := r.MemberRole(ctx, classID, userID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check class membership: %w", err)
	}
	return true, nil
}

// CreateSector inserts a new mission sector for a class.
func (r *ClassRepository) CreateSector(ctx context.Context, sector *models.Sector) error {
	if sector.ID == "" {
		sector.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sector.CreatedAt = now
	sector.UpdatedAt = now
	const query = `INSERT INTO sectors (id, class_id, name, description, created_at, updated_at)
VALUES (:id, :class_id, :name, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sector); err != nil {
		return fmt.Errorf("create sector: %w", err)
	}
	return nil
}

// FindSectorByID returns a sector by id.
func (r *ClassRepository) FindSectorByID(ctx context.Context, id string) (*models.Sector, error) {
	var sector models.Sector
	const query = "SELECT id, class_id, name, description, created_at, updated_at FROM sectors WHERE id = $1"
	if err := r.db.GetContext(ctx, &sector, query, id); err != nil {
		return nil, err
	}
	return &sector, nil
}

// ListSectors returns all sectors of a class.
func (r *ClassRepository) ListSectors(ctx context.Context, classID string) ([]models.Sector, error) {
	var sectors []models.Sector
	const query = "SELECT id, class_id, name, description, created_at, updated_at FROM sectors WHERE class_id = $1 ORDER BY created_at"
	if err := r.db.SelectContext(ctx, &sectors, query, classID); err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	return sectors, nil
}
