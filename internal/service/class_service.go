package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gruenhof/schoolyard-api/internal/models"
	appErrors "github.com/gruenhof/schoolyard-api/pkg/errors"
)

type classRepository interface {
	CreateWithMascot(ctx context.Context, class *models.Class) error
	FindByID(ctx context.Context, id string) (*models.Class, error)
	AddMember(ctx context.Context, classID, userID string, role models.UserRole) error
	MemberRole(ctx context.Context, classID, userID string) (models.UserRole, error)
	IsMember(ctx context.Context, classID, userID string) (bool, error)
	CreateSector(ctx context.Context, sector *models.Sector) error
	FindSectorByID(ctx context.Context, id string) (*models.Sector, error)
	ListSectors(ctx context.Context, classID string) ([]models.Sector, error)
}

// CreateClassRequest holds the payload for creating a class.
type CreateClassRequest struct {
	Name   string `json:"name" validate:"required,min=2"`
	School string `json:"school" validate:"required"`
}

// CreateSectorRequest holds the payload for creating a sector.
type CreateSectorRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description"`
}

// ClassService manages classes, their sectors and memberships. Creating a
// class also creates its mascot; the two are never separated.
type ClassService struct {
	repo      classRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(repo classRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, validator: validate, logger: logger}
}

// Create creates a class together with its mascot and enrolls the creating
// teacher as a member.
func (s *ClassService) Create(ctx context.Context, creatorID string, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	now := time.Now().UTC()
	class := &models.Class{
		ID:        uuid.NewString(),
		Name:      req.Name,
		School:    req.School,
		CreatedBy: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateWithMascot(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	s.logger.Info("class created", zap.String("class_id", class.ID), zap.String("created_by", creatorID))
	return class, nil
}

// Get returns a class by id.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Join enrolls a user into a class with the given role.
func (s *ClassService) Join(ctx context.Context, classID, userID string, role models.UserRole) error {
	if _, err := s.repo.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	member, err := s.repo.IsMember(ctx, classID, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if member {
		return appErrors.Clone(appErrors.ErrConflict, "user already belongs to this class")
	}

	if err := s.repo.AddMember(ctx, classID, userID, role); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to join class")
	}
	return nil
}

// RequireMember returns an error unless the user belongs to the class.
func (s *ClassService) RequireMember(ctx context.Context, classID, userID string) error {
	member, err := s.repo.IsMember(ctx, classID, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if !member {
		return appErrors.Clone(appErrors.ErrForbidden, "user does not belong to this class")
	}
	return nil
}

// RequireTeacher returns an error unless the user is a teacher of the class.
func (s *ClassService) RequireTeacher(ctx context.Context, classID, userID string) error {
	role, err := s.repo.MemberRole(ctx, classID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrForbidden, "user does not belong to this class")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if role != models.RoleTeacher && role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only teachers may perform this action")
	}
	return nil
}

// CreateSector adds a mission sector to a class. Teachers only.
func (s *ClassService) CreateSector(ctx context.Context, classID, userID string, req CreateSectorRequest) (*models.Sector, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sector payload")
	}
	if err := s.RequireTeacher(ctx, classID, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sector := &models.Sector{
		ID:          uuid.NewString(),
		ClassID:     classID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateSector(ctx, sector); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sector")
	}
	return sector, nil
}

// ListSectors returns the sectors of a class, membership required.
func (s *ClassService) ListSectors(ctx context.Context, classID, userID string) ([]models.Sector, error) {
	if err := s.RequireMember(ctx, classID, userID); err != nil {
		return nil, err
	}
	sectors, err := s.repo.ListSectors(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sectors")
	}
	return sectors, nil
}
