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

type missionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Mission, error)
	List(ctx context.Context, filter models.MissionFilter) ([]models.Mission, int, error)
	Create(ctx context.Context, mission *models.Mission) error
	Update(ctx context.Context, mission *models.Mission) error
	Delete(ctx context.Context, id string) error
}

type missionClassRepository interface {
	FindSectorByID(ctx context.Context, id string) (*models.Sector, error)
	MemberRole(ctx context.Context, classID, userID string) (models.UserRole, error)
	IsMember(ctx context.Context, classID, userID string) (bool, error)
}

// MissionRequest holds the payload for creating or updating a mission.
type MissionRequest struct {
	SectorID         string `json:"sector_id" validate:"required"`
	Title            string `json:"title" validate:"required,min=3"`
	Description      string `json:"description"`
	XPReward         int    `json:"xp_reward" validate:"gte=0"`
	CoinReward       int    `json:"coin_reward" validate:"gte=0"`
	ThirstBoost      int    `json:"thirst_boost" validate:"gte=0,lte=100"`
	HungerBoost      int    `json:"hunger_boost" validate:"gte=0,lte=100"`
	HappinessBoost   int    `json:"happiness_boost" validate:"gte=0,lte=100"`
	CleanlinessBoost int    `json:"cleanliness_boost" validate:"gte=0,lte=100"`
	CooldownHours    *int   `json:"cooldown_hours" validate:"omitempty,gt=0"`
	MaxCompletions   *int   `json:"max_completions" validate:"omitempty,gt=0"`
}

// MissionService manages the mission catalog. Mutations are restricted to
// teachers of the owning class.
type MissionService struct {
	missions  missionRepository
	classes   missionClassRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMissionService constructs a MissionService.
func NewMissionService(missions missionRepository, classes missionClassRepository, validate *validator.Validate, logger *zap.Logger) *MissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MissionService{missions: missions, classes: classes, validator: validate, logger: logger}
}

// Get returns a mission by id, membership in the owning class required.
func (s *MissionService) Get(ctx context.Context, id, userID string) (*models.Mission, error) {
	mission, err := s.missions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mission")
	}
	if err := s.requireMember(ctx, mission.ClassID, userID); err != nil {
		return nil, err
	}
	return mission, nil
}

// List returns missions matching the filter. The filter's class must be
// one the user belongs to.
func (s *MissionService) List(ctx context.Context, userID string, filter models.MissionFilter) ([]models.Mission, *models.Pagination, error) {
	if filter.ClassID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "class_id is required")
	}
	if err := s.requireMember(ctx, filter.ClassID, userID); err != nil {
		return nil, nil, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	missions, total, err := s.missions.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list missions")
	}
	return missions, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Create adds a mission to a sector. Teachers of the owning class only.
func (s *MissionService) Create(ctx context.Context, userID string, req MissionRequest) (*models.Mission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mission payload")
	}

	sector, err := s.classes.FindSectorByID(ctx, req.SectorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sector not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sector")
	}
	if err := s.requireTeacher(ctx, sector.ClassID, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	mission := &models.Mission{
		ID:               uuid.NewString(),
		SectorID:         req.SectorID,
		ClassID:          sector.ClassID,
		Title:            req.Title,
		Description:      req.Description,
		XPReward:         req.XPReward,
		CoinReward:       req.CoinReward,
		ThirstBoost:      req.ThirstBoost,
		HungerBoost:      req.HungerBoost,
		HappinessBoost:   req.HappinessBoost,
		CleanlinessBoost: req.CleanlinessBoost,
		CooldownHours:    req.CooldownHours,
		MaxCompletions:   req.MaxCompletions,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.missions.Create(ctx, mission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mission")
	}

	s.logger.Info("mission created", zap.String("mission_id", mission.ID), zap.String("sector_id", mission.SectorID))
	return mission, nil
}

// Update replaces a mission's editable fields. Teachers only. Reward
// changes affect future approvals, never already-completed submissions.
func (s *MissionService) Update(ctx context.Context, id, userID string, req MissionRequest) (*models.Mission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mission payload")
	}

	mission, err := s.missions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mission")
	}
	if err := s.requireTeacher(ctx, mission.ClassID, userID); err != nil {
		return nil, err
	}

	mission.Title = req.Title
	mission.Description = req.Description
	mission.XPReward = req.XPReward
	mission.CoinReward = req.CoinReward
	mission.ThirstBoost = req.ThirstBoost
	mission.HungerBoost = req.HungerBoost
	mission.HappinessBoost = req.HappinessBoost
	mission.CleanlinessBoost = req.CleanlinessBoost
	mission.CooldownHours = req.CooldownHours
	mission.MaxCompletions = req.MaxCompletions
	mission.UpdatedAt = time.Now().UTC()

	if err := s.missions.Update(ctx, mission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update mission")
	}
	return mission, nil
}

// Delete removes a mission. Teachers only. Existing submissions keep their
// state; only future accepts are prevented.
func (s *MissionService) Delete(ctx context.Context, id, userID string) error {
	mission, err := s.missions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "mission not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mission")
	}
	if err := s.requireTeacher(ctx, mission.ClassID, userID); err != nil {
		return err
	}
	if err := s.missions.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete mission")
	}
	return nil
}

func (s *MissionService) requireMember(ctx context.Context, classID, userID string) error {
	member, err := s.classes.IsMember(ctx, classID, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if !member {
		return appErrors.Clone(appErrors.ErrForbidden, "user does not belong to this class")
	}
	return nil
}

func (s *MissionService) requireTeacher(ctx context.Context, classID, userID string) error {
	role, err := s.classes.MemberRole(ctx, classID, userID)
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
