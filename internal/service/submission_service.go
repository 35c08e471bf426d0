package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gruenhof/schoolyard-api/internal/models"
	"github.com/gruenhof/schoolyard-api/internal/repository"
	"github.com/gruenhof/schoolyard-api/internal/reward"
	appErrors "github.com/gruenhof/schoolyard-api/pkg/errors"
)

type submissionRepository interface {
	Create(ctx context.Context, sub *models.Submission) error
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	HasPending(ctx context.Context, userID, missionID string) (bool, error)
	CountCompleted(ctx context.Context, userID, missionID string) (int, error)
	LatestCompletedAt(ctx context.Context, userID, missionID string) (*time.Time, error)
	AttachPhoto(ctx context.Context, id, photoURL string, now time.Time) (*models.Submission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error)
	Reject(ctx context.Context, id string, now time.Time) (*models.Submission, error)
	ApproveWithReward(ctx context.Context, submissionID string, mission *models.Mission, eng reward.Engine, userName string) (*models.Submission, *models.Mascot, []models.Activity, error)
}

type submissionMissionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Mission, error)
}

type submissionClassRepository interface {
	IsMember(ctx context.Context, classID, userID string) (bool, error)
	MemberRole(ctx context.Context, classID, userID string) (models.UserRole, error)
}

type submissionUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type photoStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
}

// ReviewRequest is a teacher's verdict on a pending submission.
type ReviewRequest struct {
	Decision models.ReviewDecision `json:"decision" validate:"required,oneof=approve reject"`
}

// ReviewResult bundles the reviewed submission with the reward outcome.
// Mascot and Activities are only set for approvals.
type ReviewResult struct {
	Submission *models.Submission `json:"submission"`
	Mascot     *models.Mascot     `json:"mascot,omitempty"`
	Activities []models.Activity  `json:"activities,omitempty"`
}

// SubmissionService drives the submission lifecycle: a student accepts a
// mission (PENDING), optionally attaches a photo, and a teacher review
// moves it to COMPLETED or REJECTED exactly once.
type SubmissionService struct {
	subs      submissionRepository
	missions  submissionMissionRepository
	classes   submissionClassRepository
	users     submissionUserRepository
	photos    photoStore
	cache     *CacheService
	metrics   *MetricsService
	engine    reward.Engine
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(
	subs submissionRepository,
	missions submissionMissionRepository,
	classes submissionClassRepository,
	users submissionUserRepository,
	photos photoStore,
	cache *CacheService,
	metrics *MetricsService,
	engine reward.Engine,
	validate *validator.Validate,
	logger *zap.Logger,
) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubmissionService{
		subs:      subs,
		missions:  missions,
		classes:   classes,
		users:     users,
		photos:    photos,
		cache:     cache,
		metrics:   metrics,
		engine:    engine,
		validator: validate,
		logger:    logger,
	}
}

// Accept creates a PENDING submission for the calling student. A student
// can hold at most one pending submission per mission; cooldown and
// completion limits are enforced against COMPLETED history only.
func (s *SubmissionService) Accept(ctx context.Context, missionID, userID string) (*models.Submission, error) {
	mission, err := s.missions.FindByID(ctx, missionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mission")
	}

	member, err := s.classes.IsMember(ctx, mission.ClassID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if !member {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "user does not belong to this class")
	}

	pending, err := s.subs.HasPending(ctx, userID, missionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending submissions")
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "mission already has a pending submission")
	}

	if mission.MaxCompletions != nil {
		completed, err := s.subs.CountCompleted(ctx, userID, missionID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count completions")
		}
		if completed >= *mission.MaxCompletions {
			return nil, appErrors.Clone(appErrors.ErrConflict, "mission completion limit reached")
		}
	}

	if mission.CooldownHours != nil {
		last, err := s.subs.LatestCompletedAt(ctx, userID, missionID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check cooldown")
		}
		if last != nil {
			cooldown := time.Duration(*mission.CooldownHours) * time.Hour
			if remaining := time.Until(last.Add(cooldown)); remaining > 0 {
				msg := fmt.Sprintf("mission is on cooldown for another %s", remaining.Round(time.Minute))
				return nil, appErrors.Clone(appErrors.ErrConflict, msg)
			}
		}
	}

	sub := &models.Submission{
		MissionID: missionID,
		UserID:    userID,
		ClassID:   mission.ClassID,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		// partial unique index on (user_id, mission_id) WHERE status =
		// 'PENDING' backstops the HasPending check under concurrency
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "mission already has a pending submission")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
	}

	s.logger.Info("submission accepted",
		zap.String("submission_id", sub.ID),
		zap.String("mission_id", missionID),
		zap.String("user_id", userID))
	return sub, nil
}

// AttachPhoto stores proof for a pending submission owned by the caller.
func (s *SubmissionService) AttachPhoto(ctx context.Context, submissionID, userID, filename string, r io.Reader) (*models.Submission, error) {
	sub, err := s.subs.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if sub.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "submission belongs to another user")
	}
	if sub.Status != models.SubmissionPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "photos can only be attached while pending")
	}

	relPath := path.Join("submissions", sub.ID, filename)
	stored, err := s.photos.SaveStream(relPath, r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}

	updated, err := s.subs.AttachPhoto(ctx, sub.ID, stored, time.Now().UTC())
	if err != nil {
		// the submission was reviewed between the read and the update;
		// drop the orphaned file
		if delErr := s.photos.Delete(stored); delErr != nil {
			s.logger.Warn("failed to remove orphaned photo", zap.String("path", stored), zap.Error(delErr))
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "photos can only be attached while pending")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach photo")
	}
	return updated, nil
}

// Get returns a submission visible to the caller: its owner or a member
// of the owning class with the teacher role.
func (s *SubmissionService) Get(ctx context.Context, id, userID string) (*models.Submission, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if sub.UserID != userID {
		if err := s.requireTeacher(ctx, sub.ClassID, userID); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// List returns submissions matching the filter. Students only see their
// own; teachers see the whole class.
func (s *SubmissionService) List(ctx context.Context, userID string, filter models.SubmissionFilter) ([]models.Submission, *models.Pagination, error) {
	if filter.ClassID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "class_id is required")
	}

	role, err := s.classes.MemberRole(ctx, filter.ClassID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "user does not belong to this class")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if role == models.RoleStudent {
		filter.UserID = userID
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	subs, total, err := s.subs.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return subs, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Review applies a teacher's verdict. Approval rewards the mascot in the
// same transaction as the status flip, so the reward is granted exactly
// once; a second review of the same submission fails with INVALID_STATE.
func (s *SubmissionService) Review(ctx context.Context, submissionID, reviewerID string, req ReviewRequest) (*ReviewResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	sub, err := s.subs.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}

	if err := s.requireTeacher(ctx, sub.ClassID, reviewerID); err != nil {
		return nil, err
	}
	if sub.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "submission has already been reviewed")
	}

	if req.Decision == models.DecisionReject {
		rejected, err := s.subs.Reject(ctx, submissionID, time.Now().UTC())
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrInvalidState, "submission has already been reviewed")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject submission")
		}
		s.metrics.RecordReview("reject")
		s.logger.Info("submission rejected",
			zap.String("submission_id", submissionID),
			zap.String("reviewer_id", reviewerID))
		return &ReviewResult{Submission: rejected}, nil
	}

	mission, err := s.missions.FindByID(ctx, sub.MissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mission no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mission")
	}

	student, err := s.users.FindByID(ctx, sub.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submitting user")
	}

	approved, mascot, activities, err := s.subs.ApproveWithReward(ctx, submissionID, mission, s.engine, student.FullName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "submission has already been reviewed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve submission")
	}

	s.metrics.RecordReview("approve")
	for _, a := range activities {
		if a.Type == models.ActivityLevelUp {
			s.metrics.RecordLevelUp()
		}
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("activities:%s:*", sub.ClassID)); err != nil {
		s.logger.Warn("failed to invalidate activity cache", zap.String("class_id", sub.ClassID), zap.Error(err))
	}

	s.logger.Info("submission approved",
		zap.String("submission_id", submissionID),
		zap.String("reviewer_id", reviewerID),
		zap.Int("mascot_level", mascot.Level),
		zap.Int("mascot_xp", mascot.XP))

	return &ReviewResult{Submission: approved, Mascot: mascot, Activities: activities}, nil
}

func (s *SubmissionService) requireTeacher(ctx context.Context, classID, userID string) error {
	role, err := s.classes.MemberRole(ctx, classID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrForbidden, "user does not belong to this class")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if role != models.RoleTeacher && role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only teachers may review submissions")
	}
	return nil
}
