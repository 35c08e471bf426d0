package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gruenhof/schoolyard-api/internal/models"
	appErrors "github.com/gruenhof/schoolyard-api/pkg/errors"
)

type activityRepository interface {
	ListByClass(ctx context.Context, classID string, page, pageSize int) ([]models.Activity, int, error)
}

type activityClassRepository interface {
	IsMember(ctx context.Context, classID, userID string) (bool, error)
}

// ActivityFeed is the cached page shape for the class feed.
type ActivityFeed struct {
	Activities []models.Activity  `json:"activities"`
	Pagination *models.Pagination `json:"pagination"`
}

// ActivityService serves the class activity feed. Entries are written by
// the reward transaction; this service only reads, with a short-lived
// redis cache in front that approvals invalidate.
type ActivityService struct {
	activities      activityRepository
	classes         activityClassRepository
	cache           *CacheService
	defaultPageSize int
	logger          *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(activities activityRepository, classes activityClassRepository, cache *CacheService, defaultPageSize int, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	return &ActivityService{activities: activities, classes: classes, cache: cache, defaultPageSize: defaultPageSize, logger: logger}
}

// List returns a page of the class feed, newest first.
func (s *ActivityService) List(ctx context.Context, classID, userID string, page, pageSize int) (*ActivityFeed, error) {
	member, err := s.classes.IsMember(ctx, classID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if !member {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "user does not belong to this class")
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = s.defaultPageSize
	}

	key := fmt.Sprintf("activities:%s:%d:%d", classID, page, pageSize)
	var feed ActivityFeed
	if hit, err := s.cache.Get(ctx, key, &feed); err == nil && hit {
		return &feed, nil
	}

	activities, total, err := s.activities.ListByClass(ctx, classID, page, pageSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}

	feed = ActivityFeed{
		Activities: activities,
		Pagination: &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total},
	}
	if err := s.cache.Set(ctx, key, &feed, 0); err != nil {
		s.logger.Debug("activity feed cache write failed", zap.String("key", key), zap.Error(err))
	}
	return &feed, nil
}
