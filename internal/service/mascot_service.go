package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/gruenhof/schoolyard-api/internal/models"
	"github.com/gruenhof/schoolyard-api/internal/reward"
	appErrors "github.com/gruenhof/schoolyard-api/pkg/errors"
)

type mascotRepository interface {
	Get(ctx context.Context, classID string) (*models.Mascot, error)
	GetRefreshed(ctx context.Context, classID string, eng reward.Engine, now time.Time) (*models.Mascot, error)
}

type mascotClassRepository interface {
	IsMember(ctx context.Context, classID, userID string) (bool, error)
}

// MascotService exposes the mascot read path. Reads fold pending stat
// decay into the stored state before returning it, so clients always see
// up-to-date stats without a background ticker.
type MascotService struct {
	mascots mascotRepository
	classes mascotClassRepository
	engine  reward.Engine
	logger  *zap.Logger
}

// NewMascotService constructs a MascotService.
func NewMascotService(mascots mascotRepository, classes mascotClassRepository, engine reward.Engine, logger *zap.Logger) *MascotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MascotService{mascots: mascots, classes: classes, engine: engine, logger: logger}
}

// Get returns the class mascot with decay applied. Membership required.
func (s *MascotService) Get(ctx context.Context, classID, userID string) (*models.Mascot, error) {
	member, err := s.classes.IsMember(ctx, classID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if !member {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "user does not belong to this class")
	}

	mascot, err := s.mascots.GetRefreshed(ctx, classID, s.engine, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mascot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mascot")
	}
	return mascot, nil
}
