package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gruenhof/schoolyard-api/internal/models"
	"github.com/gruenhof/schoolyard-api/internal/reward"
	appErrors "github.com/gruenhof/schoolyard-api/pkg/errors"
)

type mockMascotRepo struct {
	mascots map[string]*models.Mascot
}

func (m *mockMascotRepo) Get(ctx context.Context, classID string) (*models.Mascot, error) {
	if mascot, ok := m.mascots[classID]; ok {
		copied := *mascot
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMascotRepo) GetRefreshed(ctx context.Context, classID string, eng reward.Engine, now time.Time) (*models.Mascot, error) {
	mascot, ok := m.mascots[classID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	eng.ApplyDecay(mascot, now)
	copied := *mascot
	return &copied, nil
}

func newMascotFixture(lastDecay time.Time) (*MascotService, *mockMascotRepo) {
	repo := &mockMascotRepo{mascots: map[string]*models.Mascot{
		"class-1": {ClassID: "class-1", Thirst: 50, Hunger: 50, Happiness: 50, Cleanliness: 50, Level: 1, LastDecayAt: lastDecay},
	}}
	classes := &mockClassReader{roles: map[string]models.UserRole{
		"class-1:student-1": models.RoleStudent,
	}}
	eng := reward.NewEngine(reward.DecayRates{Thirst: 2, Hunger: 2, Happiness: 1, Cleanliness: 1}, time.Hour)
	return NewMascotService(repo, classes, eng, nil), repo
}

func TestMascotGetAppliesDecay(t *testing.T) {
	svc, _ := newMascotFixture(time.Now().UTC().Add(-10 * time.Hour))

	mascot, err := svc.Get(context.Background(), "class-1", "student-1")
	require.NoError(t, err)
	assert.Equal(t, 30, mascot.Thirst)
	assert.Equal(t, 30, mascot.Hunger)
	assert.Equal(t, 40, mascot.Happiness)
	assert.Equal(t, 40, mascot.Cleanliness)
}

func TestMascotGetFreshStateUntouched(t *testing.T) {
	svc, _ := newMascotFixture(time.Now().UTC().Add(-time.Minute))

	mascot, err := svc.Get(context.Background(), "class-1", "student-1")
	require.NoError(t, err)
	assert.Equal(t, 50, mascot.Thirst)
}

func TestMascotGetRequiresMembership(t *testing.T) {
	svc, _ := newMascotFixture(time.Now().UTC())

	_, err := svc.Get(context.Background(), "class-1", "outsider")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMascotGetUnknownClass(t *testing.T) {
	svc, _ := newMascotFixture(time.Now().UTC())

	_, err := svc.Get(context.Background(), "class-2", "student-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
