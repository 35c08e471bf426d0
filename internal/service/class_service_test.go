package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gruenhof/schoolyard-api/internal/models"
	appErrors "github.com/gruenhof/schoolyard-api/pkg/errors"
)

type mockClassRepo struct {
	classes map[string]*models.Class
	roles   map[string]models.UserRole
	sectors map[string]*models.Sector
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{
		classes: make(map[string]*models.Class),
		roles:   make(map[string]models.UserRole),
		sectors: make(map[string]*models.Sector),
	}
}

func (m *mockClassRepo) CreateWithMascot(ctx context.Context, class *models.Class) error {
	m.classes[class.ID] = class
	m.roles[class.ID+":"+class.CreatedBy] = models.RoleTeacher
	return nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if class, ok := m.classes[id]; ok {
		return class, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) AddMember(ctx context.Context, classID, userID string, role models.UserRole) error {
	m.roles[classID+":"+userID] = role
	return nil
}

func (m *mockClassRepo) MemberRole(ctx context.Context, classID, userID string) (models.UserRole, error) {
	if role, ok := m.roles[classID+":"+userID]; ok {
		return role, nil
	}
	return "", sql.ErrNoRows
}

func (m *mockClassRepo) IsMember(ctx context.Context, classID, userID string) (bool, error) {
	_, ok := m.roles[classID+":"+userID]
	return ok, nil
}

func (m *mockClassRepo) CreateSector(ctx context.Context, sector *models.Sector) error {
	m.sectors[sector.ID] = sector
	return nil
}

func (m *mockClassRepo) FindSectorByID(ctx context.Context, id string) (*models.Sector, error) {
	if sector, ok := m.sectors[id]; ok {
		return sector, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) ListSectors(ctx context.Context, classID string) ([]models.Sector, error) {
	var result []models.Sector
	for _, sector := range m.sectors {
		if sector.ClassID == classID {
			result = append(result, *sector)
		}
	}
	return result, nil
}

func TestCreateClassEnrollsCreator(t *testing.T) {
	repo := newMockClassRepo()
	svc := NewClassService(repo, nil, nil)

	class, err := svc.Create(context.Background(), "teacher-1", CreateClassRequest{Name: "4b", School: "Gruenhof"})
	require.NoError(t, err)
	assert.NotEmpty(t, class.ID)

	role, err := repo.MemberRole(context.Background(), class.ID, "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, role)
}

func TestCreateClassValidation(t *testing.T) {
	svc := NewClassService(newMockClassRepo(), nil, nil)

	_, err := svc.Create(context.Background(), "teacher-1", CreateClassRequest{Name: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestJoinIsIdempotentlyRejected(t *testing.T) {
	repo := newMockClassRepo()
	svc := NewClassService(repo, nil, nil)

	class, err := svc.Create(context.Background(), "teacher-1", CreateClassRequest{Name: "4b", School: "Gruenhof"})
	require.NoError(t, err)

	require.NoError(t, svc.Join(context.Background(), class.ID, "student-1", models.RoleStudent))

	err = svc.Join(context.Background(), class.ID, "student-1", models.RoleStudent)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCreateSectorTeachersOnly(t *testing.T) {
	repo := newMockClassRepo()
	svc := NewClassService(repo, nil, nil)

	class, err := svc.Create(context.Background(), "teacher-1", CreateClassRequest{Name: "4b", School: "Gruenhof"})
	require.NoError(t, err)
	require.NoError(t, svc.Join(context.Background(), class.ID, "student-1", models.RoleStudent))

	_, err = svc.CreateSector(context.Background(), class.ID, "student-1", CreateSectorRequest{Name: "Garden"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	sector, err := svc.CreateSector(context.Background(), class.ID, "teacher-1", CreateSectorRequest{Name: "Garden"})
	require.NoError(t, err)
	assert.Equal(t, class.ID, sector.ClassID)

	sectors, err := svc.ListSectors(context.Background(), class.ID, "student-1")
	require.NoError(t, err)
	assert.Len(t, sectors, 1)
}
