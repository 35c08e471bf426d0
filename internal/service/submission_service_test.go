package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gruenhof/schoolyard-api/internal/models"
	"github.com/gruenhof/schoolyard-api/internal/reward"
	appErrors "github.com/gruenhof/schoolyard-api/pkg/errors"
)

type mockSubmissionRepo struct {
	subs    map[string]*models.Submission
	mascots map[string]*models.Mascot
	feed    []models.Activity
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{
		subs:    make(map[string]*models.Submission),
		mascots: make(map[string]*models.Mascot),
	}
}

func (m *mockSubmissionRepo) Create(ctx context.Context, sub *models.Submission) error {
	sub.ID = uuid.NewString()
	sub.Status = models.SubmissionPending
	sub.CreatedAt = time.Now().UTC()
	sub.UpdatedAt = sub.CreatedAt
	copied := *sub
	m.subs[sub.ID] = &copied
	return nil
}

func (m *mockSubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	if sub, ok := m.subs[id]; ok {
		copied := *sub
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubmissionRepo) HasPending(ctx context.Context, userID, missionID string) (bool, error) {
	for _, sub := range m.subs {
		if sub.UserID == userID && sub.MissionID == missionID && sub.Status == models.SubmissionPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSubmissionRepo) CountCompleted(ctx context.Context, userID, missionID string) (int, error) {
	count := 0
	for _, sub := range m.subs {
		if sub.UserID == userID && sub.MissionID == missionID && sub.Status == models.SubmissionCompleted {
			count++
		}
	}
	return count, nil
}

func (m *mockSubmissionRepo) LatestCompletedAt(ctx context.Context, userID, missionID string) (*time.Time, error) {
	var latest *time.Time
	for _, sub := range m.subs {
		if sub.UserID == userID && sub.MissionID == missionID && sub.Status == models.SubmissionCompleted {
			if latest == nil || sub.UpdatedAt.After(*latest) {
				ts := sub.UpdatedAt
				latest = &ts
			}
		}
	}
	return latest, nil
}

func (m *mockSubmissionRepo) AttachPhoto(ctx context.Context, id, photoURL string, now time.Time) (*models.Submission, error) {
	sub, ok := m.subs[id]
	if !ok || sub.Status != models.SubmissionPending {
		return nil, sql.ErrNoRows
	}
	sub.PhotoURL = &photoURL
	sub.UpdatedAt = now
	copied := *sub
	return &copied, nil
}

func (m *mockSubmissionRepo) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error) {
	var result []models.Submission
	for _, sub := range m.subs {
		if filter.ClassID != "" && sub.ClassID != filter.ClassID {
			continue
		}
		if filter.UserID != "" && sub.UserID != filter.UserID {
			continue
		}
		result = append(result, *sub)
	}
	return result, len(result), nil
}

func (m *mockSubmissionRepo) Reject(ctx context.Context, id string, now time.Time) (*models.Submission, error) {
	sub, ok := m.subs[id]
	if !ok || sub.Status != models.SubmissionPending {
		return nil, sql.ErrNoRows
	}
	sub.Status = models.SubmissionRejected
	sub.UpdatedAt = now
	copied := *sub
	return &copied, nil
}

func (m *mockSubmissionRepo) ApproveWithReward(ctx context.Context, submissionID string, mission *models.Mission, eng reward.Engine, userName string) (*models.Submission, *models.Mascot, []models.Activity, error) {
	sub, ok := m.subs[submissionID]
	if !ok || sub.Status != models.SubmissionPending {
		return nil, nil, nil, sql.ErrNoRows
	}
	now := time.Now().UTC()
	sub.Status = models.SubmissionCompleted
	sub.UpdatedAt = now

	mascot := m.mascots[sub.ClassID]
	eng.ApplyDecay(mascot, now)
	outcome := eng.Apply(mascot, mission, sub.UserID, userName, now)
	m.feed = append(m.feed, outcome.Activities...)

	subCopy := *sub
	mascotCopy := *mascot
	return &subCopy, &mascotCopy, outcome.Activities, nil
}

type mockMissionReader struct {
	missions map[string]*models.Mission
}

func (m *mockMissionReader) FindByID(ctx context.Context, id string) (*models.Mission, error) {
	if mission, ok := m.missions[id]; ok {
		return mission, nil
	}
	return nil, sql.ErrNoRows
}

type mockClassReader struct {
	roles map[string]models.UserRole // key: classID + ":" + userID
}

func (m *mockClassReader) IsMember(ctx context.Context, classID, userID string) (bool, error) {
	_, ok := m.roles[classID+":"+userID]
	return ok, nil
}

func (m *mockClassReader) MemberRole(ctx context.Context, classID, userID string) (models.UserRole, error) {
	if role, ok := m.roles[classID+":"+userID]; ok {
		return role, nil
	}
	return "", sql.ErrNoRows
}

type mockUserReader struct {
	users map[string]*models.User
}

func (m *mockUserReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

type mockPhotoStore struct {
	saved   []string
	deleted []string
}

func (m *mockPhotoStore) SaveStream(filename string, r io.Reader) (string, error) {
	m.saved = append(m.saved, filename)
	return filename, nil
}

func (m *mockPhotoStore) Delete(filename string) error {
	m.deleted = append(m.deleted, filename)
	return nil
}

type submissionFixture struct {
	svc     *SubmissionService
	repo    *mockSubmissionRepo
	photos  *mockPhotoStore
	mission *models.Mission
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()

	mission := &models.Mission{
		ID:          "mission-1",
		SectorID:    "sector-1",
		ClassID:     "class-1",
		Title:       "Water the plants",
		XPReward:    120,
		CoinReward:  10,
		ThirstBoost: 20,
	}
	repo := newMockSubmissionRepo()
	now := time.Now().UTC()
	repo.mascots["class-1"] = &models.Mascot{ClassID: "class-1", Thirst: 50, Hunger: 80, Happiness: 80, Cleanliness: 80, Level: 1, LastDecayAt: now, UpdatedAt: now}

	missions := &mockMissionReader{missions: map[string]*models.Mission{mission.ID: mission}}
	classes := &mockClassReader{roles: map[string]models.UserRole{
		"class-1:student-1": models.RoleStudent,
		"class-1:student-2": models.RoleStudent,
		"class-1:teacher-1": models.RoleTeacher,
	}}
	users := &mockUserReader{users: map[string]*models.User{
		"student-1": {ID: "student-1", FullName: "Mia", Role: models.RoleStudent},
	}}
	photos := &mockPhotoStore{}

	eng := reward.NewEngine(reward.DecayRates{Thirst: 2, Hunger: 2, Happiness: 1, Cleanliness: 1}, time.Hour)
	svc := NewSubmissionService(repo, missions, classes, users, photos, nil, nil, eng, nil, nil)
	return &submissionFixture{svc: svc, repo: repo, photos: photos, mission: mission}
}

func TestAcceptCreatesPendingSubmission(t *testing.T) {
	f := newSubmissionFixture(t)

	sub, err := f.svc.Accept(context.Background(), "mission-1", "student-1")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionPending, sub.Status)
	assert.Equal(t, "class-1", sub.ClassID)
}

func TestAcceptRejectsSecondPending(t *testing.T) {
	f := newSubmissionFixture(t)

	_, err := f.svc.Accept(context.Background(), "mission-1", "student-1")
	require.NoError(t, err)

	_, err = f.svc.Accept(context.Background(), "mission-1", "student-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// a different student is unaffected
	_, err = f.svc.Accept(context.Background(), "mission-1", "student-2")
	assert.NoError(t, err)
}

func TestAcceptRequiresMembership(t *testing.T) {
	f := newSubmissionFixture(t)

	_, err := f.svc.Accept(context.Background(), "mission-1", "outsider")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAcceptUnknownMission(t *testing.T) {
	f := newSubmissionFixture(t)

	_, err := f.svc.Accept(context.Background(), "missing", "student-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAcceptEnforcesCompletionLimit(t *testing.T) {
	f := newSubmissionFixture(t)
	limit := 1
	f.mission.MaxCompletions = &limit

	sub, err := f.svc.Accept(context.Background(), "mission-1", "student-1")
	require.NoError(t, err)
	_, err = f.svc.Review(context.Background(), sub.ID, "teacher-1", ReviewRequest{Decision: models.DecisionApprove})
	require.NoError(t, err)

	_, err = f.svc.Accept(context.Background(), "mission-1", "student-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAcceptEnforcesCooldown(t *testing.T) {
	f := newSubmissionFixture(t)
	cooldown := 24
	f.mission.CooldownHours = &cooldown

	sub, err := f.svc.Accept(context.Background(), "mission-1", "student-1")
	require.NoError(t, err)
	_, err = f.svc.Review(context.Background(), sub.ID, "teacher-1", ReviewRequest{Decision: models.DecisionApprove})
	require.NoError(t, err)

	_, err = f.svc.Accept(context.Background(), "mission-1", "student-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// rejected history does not trip the cooldown
	sub2, err := f.svc.Accept(context.Background(), "mission-1", "student-2")
	require.NoError(t, err)
	_, err = f.svc.Review(context.Background(), sub2.ID, "teacher-1", ReviewRequest{Decision: models.DecisionReject})
	require.NoError(t, err)
	_, err = f.svc.Accept(context.Background(), "mission-1", "student-2")
	assert.NoError(t, err)
}

func TestReviewApproveRewardsMascot(t *testing.T) {
	f := newSubmissionFixture(t)

	sub, err := f.svc.Accept(context.Background(), "mission-1", "student-1")
	require.NoError(t, err)

	result, err := f.svc.Review(context.Background(), sub.ID, "teacher-1", ReviewRequest{Decision: models.DecisionApprove})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionCompleted, result.Submission.Status)
	assert.Equal(t, 70, result.Mascot.Thirst)
	assert.Equal(t, 120, result.Mascot.XP)
	assert.Equal(t, 10, result.Mascot.Coins)
	assert.Equal(t, 2, result.Mascot.Level)
	require.Len(t, result.Activities, 2)
	assert.Equal(t, models.ActivityMissionCompleted, result.Activities[0].Type)
	assert.Equal(t, models.ActivityLevelUp, result.Activities[1].Type)
	assert.Contains(t, result.Activities[0].Content, "Mia")
}

func TestReviewIsExactlyOnce(t *testing.T) {
	f := newSubmissionFixture(t)

	sub, err := f.svc.Accept(context.Background(), "mission-1", "student-1")
	require.NoError(t, err)

	_, err = f.svc.Review(context.Background(), sub.ID, "teacher-1", ReviewRequest{Decision: models.DecisionApprove})
	require.NoError(t, err)

	for _, decision := range []models.ReviewDecision{models.DecisionApprove, models.DecisionReject} {
		_, err = f.svc.Review(context.Background(), sub.ID, "teacher-1", ReviewRequest{Decision: decision})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	}

	// reward was applied exactly once
	assert.Equal(t, 120, f.repo.mascots["class-1"].XP)
}

func TestReviewRejectGrantsNothing(t *testing.T) {
	f := newSubmissionFixture(t)

	sub, err := f.svc.Accept(context.Background(), "mission-1", "student-1")
	require.NoError(t, err)

	result, err := f.svc.Review(context.Background(), sub.ID, "teacher-1", ReviewRequest{Decision: models.DecisionReject})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionRejected, result.Submission.Status)
	assert.Nil(t, result.Mascot)
	assert.Empty(t, result.Activities)
	assert.Equal(t, 0, f.repo.mascots["class-1"].XP)
	assert.Equal(t, 50, f.repo.mascots["class-1"].Thirst)
}

func TestReviewRequiresTeacher(t *testing.T) {
	f := newSubmissionFixture(t)

	sub, err := f.svc.Accept(context.Background(), "mission-1", "student-1")
	require.NoError(t, err)

	_, err = f.svc.Review(context.Background(), sub.ID, "student-2", ReviewRequest{Decision: models.DecisionApprove})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReviewRejectsBadDecision(t *testing.T) {
	f := newSubmissionFixture(t)

	_, err := f.svc.Review(context.Background(), "whatever", "teacher-1", ReviewRequest{Decision: "maybe"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttachPhotoOwnerOnly(t *testing.T) {
	f := newSubmissionFixture(t)

	sub, err := f.svc.Accept(context.Background(), "mission-1", "student-1")
	require.NoError(t, err)

	_, err = f.svc.AttachPhoto(context.Background(), sub.ID, "student-2", "proof.jpg", errReader{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	updated, err := f.svc.AttachPhoto(context.Background(), sub.ID, "student-1", "proof.jpg", errReader{})
	require.NoError(t, err)
	require.NotNil(t, updated.PhotoURL)
	assert.Equal(t, []string{"submissions/" + sub.ID + "/proof.jpg"}, f.photos.saved)
}

func TestAttachPhotoAfterReview(t *testing.T) {
	f := newSubmissionFixture(t)

	sub, err := f.svc.Accept(context.Background(), "mission-1", "student-1")
	require.NoError(t, err)
	_, err = f.svc.Review(context.Background(), sub.ID, "teacher-1", ReviewRequest{Decision: models.DecisionReject})
	require.NoError(t, err)

	_, err = f.svc.AttachPhoto(context.Background(), sub.ID, "student-1", "proof.jpg", errReader{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestListScopesStudentsToTheirOwn(t *testing.T) {
	f := newSubmissionFixture(t)

	_, err := f.svc.Accept(context.Background(), "mission-1", "student-1")
	require.NoError(t, err)
	_, err = f.svc.Accept(context.Background(), "mission-1", "student-2")
	require.NoError(t, err)

	subs, _, err := f.svc.List(context.Background(), "student-1", models.SubmissionFilter{ClassID: "class-1"})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "student-1", subs[0].UserID)

	subs, _, err = f.svc.List(context.Background(), "teacher-1", models.SubmissionFilter{ClassID: "class-1"})
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

// errReader is a stand-in body; the mock store never reads it.
type errReader struct{}

func (errReader) Read(p []byte) (int, error) { return 0, errors.New("not readable") }
