package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gruenhof/schoolyard-api/internal/models"
	"github.com/gruenhof/schoolyard-api/internal/reward"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func testRewardEngine() reward.Engine {
	return reward.NewEngine(reward.DecayRates{Thirst: 2, Hunger: 2, Happiness: 1, Cleanliness: 1}, time.Hour)
}

func submissionRows(now time.Time, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "mission_id", "user_id", "class_id", "photo_url", "status", "created_at", "updated_at"}).
		AddRow("sub-1", "mission-1", "user-1", "class-1", nil, status, now, now)
}

func mascotRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"class_id", "thirst", "hunger", "happiness", "cleanliness", "level", "xp", "coins",
		"equipped_hat", "equipped_accessory", "equipped_color", "last_decay_at", "updated_at"}).
		AddRow("class-1", 50, 80, 80, 80, 1, 0, 0, nil, nil, nil, now, now)
}

func TestCreateSubmission(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("INSERT INTO submissions").WillReturnResult(sqlmock.NewResult(1, 1))

	sub := &models.Submission{MissionID: "mission-1", UserID: "user-1", ClassID: "class-1"}
	err := repo.Create(context.Background(), sub)
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, models.SubmissionPending, sub.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM submissions WHERE user_id = \$1 AND mission_id = \$2 AND status = 'PENDING'`).
		WithArgs("user-1", "mission-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	pending, err := repo.HasPending(context.Background(), "user-1", "mission-1")
	require.NoError(t, err)
	assert.True(t, pending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveWithRewardCommitsAsOneUnit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE submissions SET status = 'COMPLETED'").
		WillReturnRows(submissionRows(now, "COMPLETED"))
	mock.ExpectQuery("SELECT (.+) FROM mascots WHERE class_id = \\$1 FOR UPDATE").
		WithArgs("class-1").
		WillReturnRows(mascotRows(now))
	mock.ExpectExec("UPDATE mascots SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activities").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO activities").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mission := &models.Mission{ID: "mission-1", ClassID: "class-1", Title: "Water the plants", ThirstBoost: 20, XPReward: 120, CoinReward: 10}
	sub, mascot, activities, err := repo.ApproveWithReward(context.Background(), "sub-1", mission, testRewardEngine(), "Mia")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionCompleted, sub.Status)
	assert.Equal(t, 70, mascot.Thirst)
	assert.Equal(t, 120, mascot.XP)
	assert.Equal(t, 10, mascot.Coins)
	assert.Equal(t, 2, mascot.Level)
	assert.Len(t, activities, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveWithRewardAlreadyTerminalRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE submissions SET status = 'COMPLETED'").
		WillReturnRows(sqlmock.NewRows([]string{"id", "mission_id", "user_id", "class_id", "photo_url", "status", "created_at", "updated_at"}))
	mock.ExpectRollback()

	mission := &models.Mission{ID: "mission-1", ClassID: "class-1", Title: "t"}
	_, _, _, err := repo.ApproveWithReward(context.Background(), "sub-1", mission, testRewardEngine(), "Mia")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveWithRewardMascotFailureRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE submissions SET status = 'COMPLETED'").
		WillReturnRows(submissionRows(now, "COMPLETED"))
	mock.ExpectQuery("SELECT (.+) FROM mascots WHERE class_id = \\$1 FOR UPDATE").
		WillReturnRows(mascotRows(now))
	mock.ExpectExec("UPDATE mascots SET").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	mission := &models.Mission{ID: "mission-1", ClassID: "class-1", Title: "t", XPReward: 10}
	_, _, _, err := repo.ApproveWithReward(context.Background(), "sub-1", mission, testRewardEngine(), "Mia")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectRequiresPendingState(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectQuery("UPDATE submissions SET status = 'REJECTED'").
		WillReturnRows(sqlmock.NewRows([]string{"id", "mission_id", "user_id", "class_id", "photo_url", "status", "created_at", "updated_at"}))

	_, err := repo.Reject(context.Background(), "sub-1", time.Now().UTC())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachPhotoOnlyWhilePending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "mission_id", "user_id", "class_id", "photo_url", "status", "created_at", "updated_at"}).
		AddRow("sub-1", "mission-1", "user-1", "class-1", "submissions/sub-1/a.jpg", "PENDING", now, now)
	mock.ExpectQuery("UPDATE submissions SET photo_url").
		WillReturnRows(rows)

	sub, err := repo.AttachPhoto(context.Background(), "sub-1", "submissions/sub-1/a.jpg", now)
	require.NoError(t, err)
	require.NotNil(t, sub.PhotoURL)
	assert.Equal(t, "submissions/sub-1/a.jpg", *sub.PhotoURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}
