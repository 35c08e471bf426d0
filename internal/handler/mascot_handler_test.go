package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gruenhof/schoolyard-api/internal/middleware"
	"github.com/gruenhof/schoolyard-api/internal/models"
	"github.com/gruenhof/schoolyard-api/internal/reward"
	"github.com/gruenhof/schoolyard-api/internal/service"
)

type fakeMascotRepo struct {
	mascot *models.Mascot
}

func (f *fakeMascotRepo) Get(ctx context.Context, classID string) (*models.Mascot, error) {
	if f.mascot == nil || f.mascot.ClassID != classID {
		return nil, sql.ErrNoRows
	}
	return f.mascot, nil
}

func (f *fakeMascotRepo) GetRefreshed(ctx context.Context, classID string, eng reward.Engine, now time.Time) (*models.Mascot, error) {
	if f.mascot == nil || f.mascot.ClassID != classID {
		return nil, sql.ErrNoRows
	}
	eng.ApplyDecay(f.mascot, now)
	return f.mascot, nil
}

type fakeMembership struct {
	members map[string]bool
}

func (f *fakeMembership) IsMember(ctx context.Context, classID, userID string) (bool, error) {
	return f.members[classID+":"+userID], nil
}

func newMascotHandler() *MascotHandler {
	repo := &fakeMascotRepo{mascot: &models.Mascot{
		ClassID: "class-1", Thirst: 80, Hunger: 80, Happiness: 80, Cleanliness: 80,
		Level: 1, LastDecayAt: time.Now().UTC(),
	}}
	classes := &fakeMembership{members: map[string]bool{"class-1:student-1": true}}
	eng := reward.NewEngine(reward.DecayRates{Thirst: 2, Hunger: 2, Happiness: 1, Cleanliness: 1}, time.Hour)
	return NewMascotHandler(service.NewMascotService(repo, classes, eng, nil))
}

func TestMascotHandlerRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newMascotHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/classes/class-1/mascot", nil)
	c.Params = gin.Params{{Key: "id", Value: "class-1"}}

	h.Get(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMascotHandlerReturnsMascot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newMascotHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/classes/class-1/mascot", nil)
	c.Params = gin.Params{{Key: "id", Value: "class-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})

	h.Get(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.Mascot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "class-1", envelope.Data.ClassID)
	assert.Equal(t, 80, envelope.Data.Thirst)
	assert.Equal(t, 1, envelope.Data.Level)
}

func TestMascotHandlerForbidsNonMembers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newMascotHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/classes/class-1/mascot", nil)
	c.Params = gin.Params{{Key: "id", Value: "class-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "outsider", Role: models.RoleStudent})

	h.Get(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
