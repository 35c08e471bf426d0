package reward

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gruenhof/schoolyard-api/internal/models"
)

// Engine applies decay and mission rewards to a mascot. It is the only
// component allowed to mutate mascot stats, xp, coins and level.
type Engine struct {
	rates            DecayRates
	minDecayInterval time.Duration
}

// NewEngine constructs an engine with the given decay configuration.
func NewEngine(rates DecayRates, minDecayInterval time.Duration) Engine {
	if minDecayInterval <= 0 {
		minDecayInterval = time.Hour
	}
	return Engine{rates: rates, minDecayInterval: minDecayInterval}
}

// ApplyDecay recomputes the mascot's stats from the time elapsed since the
// last decay checkpoint. It returns true when any field changed. Elapsed
// time below the minimum interval (or below one full hour) is left to
// accumulate for a later read.
func (e Engine) ApplyDecay(m *models.Mascot, now time.Time) bool {
	if m.LastDecayAt.IsZero() {
		m.LastDecayAt = now
		return true
	}
	elapsed := now.Sub(m.LastDecayAt)
	if elapsed < e.minDecayInterval {
		return false
	}
	hours := int64(elapsed / time.Hour)
	if hours <= 0 {
		return false
	}

	m.Thirst = Decay(m.Thirst, hours, e.rates.Thirst)
	m.Hunger = Decay(m.Hunger, hours, e.rates.Hunger)
	m.Happiness = Decay(m.Happiness, hours, e.rates.Happiness)
	m.Cleanliness = Decay(m.Cleanliness, hours, e.rates.Cleanliness)
	m.LastDecayAt = now
	m.UpdatedAt = now
	return true
}

// Outcome captures the result of applying a mission reward.
type Outcome struct {
	OldLevel   int
	NewLevel   int
	LeveledUp  bool
	Activities []models.Activity
}

// Apply mutates the mascot with the mission's boosts, xp and coins,
// recomputes the level and returns the activity feed entries to persist.
// Callers must run ApplyDecay first and persist the mascot together with
// the submission transition in one transaction.
func (e Engine) Apply(m *models.Mascot, mission *models.Mission, userID, userName string, now time.Time) Outcome {
	oldLevel := m.Level

	m.Thirst = ApplyBoost(m.Thirst, mission.ThirstBoost)
	m.Hunger = ApplyBoost(m.Hunger, mission.HungerBoost)
	m.Happiness = ApplyBoost(m.Happiness, mission.HappinessBoost)
	m.Cleanliness = ApplyBoost(m.Cleanliness, mission.CleanlinessBoost)

	m.XP += mission.XPReward
	m.Coins += mission.CoinReward

	newLevel := LevelForXP(m.XP)
	if newLevel < oldLevel {
		// levels never decrease; xp corrections must not demote the mascot
		newLevel = oldLevel
	}
	m.Level = newLevel
	m.UpdatedAt = now

	activities := []models.Activity{
		{
			ID:        uuid.NewString(),
			ClassID:   m.ClassID,
			UserID:    userID,
			Type:      models.ActivityMissionCompleted,
			Content:   fmt.Sprintf("%s completed the mission %q", userName, mission.Title),
			CreatedAt: now,
		},
	}
	leveled := LeveledUp(oldLevel, newLevel)
	if leveled {
		activities = append(activities, models.Activity{
			ID:        uuid.NewString(),
			ClassID:   m.ClassID,
			UserID:    userID,
			Type:      models.ActivityLevelUp,
			Content:   fmt.Sprintf("The class mascot reached level %d", newLevel),
			CreatedAt: now,
		})
	}

	return Outcome{
		OldLevel:   oldLevel,
		NewLevel:   newLevel,
		LeveledUp:  leveled,
		Activities: activities,
	}
}
