package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(99))
	assert.Equal(t, 2, LevelForXP(100))
	assert.Equal(t, 2, LevelForXP(120))
	assert.Equal(t, 3, LevelForXP(250))
	assert.Equal(t, MaxLevel, LevelForXP(2700))
}

func TestLevelForXPCapsAtMaxLevel(t *testing.T) {
	assert.Equal(t, MaxLevel, LevelForXP(1_000_000))
}

func TestLevelForXPNegativeXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(-50))
}

func TestLevelForXPMonotonic(t *testing.T) {
	prev := LevelForXP(0)
	for xp := 1; xp <= 3000; xp++ {
		level := LevelForXP(xp)
		assert.GreaterOrEqual(t, level, prev, "xp %d", xp)
		prev = level
	}
}

func TestLeveledUp(t *testing.T) {
	assert.True(t, LeveledUp(1, 2))
	assert.False(t, LeveledUp(2, 2))
	assert.False(t, LeveledUp(3, 2))
}
