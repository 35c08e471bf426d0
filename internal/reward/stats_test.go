package reward

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-5))
	assert.Equal(t, 0, Clamp(0))
	assert.Equal(t, 42, Clamp(42))
	assert.Equal(t, 100, Clamp(100))
	assert.Equal(t, 100, Clamp(115))
}

func TestApplyBoostClampsAtMax(t *testing.T) {
	assert.Equal(t, 100, ApplyBoost(95, 20))
	assert.Equal(t, 70, ApplyBoost(50, 20))
	assert.Equal(t, 50, ApplyBoost(50, 0))
	// negative boosts are treated as zero, boosts only ever raise stats
	assert.Equal(t, 50, ApplyBoost(50, -10))
}

func TestDecayFloorsAtZero(t *testing.T) {
	// hunger 5, 2 points/hour, 10 hours elapsed
	assert.Equal(t, 0, Decay(5, 10, 2))
	assert.Equal(t, 30, Decay(50, 10, 2))
	assert.Equal(t, 50, Decay(50, 0, 2))
	assert.Equal(t, 50, Decay(50, 10, 0))
}

func TestDecayHugeElapsedDoesNotUnderflow(t *testing.T) {
	// decades of elapsed hours must not wrap around
	assert.Equal(t, 0, Decay(100, 1<<40, 1000))
	assert.Equal(t, 0, Decay(1, 1<<62, 1<<30))
	// A wrapped product would go negative here and raise the stat.
	assert.Equal(t, 0, Decay(50, 1<<62, 3))
	assert.Equal(t, 0, Decay(100, math.MaxInt64, math.MaxInt32))
}

func TestBoostDecaySequencesStayBounded(t *testing.T) {
	value := 50
	steps := []struct {
		boost   int
		elapsed int64
		rate    int
	}{
		{20, 0, 0}, {0, 5, 3}, {100, 0, 0}, {0, 1000, 7}, {33, 2, 1},
	}
	for _, s := range steps {
		value = ApplyBoost(value, s.boost)
		assert.GreaterOrEqual(t, value, StatMin)
		assert.LessOrEqual(t, value, StatMax)
		value = Decay(value, s.elapsed, s.rate)
		assert.GreaterOrEqual(t, value, StatMin)
		assert.LessOrEqual(t, value, StatMax)
	}
}
