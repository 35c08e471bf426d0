package reward

// Stat bounds for every mascot stat.
const (
	StatMin = 0
	StatMax = 100
)

// Clamp constrains a stat value to [StatMin, StatMax].
func Clamp(value int) int {
	if value < StatMin {
		return StatMin
	}
	if value > StatMax {
		return StatMax
	}
	return value
}

// ApplyBoost adds a mission boost to the current stat value, clamped.
func ApplyBoost(current, boost int) int {
	if boost < 0 {
		boost = 0
	}
	return Clamp(current + boost)
}

// Decay reduces a stat by elapsedHours * ratePerHour, floored at zero.
// The loss is computed in 64-bit so arbitrarily large elapsed intervals
// cannot underflow.
func Decay(current int, elapsedHours int64, ratePerHour int) int {
	if elapsedHours <= 0 || ratePerHour <= 0 {
		return Clamp(current)
	}
	// Saturate before multiplying: StatMax/rate hours already drain any
	// stat, and the product could wrap for larger intervals.
	if elapsedHours > int64(StatMax)/int64(ratePerHour) {
		return StatMin
	}
	loss := elapsedHours * int64(ratePerHour)
	if loss >= int64(current) {
		return StatMin
	}
	return Clamp(current - int(loss))
}

// DecayRates holds per-stat decay rates in points per hour.
type DecayRates struct {
	Thirst      int
	Hunger      int
	Happiness   int
	Cleanliness int
}
