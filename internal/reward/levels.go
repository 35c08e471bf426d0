package reward

// levelThresholds lists the cumulative XP required for each level, index 0
// being level 1. The table is static configuration and strictly ascending.
var levelThresholds = []int{
	0,    // level 1
	100,  // level 2
	250,  // level 3
	450,  // level 4
	700,  // level 5
	1000, // level 6
	1350, // level 7
	1750, // level 8
	2200, // level 9
	2700, // level 10
}

// MaxLevel is the highest level the table defines.
var MaxLevel = len(levelThresholds)

// LevelForXP returns the highest level whose threshold does not exceed the
// given cumulative XP. XP beyond the last threshold caps at MaxLevel.
func LevelForXP(xp int) int {
	for i := len(levelThresholds) - 1; i >= 0; i-- {
		if xp >= levelThresholds[i] {
			return i + 1
		}
	}
	return 1
}

// LeveledUp reports whether the level increased.
func LeveledUp(oldLevel, newLevel int) bool {
	return newLevel > oldLevel
}
