package leveling

import "math"

// XPPerLevelStep scales the level curve: reaching level n takes 100*(n-1)^2 XP.
const XPPerLevelStep = 100

// LevelForXP returns the level a user with xp points has reached. Levels start at 1.
func LevelForXP(xp int64) int {
	if xp < XPPerLevelStep {
		return 1
	}
	l := int(math.Sqrt(float64(xp) / XPPerLevelStep))
	// correct float rounding around perfect squares
	for int64(l+1)*int64(l+1)*XPPerLevelStep <= xp {
		l++
	}
	for l > 0 && int64(l)*int64(l)*XPPerLevelStep > xp {
		l--
	}
	return l + 1
}

// XPForLevel is the minimum XP needed for level.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return n * n * XPPerLevelStep
}
