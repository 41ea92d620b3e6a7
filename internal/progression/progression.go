// Package progression holds the experience and leveling rules. Every function
// is pure apart from mutating the category it is given.
package progression

import "taskquest/internal/model"

// XPPerLevel is the experience step between consecutive level thresholds.
const XPPerLevel = 5

// Result describes the outcome of one completion.
type Result struct {
	XPGained  int
	LeveledUp bool
	NewLevel  int
}

// ThresholdFor returns the cumulative xp needed to leave level.
func ThresholdFor(level int) int {
	return level * XPPerLevel
}

// ApplyCompletion awards one xp to cat and levels it up at most once.
// Un-completing a task never goes through here: reversal is free.
func ApplyCompletion(cat *model.Category) Result {
	cat.XP++
	res := Result{XPGained: 1, NewLevel: cat.Level}
	if cat.XP >= ThresholdFor(cat.Level) {
		cat.Level++
		res.LeveledUp = true
		res.NewLevel = cat.Level
	}
	return res
}

// Remaining returns how much xp is still missing before the next level.
func Remaining(cat model.Category) int {
	left := ThresholdFor(cat.Level) - cat.XP
	if left < 0 {
		return 0
	}
	return left
}
