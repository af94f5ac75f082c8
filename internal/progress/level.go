// Package progress turns experience into levels and XP-bar progress.
package progress

// Thresholds holds the XP needed to reach each level; level i+1 starts at
// Thresholds[i].
var Thresholds = [...]int{0, 100, 350, 850, 1850, 3500, 6000, 10000, 16000, 25000}

// MaxLevel is the top tier.
const MaxLevel = len(Thresholds)

// LevelFromXP returns the largest i+1 with xp >= Thresholds[i], or 1 below
// the first threshold.
func LevelFromXP(xp int) int {
	for i := len(Thresholds) - 1; i >= 0; i-- {
		if xp >= Thresholds[i] {
			return i + 1
		}
	}
	return 1
}

type Progress struct {
	Current    int     `json:"current"`
	Required   int     `json:"required"`
	Percentage float64 `json:"percentage"`
}

// For reports how far xp has advanced through its current level. The top
// tier keeps the span of the last threshold pair as its requirement but
// always shows a full bar, since no level follows it.
func For(xp int) Progress {
	level := LevelFromXP(xp)
	floor := Thresholds[level-1]
	current := xp - floor

	if level >= MaxLevel {
		required := Thresholds[MaxLevel-1] - Thresholds[MaxLevel-2]
		return Progress{Current: current, Required: required, Percentage: 100}
	}

	required := Thresholds[level] - floor
	pct := 0.0
	if required > 0 {
		pct = float64(current) / float64(required) * 100
	}
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return Progress{Current: current, Required: required, Percentage: pct}
}
