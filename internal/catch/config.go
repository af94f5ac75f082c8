package catch

import "time"

// Mode selects how an engaged fish is won or lost.
type Mode int

const (
	// Tracking keeps a catcher zone over a wandering fish until the
	// progress bar fills or empties.
	Tracking Mode = iota
	// TimedWindow resolves on a single commit against a sweeping indicator.
	TimedWindow
)

func (m Mode) String() string {
	if m == TimedWindow {
		return "timed-window"
	}
	return "tracking"
}

// Config holds the mini-game tuning. Positions are percentages of the track.
type Config struct {
	Mode Mode

	Tick         time.Duration // engaging timer period
	CastDwell    time.Duration
	WaitMin      time.Duration
	WaitSpread   time.Duration // waiting lasts WaitMin + U[0,WaitSpread)
	SuccessDwell time.Duration
	FailureDwell time.Duration
	EngageLimit  time.Duration // zero lets an engagement run until resolved

	// tracking
	ZoneRadius        float64
	ProgressStart     float64
	ProgressGain      float64
	ProgressLoss      float64
	CatcherStep       float64
	CatcherMin        float64
	CatcherMax        float64
	FishMin           float64
	FishMax           float64
	FishSpeed         float64
	FishSpeedPerLevel float64
	TurnChance        float64

	// timed window
	SweepSpeed         float64
	SweepSpeedPerLevel float64
	WindowWidth        float64
	WindowPerLevel     float64 // width lost per level
	WindowMinWidth     float64
	WindowCenterMin    float64
	WindowCenterMax    float64
}

func DefaultConfig() Config {
	return Config{
		Mode:         Tracking,
		Tick:         50 * time.Millisecond,
		CastDwell:    500 * time.Millisecond,
		WaitMin:      1 * time.Second,
		WaitSpread:   2 * time.Second,
		SuccessDwell: 2 * time.Second,
		FailureDwell: 1500 * time.Millisecond,

		ZoneRadius:        15,
		ProgressStart:     50,
		ProgressGain:      1.5,
		ProgressLoss:      2,
		CatcherStep:       8,
		CatcherMin:        5,
		CatcherMax:        95,
		FishMin:           10,
		FishMax:           90,
		FishSpeed:         1.5,
		FishSpeedPerLevel: 0.1,
		TurnChance:        0.05,

		SweepSpeed:         2,
		SweepSpeedPerLevel: 0.2,
		WindowWidth:        16,
		WindowPerLevel:     0.5,
		WindowMinWidth:     6,
		WindowCenterMin:    25,
		WindowCenterMax:    75,
	}
}
