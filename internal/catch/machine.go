// Package catch implements the real-time catch mini-game: a short-lived
// state machine per attempt that races a moving fish against player input
// and resolves to exactly one success or failure.
package catch

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand"
	"time"

	"github.com/faideww/fishon/internal/economy"
	"github.com/faideww/fishon/internal/fish"
)

type State int

const (
	Idle State = iota
	Unavailable
	Casting
	Waiting
	Engaging
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Unavailable:
		return "unavailable"
	case Casting:
		return "casting"
	case Waiting:
		return "waiting"
	case Engaging:
		return "engaging"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "idle"
	}
}

type Direction int

const (
	Up Direction = iota
	Down
)

// Economy is what the machine needs from the player's state. The economy
// is consulted at the moment of each decision, never cached.
type Economy interface {
	CanSpendEnergy() bool
	Level() int
	TargetBonus() float64
	DrawLoot() fish.FishType
	ApplyCatch(f fish.FishType) economy.CatchResult
	SpendEnergy() bool
}

// Outcome describes a resolved attempt.
type Outcome struct {
	Success bool
	Fish    fish.FishType
	Result  economy.CatchResult // zero on failure
	Reason  string
}

// attempt is the per-cast state. resolved is the single guard every path
// checks before it may declare an outcome.
type attempt struct {
	fish     fish.FishType
	resolved bool

	fishPos  float64
	fishDir  float64
	speed    float64
	catcher  float64
	progress float64
	zone     float64 // tracking radius

	windowCenter float64
	windowWidth  float64
}

// Machine is not safe for concurrent use; Runner gives it a single owner.
type Machine struct {
	cfg    Config
	eco    Economy
	rng    *mrand.Rand
	state  State
	timers timerSet
	att    *attempt
	last   *Outcome

	// OnOutcome runs once per resolved attempt.
	OnOutcome func(Outcome)
}

func New(eco Economy, cfg Config, rng *mrand.Rand) *Machine {
	if rng == nil {
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			rng = mrand.New(mrand.NewSource(time.Now().UnixNano()))
		} else {
			rng = mrand.New(mrand.NewSource(int64(binary.LittleEndian.Uint64(b[:]))))
		}
	}
	m := &Machine{cfg: cfg, eco: eco, rng: rng}
	m.syncAvailability()
	return m
}

func (m *Machine) State() State { return m.state }

func (m *Machine) Mode() Mode { return m.cfg.Mode }

// ActiveTimers counts pending dwell and motion timers.
func (m *Machine) ActiveTimers() int { return m.timers.len() }

// Advance fires every timer due by now and then re-checks whether an idle
// machine can cast.
func (m *Machine) Advance(now time.Time) {
	m.timers.advance(now)
	m.syncAvailability()
}

func (m *Machine) syncAvailability() {
	switch m.state {
	case Idle:
		if !m.eco.CanSpendEnergy() {
			m.state = Unavailable
		}
	case Unavailable:
		if m.eco.CanSpendEnergy() {
			m.state = Idle
		}
	}
}

// Start casts a line. It only succeeds from Idle with energy to spend.
func (m *Machine) Start(now time.Time) bool {
	m.Advance(now)
	if m.state != Idle {
		return false
	}

	m.att = &attempt{}
	m.state = Casting
	m.timers.after(now, m.cfg.CastDwell, m.beginWaiting)
	return true
}

func (m *Machine) beginWaiting(at time.Time) {
	m.state = Waiting
	wait := m.cfg.WaitMin
	if m.cfg.WaitSpread > 0 {
		wait += time.Duration(m.rng.Int63n(int64(m.cfg.WaitSpread)))
	}
	m.timers.after(at, wait, m.engage)
}

// engage draws the fish for this attempt and starts the engaging timers.
func (m *Machine) engage(at time.Time) {
	a := m.att
	a.fish = m.eco.DrawLoot()
	level := float64(m.eco.Level())
	widen := 1 + m.eco.TargetBonus()/100

	m.state = Engaging

	switch m.cfg.Mode {
	case TimedWindow:
		a.fishPos = 0
		a.fishDir = 1
		a.speed = m.cfg.SweepSpeed + level*m.cfg.SweepSpeedPerLevel
		a.windowWidth = math.Max(m.cfg.WindowMinWidth, m.cfg.WindowWidth*widen-level*m.cfg.WindowPerLevel)
		a.windowCenter = m.cfg.WindowCenterMin + m.rng.Float64()*(m.cfg.WindowCenterMax-m.cfg.WindowCenterMin)
		m.timers.every(at, m.cfg.Tick, m.sweep)

	default:
		a.fishPos = 50
		a.catcher = 50
		a.progress = m.cfg.ProgressStart
		a.zone = m.cfg.ZoneRadius * widen
		a.speed = m.cfg.FishSpeed + level*m.cfg.FishSpeedPerLevel
		a.fishDir = 1
		if m.rng.Float64() > 0.5 {
			a.fishDir = -1
		}
		m.timers.every(at, m.cfg.Tick, m.swim)
		m.timers.every(at, m.cfg.Tick, m.checkProgress)
	}

	if m.cfg.EngageLimit > 0 {
		m.timers.after(at, m.cfg.EngageLimit, func(at time.Time) {
			m.resolve(at, false, "the line snapped")
		})
	}
}

// swim moves the fish erratically, bouncing off the track bounds.
func (m *Machine) swim(time.Time) {
	a := m.att
	if a == nil || a.resolved {
		return
	}
	if m.rng.Float64() < m.cfg.TurnChance {
		a.fishDir = -a.fishDir
	}
	pos := a.fishPos + a.fishDir*a.speed*(0.5+m.rng.Float64())
	if pos < m.cfg.FishMin {
		pos = m.cfg.FishMin
		a.fishDir = 1
	}
	if pos > m.cfg.FishMax {
		pos = m.cfg.FishMax
		a.fishDir = -1
	}
	a.fishPos = pos
}

func (m *Machine) checkProgress(at time.Time) {
	a := m.att
	if a == nil || a.resolved {
		return
	}
	if math.Abs(a.fishPos-a.catcher) <= a.zone {
		a.progress += m.cfg.ProgressGain
	} else {
		a.progress -= m.cfg.ProgressLoss
	}
	a.progress = clamp(a.progress, 0, 100)

	switch {
	case a.progress >= 100:
		m.resolve(at, true, "")
	case a.progress <= 0:
		m.resolve(at, false, "got away")
	}
}

// sweep moves the timed-window indicator back and forth over the track.
func (m *Machine) sweep(time.Time) {
	a := m.att
	if a == nil || a.resolved {
		return
	}
	pos := a.fishPos + a.fishDir*a.speed
	if pos >= 100 {
		pos = 200 - pos
		a.fishDir = -1
	}
	if pos <= 0 {
		pos = -pos
		a.fishDir = 1
	}
	a.fishPos = clamp(pos, 0, 100)
}

// Move shifts the catcher zone while engaging in tracking mode.
func (m *Machine) Move(dir Direction) bool {
	if m.state != Engaging || m.cfg.Mode != Tracking {
		return false
	}
	step := m.cfg.CatcherStep
	if dir == Up {
		step = -step
	}
	m.att.catcher = clamp(m.att.catcher+step, m.cfg.CatcherMin, m.cfg.CatcherMax)
	return true
}

// SetCatcher places the catcher zone directly, as a pointer would.
func (m *Machine) SetCatcher(pos float64) bool {
	if m.state != Engaging || m.cfg.Mode != Tracking {
		return false
	}
	m.att.catcher = clamp(pos, m.cfg.CatcherMin, m.cfg.CatcherMax)
	return true
}

// Commit makes the single timed-window attempt. Timers are first brought up
// to now so the indicator is where the player saw it. Returns false when
// there was nothing to commit to.
func (m *Machine) Commit(now time.Time) bool {
	if m.state != Engaging || m.cfg.Mode != TimedWindow {
		return false
	}
	m.timers.advance(now)
	if m.state != Engaging {
		return false
	}
	a := m.att
	if inWindow(a.fishPos, a.windowCenter, a.windowWidth) {
		m.resolve(now, true, "")
	} else {
		m.resolve(now, false, "missed the window")
	}
	return true
}

// inWindow treats the window edges as inside.
func inWindow(pos, center, width float64) bool {
	return math.Abs(pos-center) <= width/2
}

// resolve ends the attempt exactly once. Entering a terminal state cancels
// every attempt timer before the economy is touched.
func (m *Machine) resolve(at time.Time, success bool, reason string) {
	a := m.att
	if a == nil || a.resolved {
		return
	}
	a.resolved = true
	m.timers.cancelAll()

	out := Outcome{Success: success, Fish: a.fish, Reason: reason}
	dwell := m.cfg.FailureDwell
	if success {
		m.state = Success
		out.Result = m.eco.ApplyCatch(a.fish)
		dwell = m.cfg.SuccessDwell
	} else {
		m.state = Failure
		m.eco.SpendEnergy()
	}
	m.last = &out

	m.timers.after(at, dwell, m.finish)
	if m.OnOutcome != nil {
		m.OnOutcome(out)
	}
}

func (m *Machine) finish(time.Time) {
	m.att = nil
	m.state = Idle
	m.syncAvailability()
}

// Teardown cancels every timer and drops any attempt in flight without
// resolving it.
func (m *Machine) Teardown() {
	m.timers.cancelAll()
	if m.att != nil {
		m.att.resolved = true
		m.att = nil
	}
	m.state = Idle
	m.syncAvailability()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
