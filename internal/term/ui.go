// Package term is the terminal front end: a tcell screen that plays the
// tracking catch game against a local save.
package term

import (
	"context"
	"fmt"
	"log"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/faideww/fishon/internal/catch"
	"github.com/faideww/fishon/internal/clock"
	"github.com/faideww/fishon/internal/economy"
	"github.com/faideww/fishon/internal/energy"
	"github.com/gdamore/tcell/v2"
)

const (
	frameRate   = 50 * time.Millisecond
	statusTTL   = 3 * time.Second
	debugTokens = 1000
)

// Canvas is the part of tcell.Screen the UI draws on.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

type Options struct {
	Cues   Cues
	Debug  bool
	Clock  clock.Clock
	Rng    *mrand.Rand
	Logger *log.Logger
}

type UI struct {
	eco    *economy.Store
	runner *catch.Runner
	sched  *energy.Scheduler
	cues   Cues
	debug  bool
	clk    clock.Clock
	log    *log.Logger

	mu       sync.Mutex
	view     catch.View
	status   string
	statusAt time.Time
}

// New wires a catch machine and energy scheduler to eco. Level-up cues need
// the economy to have been opened with OnLevelUp calling UI.LevelUp.
func New(eco *economy.Store, opts Options) *UI {
	u := &UI{
		eco:   eco,
		cues:  opts.Cues,
		debug: opts.Debug,
		clk:   clock.OrReal(opts.Clock),
		log:   opts.Logger,
	}
	if u.cues == nil {
		u.cues = silent{}
	}
	if u.log == nil {
		u.log = log.Default()
	}

	m := catch.New(eco, catch.DefaultConfig(), opts.Rng)
	m.OnOutcome = u.onOutcome
	u.runner = catch.NewRunner(m, u.clk, u.setView)
	u.sched = energy.NewScheduler("local", eco, u.log)
	u.sched.OnRefill = func(added int) {
		u.notify(fmt.Sprintf("+%d energy", added))
	}
	return u
}

func (u *UI) setView(v catch.View) {
	u.mu.Lock()
	u.view = v
	u.mu.Unlock()
}

func (u *UI) currentView() catch.View {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.view
}

func (u *UI) notify(msg string) {
	u.mu.Lock()
	u.status = msg
	u.statusAt = u.clk.Now()
	u.mu.Unlock()
}

func (u *UI) statusLine() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.status == "" || u.clk.Now().Sub(u.statusAt) > statusTTL {
		return ""
	}
	return u.status
}

// onOutcome runs on the runner goroutine.
func (u *UI) onOutcome(o catch.Outcome) {
	if o.Success {
		u.cues.Success()
		u.notify(fmt.Sprintf("Caught %s %s! +%d tokens, +%d XP", o.Fish.Glyph, o.Fish.Name, o.Fish.Tokens, o.Fish.XP))
		return
	}
	u.cues.Failure()
	u.notify("The fish " + o.Reason + ". -1 energy")
}

// LevelUp is meant for economy.Options.OnLevelUp.
func (u *UI) LevelUp(from, to int) {
	u.cues.LevelUp()
	u.notify(fmt.Sprintf("Level up! %d → %d", from, to))
}

// Start launches the catch runner and the energy scheduler.
func (u *UI) Start(ctx context.Context) {
	u.runner.Start(ctx)
	u.sched.Start(ctx)
}

func (u *UI) Stop() {
	u.runner.Stop()
	u.sched.Stop()
}

// Run owns screen until the player quits or ctx ends. The screen must
// already be initialised; Run does not call Fini.
func (u *UI) Run(ctx context.Context, screen tcell.Screen) {
	u.Start(ctx)
	defer u.Stop()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(frameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !u.apply(actionFor(ev.Key(), ev.Rune())) {
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
		}
		screen.Clear()
		u.Draw(screen)
		screen.Show()
	}
}
