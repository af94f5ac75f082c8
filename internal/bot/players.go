package bot

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/faideww/fishon/internal/catch"
	"github.com/faideww/fishon/internal/clock"
	"github.com/faideww/fishon/internal/economy"
	"github.com/faideww/fishon/internal/energy"
	"github.com/faideww/fishon/internal/fish"
	"github.com/faideww/fishon/internal/store"
)

const (
	// engageLimit bounds how long a bite waits for the Reel button.
	engageLimit = 45 * time.Second
	// idleAfter is how long a game with no line out stays loaded after its
	// player's last command.
	idleAfter = 30 * time.Minute
)

// botConfig tunes the timed window for a message that is only re-rendered
// every editInterval. The indicator has to stay inside the window for longer
// than one edit plus the round trip of a button press, at every level.
func botConfig() catch.Config {
	cfg := catch.DefaultConfig()
	cfg.Mode = catch.TimedWindow
	cfg.EngageLimit = engageLimit
	cfg.Tick = 250 * time.Millisecond
	cfg.SweepSpeed = 0.4
	cfg.SweepSpeedPerLevel = 0.04
	cfg.WindowWidth = 24
	cfg.WindowPerLevel = 0.5
	cfg.WindowMinWidth = 14
	cfg.WindowCenterMin = 20
	cfg.WindowCenterMax = 45
	return cfg
}

// player is one Discord user's game: their economy, the catch runner that
// plays /fish, and the scheduler that refills their energy.
type player struct {
	id     string
	eco    *economy.Store
	runner *catch.Runner
	sched  *energy.Scheduler

	views  chan catch.View
	cancel context.CancelFunc
	seen   time.Time // guarded by players.mu

	mu   sync.Mutex
	msg  *discordgo.Interaction // message edited as the attempt progresses
	name string
}

// busy reports whether an attempt is in flight.
func (p *player) busy() bool {
	switch p.runner.View().State {
	case catch.Idle, catch.Unavailable:
		return false
	}
	return true
}

// reset wipes the save unless a line is out; an attempt still resolving
// would otherwise land on the fresh save.
func (p *player) reset() bool {
	if p.busy() {
		return false
	}
	p.eco.ResetAll()
	return true
}

func (p *player) stop() {
	p.runner.Stop()
	p.sched.Stop()
	p.cancel()
}

// offer hands v to the relay without blocking the runner, replacing any view
// the relay has not picked up yet.
func (p *player) offer(v catch.View) {
	select {
	case p.views <- v:
		return
	default:
	}
	select {
	case <-p.views:
	default:
	}
	select {
	case p.views <- v:
	default:
	}
}

func (p *player) setMessage(msg *discordgo.Interaction, name string) {
	p.mu.Lock()
	p.msg = msg
	p.name = name
	p.mu.Unlock()
}

func (p *player) message() (*discordgo.Interaction, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.msg, p.name
}

// players lazily opens one game per user. Games idle for longer than
// idleAfter are unloaded by evictIdle and reopened from the store on the next
// command.
type players struct {
	ctx    context.Context
	reg    *fish.Registry
	picker *fish.Picker
	kv     store.Store
	clk    clock.Clock
	log    *log.Logger
	cfg    catch.Config

	// relay renders views for a player; set by the module.
	relay func(ctx context.Context, p *player)

	mu     sync.Mutex
	byUser map[string]*player
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func newPlayers(ctx context.Context, reg *fish.Registry, kv store.Store, logger *log.Logger) *players {
	ctx, cancel := context.WithCancel(ctx)
	return &players{
		ctx:    ctx,
		reg:    reg,
		picker: fish.NewPicker(reg, nil),
		kv:     kv,
		clk:    clock.Real{},
		log:    logger,
		cfg:    botConfig(),
		byUser: make(map[string]*player),
		cancel: cancel,
	}
}

func (ps *players) get(userId string) (*player, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	now := ps.clk.Now()
	if p, ok := ps.byUser[userId]; ok {
		p.seen = now
		return p, nil
	}

	eco, err := economy.Open(ps.ctx, economy.Options{
		Registry: ps.reg,
		Picker:   ps.picker,
		Persist:  ps.kv,
		Player:   userId,
		Clock:    ps.clk,
		Logger:   ps.log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open game for %s: %w", userId, err)
	}

	ctx, cancel := context.WithCancel(ps.ctx)
	p := &player{
		id:     userId,
		eco:    eco,
		views:  make(chan catch.View, 1),
		cancel: cancel,
		seen:   now,
	}
	m := catch.New(eco, ps.cfg, nil)
	p.runner = catch.NewRunner(m, ps.clk, p.offer)
	p.sched = energy.NewScheduler("user:"+userId, eco, ps.log)

	p.runner.Start(ctx)
	p.sched.Start(ctx)
	if ps.relay != nil {
		ps.wg.Add(1)
		go func() {
			defer ps.wg.Done()
			ps.relay(ctx, p)
		}()
	}

	ps.byUser[userId] = p
	return p, nil
}

func (ps *players) count() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.byUser)
}

// evictIdle unloads every game whose player has been quiet for idleAfter and
// has no line out. Saves are persisted on every change, so nothing is lost.
func (ps *players) evictIdle() int {
	now := ps.clk.Now()

	ps.mu.Lock()
	var idle []*player
	for id, p := range ps.byUser {
		if now.Sub(p.seen) < idleAfter || p.busy() {
			continue
		}
		delete(ps.byUser, id)
		idle = append(idle, p)
	}
	ps.mu.Unlock()

	for _, p := range idle {
		p.stop()
	}
	return len(idle)
}

// close stops every game. Open attempts are dropped unresolved.
func (ps *players) close() {
	ps.mu.Lock()
	all := make([]*player, 0, len(ps.byUser))
	for _, p := range ps.byUser {
		all = append(all, p)
	}
	ps.mu.Unlock()

	for _, p := range all {
		p.stop()
	}
	ps.cancel()
	ps.wg.Wait()
}
