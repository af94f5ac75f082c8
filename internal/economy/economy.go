package economy

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/faideww/fishon/internal/clock"
	"github.com/faideww/fishon/internal/fish"
	"github.com/faideww/fishon/internal/progress"
	"github.com/faideww/fishon/internal/store"
)

type Options struct {
	Registry *fish.Registry // nil uses the embedded catalog
	Picker   *fish.Picker   // nil builds a randomly seeded picker
	Persist  store.Store    // nil keeps the save in memory
	Player   string         // save slot, see KeyFor
	Clock    clock.Clock
	Logger   *log.Logger

	// OnLevelUp runs after a catch raises the level, outside the store lock.
	OnLevelUp func(from, to int)
}

// Store is the single owner of a player's GameState. Every operation reads
// the current state under the lock, builds the next one on a copy, swaps it
// in and persists it, so callers never observe a partial update.
type Store struct {
	mu    sync.Mutex
	state GameState

	reg       *fish.Registry
	picker    *fish.Picker
	kv        store.Store
	key       string
	clk       clock.Clock
	log       *log.Logger
	onLevelUp func(from, to int)
}

// Open rehydrates the player's state from storage, or starts from defaults.
func Open(ctx context.Context, opts Options) (*Store, error) {
	s := &Store{
		reg:       opts.Registry,
		picker:    opts.Picker,
		kv:        opts.Persist,
		key:       KeyFor(opts.Player),
		clk:       clock.OrReal(opts.Clock),
		log:       opts.Logger,
		onLevelUp: opts.OnLevelUp,
	}
	if s.reg == nil {
		s.reg = fish.DefaultRegistry()
	}
	if s.picker == nil {
		s.picker = fish.NewPicker(s.reg, nil)
	}
	if s.kv == nil {
		s.kv = store.NewMemory()
	}
	if s.log == nil {
		s.log = log.Default()
	}

	st, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.state = st
	return s, nil
}

// update applies fn to a copy of the current state. When fn reports the
// mutation as accepted the copy replaces the state and is saved.
func (s *Store) update(fn func(st *GameState, now time.Time) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if !fn(&next, s.clk.Now()) {
		return false
	}
	s.state = next
	s.persist(next)
	return true
}

func (s *Store) view(fn func(st *GameState, now time.Time)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state, s.clk.Now())
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

type CatchResult struct {
	Record    fish.CaughtFish
	Fish      fish.FishType
	FromLevel int
	ToLevel   int
}

func (r CatchResult) LevelUp() bool { return r.ToLevel > r.FromLevel }

// ApplyCatch credits a landed fish: tokens, xp, level, one unit of energy,
// a new aquarium record and the catch counter. Energy availability is the
// caller's check.
func (s *Store) ApplyCatch(f fish.FishType) CatchResult {
	var res CatchResult
	s.update(func(st *GameState, now time.Time) bool {
		res.Fish = f
		res.FromLevel = st.Level

		st.Tokens += f.Tokens
		st.XP += f.XP
		st.Level = progress.LevelFromXP(st.XP)
		if st.Energy > 0 {
			st.Energy--
		}

		res.Record = fish.CaughtFish{
			ID:       fish.NewCatchID(now),
			FishID:   f.ID,
			CaughtAt: now,
		}
		st.CaughtFishes = append([]fish.CaughtFish{res.Record}, st.CaughtFishes...)
		st.TotalCatches++

		res.ToLevel = st.Level
		return true
	})

	if res.LevelUp() {
		s.log.Printf("economy: %s reached level %d", s.key, res.ToLevel)
		if s.onLevelUp != nil {
			s.onLevelUp(res.FromLevel, res.ToLevel)
		}
	}
	return res
}

// AddCaughtFish is ApplyCatch without the result.
func (s *Store) AddCaughtFish(f fish.FishType) { s.ApplyCatch(f) }

func (s *Store) CanSpendEnergy() bool {
	var ok bool
	s.view(func(st *GameState, _ time.Time) { ok = st.Energy > 0 })
	return ok
}

// SpendEnergy consumes one unit for an attempt that landed nothing.
func (s *Store) SpendEnergy() bool {
	return s.update(func(st *GameState, _ time.Time) bool {
		if st.Energy <= 0 {
			return false
		}
		st.Energy--
		return true
	})
}

func (s *Store) Level() int {
	var lvl int
	s.view(func(st *GameState, _ time.Time) { lvl = st.Level })
	return lvl
}

func (s *Store) Energy() int {
	var e int
	s.view(func(st *GameState, _ time.Time) { e = st.Energy })
	return e
}

func (s *Store) Tokens() int {
	var n int
	s.view(func(st *GameState, _ time.Time) { n = st.Tokens })
	return n
}

func (s *Store) LevelProgress() progress.Progress {
	var p progress.Progress
	s.view(func(st *GameState, _ time.Time) { p = progress.For(st.XP) })
	return p
}

func hourlyIncome(reg *fish.Registry, st GameState) int {
	total := 0
	for _, cf := range st.CaughtFishes {
		if f, ok := reg.GetById(cf.FishID); ok {
			total += f.HourlyIncome
		}
	}
	return total
}

func pendingIncome(reg *fish.Registry, st GameState, now time.Time) int {
	hours := now.Sub(st.LastIncomeCollectAt).Hours()
	if hours <= 0 {
		return 0
	}
	return int(math.Floor(float64(hourlyIncome(reg, st)) * hours))
}

func (s *Store) HourlyIncome() int {
	var n int
	s.view(func(st *GameState, _ time.Time) { n = hourlyIncome(s.reg, *st) })
	return n
}

// PendingIncome is the income accrued since the last collection.
func (s *Store) PendingIncome() int {
	var n int
	s.view(func(st *GameState, now time.Time) { n = pendingIncome(s.reg, *st, now) })
	return n
}

// CollectIncome moves pending income into tokens and returns exactly the
// amount added. Nothing changes when there is nothing to collect.
func (s *Store) CollectIncome() int {
	var collected int
	s.update(func(st *GameState, now time.Time) bool {
		collected = pendingIncome(s.reg, *st, now)
		if collected <= 0 {
			collected = 0
			return false
		}
		st.Tokens += collected
		st.LastIncomeCollectAt = now
		return true
	})
	return collected
}

func (s *Store) UpgradeLevel(id string) int {
	var lvl int
	s.view(func(st *GameState, _ time.Time) { lvl = st.Upgrades[id] })
	return lvl
}

// PurchaseUpgrade buys the next level of an upgrade. It fails without
// changing anything for unknown ids, maxed upgrades and short balances.
func (s *Store) PurchaseUpgrade(id string) bool {
	u, ok := s.reg.Upgrade(id)
	if !ok {
		return false
	}
	return s.update(func(st *GameState, _ time.Time) bool {
		lvl := st.Upgrades[id]
		if lvl >= u.MaxLevel {
			return false
		}
		cost := u.Cost(lvl)
		if st.Tokens < cost {
			return false
		}
		st.Tokens -= cost
		st.Upgrades[id] = lvl + 1
		st.MaxEnergy = maxEnergy(s.reg, *st)
		return true
	})
}

func upgradeBonus(reg *fish.Registry, st GameState, id string) float64 {
	u, ok := reg.Upgrade(id)
	if !ok {
		return 0
	}
	return u.Bonus(st.Upgrades[id])
}

// TargetBonus is the percentage by which the catch zone is widened.
func (s *Store) TargetBonus() float64 {
	var b float64
	s.view(func(st *GameState, _ time.Time) { b = upgradeBonus(s.reg, *st, fish.UpgradeBetterRod) })
	return b
}

// LuckBonus shifts loot weights toward rarer tiers.
func (s *Store) LuckBonus() float64 {
	var b float64
	s.view(func(st *GameState, _ time.Time) { b = upgradeBonus(s.reg, *st, fish.UpgradeLuckyCharm) })
	return b
}

// DrawLoot picks a fish for the current level and luck.
func (s *Store) DrawLoot() fish.FishType {
	var (
		level int
		luck  float64
	)
	s.view(func(st *GameState, _ time.Time) {
		level = st.Level
		luck = upgradeBonus(s.reg, *st, fish.UpgradeLuckyCharm)
	})
	return s.picker.Draw(level, luck)
}

// ResetAll restores the defaults and removes the save.
func (s *Store) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = defaultState(s.clk.Now())
	s.erase()
	s.log.Printf("economy: %s reset", s.key)
}

// AddDebugTokens credits tokens without any gating. Development only.
func (s *Store) AddDebugTokens(amount int) {
	s.update(func(st *GameState, _ time.Time) bool {
		st.Tokens += amount
		if st.Tokens < 0 {
			st.Tokens = 0
		}
		return true
	})
}
