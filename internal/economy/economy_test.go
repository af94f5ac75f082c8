package economy

import (
	"context"
	"errors"
	"io"
	"log"
	mrand "math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/faideww/fishon/internal/clock"
	"github.com/faideww/fishon/internal/fish"
	"github.com/faideww/fishon/internal/progress"
	"github.com/faideww/fishon/internal/store"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	clk *clock.Manual
	kv  *store.MemoryStore
	reg *fish.Registry
	s   *Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clk: clock.NewManual(epoch),
		kv:  store.NewMemory(),
		reg: fish.DefaultRegistry(),
	}
	f.s = f.open(t)
	return f
}

func (f *fixture) open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{
		Registry: f.reg,
		Picker:   fish.NewPicker(f.reg, mrand.New(mrand.NewSource(1))),
		Persist:  f.kv,
		Clock:    f.clk,
		Logger:   log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func (f *fixture) fish(t *testing.T, id string) fish.FishType {
	t.Helper()
	ft, ok := f.reg.GetById(id)
	if !ok {
		t.Fatalf("no fish %q", id)
	}
	return ft
}

func TestFreshState(t *testing.T) {
	f := newFixture(t)
	st := f.s.Snapshot()
	if st.Level != 1 || st.Energy != BaseEnergy || st.MaxEnergy != BaseEnergy || st.Tokens != 0 {
		t.Fatalf("fresh state = %+v", st)
	}
	if !st.LastEnergyRefillAt.Equal(epoch) || !st.LastIncomeCollectAt.Equal(epoch) {
		t.Fatalf("anchors not set to now: %+v", st)
	}
}

func TestApplyCatchFiveTimes(t *testing.T) {
	f := newFixture(t)
	catchable := fish.FishType{ID: "goldfish", Name: "Goldfish", XP: 50, Tokens: 5, HourlyIncome: 1}

	for i := 0; i < 5; i++ {
		f.clk.Advance(time.Second)
		f.s.ApplyCatch(catchable)
	}

	st := f.s.Snapshot()
	if st.XP != 250 || st.Tokens != 25 || st.TotalCatches != 5 {
		t.Fatalf("after five catches: xp=%d tokens=%d catches=%d", st.XP, st.Tokens, st.TotalCatches)
	}
	if st.Energy != 0 {
		t.Fatalf("energy = %d, want 0", st.Energy)
	}
	if st.Level != progress.LevelFromXP(250) {
		t.Fatalf("level = %d, want %d", st.Level, progress.LevelFromXP(250))
	}

	if len(st.CaughtFishes) != 5 {
		t.Fatalf("%d records", len(st.CaughtFishes))
	}
	ids := map[string]bool{}
	for i, cf := range st.CaughtFishes {
		if ids[cf.ID] {
			t.Fatalf("duplicate record id %s", cf.ID)
		}
		ids[cf.ID] = true
		if i > 0 && cf.CaughtAt.After(st.CaughtFishes[i-1].CaughtAt) {
			t.Fatal("records are not most-recent-first")
		}
	}

	// a sixth catch with no energy left keeps energy at zero
	f.s.ApplyCatch(catchable)
	if e := f.s.Energy(); e != 0 {
		t.Fatalf("energy went to %d", e)
	}
}

func TestApplyCatchLevelUp(t *testing.T) {
	f := newFixture(t)
	var ups [][2]int
	f.s.onLevelUp = func(from, to int) { ups = append(ups, [2]int{from, to}) }

	sword := f.fish(t, "swordfish") // 120 xp
	res := f.s.ApplyCatch(sword)
	if !res.LevelUp() || res.FromLevel != 1 || res.ToLevel != 2 {
		t.Fatalf("result = %+v", res)
	}
	res = f.s.ApplyCatch(f.fish(t, "goldfish"))
	if res.LevelUp() {
		t.Fatal("130 xp should not level again")
	}
	if len(ups) != 1 || ups[0] != [2]int{1, 2} {
		t.Fatalf("level-up callbacks = %v", ups)
	}
}

func TestSpendEnergy(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < BaseEnergy; i++ {
		if !f.s.CanSpendEnergy() || !f.s.SpendEnergy() {
			t.Fatalf("spend %d refused", i)
		}
	}
	if f.s.CanSpendEnergy() || f.s.SpendEnergy() {
		t.Fatal("spent energy that was not there")
	}
	if f.s.Energy() != 0 {
		t.Fatalf("energy = %d", f.s.Energy())
	}
}

func TestPurchaseUpgradeInsufficientTokens(t *testing.T) {
	f := newFixture(t)
	f.s.AddDebugTokens(40)
	before := f.s.Snapshot()

	if f.s.PurchaseUpgrade(fish.UpgradeBetterRod) {
		t.Fatal("bought a 50 token upgrade with 40 tokens")
	}
	if after := f.s.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestPurchaseUpgradeToMax(t *testing.T) {
	f := newFixture(t)
	f.s.AddDebugTokens(10000)

	spent := 0
	rod, _ := f.reg.Upgrade(fish.UpgradeBetterRod)
	for lvl := 0; lvl < rod.MaxLevel; lvl++ {
		spent += rod.Cost(lvl)
		if !f.s.PurchaseUpgrade(rod.ID) {
			t.Fatalf("purchase at level %d refused", lvl)
		}
	}
	if f.s.PurchaseUpgrade(rod.ID) {
		t.Fatal("purchase past max level accepted")
	}
	if got := f.s.UpgradeLevel(rod.ID); got != rod.MaxLevel {
		t.Fatalf("level = %d", got)
	}
	if spent != 1550 || f.s.Tokens() != 10000-spent {
		t.Fatalf("tokens = %d after spending %d", f.s.Tokens(), spent)
	}
	if f.s.TargetBonus() != 75 {
		t.Fatalf("target bonus = %v", f.s.TargetBonus())
	}
	if f.s.PurchaseUpgrade("goldenHook") {
		t.Fatal("unknown upgrade accepted")
	}
}

func TestEnergyBoostRaisesMax(t *testing.T) {
	f := newFixture(t)
	f.s.AddDebugTokens(75)
	if !f.s.PurchaseUpgrade(fish.UpgradeEnergyBoost) {
		t.Fatal("purchase refused")
	}
	if f.s.MaxEnergy() != BaseEnergy+2 || f.s.Snapshot().MaxEnergy != BaseEnergy+2 {
		t.Fatalf("max energy = %d", f.s.MaxEnergy())
	}
}

func TestIncome(t *testing.T) {
	f := newFixture(t)
	f.s.ApplyCatch(f.fish(t, "goldfish"))  // 1/h
	f.s.ApplyCatch(f.fish(t, "clownfish")) // 2/h
	if f.s.HourlyIncome() != 3 {
		t.Fatalf("hourly = %d", f.s.HourlyIncome())
	}

	if f.s.CollectIncome() != 0 {
		t.Fatal("collected income with no time elapsed")
	}

	f.clk.Advance(2*time.Hour + 10*time.Minute)
	p1, p2 := f.s.PendingIncome(), f.s.PendingIncome()
	if p1 != 6 || p2 != p1 {
		t.Fatalf("pending = %d then %d, want 6 twice", p1, p2)
	}

	tokens := f.s.Tokens()
	if got := f.s.CollectIncome(); got != p1 {
		t.Fatalf("collected %d, want %d", got, p1)
	}
	if f.s.Tokens() != tokens+p1 {
		t.Fatalf("tokens = %d, want %d", f.s.Tokens(), tokens+p1)
	}
	if f.s.PendingIncome() != 0 {
		t.Fatalf("pending after collect = %d", f.s.PendingIncome())
	}
	if !f.s.Snapshot().LastIncomeCollectAt.Equal(f.clk.Now()) {
		t.Fatal("collect anchor not moved to now")
	}
}

func TestRefill(t *testing.T) {
	f := newFixture(t)
	for f.s.SpendEnergy() {
	}

	f.clk.Advance(25 * time.Minute)
	if got := f.s.Refill(); got != 2 {
		t.Fatalf("refill after 25m added %d, want 2", got)
	}
	if !f.s.Snapshot().LastEnergyRefillAt.Equal(f.clk.Now()) {
		t.Fatal("anchor not moved to now")
	}

	// the 5 leftover minutes were dropped with the anchor reset
	f.clk.Advance(9 * time.Minute)
	if got := f.s.Refill(); got != 0 {
		t.Fatalf("refill after 9m added %d", got)
	}
	f.clk.Advance(time.Minute)
	if got := f.s.Refill(); got != 1 {
		t.Fatalf("refill after 10m added %d", got)
	}

	f.clk.Advance(24 * time.Hour)
	f.s.Refill()
	if f.s.Energy() != BaseEnergy {
		t.Fatalf("energy = %d, want capped at %d", f.s.Energy(), BaseEnergy)
	}
}

func TestRefillAnchorHeldAtMax(t *testing.T) {
	f := newFixture(t)
	f.clk.Advance(time.Hour)
	if got := f.s.Refill(); got != 0 {
		t.Fatalf("refill at max added %d", got)
	}
	if !f.s.Snapshot().LastEnergyRefillAt.Equal(epoch) {
		t.Fatal("anchor advanced while full")
	}

	f.s.SpendEnergy()
	if got := f.s.Refill(); got != 1 {
		t.Fatalf("refill after spending added %d, want 1", got)
	}
}

func TestFastRechargeInterval(t *testing.T) {
	f := newFixture(t)
	f.s.AddDebugTokens(100000)
	if f.s.RefillInterval() != BaseRefillInterval {
		t.Fatalf("interval = %v", f.s.RefillInterval())
	}
	f.s.PurchaseUpgrade(fish.UpgradeFastRecharge)
	if f.s.RefillInterval() != 8*time.Minute {
		t.Fatalf("interval = %v, want 8m", f.s.RefillInterval())
	}
	for f.s.PurchaseUpgrade(fish.UpgradeFastRecharge) {
	}
	if f.s.RefillInterval() != MinRefillInterval {
		t.Fatalf("fully upgraded interval = %v", f.s.RefillInterval())
	}
}

func TestNextEnergyIn(t *testing.T) {
	f := newFixture(t)
	if f.s.NextEnergyIn() != 0 {
		t.Fatal("full energy should report no wait")
	}
	f.s.SpendEnergy()
	f.clk.Advance(4 * time.Minute)
	if got := f.s.NextEnergyIn(); got != 6*time.Minute {
		t.Fatalf("NextEnergyIn = %v", got)
	}
}

func TestEnergyBoundsUnderRandomPlay(t *testing.T) {
	f := newFixture(t)
	rng := mrand.New(mrand.NewSource(99))
	gold := f.fish(t, "goldfish")
	f.s.AddDebugTokens(5000)

	for i := 0; i < 2000; i++ {
		switch rng.Intn(5) {
		case 0:
			if f.s.CanSpendEnergy() {
				f.s.ApplyCatch(gold)
			}
		case 1:
			f.s.SpendEnergy()
		case 2:
			f.clk.Advance(time.Duration(rng.Intn(30)) * time.Minute)
			f.s.Refill()
		case 3:
			f.s.PurchaseUpgrade(fish.UpgradeEnergyBoost)
		case 4:
			f.s.PurchaseUpgrade(fish.UpgradeFastRecharge)
		}
		st := f.s.Snapshot()
		if st.Energy < 0 || st.Energy > f.s.MaxEnergy() {
			t.Fatalf("step %d: energy %d outside [0,%d]", i, st.Energy, f.s.MaxEnergy())
		}
		if st.Level != progress.LevelFromXP(st.XP) {
			t.Fatalf("step %d: cached level %d disagrees with xp %d", i, st.Level, st.XP)
		}
	}
}

func TestPersistRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.s.AddDebugTokens(500)
	f.s.ApplyCatch(f.fish(t, "tuna"))
	f.s.PurchaseUpgrade(fish.UpgradeLuckyCharm)
	want := f.s.Snapshot()

	got := f.open(t).Snapshot()
	if got.Tokens != want.Tokens || got.XP != want.XP || got.Energy != want.Energy ||
		got.TotalCatches != want.TotalCatches || !reflect.DeepEqual(got.Upgrades, want.Upgrades) {
		t.Fatalf("reloaded %+v, want %+v", got, want)
	}
	if len(got.CaughtFishes) != 1 || got.CaughtFishes[0].ID != want.CaughtFishes[0].ID {
		t.Fatalf("records = %+v", got.CaughtFishes)
	}
}

func TestLoadMergesOntoDefaults(t *testing.T) {
	f := newFixture(t)
	blob := `{"tokens": 12, "xp": 400, "level": 9, "energy": 99,
		"upgrades": {"energyBoost": 9, "warpDrive": 2},
		"caughtFishes": [{"id":"1-a","fishId":"salmon","caughtAt":"2025-02-01T00:00:00Z"},
		                 {"id":"2-b","fishId":"kraken","caughtAt":"2025-02-01T00:00:00Z"}]}`
	if err := f.kv.Put(context.Background(), StorageKey, []byte(blob)); err != nil {
		t.Fatal(err)
	}

	st := f.open(t).Snapshot()
	if st.Tokens != 12 || st.XP != 400 {
		t.Fatalf("lost stored fields: %+v", st)
	}
	if st.Level != progress.LevelFromXP(400) {
		t.Fatalf("level = %d, not recomputed from xp", st.Level)
	}
	if st.Upgrades["energyBoost"] != 5 {
		t.Fatalf("upgrade level not clamped: %v", st.Upgrades)
	}
	if _, ok := st.Upgrades["warpDrive"]; ok {
		t.Fatal("unknown upgrade kept")
	}
	if st.MaxEnergy != BaseEnergy+10 || st.Energy != st.MaxEnergy {
		t.Fatalf("energy %d/%d", st.Energy, st.MaxEnergy)
	}
	if len(st.CaughtFishes) != 1 || st.CaughtFishes[0].FishID != "salmon" {
		t.Fatalf("records = %+v", st.CaughtFishes)
	}
	if !st.LastIncomeCollectAt.Equal(epoch) || !st.LastEnergyRefillAt.Equal(epoch) {
		t.Fatal("missing anchors should default to now")
	}
}

func TestLoadCorruptFallsBack(t *testing.T) {
	f := newFixture(t)
	_ = f.kv.Put(context.Background(), StorageKey, []byte(`{"tokens": "lots"`))
	st := f.open(t).Snapshot()
	if st.Tokens != 0 || st.Level != 1 || st.Energy != BaseEnergy {
		t.Fatalf("corrupt save not replaced by defaults: %+v", st)
	}
}

type failingStore struct{ store.MemoryStore }

func (*failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func TestOpenSurfacesStorageErrors(t *testing.T) {
	_, err := Open(context.Background(), Options{Persist: &failingStore{}, Logger: log.New(io.Discard, "", 0)})
	if err == nil {
		t.Fatal("storage failure swallowed")
	}
}

func TestResetAll(t *testing.T) {
	f := newFixture(t)
	f.s.AddDebugTokens(300)
	f.s.ApplyCatch(f.fish(t, "goldfish"))
	f.clk.Advance(time.Minute)

	f.s.ResetAll()
	st := f.s.Snapshot()
	if st.Tokens != 0 || st.TotalCatches != 0 || len(st.CaughtFishes) != 0 || st.Energy != BaseEnergy {
		t.Fatalf("after reset: %+v", st)
	}
	if _, err := f.kv.Get(context.Background(), StorageKey); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("save not deleted: %v", err)
	}
}

func TestPlayersAreIsolated(t *testing.T) {
	kv := store.NewMemory()
	open := func(player string) *Store {
		s, err := Open(context.Background(), Options{Persist: kv, Player: player, Logger: log.New(io.Discard, "", 0)})
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	a, b := open("100"), open("200")
	a.AddDebugTokens(10)
	if b.Tokens() != 0 {
		t.Fatal("players share state")
	}
	if open("100").Tokens() != 10 {
		t.Fatal("player save not keyed by player")
	}
	if KeyFor("") != StorageKey || KeyFor("100") != StorageKey+":100" {
		t.Fatal("unexpected key layout")
	}
}

func TestShopAndAquarium(t *testing.T) {
	f := newFixture(t)
	f.s.AddDebugTokens(60)
	f.s.ApplyCatch(f.fish(t, "goldfish"))
	f.s.ApplyCatch(f.fish(t, "swordfish"))
	f.s.ApplyCatch(f.fish(t, "goldfish"))

	tanks := f.s.Aquarium()
	if len(tanks) != 2 {
		t.Fatalf("tanks = %+v", tanks)
	}
	if tanks[0].Fish.ID != "swordfish" || tanks[1].Fish.ID != "goldfish" || tanks[1].Count != 2 || tanks[1].Income != 2 {
		t.Fatalf("tanks = %+v", tanks)
	}

	// 60 + 5 + 75 + 5 tokens
	offers := f.s.Shop()
	if len(offers) != 4 {
		t.Fatalf("%d offers", len(offers))
	}
	for _, o := range offers {
		wantAffordable := o.Cost <= 145
		if o.Affordable != wantAffordable || o.Maxed {
			t.Errorf("offer %s = %+v", o.Upgrade.ID, o)
		}
	}
}

func TestDrawLootUsesCatalog(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 200; i++ {
		d := f.s.DrawLoot()
		if _, ok := f.reg.GetById(d.ID); !ok {
			t.Fatalf("drew %q", d.ID)
		}
	}
}
