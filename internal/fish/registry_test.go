package fish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	if reg.Count() != 7 {
		t.Fatalf("Count = %d, want 7", reg.Count())
	}
	for _, r := range Rarities {
		if len(reg.ByRarity(r)) == 0 {
			t.Errorf("tier %s is empty", r)
		}
	}

	sw, ok := reg.GetById("swordfish")
	if !ok {
		t.Fatal("swordfish missing")
	}
	if sw.Rarity != Legendary || sw.Tokens != 75 || sw.XP != 120 || sw.HourlyIncome != 25 {
		t.Errorf("swordfish = %+v", sw)
	}

	rod, ok := reg.Upgrade(UpgradeBetterRod)
	if !ok || rod.MaxLevel != 5 || rod.BaseCost != 50 {
		t.Errorf("betterRod = %+v", rod)
	}
	if len(reg.Upgrades()) != 4 {
		t.Errorf("got %d upgrades, want 4", len(reg.Upgrades()))
	}
	if reg.NameById("nope") != "Unknown" {
		t.Error("unknown id should be named Unknown")
	}
}

func TestParseRegistryRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", `{"fish":[]}`, "empty"},
		{"bad rarity", `{"fish":[{"id":"a","rarity":"mythic"}]}`, "unknown rarity"},
		{"missing tier", `{"fish":[{"id":"a","rarity":"common"}]}`, "has no fish"},
		{"duplicate", `{"fish":[{"id":"a","rarity":"common"},{"id":"a","rarity":"rare"}]}`, "duplicate"},
		{"bad json", `{`, "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRegistry([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestParseRegistryRejectsUpgradeCurve(t *testing.T) {
	doc := `{"fish":[
		{"id":"a","rarity":"common"},{"id":"b","rarity":"uncommon"},{"id":"c","rarity":"rare"},
		{"id":"d","rarity":"epic"},{"id":"e","rarity":"legendary"}],
		"upgrades":[{"id":"u","maxLevel":3,"baseCost":10,"costMultiplier":0.5}]}`
	if _, err := ParseRegistry([]byte(doc)); err == nil {
		t.Fatal("shrinking cost curve accepted")
	}
}

func TestLoadRegistryFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, defaultCatalog, 0o644); err != nil {
		t.Fatal(err)
	}
	reg, err := LoadRegistryFromJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if reg.Count() != DefaultRegistry().Count() {
		t.Fatalf("loaded %d fish", reg.Count())
	}

	if _, err := LoadRegistryFromJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestUpgradeCostStrictlyIncreasing(t *testing.T) {
	for _, u := range DefaultRegistry().Upgrades() {
		prev := -1
		for k := 0; k < u.MaxLevel; k++ {
			c := u.Cost(k)
			if c <= prev {
				t.Errorf("%s: cost(%d)=%d not above cost(%d)=%d", u.ID, k, c, k-1, prev)
			}
			prev = c
		}
	}
	lucky, _ := DefaultRegistry().Upgrade(UpgradeLuckyCharm)
	if got := lucky.Cost(3); got != 1562 {
		t.Errorf("luckyCharm cost(3) = %d, want floor(100*2.5^3)=1562", got)
	}
}

func TestRarityText(t *testing.T) {
	for _, r := range Rarities {
		b, _ := r.MarshalText()
		var back Rarity
		if err := back.UnmarshalText(b); err != nil || back != r {
			t.Errorf("%s did not survive text round trip", r)
		}
	}
}

func TestNewCatchIDUnique(t *testing.T) {
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewCatchID(at)
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		if !strings.HasPrefix(id, "1735732800000-") {
			t.Fatalf("id %s does not start with capture millis", id)
		}
		seen[id] = true
	}
}
