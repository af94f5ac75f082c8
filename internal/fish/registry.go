package fish

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed catalog.json
var defaultCatalog []byte

type FishType struct {
	ID             string
	Name           string
	Color          string
	SecondaryColor string
	Tokens         int // token reward per catch
	XP             int
	HourlyIncome   int // passive income while owned
	Rarity         Rarity
	Glyph          string
}

type fishJSON struct {
	Id             string `json:"id"`
	Name           string `json:"name"`
	Color          string `json:"color"`
	SecondaryColor string `json:"secondaryColor"`
	Tokens         int    `json:"tokens"`
	XP             int    `json:"xp"`
	HourlyIncome   int    `json:"hourlyIncome"`
	Rarity         Rarity `json:"rarity"`
	Glyph          string `json:"glyph"`
}

type upgradeJSON struct {
	Id             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Icon           string  `json:"icon"`
	MaxLevel       int     `json:"maxLevel"`
	BaseCost       int     `json:"baseCost"`
	CostMultiplier float64 `json:"costMultiplier"`
	Effect         float64 `json:"effect"`
}

type catalogJSON struct {
	Fish     []fishJSON    `json:"fish"`
	Upgrades []upgradeJSON `json:"upgrades"`
}

// Registry is the static catalog of fish types and upgrades. It is never
// mutated after load, so it can be shared between goroutines.
type Registry struct {
	fish      []FishType
	byId      map[string]int
	byRarity  [NumRarities][]int
	upgrades  []Upgrade
	upgradeBy map[string]int
}

// DefaultRegistry returns the catalog compiled into the binary.
func DefaultRegistry() *Registry {
	reg, err := ParseRegistry(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return reg
}

func LoadRegistryFromJSON(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reg, err := ParseRegistry(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

func ParseRegistry(raw []byte) (*Registry, error) {
	var doc catalogJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if len(doc.Fish) == 0 {
		return nil, fmt.Errorf("fish list is empty")
	}

	reg := &Registry{
		fish:      make([]FishType, 0, len(doc.Fish)),
		byId:      make(map[string]int, len(doc.Fish)),
		upgrades:  make([]Upgrade, 0, len(doc.Upgrades)),
		upgradeBy: make(map[string]int, len(doc.Upgrades)),
	}

	for i, fj := range doc.Fish {
		if fj.Id == "" {
			return nil, fmt.Errorf("missing id at index %d", i)
		}
		if _, dup := reg.byId[fj.Id]; dup {
			return nil, fmt.Errorf("duplicate fish id %q", fj.Id)
		}
		if fj.Tokens < 0 || fj.XP < 0 || fj.HourlyIncome < 0 {
			return nil, fmt.Errorf("negative reward on fish %q", fj.Id)
		}

		idx := len(reg.fish)
		reg.fish = append(reg.fish, FishType{
			ID:             fj.Id,
			Name:           fj.Name,
			Color:          fj.Color,
			SecondaryColor: fj.SecondaryColor,
			Tokens:         fj.Tokens,
			XP:             fj.XP,
			HourlyIncome:   fj.HourlyIncome,
			Rarity:         fj.Rarity,
			Glyph:          fj.Glyph,
		})
		reg.byId[fj.Id] = idx
		reg.byRarity[fj.Rarity] = append(reg.byRarity[fj.Rarity], idx)
	}

	// every tier must be drawable
	for _, r := range Rarities {
		if len(reg.byRarity[r]) == 0 {
			return nil, fmt.Errorf("rarity %s has no fish", r)
		}
	}

	for i, uj := range doc.Upgrades {
		if uj.Id == "" {
			return nil, fmt.Errorf("missing upgrade id at index %d", i)
		}
		if _, dup := reg.upgradeBy[uj.Id]; dup {
			return nil, fmt.Errorf("duplicate upgrade id %q", uj.Id)
		}
		if uj.MaxLevel < 1 {
			return nil, fmt.Errorf("upgrade %q: max level must be at least 1", uj.Id)
		}
		if uj.BaseCost < 0 || uj.CostMultiplier < 1 {
			return nil, fmt.Errorf("upgrade %q: invalid cost curve", uj.Id)
		}

		reg.upgradeBy[uj.Id] = len(reg.upgrades)
		reg.upgrades = append(reg.upgrades, Upgrade{
			ID:             uj.Id,
			Name:           uj.Name,
			Description:    uj.Description,
			Icon:           uj.Icon,
			MaxLevel:       uj.MaxLevel,
			BaseCost:       uj.BaseCost,
			CostMultiplier: uj.CostMultiplier,
			Effect:         uj.Effect,
		})
	}

	return reg, nil
}

func (r *Registry) GetById(id string) (FishType, bool) {
	idx, ok := r.byId[id]
	if !ok {
		return FishType{}, false
	}
	return r.fish[idx], true
}

func (r *Registry) NameById(id string) string {
	if f, ok := r.GetById(id); ok {
		return f.Name
	}
	return "Unknown"
}

// ByRarity returns the members of a tier in catalog order.
func (r *Registry) ByRarity(t Rarity) []FishType {
	idxs := r.byRarity[t]
	out := make([]FishType, len(idxs))
	for i, idx := range idxs {
		out[i] = r.fish[idx]
	}
	return out
}

func (r *Registry) All() []FishType {
	out := make([]FishType, len(r.fish))
	copy(out, r.fish)
	return out
}

func (r *Registry) Count() int { return len(r.fish) }

func (r *Registry) Upgrade(id string) (Upgrade, bool) {
	idx, ok := r.upgradeBy[id]
	if !ok {
		return Upgrade{}, false
	}
	return r.upgrades[idx], true
}

func (r *Registry) Upgrades() []Upgrade {
	out := make([]Upgrade, len(r.upgrades))
	copy(out, r.upgrades)
	return out
}
