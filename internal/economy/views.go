package economy

import (
	"sort"
	"time"

	"github.com/faideww/fishon/internal/fish"
)

// Offer is one shop line.
type Offer struct {
	Upgrade    fish.Upgrade
	Level      int
	Cost       int // zero once maxed
	Maxed      bool
	Affordable bool
}

func (s *Store) Shop() []Offer {
	ups := s.reg.Upgrades()
	out := make([]Offer, 0, len(ups))
	s.view(func(st *GameState, _ time.Time) {
		for _, u := range ups {
			o := Offer{Upgrade: u, Level: st.Upgrades[u.ID]}
			if o.Level >= u.MaxLevel {
				o.Maxed = true
			} else {
				o.Cost = u.Cost(o.Level)
				o.Affordable = st.Tokens >= o.Cost
			}
			out = append(out, o)
		}
	})
	return out
}

// Tank groups the owned fish of one species.
type Tank struct {
	Fish   fish.FishType
	Count  int
	Income int // hourly
}

// Aquarium lists owned species, rarest first.
func (s *Store) Aquarium() []Tank {
	byId := map[string]*Tank{}
	var order []string
	s.view(func(st *GameState, _ time.Time) {
		for _, cf := range st.CaughtFishes {
			t, ok := byId[cf.FishID]
			if !ok {
				f, known := s.reg.GetById(cf.FishID)
				if !known {
					continue
				}
				t = &Tank{Fish: f}
				byId[cf.FishID] = t
				order = append(order, cf.FishID)
			}
			t.Count++
			t.Income += t.Fish.HourlyIncome
		}
	})

	out := make([]Tank, 0, len(order))
	for _, id := range order {
		out = append(out, *byId[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Fish.Rarity != out[j].Fish.Rarity {
			return out[i].Fish.Rarity > out[j].Fish.Rarity
		}
		return out[i].Fish.Name < out[j].Fish.Name
	})
	return out
}
