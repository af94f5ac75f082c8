// Package economy owns the persisted player state and every operation that
// changes it. All mutations are serialized through the Store so the state's
// invariants are enforced in one place.
package economy

import (
	"log"
	"time"

	"github.com/faideww/fishon/internal/fish"
	"github.com/faideww/fishon/internal/progress"
)

// GameState is the persisted aggregate. The JSON shape is the save format;
// changing it requires a new StorageKey version.
type GameState struct {
	Tokens              int               `json:"tokens"`
	XP                  int               `json:"xp"`
	Level               int               `json:"level"`
	Energy              int               `json:"energy"`
	MaxEnergy           int               `json:"maxEnergy"`
	LastEnergyRefillAt  time.Time         `json:"lastEnergyRefillAt"`
	CaughtFishes        []fish.CaughtFish `json:"caughtFishes"` // most recent first
	TotalCatches        int               `json:"totalCatches"`
	Upgrades            map[string]int    `json:"upgrades"`
	LastIncomeCollectAt time.Time         `json:"lastIncomeCollectAt"`
}

func defaultState(now time.Time) GameState {
	return GameState{
		Level:               1,
		Energy:              BaseEnergy,
		MaxEnergy:           BaseEnergy,
		LastEnergyRefillAt:  now,
		CaughtFishes:        []fish.CaughtFish{},
		Upgrades:            map[string]int{},
		LastIncomeCollectAt: now,
	}
}

// clone returns a deep copy so a pending mutation never aliases the
// published state.
func (s GameState) clone() GameState {
	out := s
	out.CaughtFishes = make([]fish.CaughtFish, len(s.CaughtFishes))
	copy(out.CaughtFishes, s.CaughtFishes)
	out.Upgrades = make(map[string]int, len(s.Upgrades))
	for k, v := range s.Upgrades {
		out.Upgrades[k] = v
	}
	return out
}

// normalize repairs a state decoded from storage: derived fields are
// recomputed and everything out of range is clamped or dropped.
func normalize(st *GameState, reg *fish.Registry, now time.Time, logger *log.Logger) {
	if st.Tokens < 0 {
		st.Tokens = 0
	}
	if st.XP < 0 {
		st.XP = 0
	}
	if st.TotalCatches < 0 {
		st.TotalCatches = 0
	}
	st.Level = progress.LevelFromXP(st.XP)

	if st.Upgrades == nil {
		st.Upgrades = map[string]int{}
	}
	for id, lvl := range st.Upgrades {
		u, ok := reg.Upgrade(id)
		if !ok {
			logger.Printf("economy: dropping unknown upgrade %q from save", id)
			delete(st.Upgrades, id)
			continue
		}
		if lvl < 0 {
			st.Upgrades[id] = 0
		} else if lvl > u.MaxLevel {
			st.Upgrades[id] = u.MaxLevel
		}
	}

	st.MaxEnergy = maxEnergy(reg, *st)
	if st.Energy < 0 {
		st.Energy = 0
	}
	if st.Energy > st.MaxEnergy {
		st.Energy = st.MaxEnergy
	}

	kept := make([]fish.CaughtFish, 0, len(st.CaughtFishes))
	dropped := 0
	for _, cf := range st.CaughtFishes {
		if _, ok := reg.GetById(cf.FishID); !ok {
			dropped++
			continue
		}
		kept = append(kept, cf)
	}
	if dropped > 0 {
		logger.Printf("economy: dropped %d caught fish with unknown species from save", dropped)
	}
	st.CaughtFishes = kept

	if st.LastEnergyRefillAt.IsZero() {
		st.LastEnergyRefillAt = now
	}
	if st.LastIncomeCollectAt.IsZero() {
		st.LastIncomeCollectAt = now
	}
}
