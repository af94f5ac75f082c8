package fish

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	mrand "math/rand"
	"sync"
	"time"
)

// Tier weight tuning. Common shrinks with level and luck down to a floor,
// the rare end grows, uncommon stays flat.
const (
	commonBase      = 40.0
	commonPerLevel  = 3.0
	commonFloor     = 10.0
	uncommonWeight  = 30.0
	rareBase        = 15.0
	rarePerLevel    = 1.5
	rarePerLuck     = 0.5
	epicBase        = 4.0
	epicPerLevel    = 0.8
	epicPerLuck     = 0.3
	legendaryBase   = 1.0
	legendaryPerLvl = 0.5
	legendaryPerLck = 0.2
)

type Picker struct {
	reg *Registry

	mu  sync.Mutex // guards rng
	rng *mrand.Rand
}

func NewPicker(reg *Registry, rng *mrand.Rand) *Picker {
	if rng == nil {
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			rng = mrand.New(mrand.NewSource(time.Now().UnixNano()))
		} else {
			rng = mrand.New(mrand.NewSource(int64(binary.LittleEndian.Uint64(b[:]))))
		}
	}
	return &Picker{reg: reg, rng: rng}
}

// TierWeights returns the non-negative draw weight of each rarity tier.
func TierWeights(level int, luck float64) [NumRarities]float64 {
	lv := float64(level)
	w := [NumRarities]float64{
		Common:    math.Max(commonBase-lv*commonPerLevel-luck, commonFloor),
		Uncommon:  uncommonWeight,
		Rare:      rareBase + lv*rarePerLevel + luck*rarePerLuck,
		Epic:      epicBase + lv*epicPerLevel + luck*epicPerLuck,
		Legendary: legendaryBase + lv*legendaryPerLvl + luck*legendaryPerLck,
	}
	for i := range w {
		if w[i] < 0 {
			w[i] = 0
		}
	}
	return w
}

// TierFor maps a roll in [0,total) onto a tier: the first tier whose
// cumulative weight exceeds the roll wins, so zero-weight tiers are never
// picked.
func TierFor(weights [NumRarities]float64, roll float64) Rarity {
	var cumulative [NumRarities]float64
	total := 0.0
	for i, w := range weights {
		total += w
		cumulative[i] = total
	}

	lo, hi := 0, NumRarities-1
	for lo < hi {
		mid := (lo + hi) >> 1
		if roll < cumulative[mid] {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return Rarities[lo]
}

func (p *Picker) PickTier(level int, luck float64) Rarity {
	weights := TierWeights(level, luck)
	total := 0.0
	for _, w := range weights {
		total += w
	}

	p.mu.Lock()
	roll := p.rng.Float64() * total // random float from [0,total)
	p.mu.Unlock()

	return TierFor(weights, roll)
}

// Draw picks a tier by weight and then a fish uniformly within it.
func (p *Picker) Draw(level int, luck float64) FishType {
	tier := p.PickTier(level, luck)
	members := p.reg.byRarity[tier]
	if len(members) == 0 {
		panic(fmt.Sprintf("fish: rarity %s has no members", tier))
	}

	p.mu.Lock()
	idx := members[p.rng.Intn(len(members))]
	p.mu.Unlock()

	return p.reg.fish[idx]
}
