package economy

import (
	"math"
	"time"

	"github.com/faideww/fishon/internal/fish"
)

const (
	BaseEnergy = 5

	// BaseRefillInterval is the time to regain one unit without upgrades.
	BaseRefillInterval = 10 * time.Minute

	// MinRefillInterval bounds a fully upgraded recharge away from zero.
	MinRefillInterval = time.Second
)

func maxEnergy(reg *fish.Registry, st GameState) int {
	return BaseEnergy + int(upgradeBonus(reg, st, fish.UpgradeEnergyBoost))
}

func refillInterval(reg *fish.Registry, st GameState) time.Duration {
	fraction := upgradeBonus(reg, st, fish.UpgradeFastRecharge) / 100
	d := time.Duration(math.Round(float64(BaseRefillInterval) * (1 - fraction)))
	if d < MinRefillInterval {
		d = MinRefillInterval
	}
	return d
}

func (s *Store) MaxEnergy() int {
	var n int
	s.view(func(st *GameState, _ time.Time) { n = maxEnergy(s.reg, *st) })
	return n
}

func (s *Store) RefillInterval() time.Duration {
	var d time.Duration
	s.view(func(st *GameState, _ time.Time) { d = refillInterval(s.reg, *st) })
	return d
}

// Refill converts the time elapsed since the refill anchor into whole
// energy units and returns how many were added. The anchor moves to now on
// a refill, dropping any partial interval, and stays put while energy is
// full so time spent at the cap still counts once energy is spent.
func (s *Store) Refill() int {
	var added int
	s.update(func(st *GameState, now time.Time) bool {
		maxE := maxEnergy(s.reg, *st)
		st.MaxEnergy = maxE
		if st.Energy >= maxE {
			return false
		}

		units := int(now.Sub(st.LastEnergyRefillAt) / refillInterval(s.reg, *st))
		if units <= 0 {
			return false
		}

		next := st.Energy + units
		if next > maxE {
			next = maxE
		}
		added = next - st.Energy
		st.Energy = next
		st.LastEnergyRefillAt = now
		return true
	})
	return added
}

// NextEnergyIn is the wait until the next unit arrives; zero when full.
func (s *Store) NextEnergyIn() time.Duration {
	var d time.Duration
	s.view(func(st *GameState, now time.Time) {
		if st.Energy >= maxEnergy(s.reg, *st) {
			return
		}
		d = refillInterval(s.reg, *st) - now.Sub(st.LastEnergyRefillAt)
		if d < 0 {
			d = 0
		}
	})
	return d
}
