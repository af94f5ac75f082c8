package fish

import "math"

// Upgrade ids known to the economy.
const (
	UpgradeBetterRod    = "betterRod"
	UpgradeLuckyCharm   = "luckyCharm"
	UpgradeEnergyBoost  = "energyBoost"
	UpgradeFastRecharge = "fastRecharge"
)

// Upgrade is a purchasable catalog entry. The player's owned level is kept
// by the economy, not here.
type Upgrade struct {
	ID             string
	Name           string
	Description    string
	Icon           string
	MaxLevel       int
	BaseCost       int
	CostMultiplier float64
	Effect         float64 // magnitude per level
}

// Cost is the price of buying the next level when currentLevel is owned.
// Only meaningful for currentLevel < MaxLevel.
func (u Upgrade) Cost(currentLevel int) int {
	if currentLevel < 0 {
		currentLevel = 0
	}
	return int(math.Floor(float64(u.BaseCost) * math.Pow(u.CostMultiplier, float64(currentLevel))))
}

// Bonus is the total effect granted by level owned levels.
func (u Upgrade) Bonus(level int) float64 {
	return float64(level) * u.Effect
}
