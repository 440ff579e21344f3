package game

import "math"

// Tuning constants shared by the reducer and the snapshot decoder.
const (
	// ComboWindow is the number of clicks that completes one combo cycle.
	ComboWindow = 10

	// ComboBonusFactor scales cpc into the bonus paid when a combo completes.
	ComboBonusFactor = 10

	// MinerCostGrowth compounds an auto-miner's price per unit owned.
	MinerCostGrowth = 1.15

	// MaxEvolution is the highest evolution tier of upgrades and auto-miners.
	MaxEvolution = 3

	// EvolutionStep is the contribution gained per evolution tier.
	EvolutionStep = 0.5

	// AbilityUpgradeGrowth compounds an ability's upgrade price per level.
	AbilityUpgradeGrowth = 2.0

	// RebirthBaseRequirement is the coin balance needed to rebirth.
	RebirthBaseRequirement = 1e9

	// RebirthBonusIncrement is added to bonusMultiplier on every rebirth.
	RebirthBonusIncrement = 0.5

	// OfflineMinimumSeconds is the shortest absence worth a catch-up.
	OfflineMinimumSeconds = 60
)

// EvolutionFactor returns the contribution multiplier of an evolution tier.
func EvolutionFactor(tier int) float64 {
	return 1 + float64(tier)*EvolutionStep
}

// MinerCost returns the price of the next unit of a miner with count units.
func MinerCost(baseCost float64, count int) float64 {
	return baseCost * math.Pow(MinerCostGrowth, float64(count))
}

// EvolutionPrice returns the gold price of raising an item from tier to tier+1.
func EvolutionPrice(evolutionCost int64, tier int) int64 {
	return evolutionCost * int64(tier+1)
}
