// Package settlement prices a returned car by comparing its return inspection
// with the inspection taken when it was released.
package settlement

import (
	"fleet/internal/domains/fee/model"
	"math"
	"sort"
	"strings"
)

const (
	GasLevelHigh = "High"
	GasLevelMid  = "Mid"
	GasLevelLow  = "Low"
)

const (
	EquipmentComplete   = "complete"
	EquipmentIncomplete = "incomplete"
)

const (
	DamageNone  = "none"
	DamageMinor = "minor"
	DamageMajor = "major"
)

const (
	itemSeparator = ","
)

var gasLevels = map[string]int{
	strings.ToLower(GasLevelHigh): 3,
	strings.ToLower(GasLevelMid):  2,
	strings.ToLower(GasLevelLow):  1,
}

var damageMultipliers = map[string]float64{
	DamageNone:  0,
	DamageMinor: 1,
	DamageMajor: 3,
}

// Release is the part of the release inspection that settlement depends on.
type Release struct {
	GasLevel        string
	EquipmentStatus string
	EquipmentItems  string
}

// Return is the return inspection as reported by staff.
type Return struct {
	GasLevel        string
	EquipmentStatus string
	EquipmentItems  string
	Damage          string
	IsClean         bool
	HasStain        bool
}

type Breakdown struct {
	GasLevelFee      float64  `json:"gas_level_fee"`
	EquipmentLossFee float64  `json:"equipment_loss_fee"`
	DamageFee        float64  `json:"damage_fee"`
	CleaningFee      float64  `json:"cleaning_fee"`
	StainRemovalFee  float64  `json:"stain_removal_fee"`
	NewlyMissing     []string `json:"newly_missing_items"`
	TotalFee         float64  `json:"total_fee"`
}

// Calculate prices the return. It reads nothing but its arguments, so a preview and the
// committed return produce the same breakdown for the same inputs.
func Calculate(release Release, ret Return, fees model.Schedule) Breakdown {
	breakdown := Breakdown{}

	levelsLost := GasLevel(release.GasLevel) - GasLevel(ret.GasLevel)
	if GasLevel(release.GasLevel) > 0 && GasLevel(ret.GasLevel) > 0 && levelsLost > 0 {
		breakdown.GasLevelFee = float64(levelsLost) * fees.Amount(model.KeyGasLevel)
	}

	breakdown.NewlyMissing = NewlyMissingItems(release, ret)
	breakdown.EquipmentLossFee = float64(len(breakdown.NewlyMissing)) * fees.Amount(model.KeyEquipmentLoss)

	breakdown.DamageFee = damageMultipliers[normalize(ret.Damage)] * fees.Amount(model.KeyDamage)

	if !ret.IsClean {
		breakdown.CleaningFee = fees.Amount(model.KeyCleaning)

		if ret.HasStain {
			breakdown.StainRemovalFee = fees.Amount(model.KeyStainRemoval)
			breakdown.CleaningFee += breakdown.StainRemovalFee
		}
	}

	breakdown.TotalFee = round(breakdown.GasLevelFee + breakdown.EquipmentLossFee + breakdown.DamageFee + breakdown.CleaningFee)

	return breakdown
}

// GasLevel maps a qualitative level to its numeric rank. Unknown levels rank 0.
func GasLevel(level string) int {
	return gasLevels[normalize(level)]
}

// NewlyMissingItems lists the items reported missing at return that were not already
// missing at release, sorted for a stable result.
func NewlyMissingItems(release Release, ret Return) []string {
	if normalize(ret.EquipmentStatus) != EquipmentIncomplete {
		return []string{}
	}

	known := map[string]struct{}{}
	if normalize(release.EquipmentStatus) == EquipmentIncomplete {
		for _, item := range SplitItems(release.EquipmentItems) {
			known[item] = struct{}{}
		}
	}

	missing := []string{}
	for _, item := range SplitItems(ret.EquipmentItems) {
		if _, ok := known[item]; ok {
			continue
		}

		missing = append(missing, item)
	}

	sort.Strings(missing)

	return missing
}

// SplitItems parses a comma separated item list into trimmed, lower-cased, de-duplicated names.
func SplitItems(items string) []string {
	seen := map[string]struct{}{}
	result := []string{}

	for _, raw := range strings.Split(items, itemSeparator) {
		item := normalize(raw)
		if item == "" {
			continue
		}

		if _, ok := seen[item]; ok {
			continue
		}

		seen[item] = struct{}{}
		result = append(result, item)
	}

	return result
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func round(value float64) float64 {
	return math.Round(value*100) / 100
}
