package model

import (
	"fleet/internal/domains/settlement"
	"fleet/shared/model"

	"github.com/lib/pq"
)

const (
	ReleaseTableName  = "releases"
	ReleaseEntityName = "release"
	ReturnTableName   = "returns"
	ReturnEntityName  = "return"

	FieldID        = "id"
	FieldBookingID = "booking_id"
	FieldImageURLs = "image_urls"
)

// Release is the inspection taken when the car is handed over.
type Release struct {
	ID               string         `db:"id"`
	BookingID        string         `db:"booking_id"`
	DriverID         *string        `db:"driver_id"`
	EquipmentStatus  string         `db:"equipment_status"`
	EquipmentItems   string         `db:"equipment_items"`
	GasLevel         string         `db:"gas_level"`
	LicensePresented bool           `db:"license_presented"`
	ImageURLs        pq.StringArray `db:"image_urls"`
	model.Metadata
}

func (r Release) Settlement() settlement.Release {
	return settlement.Release{
		GasLevel:        r.GasLevel,
		EquipmentStatus: r.EquipmentStatus,
		EquipmentItems:  r.EquipmentItems,
	}
}

// Return is the inspection taken when the car comes back, with the fees it produced.
type Return struct {
	ID               string  `db:"id"`
	BookingID        string  `db:"booking_id"`
	Odometer         int     `db:"odometer"`
	GasLevel         string  `db:"gas_level"`
	EquipmentStatus  string  `db:"equipment_status"`
	EquipmentItems   string  `db:"equipment_items"`
	Damage           string  `db:"damage"`
	IsClean          bool    `db:"is_clean"`
	HasStain         bool    `db:"has_stain"`
	GasLevelFee      float64 `db:"gas_level_fee"`
	EquipmentLossFee float64 `db:"equipment_loss_fee"`
	DamageFee        float64 `db:"damage_fee"`
	CleaningFee      float64 `db:"cleaning_fee"`
	StainRemovalFee  float64 `db:"stain_removal_fee"`
	TotalFee         float64 `db:"total_fee"`
	model.Metadata
}

func (r *Return) ApplyBreakdown(breakdown settlement.Breakdown) {
	r.GasLevelFee = breakdown.GasLevelFee
	r.EquipmentLossFee = breakdown.EquipmentLossFee
	r.DamageFee = breakdown.DamageFee
	r.CleaningFee = breakdown.CleaningFee
	r.StainRemovalFee = breakdown.StainRemovalFee
	r.TotalFee = breakdown.TotalFee
}
