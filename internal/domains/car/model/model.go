package model

import "fleet/shared/model"

const (
	TableName  = "cars"
	EntityName = "car"

	FieldID          = "id"
	FieldPlateNumber = "plate_number"
	FieldModel       = "model"
	FieldDailyRate   = "daily_rate"
	FieldMileage     = "mileage"
	FieldStatus      = "status"
)

const (
	StatusAvailable   = "Available"
	StatusRented      = "Rented"
	StatusMaintenance = "Maintenance"
	StatusInactive    = "Inactive"
)

type Car struct {
	ID          string  `db:"id"`
	PlateNumber string  `db:"plate_number"`
	Model       string  `db:"model"`
	DailyRate   float64 `db:"daily_rate"`
	Mileage     int     `db:"mileage"`
	Status      string  `db:"status"`
	model.Metadata
}

// Bookable reports whether new reservations may be taken against the car.
func (c Car) Bookable() bool {
	return c.Status == StatusAvailable || c.Status == StatusRented
}
