package model

import "fleet/shared/model"

const (
	TableName  = "drivers"
	EntityName = "driver"

	FieldID     = "id"
	FieldStatus = "status"
)

const (
	StatusAvailable = "Available"
	StatusOnTrip    = "On Trip"
)

type Driver struct {
	ID       string `db:"id"`
	FullName string `db:"full_name"`
	Status   string `db:"status"`
	model.Metadata
}
