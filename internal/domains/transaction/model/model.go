package model

import (
	"fleet/shared/model"
	"time"

	"github.com/google/uuid"
)

const (
	TableName  = "transactions"
	EntityName = "transaction"

	FieldID        = "id"
	FieldBookingID = "booking_id"
)

// Transaction is an append-only entry recording how a booking ended.
// Exactly one of CompletionDate and CancellationDate is set.
type Transaction struct {
	ID               string     `db:"id"`
	BookingID        string     `db:"booking_id"`
	CarID            string     `db:"car_id"`
	CustomerID       string     `db:"customer_id"`
	Amount           float64    `db:"amount"`
	CompletionDate   *time.Time `db:"completion_date"`
	CancellationDate *time.Time `db:"cancellation_date"`
	Note             string     `db:"note"`
	model.Metadata
}

func NewCompletion(bookingID, carID, customerID string, amount float64, now time.Time, user string) Transaction {
	return Transaction{
		ID:             uuid.NewString(),
		BookingID:      bookingID,
		CarID:          carID,
		CustomerID:     customerID,
		Amount:         amount,
		CompletionDate: &now,
		Note:           "rental completed",
		Metadata:       model.NewMetadata(now, user),
	}
}

func NewCancellation(bookingID, carID, customerID string, amount float64, note string, now time.Time, user string) Transaction {
	return Transaction{
		ID:               uuid.NewString(),
		BookingID:        bookingID,
		CarID:            carID,
		CustomerID:       customerID,
		Amount:           amount,
		CancellationDate: &now,
		Note:             note,
		Metadata:         model.NewMetadata(now, user),
	}
}
