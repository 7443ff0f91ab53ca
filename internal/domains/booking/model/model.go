package model

import (
	"fleet/shared/model"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID              = "id"
	FieldCarID           = "car_id"
	FieldCustomerID      = "customer_id"
	FieldDriverID        = "driver_id"
	FieldStartDate       = "start_date"
	FieldEndDate         = "end_date"
	FieldBookingStatus   = "booking_status"
	FieldPaymentStatus   = "payment_status"
	FieldIsPay           = "is_pay"
	FieldIsCancel        = "is_cancel"
	FieldIsRelease       = "is_release"
	FieldIsReturned      = "is_returned"
	FieldPaymentDeadline = "payment_deadline"
	FieldTotalAmount     = "total_amount"
	FieldAmountPaid      = "amount_paid"
	FieldBalance         = "balance"
	FieldCancelReason    = "cancel_reason"
	FieldCreatedAt       = "created_at"
)

const (
	StatusPending    = "Pending"
	StatusConfirmed  = "Confirmed"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
	StatusRejected   = "Rejected"
	StatusReturned   = "Returned"
)

const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// BlockingStatuses are the statuses that hold a car for their dates.
var BlockingStatuses = []string{StatusPending, StatusConfirmed, StatusInProgress}

// OccupyingStatuses are the statuses that keep a car out of the Available state.
var OccupyingStatuses = []string{StatusConfirmed, StatusInProgress}

type Booking struct {
	ID              string    `db:"id"`
	CarID           string    `db:"car_id"`
	CustomerID      string    `db:"customer_id"`
	DriverID        *string   `db:"driver_id"`
	StartDate       time.Time `db:"start_date"`
	EndDate         time.Time `db:"end_date"`
	BookingStatus   string    `db:"booking_status"`
	PaymentStatus   string    `db:"payment_status"`
	IsPay           bool      `db:"is_pay"`
	IsCancel        bool      `db:"is_cancel"`
	IsRelease       bool      `db:"is_release"`
	IsReturned      bool      `db:"is_returned"`
	PaymentDeadline time.Time `db:"payment_deadline"`
	TotalAmount     float64   `db:"total_amount"`
	AmountPaid      float64   `db:"amount_paid"`
	Balance         float64   `db:"balance"`
	CancelReason    *string   `db:"cancel_reason"`
	model.Metadata
}

// Blocks reports whether the booking still holds its dates on the car.
func (b Booking) Blocks() bool {
	if b.IsCancel {
		return false
	}

	switch b.BookingStatus {
	case StatusPending, StatusConfirmed, StatusInProgress:
		return true
	default:
		return false
	}
}

// PaymentStatusFor derives the payment status from what has been paid against the total.
func PaymentStatusFor(paid, total float64) string {
	switch {
	case paid <= 0:
		return PaymentStatusUnpaid
	case paid < total:
		return PaymentStatusPartial
	default:
		return PaymentStatusPaid
	}
}

const (
	sameDayWindow   = time.Hour
	shortLeadWindow = 24 * time.Hour
	longLeadWindow  = 72 * time.Hour
	shortLeadDays   = 3
)

// PaymentDeadline is how long an unpaid reservation is held: one hour when the rental starts
// today, a day when it starts within three days, three days otherwise.
func PaymentDeadline(now, start time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	lead := int(startDay.Sub(today).Hours() / 24)

	switch {
	case lead <= 0:
		return now.Add(sameDayWindow)
	case lead <= shortLeadDays:
		return now.Add(shortLeadWindow)
	default:
		return now.Add(longLeadWindow)
	}
}
