package model

import (
	"fleet/shared/model"
	"time"
)

const (
	TableName  = "waitlists"
	EntityName = "waitlist"

	FieldID                  = "id"
	FieldCarID               = "car_id"
	FieldCustomerID          = "customer_id"
	FieldStatus              = "status"
	FieldQueuedAt            = "queued_at"
	FieldNotifiedDate        = "notified_date"
	FieldNotificationMethod  = "notification_method"
	FieldNotificationSuccess = "notification_success"
	FieldNotificationError   = "notification_error"
)

const (
	StatusWaiting  = "waiting"
	StatusNotified = "notified"
)

const (
	MethodNone = "none"
)

type Waitlist struct {
	ID                  string     `db:"id"`
	CarID               string     `db:"car_id"`
	CustomerID          string     `db:"customer_id"`
	Status              string     `db:"status"`
	QueuedAt            time.Time  `db:"queued_at"`
	NotifiedDate        *time.Time `db:"notified_date"`
	NotificationMethod  *string    `db:"notification_method"`
	NotificationSuccess *bool      `db:"notification_success"`
	NotificationError   *string    `db:"notification_error"`
	model.Metadata
}

// Requeue moves a notified entry back to the end of the queue with its notification fields cleared.
func Requeue(now time.Time) map[string]any {
	return map[string]any{
		FieldStatus:              StatusWaiting,
		FieldQueuedAt:            now,
		FieldNotifiedDate:        nil,
		FieldNotificationMethod:  nil,
		FieldNotificationSuccess: nil,
		FieldNotificationError:   nil,
	}
}
