package dto

import (
	"fleet/internal/domains/waitlist/model"
	gDto "fleet/shared/dto"
	"time"
)

type JoinWaitlistRequest struct {
	CustomerID string `json:"customer_id" validate:"omitempty,uuid"`
}

type WaitlistResponse struct {
	ID                  string     `json:"id"`
	CarID               string     `json:"car_id"`
	CustomerID          string     `json:"customer_id"`
	Status              string     `json:"status"`
	QueuedAt            time.Time  `json:"queued_at"`
	NotifiedDate        *time.Time `json:"notified_date,omitempty"`
	NotificationMethod  *string    `json:"notification_method,omitempty"`
	NotificationSuccess *bool      `json:"notification_success,omitempty"`
	gDto.Metadata
}

func (r *WaitlistResponse) FromModel(model model.Waitlist) {
	r.ID = model.ID
	r.CarID = model.CarID
	r.CustomerID = model.CustomerID
	r.Status = model.Status
	r.QueuedAt = model.QueuedAt
	r.NotifiedDate = model.NotifiedDate
	r.NotificationMethod = model.NotificationMethod
	r.NotificationSuccess = model.NotificationSuccess
	r.Metadata.FromModel(model.Metadata)
}

type GetWaitlistResponse struct {
	Entries []WaitlistResponse `json:"entries"`
}

func (r *GetWaitlistResponse) FromModels(models []model.Waitlist) {
	r.Entries = make([]WaitlistResponse, len(models))
	for i, mod := range models {
		r.Entries[i].FromModel(mod)
	}
}

// NotifyReport summarises one cascade run.
type NotifyReport struct {
	CarID    string `json:"car_id"`
	Total    int    `json:"total"`
	Notified int    `json:"notified"`
	Failed   int    `json:"failed"`
	Skipped  int    `json:"skipped"`
}
