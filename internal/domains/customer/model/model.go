package model

import "fleet/shared/model"

const (
	TableName  = "customers"
	EntityName = "customer"

	FieldID            = "id"
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldFullName      = "full_name"
	FieldNotifyEnabled = "notify_enabled"
	FieldNotifySMS     = "notify_sms"
	FieldNotifyEmail   = "notify_email"
)

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

type Customer struct {
	ID            string  `db:"id"`
	Email         *string `db:"email"`
	Phone         *string `db:"phone"`
	FullName      string  `db:"full_name"`
	NotifyEnabled bool    `db:"notify_enabled"`
	NotifySMS     bool    `db:"notify_sms"`
	NotifyEmail   bool    `db:"notify_email"`
	model.Metadata
}

// Channels lists the notification channels the customer opted into and has contact details for.
func (c Customer) Channels() []string {
	if !c.NotifyEnabled {
		return nil
	}

	channels := []string{}

	if c.NotifySMS && c.Phone != nil && *c.Phone != "" {
		channels = append(channels, ChannelSMS)
	}

	if c.NotifyEmail && c.Email != nil && *c.Email != "" {
		channels = append(channels, ChannelEmail)
	}

	return channels
}
