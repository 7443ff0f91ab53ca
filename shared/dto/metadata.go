package dto

import (
	"fleet/shared/constant"
	"fleet/shared/model"
	"fleet/shared/timezone"
)

// Metadata is the audit trail of a row as the API shows it. Timestamps are rendered in the
// application zone; the actor is "system" for changes made by the reclaimer or the cascade.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
	CreatedBy  string `json:"created_by,omitempty"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

func (m *Metadata) FromModel(model model.Metadata) {
	m.CreatedAt = timezone.Format(model.CreatedAt, constant.DateFormat)
	m.ModifiedAt = timezone.Format(model.ModifiedAt, constant.DateFormat)
	m.CreatedBy = model.CreatedBy
	m.ModifiedBy = model.ModifiedBy
}
