package dto

import (
	"fleet/internal/domains/availability"
	"fleet/internal/domains/booking/model"
	"fleet/internal/domains/settlement"
	"fleet/shared"
	"fleet/shared/constant"
	gDto "fleet/shared/dto"
	"fleet/shared/timezone"
	"fmt"
	"time"
)

type CreateBookingRequest struct {
	CarID      string `json:"car_id"      validate:"required,uuid"`
	CustomerID string `json:"customer_id" validate:"omitempty,uuid"`
	StartDate  string `json:"start_date"  validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date"    validate:"required,datetime=2006-01-02"`
}

// Dates parses the requested range in the application timezone.
func (c *CreateBookingRequest) Dates() (start, end time.Time, err error) {
	start, err = timezone.ParseDay(c.StartDate)
	if err != nil {
		return start, end, fmt.Errorf("invalid start_date: %w", err)
	}

	end, err = timezone.ParseDay(c.EndDate)
	if err != nil {
		return start, end, fmt.Errorf("invalid end_date: %w", err)
	}

	return start, end, nil
}

type ConfirmBookingRequest struct {
	AmountPaid float64 `json:"amount_paid" validate:"gt=0"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type ReleaseBookingRequest struct {
	DriverID         string   `json:"driver_id"         validate:"omitempty,uuid"`
	EquipmentStatus  string   `json:"equipment_status"  validate:"required,oneof=complete incomplete"`
	EquipmentItems   string   `json:"equipment_items"   validate:"required_if=EquipmentStatus incomplete,max=500"`
	GasLevel         string   `json:"gas_level"         validate:"required,oneof=High Mid Low"`
	LicensePresented bool     `json:"license_presented"`
	Images           []string `json:"images"            validate:"omitempty,max=6,dive,mimetypes=image/png image/jpeg image/jpg image/webp,maxfilesize=5"`
}

func (r *ReleaseBookingRequest) Settlement() settlement.Release {
	return settlement.Release{
		GasLevel:        r.GasLevel,
		EquipmentStatus: r.EquipmentStatus,
		EquipmentItems:  r.EquipmentItems,
	}
}

// clean reads an optional is_clean flag. A return that says nothing about cleanliness is not
// charged a cleaning fee.
func clean(isClean *bool) bool {
	return isClean == nil || *isClean
}

type ReturnBookingRequest struct {
	Odometer        int      `json:"odometer"         validate:"gte=0"`
	GasLevel        string   `json:"gas_level"        validate:"required,oneof=High Mid Low"`
	EquipmentStatus string   `json:"equipment_status" validate:"required,oneof=complete incomplete"`
	EquipmentItems  string   `json:"equipment_items"  validate:"required_if=EquipmentStatus incomplete,max=500"`
	Damage          string   `json:"damage"           validate:"required,oneof=none minor major"`
	IsClean         *bool    `json:"is_clean"`
	HasStain        bool     `json:"has_stain"`
	Payment         *float64 `json:"payment"          validate:"omitempty,gte=0"`
}

func (r *ReturnBookingRequest) Settlement() settlement.Return {
	return settlement.Return{
		GasLevel:        r.GasLevel,
		EquipmentStatus: r.EquipmentStatus,
		EquipmentItems:  r.EquipmentItems,
		Damage:          r.Damage,
		IsClean:         clean(r.IsClean),
		HasStain:        r.HasStain,
	}
}

// PreviewReturnRequest carries hypothetical return inputs; nothing is persisted.
type PreviewReturnRequest struct {
	GasLevel        string `json:"gas_level"        validate:"required,oneof=High Mid Low"`
	EquipmentStatus string `json:"equipment_status" validate:"required,oneof=complete incomplete"`
	EquipmentItems  string `json:"equipment_items"  validate:"max=500"`
	Damage          string `json:"damage"           validate:"required,oneof=none minor major"`
	IsClean         *bool  `json:"is_clean"`
	HasStain        bool   `json:"has_stain"`
}

func (r *PreviewReturnRequest) Settlement() settlement.Return {
	return settlement.Return{
		GasLevel:        r.GasLevel,
		EquipmentStatus: r.EquipmentStatus,
		EquipmentItems:  r.EquipmentItems,
		Damage:          r.Damage,
		IsClean:         clean(r.IsClean),
		HasStain:        r.HasStain,
	}
}

type BookingResponse struct {
	ID              string  `json:"id"`
	CarID           string  `json:"car_id"`
	CustomerID      string  `json:"customer_id"`
	DriverID        *string `json:"driver_id,omitempty"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	BookingStatus   string  `json:"booking_status"`
	PaymentStatus   string  `json:"payment_status"`
	IsPay           bool    `json:"is_pay"`
	IsCancel        bool    `json:"is_cancel"`
	IsRelease       bool    `json:"is_release"`
	IsReturned      bool    `json:"is_returned"`
	PaymentDeadline string  `json:"payment_deadline"`
	TotalAmount     float64 `json:"total_amount"`
	AmountPaid      float64 `json:"amount_paid"`
	Balance         float64 `json:"balance"`
	CancelReason    *string `json:"cancel_reason,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.CarID = model.CarID
	r.CustomerID = model.CustomerID
	r.DriverID = model.DriverID
	r.StartDate = model.StartDate.Format(constant.DayFormat)
	r.EndDate = model.EndDate.Format(constant.DayFormat)
	r.BookingStatus = model.BookingStatus
	r.PaymentStatus = model.PaymentStatus
	r.IsPay = model.IsPay
	r.IsCancel = model.IsCancel
	r.IsRelease = model.IsRelease
	r.IsReturned = model.IsReturned
	r.PaymentDeadline = timezone.Format(model.PaymentDeadline, constant.DateFormat)
	r.TotalAmount = model.TotalAmount
	r.AmountPaid = model.AmountPaid
	r.Balance = model.Balance
	r.CancelReason = model.CancelReason
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

type ReturnResponse struct {
	Breakdown settlement.Breakdown `json:"fee_breakdown"`
	Booking   BookingResponse      `json:"booking"`
}

type AvailabilityResponse struct {
	CarID      string                `json:"car_id"`
	BufferDays int                   `json:"buffer_days"`
	Periods    []availability.Period `json:"unavailable_periods"`
}

type GetBookingsFilter struct {
	CarID         string
	CustomerID    string
	BookingStatus string
}
