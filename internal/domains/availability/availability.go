// Package availability decides whether a date range can be reserved on a car,
// given the car's existing bookings and a post-rental maintenance buffer.
//
// All comparisons are made on calendar days. Both ends of every range are
// inclusive, so a booking ending on the 10th occupies the 10th.
package availability

import (
	"fleet/internal/domains/booking/model"
	"fleet/shared/constant"
	"sort"
	"time"
)

type Reason string

const (
	ReasonOccupied          Reason = "occupied"
	ReasonMaintenanceBuffer Reason = "maintenance buffer"
)

// Period is a span of days during which a car cannot be reserved.
type Period struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Reason          Reason    `json:"reason"`
	SourceBookingID string    `json:"source_booking_id"`
	IsMaintenance   bool      `json:"is_maintenance"`
}

type Result struct {
	IsValid   bool     `json:"is_valid"`
	Conflicts []Period `json:"conflicts"`
}

// Day strips the time of day, keeping the calendar date the value carries in its own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Days counts the calendar days in the inclusive range.
func Days(start, end time.Time) int {
	return int(Day(end).Sub(Day(start)).Hours()/constant.HoursPerDay) + 1
}

// RangesOverlap reports whether two inclusive day ranges share at least one day.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !Day(aStart).After(Day(bEnd)) && !Day(bStart).After(Day(aEnd))
}

// UnavailablePeriods lists the occupied span of every blocking booking, each followed
// by bufferDays of maintenance. Cancelled, rejected, returned and completed bookings
// contribute nothing. The result is ordered by start day.
func UnavailablePeriods(bookings []model.Booking, bufferDays int) []Period {
	periods := make([]Period, 0, len(bookings)*2)

	for _, booking := range bookings {
		if !booking.Blocks() {
			continue
		}

		end := Day(booking.EndDate)

		periods = append(periods, Period{
			Start:           Day(booking.StartDate),
			End:             end,
			Reason:          ReasonOccupied,
			SourceBookingID: booking.ID,
		})

		if bufferDays <= 0 {
			continue
		}

		periods = append(periods, Period{
			Start:           end.AddDate(0, 0, 1),
			End:             end.AddDate(0, 0, bufferDays),
			Reason:          ReasonMaintenanceBuffer,
			SourceBookingID: booking.ID,
			IsMaintenance:   true,
		})
	}

	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].Start.Before(periods[j].Start)
	})

	return periods
}

// ValidateRequestedRange checks a candidate range against the unavailable periods
// derived from bookings. Every overlapping period is reported, not just the first.
func ValidateRequestedRange(start, end time.Time, bookings []model.Booking, bufferDays int) Result {
	result := Result{IsValid: true, Conflicts: []Period{}}

	for _, period := range UnavailablePeriods(bookings, bufferDays) {
		if RangesOverlap(start, end, period.Start, period.End) {
			result.Conflicts = append(result.Conflicts, period)
		}
	}

	result.IsValid = len(result.Conflicts) == 0

	return result
}
