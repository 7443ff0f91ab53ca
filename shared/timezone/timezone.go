// Package timezone pins clock and calendar arithmetic to the rental office's zone, set through
// APP_TIMEZONE. Booking dates are calendar days in that zone, so "today", payment deadlines and
// the dates customers type must all be read in it.
package timezone

import (
	"fleet/config"
	"fleet/shared/constant"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultZone = "UTC"

var appLocation = time.UTC

func init() {
	appLocation = Load(config.Get().App.Timezone)
}

// Load resolves an IANA zone name. Unknown names fall back to UTC with an error log rather
// than stopping the boot.
func Load(name string) *time.Location {
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC")

		name = defaultZone
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Failed to load timezone, falling back to UTC")

		return time.UTC
	}

	log.Info().Str("timezone", loc.String()).Msg("Application timezone initialized")

	return loc
}

func Now() time.Time {
	return time.Now().In(appLocation)
}

// Today is midnight of the current calendar day in the application zone.
func Today() time.Time {
	now := Now()

	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, appLocation)
}

func ToAppTime(t time.Time) time.Time {
	return t.In(appLocation)
}

func GetLocation() *time.Location {
	return appLocation
}

// Parse reads value as a wall clock time in the application zone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, appLocation)
}

// ParseDay reads a YYYY-MM-DD calendar day.
func ParseDay(value string) (time.Time, error) {
	return Parse(constant.DayFormat, value)
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}
