// Package reclaimer removes Pending bookings whose payment deadline passed without payment.
// Reclaimed bookings are hard-deleted; a user cancellation keeps the row as Cancelled instead.
package reclaimer

//go:generate go run go.uber.org/mock/mockgen -source=./reclaimer.go -destination=./mocks/reclaimer_mock.go -package=mocks

import (
	"context"
	"fleet/config"
	"fleet/infras/otel"
	"fleet/infras/postgres"
	bookingModel "fleet/internal/domains/booking/model"
	bookingRepo "fleet/internal/domains/booking/repository"
	bookingService "fleet/internal/domains/booking/service"
	transactionModel "fleet/internal/domains/transaction/model"
	transactionRepo "fleet/internal/domains/transaction/repository"
	"fleet/internal/events"
	"fleet/shared"
	"fleet/shared/constant"
	gDto "fleet/shared/dto"
	"fleet/shared/timezone"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	actor           = "system"
	reclaimNote     = "payment deadline expired"
	defaultInterval = 5 * time.Minute
	argDeadline     = "reclaim_deadline"
	argLookback     = "reclaim_lookback"
)

type Failure struct {
	BookingID string `json:"booking_id"`
	Error     string `json:"error"`
}

type Report struct {
	Scanned   int       `json:"scanned"`
	Reclaimed int       `json:"reclaimed"`
	Skipped   int       `json:"skipped"`
	Failed    []Failure `json:"failed"`
}

type Reclaimer interface {
	// Sweep reclaims every expired reservation found in the lookback window. A booking that
	// fails is recorded in the report and does not stop the others.
	Sweep(ctx context.Context) (Report, error)
	// Run sweeps on the configured interval until ctx is done.
	Run(ctx context.Context)
}

type reclaimerImpl struct {
	transactor      postgres.Transactor
	repo            bookingRepo.Booking
	transactionRepo transactionRepo.Transaction
	occupancy       bookingService.Occupancy
	publisher       events.Publisher
	cfg             *config.Config
	otel            otel.Otel
}

func New(
	transactor postgres.Transactor,
	repo bookingRepo.Booking,
	transactionRepo transactionRepo.Transaction,
	occupancy bookingService.Occupancy,
	publisher events.Publisher,
	cfg *config.Config,
	otel otel.Otel,
) Reclaimer {
	return &reclaimerImpl{
		transactor:      transactor,
		repo:            repo,
		transactionRepo: transactionRepo,
		occupancy:       occupancy,
		publisher:       publisher,
		cfg:             cfg,
		otel:            otel,
	}
}

func (r *reclaimerImpl) Run(ctx context.Context) {
	interval := time.Duration(r.cfg.Rental.ReclaimIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}

	log.Info().Dur("interval", interval).Msg("reservation reclaimer started")

	// reservations that lapsed while the process was down are reclaimed right away
	_, _ = r.Sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reservation reclaimer stopped")

			return
		case <-ticker.C:
			// a failed run is retried on the next tick
			_, _ = r.Sweep(ctx)
		}
	}
}

func (r *reclaimerImpl) Sweep(ctx context.Context) (report Report, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelWorkerScopeName, constant.OtelWorkerScopeName+".Sweep")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	report.Failed = []Failure{}

	now := timezone.Now()
	filter := ExpiredFilter(now, now.AddDate(0, 0, -r.cfg.Rental.ReclaimLookbackDays))

	expired, err := r.repo.GetAll(ctx, gDto.QueryParams{
		SortBy:  bookingModel.TableName + "." + bookingModel.FieldPaymentDeadline,
		SortDir: gDto.SortDirAsc,
	}, filter, bookingModel.FieldID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get expired bookings")

		return report, fmt.Errorf("failed to get expired bookings: %w", err)
	}

	report.Scanned = len(expired)

	for _, booking := range expired {
		reclaimed, err := r.reclaim(ctx, booking.ID, filter)

		switch {
		case err != nil:
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to reclaim booking")

			report.Failed = append(report.Failed, Failure{BookingID: booking.ID, Error: err.Error()})
		case reclaimed:
			report.Reclaimed++
		default:
			report.Skipped++
		}
	}

	if report.Scanned > 0 {
		log.Info().
			Int("scanned", report.Scanned).
			Int("reclaimed", report.Reclaimed).
			Int("skipped", report.Skipped).
			Int("failed", len(report.Failed)).
			Msg("reservation sweep finished")
	}

	return report, nil
}

// reclaim deletes one booking in its own transaction. The row is re-read under lock with the
// eligibility conditions, so a booking confirmed (or reclaimed) since the scan is skipped.
func (r *reclaimerImpl) reclaim(ctx context.Context, bookingID string, eligible gDto.FilterGroup) (bool, error) {
	var (
		booking bookingModel.Booking
		freed   bool
	)

	err := r.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		filter := gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorAnd,
			Filters: []any{
				eligible,
				gDto.Filter{Field: bookingModel.FieldID, Value: bookingID, Operator: gDto.FilterOperatorEq, Table: bookingModel.TableName},
			},
		}

		var err error

		booking, err = r.repo.GetForUpdateTx(ctx, tx, filter)
		if err != nil {
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		if booking.ID == constant.Empty {
			return nil
		}

		err = r.repo.DeleteTx(ctx, tx, shared.FilterByID(booking.ID, bookingModel.FieldID, bookingModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to delete booking: %w", err)
		}

		entry := transactionModel.NewCancellation(booking.ID, booking.CarID, booking.CustomerID, booking.AmountPaid, reclaimNote, timezone.Now(), actor)

		err = r.transactionRepo.InsertTx(ctx, tx, entry)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}

		freed, err = r.occupancy.FreeCarTx(ctx, tx, booking.CarID, booking.ID, actor)
		if err != nil {
			return fmt.Errorf("failed to free car: %w", err)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	if booking.ID == constant.Empty {
		log.Info().Str("booking_id", bookingID).Msg("booking is no longer eligible for reclaim")

		return false, nil
	}

	log.Info().Str("booking_id", booking.ID).Str("car_id", booking.CarID).Msg("expired reservation reclaimed")

	if freed {
		r.publisher.CarAvailable(context.WithoutCancel(ctx), booking.CarID)
	}

	return true, nil
}

// ExpiredFilter matches unpaid Pending bookings whose payment deadline is before now and
// which were created after lookbackStart.
func ExpiredFilter(now, lookbackStart time.Time) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: bookingModel.FieldBookingStatus, Value: bookingModel.StatusPending, Operator: gDto.FilterOperatorEq, Table: bookingModel.TableName},
			gDto.Filter{Field: bookingModel.FieldIsPay, Value: false, Operator: gDto.FilterOperatorEq, Table: bookingModel.TableName},
			gDto.Filter{Field: bookingModel.FieldIsCancel, Value: false, Operator: gDto.FilterOperatorEq, Table: bookingModel.TableName},
			gDto.Filter{ArgName: argDeadline, Field: bookingModel.FieldPaymentDeadline, Value: now, Operator: gDto.FilterOperatorLess, Table: bookingModel.TableName},
			gDto.Filter{ArgName: argLookback, Field: bookingModel.FieldCreatedAt, Value: lookbackStart, Operator: gDto.FilterOperatorGreaterEq, Table: bookingModel.TableName},
		},
	}
}
