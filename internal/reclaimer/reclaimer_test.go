package reclaimer_test

import (
	"context"
	"errors"
	"fleet/config"
	otelMocks "fleet/infras/otel/mocks"
	postgresMocks "fleet/infras/postgres/mocks"
	bookingMocks "fleet/internal/domains/booking/mocks"
	bookingModel "fleet/internal/domains/booking/model"
	transactionMocks "fleet/internal/domains/transaction/mocks"
	transactionModel "fleet/internal/domains/transaction/model"
	eventMocks "fleet/internal/events/mocks"
	"fleet/internal/reclaimer"
	gDto "fleet/shared/dto"
	"fleet/shared/timezone"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	carID    = "6f1c2a9e-0b7d-4e55-9d0f-6a2b1f3c4d5e"
	otherCar = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

var errStore = errors.New("connection refused")

type deps struct {
	repo        *bookingMocks.MockBooking
	occupancy   *bookingMocks.MockOccupancy
	transaction *transactionMocks.MockTransaction
	publisher   *eventMocks.MockPublisher
}

func newReclaimer(t *testing.T) (reclaimer.Reclaimer, deps) {
	t.Helper()

	ctrl := gomock.NewController(t)

	d := deps{
		repo:        bookingMocks.NewMockBooking(ctrl),
		occupancy:   bookingMocks.NewMockOccupancy(ctrl),
		transaction: transactionMocks.NewMockTransaction(ctrl),
		publisher:   eventMocks.NewMockPublisher(ctrl),
	}

	cfg := &config.Config{}
	cfg.Rental.ReclaimLookbackDays = 30
	cfg.Rental.ReclaimIntervalSeconds = 300

	return reclaimer.New(
		postgresMocks.NewTransactor(),
		d.repo,
		d.transaction,
		d.occupancy,
		d.publisher,
		cfg,
		otelMocks.NewOtel(),
	), d
}

func expired(id, car string) bookingModel.Booking {
	return bookingModel.Booking{
		ID:              id,
		CarID:           car,
		CustomerID:      "customer-" + id,
		BookingStatus:   bookingModel.StatusPending,
		PaymentDeadline: timezone.Now().Add(-time.Minute),
	}
}

// lockReturns answers the per-booking re-lock, keyed by the booking id in the filter.
func lockReturns(rows map[string]bookingModel.Booking) func(context.Context, *sqlx.Tx, gDto.FilterGroup, ...string) (bookingModel.Booking, error) {
	return func(_ context.Context, _ *sqlx.Tx, filter gDto.FilterGroup, _ ...string) (bookingModel.Booking, error) {
		_, args := filter.GetWhereClause()
		id, _ := args[bookingModel.FieldID].(string)

		return rows[id], nil
	}
}

func TestSweep(t *testing.T) {
	t.Run("reclaims a reservation one minute past its deadline and announces the freed car", func(t *testing.T) {
		r, d := newReclaimer(t)

		booking := expired("b-1", carID)

		d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), bookingModel.FieldID).
			Return([]bookingModel.Booking{{ID: booking.ID}}, nil)
		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(lockReturns(map[string]bookingModel.Booking{booking.ID: booking}))
		d.repo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) error {
				_, args := filter.GetWhereClause()
				assert.Equal(t, booking.ID, args[bookingModel.FieldID])

				return nil
			})
		d.transaction.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, entry transactionModel.Transaction) error {
				assert.Equal(t, booking.ID, entry.BookingID)
				assert.Equal(t, carID, entry.CarID)
				assert.NotNil(t, entry.CancellationDate)
				assert.Nil(t, entry.CompletionDate)
				assert.Equal(t, "payment deadline expired", entry.Note)

				return nil
			})
		d.occupancy.EXPECT().FreeCarTx(gomock.Any(), gomock.Any(), carID, booking.ID, "system").Return(true, nil)
		d.publisher.EXPECT().CarAvailable(gomock.Any(), carID)

		report, err := r.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, reclaimer.Report{Scanned: 1, Reclaimed: 1, Failed: []reclaimer.Failure{}}, report)
	})

	t.Run("booking confirmed after the scan is left alone", func(t *testing.T) {
		r, d := newReclaimer(t)

		d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]bookingModel.Booking{{ID: "b-1"}}, nil)
		// the eligibility filter no longer matches a Confirmed row
		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(bookingModel.Booking{}, nil)

		report, err := r.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, report.Scanned)
		assert.Equal(t, 0, report.Reclaimed)
		assert.Equal(t, 1, report.Skipped)
		assert.Empty(t, report.Failed)
	})

	t.Run("one failing booking does not stop the sweep", func(t *testing.T) {
		r, d := newReclaimer(t)

		first := expired("b-1", carID)
		second := expired("b-2", otherCar)

		d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]bookingModel.Booking{{ID: first.ID}, {ID: second.ID}}, nil)
		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(lockReturns(map[string]bookingModel.Booking{first.ID: first, second.ID: second})).
			Times(2)

		gomock.InOrder(
			d.repo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errStore),
			d.repo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		)

		d.transaction.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.occupancy.EXPECT().FreeCarTx(gomock.Any(), gomock.Any(), otherCar, second.ID, gomock.Any()).Return(false, nil)

		report, err := r.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, report.Scanned)
		assert.Equal(t, 1, report.Reclaimed)
		require.Len(t, report.Failed, 1)
		assert.Equal(t, first.ID, report.Failed[0].BookingID)
		assert.Contains(t, report.Failed[0].Error, "failed to delete booking")
	})

	t.Run("car still rented by another booking is not announced", func(t *testing.T) {
		r, d := newReclaimer(t)

		booking := expired("b-1", carID)

		d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]bookingModel.Booking{{ID: booking.ID}}, nil)
		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking, nil)
		d.repo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.transaction.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.occupancy.EXPECT().FreeCarTx(gomock.Any(), gomock.Any(), carID, booking.ID, gomock.Any()).Return(false, nil)

		report, err := r.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, report.Reclaimed)
	})

	t.Run("free car failure is recorded against the booking", func(t *testing.T) {
		r, d := newReclaimer(t)

		booking := expired("b-1", carID)

		d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]bookingModel.Booking{{ID: booking.ID}}, nil)
		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking, nil)
		d.repo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.transaction.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.occupancy.EXPECT().FreeCarTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errStore)

		report, err := r.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, report.Reclaimed)
		require.Len(t, report.Failed, 1)
	})

	t.Run("nothing eligible", func(t *testing.T) {
		r, d := newReclaimer(t)

		d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		report, err := r.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, reclaimer.Report{Failed: []reclaimer.Failure{}}, report)
	})

	t.Run("scan failure is returned for the next run to retry", func(t *testing.T) {
		r, d := newReclaimer(t)

		d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errStore)

		_, err := r.Sweep(context.Background())
		require.ErrorIs(t, err, errStore)
	})

	t.Run("scan is ordered by deadline and bounded by the lookback window", func(t *testing.T) {
		r, d := newReclaimer(t)

		d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]bookingModel.Booking, error) {
				assert.Equal(t, "bookings.payment_deadline", params.SortBy)
				assert.Equal(t, "ASC", params.SortDir)

				_, args := filter.GetWhereClause()
				deadline, _ := args["reclaim_deadline"].(time.Time)
				lookback, _ := args["reclaim_lookback"].(time.Time)
				assert.InDelta(t, 30*24, deadline.Sub(lookback).Hours(), 0.01)

				return nil, nil
			})

		_, err := r.Sweep(context.Background())
		require.NoError(t, err)
	})
}

func TestExpiredFilter(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lookback := now.AddDate(0, 0, -30)

	filter := reclaimer.ExpiredFilter(now, lookback)
	where, args := filter.GetWhereClause()

	assert.Equal(t,
		"(bookings.booking_status = :booking_status AND "+
			"bookings.is_pay = :is_pay AND "+
			"bookings.is_cancel = :is_cancel AND "+
			"bookings.payment_deadline < :reclaim_deadline AND "+
			"bookings.created_at >= :reclaim_lookback)",
		where,
	)
	assert.Equal(t, map[string]any{
		"booking_status":   bookingModel.StatusPending,
		"is_pay":           false,
		"is_cancel":        false,
		"reclaim_deadline": now,
		"reclaim_lookback": lookback,
	}, args)
}

func TestRunSweepsOnStart(t *testing.T) {
	r, d := newReclaimer(t)

	swept := make(chan struct{})

	d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, gDto.QueryParams, gDto.FilterGroup, ...string) ([]bookingModel.Booking, error) {
			close(swept)

			return nil, nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case <-swept:
	case <-time.After(time.Second):
		t.Fatal("reclaimer did not sweep before the first tick")
	}

	cancel()
	<-done
}

func TestRunStopsWithContext(t *testing.T) {
	r, d := newReclaimer(t)

	d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reclaimer did not stop")
	}
}
