package service_test

import (
	"context"
	"errors"
	"fleet/config"
	otelMocks "fleet/infras/otel/mocks"
	postgresMocks "fleet/infras/postgres/mocks"
	s3Mocks "fleet/infras/s3/mocks"
	"fleet/internal/domains/availability"
	bookingMocks "fleet/internal/domains/booking/mocks"
	"fleet/internal/domains/booking/model"
	"fleet/internal/domains/booking/model/dto"
	"fleet/internal/domains/booking/service"
	carMocks "fleet/internal/domains/car/mocks"
	carModel "fleet/internal/domains/car/model"
	driverMocks "fleet/internal/domains/driver/mocks"
	driverModel "fleet/internal/domains/driver/model"
	feeModel "fleet/internal/domains/fee/model"
	feeMocks "fleet/internal/domains/fee/service/mocks"
	inspectionMocks "fleet/internal/domains/inspection/mocks"
	inspectionModel "fleet/internal/domains/inspection/model"
	"fleet/internal/domains/settlement"
	transactionMocks "fleet/internal/domains/transaction/mocks"
	transactionModel "fleet/internal/domains/transaction/model"
	eventMocks "fleet/internal/events/mocks"
	cacheMocks "fleet/shared/cache/mocks"
	"fleet/shared/constant"
	gDto "fleet/shared/dto"
	"fleet/shared/failure"
	"fleet/shared/timezone"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	carID      = "6f1c2a9e-0b7d-4e55-9d0f-6a2b1f3c4d5e"
	customerID = "0c3d9b8a-7e6f-4a1b-8c2d-3e4f5a6b7c8d"
	bookingID  = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
	driverID   = "d0d1d2d3-e4e5-4f6f-8a7b-9c0d1e2f3a4b"
)

var errStore = errors.New("connection refused")

type deps struct {
	repo        *bookingMocks.MockBooking
	occupancy   *bookingMocks.MockOccupancy
	car         *carMocks.MockCar
	driver      *driverMocks.MockDriver
	release     *inspectionMocks.MockRelease
	ret         *inspectionMocks.MockReturn
	transaction *transactionMocks.MockTransaction
	fees        *feeMocks.MockProvider
	publisher   *eventMocks.MockPublisher
	s3          *s3Mocks.MockS3
	cache       *cacheMocks.MockRedisCache
}

func newService(t *testing.T) (service.Booking, deps) {
	t.Helper()

	ctrl := gomock.NewController(t)

	d := deps{
		repo:        bookingMocks.NewMockBooking(ctrl),
		occupancy:   bookingMocks.NewMockOccupancy(ctrl),
		car:         carMocks.NewMockCar(ctrl),
		driver:      driverMocks.NewMockDriver(ctrl),
		release:     inspectionMocks.NewMockRelease(ctrl),
		ret:         inspectionMocks.NewMockReturn(ctrl),
		transaction: transactionMocks.NewMockTransaction(ctrl),
		fees:        feeMocks.NewMockProvider(ctrl),
		publisher:   eventMocks.NewMockPublisher(ctrl),
		s3:          s3Mocks.NewMockS3(ctrl),
		cache:       cacheMocks.NewMockRedisCache(ctrl),
	}

	d.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	d.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Rental.BufferDays = 1
	cfg.Rental.ReservationFeeKey = feeModel.KeyReservation
	cfg.Cache.TTL = 60

	svc := service.New(
		postgresMocks.NewTransactor(),
		d.repo,
		d.car,
		d.driver,
		d.release,
		d.ret,
		d.transaction,
		d.occupancy,
		d.fees,
		d.publisher,
		d.s3,
		cfg,
		d.cache,
		otelMocks.NewOtel(),
	)

	return svc, d
}

func staffContext() context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "staff-1")

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleStaff)
}

func day(offset int) time.Time {
	return availability.Day(timezone.Now()).AddDate(0, 0, offset)
}

func dayString(offset int) string {
	return day(offset).Format(constant.DayFormat)
}

func fees() feeModel.Schedule {
	return feeModel.Schedule{
		feeModel.KeyReservation:   500,
		feeModel.KeyGasLevel:      100,
		feeModel.KeyEquipmentLoss: 50,
		feeModel.KeyDamage:        1000,
		feeModel.KeyCleaning:      200,
		feeModel.KeyStainRemoval:  150,
	}
}

func booking(status string) model.Booking {
	return model.Booking{
		ID:              bookingID,
		CarID:           carID,
		CustomerID:      customerID,
		StartDate:       day(5),
		EndDate:         day(7),
		BookingStatus:   status,
		PaymentStatus:   model.PaymentStatusUnpaid,
		PaymentDeadline: timezone.Now().Add(time.Hour),
		TotalAmount:     3000,
		Balance:         3000,
	}
}

func TestCreate(t *testing.T) {
	rentedCar := carModel.Car{ID: carID, Status: carModel.StatusRented, DailyRate: 1000}
	current := model.Booking{
		ID:            "current",
		CarID:         carID,
		StartDate:     day(7),
		EndDate:       day(10),
		BookingStatus: model.StatusConfirmed,
	}

	tests := []struct {
		name     string
		req      dto.CreateBookingRequest
		setup    func(d deps)
		wantCode int
		check    func(t *testing.T, res dto.BookingResponse, err error)
	}{
		{
			name: "overlapping occupied span and buffer reports both conflicts",
			req:  dto.CreateBookingRequest{CarID: carID, CustomerID: customerID, StartDate: dayString(9), EndDate: dayString(11)},
			setup: func(d deps) {
				d.car.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(rentedCar, nil)
				d.repo.EXPECT().GetAllTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Booking{current}, nil)
			},
			wantCode: http.StatusConflict,
			check: func(t *testing.T, _ dto.BookingResponse, err error) {
				conflicts, ok := failure.GetDetails(err).([]availability.Period)
				require.True(t, ok)
				require.Len(t, conflicts, 2)
				assert.Equal(t, availability.ReasonOccupied, conflicts[0].Reason)
				assert.Equal(t, availability.ReasonMaintenanceBuffer, conflicts[1].Reason)
			},
		},
		{
			name: "free range after the buffer creates a pending booking",
			req:  dto.CreateBookingRequest{CarID: carID, CustomerID: customerID, StartDate: dayString(12), EndDate: dayString(15)},
			setup: func(d deps) {
				d.car.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(rentedCar, nil)
				d.repo.EXPECT().GetAllTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Booking{current}, nil)
				d.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, b model.Booking) error {
						assert.Equal(t, model.StatusPending, b.BookingStatus)
						assert.Equal(t, customerID, b.CustomerID)
						assert.False(t, b.IsPay)

						return nil
					})
			},
			check: func(t *testing.T, res dto.BookingResponse, err error) {
				require.NoError(t, err)
				assert.Equal(t, model.StatusPending, res.BookingStatus)
				assert.Equal(t, model.PaymentStatusUnpaid, res.PaymentStatus)
				assert.InDelta(t, 4000, res.TotalAmount, 0.001)
				assert.InDelta(t, 4000, res.Balance, 0.001)

				deadline, err := time.Parse(constant.DateFormat, res.PaymentDeadline)
				require.NoError(t, err)
				assert.WithinDuration(t, timezone.Now().Add(72*time.Hour), deadline, time.Minute)
			},
		},
		{
			name: "same day rental gets an hour to pay",
			req:  dto.CreateBookingRequest{CarID: carID, CustomerID: customerID, StartDate: dayString(0), EndDate: dayString(1)},
			setup: func(d deps) {
				d.car.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(rentedCar, nil)
				d.repo.EXPECT().GetAllTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				d.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, res dto.BookingResponse, err error) {
				require.NoError(t, err)

				deadline, err := time.Parse(constant.DateFormat, res.PaymentDeadline)
				require.NoError(t, err)
				assert.WithinDuration(t, timezone.Now().Add(time.Hour), deadline, time.Minute)
			},
		},
		{
			name: "car not found",
			req:  dto.CreateBookingRequest{CarID: carID, CustomerID: customerID, StartDate: dayString(3), EndDate: dayString(4)},
			setup: func(d deps) {
				d.car.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(carModel.Car{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "car in maintenance",
			req:  dto.CreateBookingRequest{CarID: carID, CustomerID: customerID, StartDate: dayString(3), EndDate: dayString(4)},
			setup: func(d deps) {
				d.car.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(carModel.Car{ID: carID, Status: carModel.StatusMaintenance}, nil)
			},
			wantCode: http.StatusPreconditionFailed,
		},
		{
			name:     "end before start",
			req:      dto.CreateBookingRequest{CarID: carID, CustomerID: customerID, StartDate: dayString(4), EndDate: dayString(3)},
			setup:    func(_ deps) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "start in the past",
			req:      dto.CreateBookingRequest{CarID: carID, CustomerID: customerID, StartDate: dayString(-1), EndDate: dayString(3)},
			setup:    func(_ deps) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "staff must name the customer",
			req:      dto.CreateBookingRequest{CarID: carID, StartDate: dayString(3), EndDate: dayString(4)},
			setup:    func(_ deps) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "store failure",
			req:  dto.CreateBookingRequest{CarID: carID, CustomerID: customerID, StartDate: dayString(3), EndDate: dayString(4)},
			setup: func(d deps) {
				d.car.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(carModel.Car{}, errStore)
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService(t)
			tt.setup(d)

			res, err := svc.Create(staffContext(), tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
			}

			if tt.check != nil {
				tt.check(t, res, err)
			}
		})
	}
}

func TestCreate_CustomerBooksForThemselves(t *testing.T) {
	svc, d := newService(t)

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, customerID)
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleCustomer)

	d.car.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(carModel.Car{ID: carID, Status: carModel.StatusAvailable, DailyRate: 800}, nil)
	d.repo.EXPECT().GetAllTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	d.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res, err := svc.Create(ctx, dto.CreateBookingRequest{
		CarID:      carID,
		CustomerID: "someone-else",
		StartDate:  dayString(2),
		EndDate:    dayString(2),
	})

	require.NoError(t, err)
	assert.Equal(t, customerID, res.CustomerID)
	assert.InDelta(t, 800, res.TotalAmount, 0.001)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		setup    func(d deps)
		wantCode int
	}{
		{
			name:   "payment covering the reservation fee confirms and rents the car",
			amount: 500,
			setup: func(d deps) {
				d.fees.EXPECT().GetFees(gomock.Any()).Return(fees(), nil)
				d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking(model.StatusPending), nil)
				d.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, req map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, model.StatusConfirmed, req[model.FieldBookingStatus])
						assert.Equal(t, true, req[model.FieldIsPay])
						assert.Equal(t, model.PaymentStatusPartial, req[model.FieldPaymentStatus])
						assert.InDelta(t, 2500, req[model.FieldBalance], 0.001)

						return nil
					})
				d.car.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, req map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, carModel.StatusRented, req[carModel.FieldStatus])

						return nil
					})
			},
		},
		{
			name:   "payment below the reservation fee",
			amount: 200,
			setup: func(d deps) {
				d.fees.EXPECT().GetFees(gomock.Any()).Return(fees(), nil)
				d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking(model.StatusPending), nil)
			},
			wantCode: http.StatusPreconditionFailed,
		},
		{
			name:   "deadline already passed",
			amount: 500,
			setup: func(d deps) {
				expired := booking(model.StatusPending)
				expired.PaymentDeadline = timezone.Now().Add(-time.Minute)

				d.fees.EXPECT().GetFees(gomock.Any()).Return(fees(), nil)
				d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(expired, nil)
			},
			wantCode: http.StatusPreconditionFailed,
		},
		{
			name:   "booking already confirmed",
			amount: 500,
			setup: func(d deps) {
				d.fees.EXPECT().GetFees(gomock.Any()).Return(fees(), nil)
				d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking(model.StatusConfirmed), nil)
			},
			wantCode: http.StatusPreconditionFailed,
		},
		{
			name:   "booking reclaimed in the meantime",
			amount: 500,
			setup: func(d deps) {
				d.fees.EXPECT().GetFees(gomock.Any()).Return(fees(), nil)
				d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:   "fee schedule unavailable",
			amount: 500,
			setup: func(d deps) {
				d.fees.EXPECT().GetFees(gomock.Any()).Return(nil, errStore)
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService(t)
			tt.setup(d)

			res, err := svc.Confirm(staffContext(), bookingID, dto.ConfirmBookingRequest{AmountPaid: tt.amount})

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusConfirmed, res.BookingStatus)
			assert.True(t, res.IsPay)
		})
	}
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name        string
		status      string
		setup       func(d deps)
		wantFreed   bool
		wantCode    int
		wantPublish bool
	}{
		{
			name:   "pending booking leaves the car alone",
			status: model.StatusPending,
			setup: func(d deps) {
				d.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				d.transaction.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:   "confirmed booking frees the car and announces it",
			status: model.StatusConfirmed,
			setup: func(d deps) {
				d.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				d.transaction.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				d.occupancy.EXPECT().FreeCarTx(gomock.Any(), gomock.Any(), carID, bookingID, "staff-1").Return(true, nil)
				d.publisher.EXPECT().CarAvailable(gomock.Any(), carID)
			},
		},
		{
			name:   "confirmed booking on a car still occupied by another rental",
			status: model.StatusConfirmed,
			setup: func(d deps) {
				d.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				d.transaction.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				d.occupancy.EXPECT().FreeCarTx(gomock.Any(), gomock.Any(), carID, bookingID, "staff-1").Return(false, nil)
			},
		},
		{
			name:     "released booking cannot be cancelled",
			status:   model.StatusInProgress,
			setup:    func(_ deps) {},
			wantCode: http.StatusPreconditionFailed,
		},
		{
			name:   "transaction log failure rolls back",
			status: model.StatusPending,
			setup: func(d deps) {
				d.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				d.transaction.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errStore)
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService(t)
			d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking(tt.status), nil)
			tt.setup(d)

			res, err := svc.Cancel(staffContext(), bookingID, dto.ReasonRequest{Reason: "change of plans"})

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusCancelled, res.BookingStatus)
			assert.True(t, res.IsCancel)
			require.NotNil(t, res.CancelReason)
			assert.Equal(t, "change of plans", *res.CancelReason)
		})
	}
}

func TestCancel_LogsCancellationEntry(t *testing.T) {
	svc, d := newService(t)

	paid := booking(model.StatusPending)
	paid.AmountPaid = 250

	d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(paid, nil)
	d.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	d.transaction.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, entry transactionModel.Transaction) error {
			assert.Equal(t, bookingID, entry.BookingID)
			assert.NotNil(t, entry.CancellationDate)
			assert.Nil(t, entry.CompletionDate)
			assert.InDelta(t, 250, entry.Amount, 0.001)
			assert.Equal(t, "cancelled by staff-1", entry.Note)

			return nil
		})

	_, err := svc.Cancel(staffContext(), bookingID, dto.ReasonRequest{})
	require.NoError(t, err)
}

func TestReject(t *testing.T) {
	svc, d := newService(t)

	d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking(model.StatusPending), nil)
	d.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, req map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, model.StatusRejected, req[model.FieldBookingStatus])
			assert.NotContains(t, req, model.FieldIsCancel)

			return nil
		})
	d.transaction.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res, err := svc.Reject(staffContext(), bookingID, dto.ReasonRequest{Reason: "license expired"})

	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, res.BookingStatus)
	assert.False(t, res.IsCancel)
}

func TestReject_ConfirmedBooking(t *testing.T) {
	svc, d := newService(t)

	d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking(model.StatusConfirmed), nil)

	_, err := svc.Reject(staffContext(), bookingID, dto.ReasonRequest{})

	require.Error(t, err)
	assert.Equal(t, http.StatusPreconditionFailed, failure.GetCode(err))
}

func TestRelease(t *testing.T) {
	releaseReq := dto.ReleaseBookingRequest{
		DriverID:         driverID,
		EquipmentStatus:  settlement.EquipmentIncomplete,
		EquipmentItems:   "jack",
		GasLevel:         settlement.GasLevelHigh,
		LicensePresented: true,
	}

	tests := []struct {
		name     string
		req      dto.ReleaseBookingRequest
		status   string
		setup    func(d deps)
		wantCode int
	}{
		{
			name:   "confirmed booking is handed over with a driver",
			req:    releaseReq,
			status: model.StatusConfirmed,
			setup: func(d deps) {
				d.driver.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(driverModel.Driver{ID: driverID, Status: driverModel.StatusAvailable}, nil)
				d.driver.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, req map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, driverModel.StatusOnTrip, req[driverModel.FieldStatus])

						return nil
					})
				d.release.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, r inspectionModel.Release) error {
						assert.Equal(t, bookingID, r.BookingID)
						assert.Equal(t, settlement.GasLevelHigh, r.GasLevel)
						assert.Equal(t, "jack", r.EquipmentItems)

						return nil
					})
				d.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				d.car.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:     "pending booking cannot be released",
			req:      releaseReq,
			status:   model.StatusPending,
			setup:    func(_ deps) {},
			wantCode: http.StatusPreconditionFailed,
		},
		{
			name:   "driver already on a trip",
			req:    releaseReq,
			status: model.StatusConfirmed,
			setup: func(d deps) {
				d.driver.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(driverModel.Driver{ID: driverID, Status: driverModel.StatusOnTrip}, nil)
			},
			wantCode: http.StatusPreconditionFailed,
		},
		{
			name:   "unknown driver",
			req:    releaseReq,
			status: model.StatusConfirmed,
			setup: func(d deps) {
				d.driver.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(driverModel.Driver{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService(t)
			d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking(tt.status), nil)
			tt.setup(d)

			res, err := svc.Release(staffContext(), bookingID, tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusInProgress, res.BookingStatus)
			assert.True(t, res.IsRelease)
			require.NotNil(t, res.DriverID)
			assert.Equal(t, driverID, *res.DriverID)
		})
	}
}

func TestRelease_UploadsImagesAfterCommit(t *testing.T) {
	const image = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

	tests := []struct {
		name  string
		setup func(d deps)
	}{
		{
			name: "urls are backfilled",
			setup: func(d deps) {
				d.s3.EXPECT().Put(gomock.Any(), gomock.Any(), "image/png", gomock.Any()).
					DoAndReturn(func(_ context.Context, key, _ string, _ []byte) (string, error) {
						assert.True(t, strings.HasPrefix(key, "releases/"+bookingID+"/"), key)
						assert.True(t, strings.HasSuffix(key, "-0.png"), key)

						return "https://cdn.example.com/" + key, nil
					})
				d.release.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req map[string]any, _ gDto.FilterGroup) error {
						assert.Len(t, req[inspectionModel.FieldImageURLs], 1)

						return nil
					})
			},
		},
		{
			name: "failed backfill removes the uploads",
			setup: func(d deps) {
				url := "https://cdn.example.com/releases/" + bookingID + "/a.png"

				d.s3.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(url, nil)
				d.release.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errStore)
				d.s3.EXPECT().KeyFromURL(url).Return("releases/"+bookingID+"/a.png", true)
				d.s3.EXPECT().Delete(gomock.Any(), "releases/"+bookingID+"/a.png").Return(nil)
			},
		},
		{
			name: "upload failure does not fail the release",
			setup: func(d deps) {
				d.s3.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errStore)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService(t)

			d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking(model.StatusConfirmed), nil)
			d.release.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			d.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			d.car.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			tt.setup(d)

			res, err := svc.Release(staffContext(), bookingID, dto.ReleaseBookingRequest{
				EquipmentStatus: settlement.EquipmentComplete,
				GasLevel:        settlement.GasLevelMid,
				Images:          []string{image},
			})

			require.NoError(t, err)
			assert.Equal(t, model.StatusInProgress, res.BookingStatus)
		})
	}
}

func TestReturn(t *testing.T) {
	release := inspectionModel.Release{
		ID:              "release-1",
		BookingID:       bookingID,
		GasLevel:        settlement.GasLevelHigh,
		EquipmentStatus: settlement.EquipmentComplete,
	}

	returnReq := dto.ReturnBookingRequest{
		Odometer:        12500,
		GasLevel:        settlement.GasLevelLow,
		EquipmentStatus: settlement.EquipmentIncomplete,
		EquipmentItems:  "spare tire, jack",
		Damage:          settlement.DamageMinor,
		IsClean:         func() *bool { clean := false; return &clean }(),
		HasStain:        true,
	}

	inProgress := booking(model.StatusInProgress)
	inProgress.AmountPaid = 1000
	inProgress.DriverID = func() *string { id := driverID; return &id }()

	t.Run("settles fees, frees the car and announces it", func(t *testing.T) {
		svc, d := newService(t)

		d.fees.EXPECT().GetFees(gomock.Any()).Return(fees(), nil)
		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(inProgress, nil)
		d.release.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(release, nil)
		d.ret.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any(), inspectionModel.FieldID).Return(inspectionModel.Return{}, nil)
		d.ret.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, r inspectionModel.Return) error {
				assert.InDelta(t, 1650, r.TotalFee, 0.001)

				return nil
			})
		d.car.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), carModel.FieldID, carModel.FieldMileage).
			Return(carModel.Car{ID: carID, Mileage: 12000}, nil)
		d.car.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, req map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, 12500, req[carModel.FieldMileage])

				return nil
			})
		d.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.transaction.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, entry transactionModel.Transaction) error {
				assert.NotNil(t, entry.CompletionDate)
				assert.Nil(t, entry.CancellationDate)

				return nil
			})
		d.driver.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.occupancy.EXPECT().FreeCarTx(gomock.Any(), gomock.Any(), carID, bookingID, "staff-1").Return(true, nil)
		d.publisher.EXPECT().CarAvailable(gomock.Any(), carID)

		res, err := svc.Return(staffContext(), bookingID, returnReq)

		require.NoError(t, err)

		// gas 2x100, two lost items 2x50, minor damage 1000, cleaning 200 + stain 150
		assert.InDelta(t, 200, res.Breakdown.GasLevelFee, 0.001)
		assert.InDelta(t, 100, res.Breakdown.EquipmentLossFee, 0.001)
		assert.InDelta(t, 1000, res.Breakdown.DamageFee, 0.001)
		assert.InDelta(t, 350, res.Breakdown.CleaningFee, 0.001)
		assert.InDelta(t, 1650, res.Breakdown.TotalFee, 0.001)

		assert.Equal(t, model.StatusCompleted, res.Booking.BookingStatus)
		assert.True(t, res.Booking.IsReturned)
		assert.InDelta(t, 4650, res.Booking.TotalAmount, 0.001)
		assert.InDelta(t, 3650, res.Booking.Balance, 0.001)
		assert.Equal(t, model.PaymentStatusPartial, res.Booking.PaymentStatus)
	})

	t.Run("payment at return zeroes the balance", func(t *testing.T) {
		svc, d := newService(t)

		payment := 3650.0
		req := returnReq
		req.Payment = &payment

		d.fees.EXPECT().GetFees(gomock.Any()).Return(fees(), nil)
		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(inProgress, nil)
		d.release.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(release, nil)
		d.ret.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(inspectionModel.Return{}, nil)
		d.ret.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.car.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(carModel.Car{ID: carID, Mileage: 12000}, nil)
		d.car.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, req map[string]any, _ gDto.FilterGroup) error {
				assert.InDelta(t, 0, req[model.FieldBalance], 0.001)
				assert.Equal(t, model.PaymentStatusPaid, req[model.FieldPaymentStatus])

				return nil
			})
		d.transaction.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.driver.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.occupancy.EXPECT().FreeCarTx(gomock.Any(), gomock.Any(), carID, bookingID, "staff-1").Return(false, nil)

		res, err := svc.Return(staffContext(), bookingID, req)

		require.NoError(t, err)
		assert.InDelta(t, 0, res.Booking.Balance, 0.001)
		assert.InDelta(t, 4650, res.Booking.AmountPaid, 0.001)
	})

	t.Run("missing release record", func(t *testing.T) {
		svc, d := newService(t)

		d.fees.EXPECT().GetFees(gomock.Any()).Return(fees(), nil)
		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(inProgress, nil)
		d.release.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(inspectionModel.Release{}, nil)

		_, err := svc.Return(staffContext(), bookingID, returnReq)

		require.Error(t, err)
		assert.Equal(t, http.StatusPreconditionFailed, failure.GetCode(err))
	})

	t.Run("return record already exists", func(t *testing.T) {
		svc, d := newService(t)

		d.fees.EXPECT().GetFees(gomock.Any()).Return(fees(), nil)
		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(inProgress, nil)
		d.release.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(release, nil)
		d.ret.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(inspectionModel.Return{ID: "return-1"}, nil)

		_, err := svc.Return(staffContext(), bookingID, returnReq)

		require.Error(t, err)
		assert.Equal(t, http.StatusPreconditionFailed, failure.GetCode(err))
	})

	t.Run("confirmed booking has not been released", func(t *testing.T) {
		svc, d := newService(t)

		d.fees.EXPECT().GetFees(gomock.Any()).Return(fees(), nil)
		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking(model.StatusConfirmed), nil)

		_, err := svc.Return(staffContext(), bookingID, returnReq)

		require.Error(t, err)
		assert.Equal(t, http.StatusPreconditionFailed, failure.GetCode(err))
	})

	t.Run("odometer below recorded mileage", func(t *testing.T) {
		svc, d := newService(t)

		d.fees.EXPECT().GetFees(gomock.Any()).Return(fees(), nil)
		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(inProgress, nil)
		d.release.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(release, nil)
		d.ret.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(inspectionModel.Return{}, nil)
		d.ret.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.car.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(carModel.Car{ID: carID, Mileage: 20000}, nil)

		_, err := svc.Return(staffContext(), bookingID, returnReq)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestPreviewReturnFees(t *testing.T) {
	previewReq := dto.PreviewReturnRequest{
		GasLevel:        settlement.GasLevelLow,
		EquipmentStatus: settlement.EquipmentComplete,
		Damage:          settlement.DamageNone,
	}

	t.Run("prices the hypothetical return twice the same way", func(t *testing.T) {
		svc, d := newService(t)

		d.repo.EXPECT().Get(gomock.Any(), gomock.Any(), model.FieldID).Return(model.Booking{ID: bookingID}, nil).Times(2)
		d.release.EXPECT().Get(gomock.Any(), gomock.Any()).
			Return(inspectionModel.Release{ID: "release-1", GasLevel: settlement.GasLevelHigh, EquipmentStatus: settlement.EquipmentComplete}, nil).Times(2)
		d.fees.EXPECT().GetFees(gomock.Any()).Return(fees(), nil).Times(2)

		first, err := svc.PreviewReturnFees(staffContext(), bookingID, previewReq)
		require.NoError(t, err)

		second, err := svc.PreviewReturnFees(staffContext(), bookingID, previewReq)
		require.NoError(t, err)

		assert.InDelta(t, 200, first.TotalFee, 0.001)
		assert.Equal(t, first, second)
	})

	t.Run("booking not found", func(t *testing.T) {
		svc, d := newService(t)

		d.repo.EXPECT().Get(gomock.Any(), gomock.Any(), model.FieldID).Return(model.Booking{}, nil)

		_, err := svc.PreviewReturnFees(staffContext(), bookingID, previewReq)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("not released yet", func(t *testing.T) {
		svc, d := newService(t)

		d.repo.EXPECT().Get(gomock.Any(), gomock.Any(), model.FieldID).Return(model.Booking{ID: bookingID}, nil)
		d.release.EXPECT().Get(gomock.Any(), gomock.Any()).Return(inspectionModel.Release{}, nil)

		_, err := svc.PreviewReturnFees(staffContext(), bookingID, previewReq)

		require.Error(t, err)
		assert.Equal(t, http.StatusPreconditionFailed, failure.GetCode(err))
	})
}

func TestGet(t *testing.T) {
	t.Run("cache hit skips the store", func(t *testing.T) {
		svc, d := newService(t)

		d.cache.EXPECT().Get(gomock.Any(), "booking:get:"+bookingID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any) error {
				value.(*dto.BookingResponse).ID = bookingID

				return nil
			})

		res, err := svc.Get(staffContext(), bookingID)

		require.NoError(t, err)
		assert.Equal(t, bookingID, res.ID)
	})

	t.Run("cache miss reads the store", func(t *testing.T) {
		svc, d := newService(t)

		d.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis: nil"))
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusPending), nil)

		res, err := svc.Get(staffContext(), bookingID)

		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, res.BookingStatus)
		assert.Equal(t, day(5).Format(constant.DayFormat), res.StartDate)
	})

	t.Run("not found", func(t *testing.T) {
		svc, d := newService(t)

		d.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis: nil"))
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)

		_, err := svc.Get(staffContext(), bookingID)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("customers cannot read other customers' bookings", func(t *testing.T) {
		svc, d := newService(t)

		ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "someone-else")
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleCustomer)

		d.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis: nil"))
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusPending), nil)

		_, err := svc.Get(ctx, bookingID)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestGetAll(t *testing.T) {
	svc, d := newService(t)

	d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
			assert.Equal(t, "bookings.created_at", params.SortBy)
			assert.Len(t, filter.Filters, 1)

			return []model.Booking{booking(model.StatusPending)}, nil
		})
	d.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(11, nil)

	res, err := svc.GetAll(staffContext(), gDto.QueryParams{Page: 1, Limit: 10}, dto.GetBookingsFilter{CarID: carID})

	require.NoError(t, err)
	assert.Len(t, res.Bookings, 1)
	assert.Equal(t, 11, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
}

func TestCarAvailability(t *testing.T) {
	t.Run("lists occupied and buffer spans", func(t *testing.T) {
		svc, d := newService(t)

		d.car.EXPECT().Get(gomock.Any(), gomock.Any(), carModel.FieldID).Return(carModel.Car{ID: carID}, nil)
		d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Booking{
			{ID: "b1", CarID: carID, StartDate: day(1), EndDate: day(3), BookingStatus: model.StatusConfirmed},
			{ID: "b2", CarID: carID, StartDate: day(8), EndDate: day(9), BookingStatus: model.StatusPending},
		}, nil)

		res, err := svc.CarAvailability(staffContext(), carID, 2)

		require.NoError(t, err)
		assert.Equal(t, 2, res.BufferDays)
		require.Len(t, res.Periods, 4)
		assert.Equal(t, day(4), res.Periods[1].Start)
		assert.Equal(t, day(5), res.Periods[1].End)
		assert.True(t, res.Periods[1].IsMaintenance)
	})

	t.Run("unknown car", func(t *testing.T) {
		svc, d := newService(t)

		d.car.EXPECT().Get(gomock.Any(), gomock.Any(), carModel.FieldID).Return(carModel.Car{}, nil)

		_, err := svc.CarAvailability(staffContext(), carID, 1)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("negative buffer", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.CarAvailability(staffContext(), carID, -1)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}
