package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fleet/config"
	"fleet/infras/otel"
	"fleet/infras/postgres"
	"fleet/infras/s3"
	"fleet/internal/domains/availability"
	"fleet/internal/domains/booking/model"
	"fleet/internal/domains/booking/model/dto"
	"fleet/internal/domains/booking/repository"
	carModel "fleet/internal/domains/car/model"
	carRepo "fleet/internal/domains/car/repository"
	driverRepo "fleet/internal/domains/driver/repository"
	feeService "fleet/internal/domains/fee/service"
	inspectionRepo "fleet/internal/domains/inspection/repository"
	"fleet/internal/domains/settlement"
	transactionRepo "fleet/internal/domains/transaction/repository"
	"fleet/internal/events"
	"fleet/shared"
	"fleet/shared/cache"
	"fleet/shared/constant"
	gDto "fleet/shared/dto"
	"fleet/shared/failure"
	gModel "fleet/shared/model"
	"fleet/shared/timezone"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking = "booking:get"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter dto.GetBookingsFilter) (dto.GetBookingsResponse, error)
	Confirm(ctx context.Context, id string, req dto.ConfirmBookingRequest) (dto.BookingResponse, error)
	Reject(ctx context.Context, id string, req dto.ReasonRequest) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string, req dto.ReasonRequest) (dto.BookingResponse, error)
	Release(ctx context.Context, id string, req dto.ReleaseBookingRequest) (dto.BookingResponse, error)
	Return(ctx context.Context, id string, req dto.ReturnBookingRequest) (dto.ReturnResponse, error)
	PreviewReturnFees(ctx context.Context, id string, req dto.PreviewReturnRequest) (settlement.Breakdown, error)
	CarAvailability(ctx context.Context, carID string, bufferDays int) (dto.AvailabilityResponse, error)
}

type serviceImpl struct {
	transactor      postgres.Transactor
	repo            repository.Booking
	carRepo         carRepo.Car
	driverRepo      driverRepo.Driver
	releaseRepo     inspectionRepo.Release
	returnRepo      inspectionRepo.Return
	transactionRepo transactionRepo.Transaction
	occupancy       Occupancy
	fees            feeService.Provider
	publisher       events.Publisher
	s3              s3.S3
	cfg             *config.Config
	cache           cache.RedisCache
	otel            otel.Otel
}

func New(
	transactor postgres.Transactor,
	repo repository.Booking,
	carRepo carRepo.Car,
	driverRepo driverRepo.Driver,
	releaseRepo inspectionRepo.Release,
	returnRepo inspectionRepo.Return,
	transactionRepo transactionRepo.Transaction,
	occupancy Occupancy,
	fees feeService.Provider,
	publisher events.Publisher,
	s3 s3.S3,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		transactor:      transactor,
		repo:            repo,
		carRepo:         carRepo,
		driverRepo:      driverRepo,
		releaseRepo:     releaseRepo,
		returnRepo:      returnRepo,
		transactionRepo: transactionRepo,
		occupancy:       occupancy,
		fees:            fees,
		publisher:       publisher,
		s3:              s3,
		cfg:             cfg,
		cache:           cache,
		otel:            otel,
	}
}

// Create reserves the car for the requested days. The car row is locked for the whole
// check-then-insert so two overlapping requests cannot both pass the conflict check.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user := actor(ctx)

	customerID := req.CustomerID
	if role, _ := ctx.Value(constant.ContextKeyUserRole).(string); role == constant.RoleCustomer {
		customerID = user
	}

	if customerID == constant.Empty {
		return res, failure.BadRequestFromString("customer_id is required") // nolint:wrapcheck
	}

	start, end, err := req.Dates()
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	if end.Before(start) {
		return res, failure.BadRequestFromString("end_date must not be before start_date") // nolint:wrapcheck
	}

	now := timezone.Now()
	if availability.Day(start).Before(availability.Day(now)) {
		return res, failure.BadRequestFromString("start_date must not be in the past") // nolint:wrapcheck
	}

	var booking model.Booking

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		car, err := s.carRepo.GetForUpdateTx(ctx, tx, shared.FilterByID(req.CarID, carModel.FieldID, carModel.TableName))
		if err != nil {
			log.Error().Err(err).Str("car_id", req.CarID).Msg("failed to lock car")

			return fmt.Errorf("failed to lock car: %w", err)
		}

		if car.ID == constant.Empty {
			return failure.NotFound("car not found") // nolint:wrapcheck
		}

		if !car.Bookable() {
			return failure.PreconditionFailed(fmt.Sprintf("car is %s and cannot be booked", car.Status)) // nolint:wrapcheck
		}

		existing, err := s.repo.GetAllTx(ctx, tx, gDto.QueryParams{}, BlockingFilter(car.ID))
		if err != nil {
			log.Error().Err(err).Str("car_id", car.ID).Msg("failed to get bookings of car")

			return fmt.Errorf("failed to get bookings of car: %w", err)
		}

		result := availability.ValidateRequestedRange(start, end, existing, s.cfg.Rental.BufferDays)
		if !result.IsValid {
			return failure.ConflictWithDetails("requested dates are unavailable", result.Conflicts) // nolint:wrapcheck
		}

		booking = model.Booking{
			ID:              uuid.NewString(),
			CarID:           car.ID,
			CustomerID:      customerID,
			StartDate:       start,
			EndDate:         end,
			BookingStatus:   model.StatusPending,
			PaymentStatus:   model.PaymentStatusUnpaid,
			PaymentDeadline: model.PaymentDeadline(now, start),
			TotalAmount:     car.DailyRate * float64(availability.Days(start, end)),
			Metadata:        gModel.NewMetadata(now, user),
		}
		booking.Balance = booking.TotalAmount

		if err := s.repo.InsertTx(ctx, tx, booking); err != nil {
			log.Error().Err(err).Str("car_id", car.ID).Msg("failed to create booking")

			return fmt.Errorf("failed to create booking: %w", err)
		}

		return nil
	})
	if err != nil {
		return res, err
	}

	log.Info().Str("booking_id", booking.ID).Str("car_id", booking.CarID).Time("payment_deadline", booking.PaymentDeadline).Msg("booking requested")

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		if hiddenFromCaller(ctx, res.CustomerID) {
			return dto.BookingResponse{}, failure.NotFound("booking not found") // nolint:wrapcheck
		}

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty || hiddenFromCaller(ctx, booking.CustomerID) {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Str("cacheKey", cacheKey).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter dto.GetBookingsFilter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if role, _ := ctx.Value(constant.ContextKeyUserRole).(string); role == constant.RoleCustomer {
		filter.CustomerID = actor(ctx)
	}

	filters := []gDto.Filter{}

	if filter.CarID != constant.Empty {
		filters = append(filters, gDto.Filter{Field: model.FieldCarID, Value: filter.CarID, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if filter.CustomerID != constant.Empty {
		filters = append(filters, gDto.Filter{Field: model.FieldCustomerID, Value: filter.CustomerID, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if filter.BookingStatus != constant.Empty {
		filters = append(filters, gDto.Filter{Field: model.FieldBookingStatus, Value: filter.BookingStatus, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	filterGroup := shared.FilterAnd(filters...)

	params.Sanitize(model.TableName, model.FieldCreatedAt, model.FieldStartDate, model.FieldEndDate, model.FieldPaymentDeadline, model.FieldBookingStatus)

	bookings, err := s.repo.GetAll(ctx, params, filterGroup)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	total, err := s.repo.Count(ctx, filterGroup)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	res.FromModels(bookings, total, params.Limit)

	return res, nil
}

// CarAvailability lists the spans during which the car cannot take a new booking.
func (s *serviceImpl) CarAvailability(ctx context.Context, carID string, bufferDays int) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CarAvailability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if bufferDays < 0 {
		return res, failure.BadRequestFromString("buffer_days must not be negative") // nolint:wrapcheck
	}

	car, err := s.carRepo.Get(ctx, shared.FilterByID(carID, carModel.FieldID, carModel.TableName), carModel.FieldID)
	if err != nil {
		log.Error().Err(err).Str("car_id", carID).Msg("failed to get car")

		return res, fmt.Errorf("failed to get car: %w", err)
	}

	if car.ID == constant.Empty {
		return res, failure.NotFound("car not found") // nolint:wrapcheck
	}

	bookings, err := s.repo.GetAll(ctx, gDto.QueryParams{}, BlockingFilter(carID))
	if err != nil {
		log.Error().Err(err).Str("car_id", carID).Msg("failed to get bookings of car")

		return res, fmt.Errorf("failed to get bookings of car: %w", err)
	}

	res.CarID = carID
	res.BufferDays = bufferDays
	res.Periods = availability.UnavailablePeriods(bookings, bufferDays)

	return res, nil
}

// lockBooking reads the booking under a row lock and fires event against its status.
func (s *serviceImpl) lockBooking(ctx context.Context, tx *sqlx.Tx, id, event string) (model.Booking, string, error) {
	booking, err := s.repo.GetForUpdateTx(ctx, tx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to lock booking")

		return booking, constant.Empty, fmt.Errorf("failed to lock booking: %w", err)
	}

	if booking.ID == constant.Empty || hiddenFromCaller(ctx, booking.CustomerID) {
		return booking, constant.Empty, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	next, err := model.NextStatus(ctx, booking.BookingStatus, event)
	if err != nil {
		return booking, constant.Empty, failure.PreconditionFailed(err.Error()) // nolint:wrapcheck
	}

	return booking, next, nil
}

func (s *serviceImpl) updateBooking(ctx context.Context, tx *sqlx.Tx, id string, fields map[string]any, user string) error {
	err := s.repo.UpdateTx(ctx, tx, shared.WithModified(fields, user), shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to update booking")

		return fmt.Errorf("failed to update booking: %w", err)
	}

	return nil
}

func (s *serviceImpl) setCarStatus(ctx context.Context, tx *sqlx.Tx, carID, status, user string) error {
	err := s.carRepo.UpdateTx(ctx, tx, shared.WithModified(map[string]any{
		carModel.FieldStatus: status,
	}, user), shared.FilterByID(carID, carModel.FieldID, carModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("car_id", carID).Str("status", status).Msg("failed to update car status")

		return fmt.Errorf("failed to update car status: %w", err)
	}

	return nil
}

// afterTransition runs once the transition has committed.
func (s *serviceImpl) afterTransition(ctx context.Context, booking model.Booking, carFreed bool) {
	if carFreed {
		s.publisher.CarAvailable(ctx, booking.CarID)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, booking.ID)); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to evict booking from cache")
		}
	}()
}

// hiddenFromCaller reports whether a customer is looking at someone else's booking.
func hiddenFromCaller(ctx context.Context, customerID string) bool {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return role == constant.RoleCustomer && customerID != actor(ctx)
}

func actor(ctx context.Context) string {
	if user, ok := ctx.Value(constant.ContextKeyUserID).(string); ok && user != constant.Empty {
		return user
	}

	return constant.ContextSystem
}
