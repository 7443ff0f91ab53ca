package service

//go:generate go run go.uber.org/mock/mockgen -source=./occupancy.go -destination=../mocks/occupancy_mock.go -package=mocks

import (
	"context"
	"fleet/infras/otel"
	"fleet/internal/domains/booking/model"
	"fleet/internal/domains/booking/repository"
	carModel "fleet/internal/domains/car/model"
	carRepo "fleet/internal/domains/car/repository"
	"fleet/shared"
	"fleet/shared/constant"
	gDto "fleet/shared/dto"
	"fleet/shared/timezone"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Occupancy decides when a rented car goes back to Available.
type Occupancy interface {
	// FreeCarTx moves a Rented car back to Available unless a booking other than
	// exceptBookingID still occupies it today. It reports whether the car was freed.
	FreeCarTx(ctx context.Context, sqltx *sqlx.Tx, carID, exceptBookingID, user string) (bool, error)
}

type occupancyImpl struct {
	repo    repository.Booking
	carRepo carRepo.Car
	otel    otel.Otel
}

func NewOccupancy(repo repository.Booking, carRepo carRepo.Car, otel otel.Otel) Occupancy {
	return &occupancyImpl{
		repo:    repo,
		carRepo: carRepo,
		otel:    otel,
	}
}

func (o *occupancyImpl) FreeCarTx(ctx context.Context, sqltx *sqlx.Tx, carID, exceptBookingID, user string) (freed bool, err error) {
	ctx, scope := o.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".FreeCarTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	carFilter := shared.FilterByID(carID, carModel.FieldID, carModel.TableName)

	car, err := o.carRepo.GetForUpdateTx(ctx, sqltx, carFilter, carModel.FieldID, carModel.FieldStatus)
	if err != nil {
		log.Error().Err(err).Str("car_id", carID).Msg("failed to lock car")

		return false, fmt.Errorf("failed to lock car: %w", err)
	}

	// maintenance and inactive cars keep their status
	if car.ID == constant.Empty || car.Status != carModel.StatusRented {
		return false, nil
	}

	occupying, err := o.repo.GetAllTx(ctx, sqltx, gDto.QueryParams{Limit: 1}, OccupyingTodayFilter(carID, exceptBookingID), model.FieldID)
	if err != nil {
		log.Error().Err(err).Str("car_id", carID).Msg("failed to get occupying bookings")

		return false, fmt.Errorf("failed to get occupying bookings: %w", err)
	}

	if len(occupying) > 0 {
		log.Info().Str("car_id", carID).Str("booking_id", occupying[0].ID).Msg("car is still occupied, keeping it rented")

		return false, nil
	}

	err = o.carRepo.UpdateTx(ctx, sqltx, shared.WithModified(map[string]any{
		carModel.FieldStatus: carModel.StatusAvailable,
	}, user), carFilter)
	if err != nil {
		log.Error().Err(err).Str("car_id", carID).Msg("failed to mark car available")

		return false, fmt.Errorf("failed to mark car available: %w", err)
	}

	return true, nil
}

// OccupyingTodayFilter matches the confirmed or running bookings of the car whose dates cover today.
func OccupyingTodayFilter(carID, exceptBookingID string) gDto.FilterGroup {
	today := timezone.Today().Format(constant.DayFormat)

	return shared.FilterAnd(
		gDto.Filter{Field: model.FieldCarID, Value: carID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldID, Value: exceptBookingID, Operator: gDto.FilterOperatorNotEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldBookingStatus, Value: model.OccupyingStatuses, Operator: gDto.FilterOperatorIn, Table: model.TableName},
		gDto.Filter{Field: model.FieldIsCancel, Value: false, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldStartDate, Value: today, Operator: gDto.FilterOperatorLessEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldEndDate, Value: today, Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName},
	)
}

// BlockingFilter matches the bookings of the car that still hold their dates.
func BlockingFilter(carID string) gDto.FilterGroup {
	return shared.FilterAnd(
		gDto.Filter{Field: model.FieldCarID, Value: carID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldBookingStatus, Value: model.BlockingStatuses, Operator: gDto.FilterOperatorIn, Table: model.TableName},
		gDto.Filter{Field: model.FieldIsCancel, Value: false, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	)
}
