package service

import (
	"context"
	"fleet/internal/domains/booking/model"
	"fleet/internal/domains/booking/model/dto"
	carModel "fleet/internal/domains/car/model"
	driverModel "fleet/internal/domains/driver/model"
	inspectionModel "fleet/internal/domains/inspection/model"
	"fleet/internal/domains/settlement"
	transactionModel "fleet/internal/domains/transaction/model"
	"fleet/shared"
	"fleet/shared/constant"
	"fleet/shared/failure"
	gModel "fleet/shared/model"
	"fleet/shared/timezone"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

var closeVerbs = map[string]string{
	model.EventCancel: "cancelled",
	model.EventReject: "rejected",
}

// Confirm records the reservation payment and takes the car off the market.
func (s *serviceImpl) Confirm(ctx context.Context, id string, req dto.ConfirmBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Confirm")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user := actor(ctx)

	fees, err := s.fees.GetFees(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to get fee schedule: %w", err)
	}

	reservationFee := fees.Amount(s.cfg.Rental.ReservationFeeKey)

	var booking model.Booking

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var next string

		booking, next, err = s.lockBooking(ctx, tx, id, model.EventConfirm)
		if err != nil {
			return err
		}

		if timezone.Now().After(booking.PaymentDeadline) {
			return failure.PreconditionFailed("payment deadline has passed") // nolint:wrapcheck
		}

		paid := booking.AmountPaid + req.AmountPaid
		if paid < reservationFee {
			return failure.PreconditionFailed(fmt.Sprintf("payment of %.2f is below the reservation fee of %.2f", paid, reservationFee)) // nolint:wrapcheck
		}

		booking.BookingStatus = next
		booking.IsPay = true
		booking.AmountPaid = paid
		booking.Balance = math.Max(booking.TotalAmount-paid, 0)
		booking.PaymentStatus = model.PaymentStatusFor(paid, booking.TotalAmount)

		err = s.updateBooking(ctx, tx, booking.ID, map[string]any{
			model.FieldBookingStatus: booking.BookingStatus,
			model.FieldIsPay:         booking.IsPay,
			model.FieldAmountPaid:    booking.AmountPaid,
			model.FieldBalance:       booking.Balance,
			model.FieldPaymentStatus: booking.PaymentStatus,
		}, user)
		if err != nil {
			return err
		}

		return s.setCarStatus(ctx, tx, booking.CarID, carModel.StatusRented, user)
	})
	if err != nil {
		return res, err
	}

	s.afterTransition(ctx, booking, false)

	res.FromModel(booking)

	return res, nil
}

// Reject turns a pending request down. The row is kept and the refusal is logged.
func (s *serviceImpl) Reject(ctx context.Context, id string, req dto.ReasonRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reject")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.closeBooking(ctx, id, model.EventReject, req.Reason)
	if err != nil {
		return res, err
	}

	res.FromModel(booking)

	return res, nil
}

// Cancel ends a booking before hand-off. Unlike expiry reclamation the row is kept.
func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.ReasonRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.closeBooking(ctx, id, model.EventCancel, req.Reason)
	if err != nil {
		return res, err
	}

	res.FromModel(booking)

	return res, nil
}

// closeBooking moves the booking into Cancelled or Rejected and writes the cancellation entry.
func (s *serviceImpl) closeBooking(ctx context.Context, id, event, reason string) (booking model.Booking, err error) {
	user := actor(ctx)
	now := timezone.Now()

	if reason == constant.Empty {
		reason = fmt.Sprintf("%s by %s", closeVerbs[event], user)
	}

	var carFreed bool

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var next string

		booking, next, err = s.lockBooking(ctx, tx, id, event)
		if err != nil {
			return err
		}

		wasConfirmed := booking.BookingStatus == model.StatusConfirmed

		booking.BookingStatus = next
		booking.CancelReason = &reason

		fields := map[string]any{
			model.FieldBookingStatus: booking.BookingStatus,
			model.FieldCancelReason:  reason,
		}

		if event == model.EventCancel {
			booking.IsCancel = true
			fields[model.FieldIsCancel] = true
		}

		if err = s.updateBooking(ctx, tx, booking.ID, fields, user); err != nil {
			return err
		}

		entry := transactionModel.NewCancellation(booking.ID, booking.CarID, booking.CustomerID, booking.AmountPaid, reason, now, user)
		if err = s.transactionRepo.InsertTx(ctx, tx, entry); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to log cancellation")

			return fmt.Errorf("failed to log cancellation: %w", err)
		}

		if !wasConfirmed {
			return nil
		}

		carFreed, err = s.occupancy.FreeCarTx(ctx, tx, booking.CarID, booking.ID, user)

		return err
	})
	if err != nil {
		return booking, err
	}

	log.Info().Str("booking_id", booking.ID).Str("status", booking.BookingStatus).Bool("car_freed", carFreed).Msg("booking closed")

	s.afterTransition(ctx, booking, carFreed)

	return booking, nil
}

// Release hands the car over. The release inspection is stored in the same transaction
// as the status change; condition images are uploaded once it has committed.
func (s *serviceImpl) Release(ctx context.Context, id string, req dto.ReleaseBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Release")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user := actor(ctx)
	now := timezone.Now()

	var (
		booking model.Booking
		release inspectionModel.Release
	)

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var next string

		booking, next, err = s.lockBooking(ctx, tx, id, model.EventRelease)
		if err != nil {
			return err
		}

		var driverID *string

		if req.DriverID != constant.Empty {
			if err = s.assignDriver(ctx, tx, req.DriverID, user); err != nil {
				return err
			}

			driverID = &req.DriverID
		}

		release = inspectionModel.Release{
			ID:               uuid.NewString(),
			BookingID:        booking.ID,
			DriverID:         driverID,
			EquipmentStatus:  req.EquipmentStatus,
			EquipmentItems:   req.EquipmentItems,
			GasLevel:         req.GasLevel,
			LicensePresented: req.LicensePresented,
			ImageURLs:        pq.StringArray{},
			Metadata:         gModel.NewMetadata(now, user),
		}

		if err = s.releaseRepo.InsertTx(ctx, tx, release); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to create release record")

			return fmt.Errorf("failed to create release record: %w", err)
		}

		booking.BookingStatus = next
		booking.IsRelease = true
		booking.DriverID = driverID

		err = s.updateBooking(ctx, tx, booking.ID, map[string]any{
			model.FieldBookingStatus: booking.BookingStatus,
			model.FieldIsRelease:     booking.IsRelease,
			model.FieldDriverID:      booking.DriverID,
		}, user)
		if err != nil {
			return err
		}

		return s.setCarStatus(ctx, tx, booking.CarID, carModel.StatusRented, user)
	})
	if err != nil {
		return res, err
	}

	s.afterTransition(ctx, booking, false)

	if len(req.Images) > 0 {
		s.attachImages(ctx, release, req.Images)
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) assignDriver(ctx context.Context, tx *sqlx.Tx, driverID, user string) error {
	filter := shared.FilterByID(driverID, driverModel.FieldID, driverModel.TableName)

	driver, err := s.driverRepo.GetForUpdateTx(ctx, tx, filter)
	if err != nil {
		log.Error().Err(err).Str("driver_id", driverID).Msg("failed to lock driver")

		return fmt.Errorf("failed to lock driver: %w", err)
	}

	if driver.ID == constant.Empty {
		return failure.NotFound("driver not found") // nolint:wrapcheck
	}

	if driver.Status != driverModel.StatusAvailable {
		return failure.PreconditionFailed(fmt.Sprintf("driver is %s", driver.Status)) // nolint:wrapcheck
	}

	err = s.driverRepo.UpdateTx(ctx, tx, shared.WithModified(map[string]any{
		driverModel.FieldStatus: driverModel.StatusOnTrip,
	}, user), filter)
	if err != nil {
		log.Error().Err(err).Str("driver_id", driverID).Msg("failed to assign driver")

		return fmt.Errorf("failed to assign driver: %w", err)
	}

	return nil
}

// Return settles the rental: the return inspection is priced against the release
// inspection and the fee schedule, and everything it touches is written in one transaction.
func (s *serviceImpl) Return(ctx context.Context, id string, req dto.ReturnBookingRequest) (res dto.ReturnResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Return")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user := actor(ctx)
	now := timezone.Now()

	fees, err := s.fees.GetFees(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to get fee schedule: %w", err)
	}

	var (
		booking   model.Booking
		breakdown settlement.Breakdown
		carFreed  bool
	)

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var next string

		booking, next, err = s.lockBooking(ctx, tx, id, model.EventReturn)
		if err != nil {
			return err
		}

		byBooking := shared.FilterByID(booking.ID, inspectionModel.FieldBookingID, inspectionModel.ReleaseTableName)

		release, err := s.releaseRepo.GetTx(ctx, tx, byBooking)
		if err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to get release record")

			return fmt.Errorf("failed to get release record: %w", err)
		}

		if release.ID == constant.Empty {
			return failure.PreconditionFailed("booking has no release record") // nolint:wrapcheck
		}

		existing, err := s.returnRepo.GetTx(ctx, tx, shared.FilterByID(booking.ID, inspectionModel.FieldBookingID, inspectionModel.ReturnTableName), inspectionModel.FieldID)
		if err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to get return record")

			return fmt.Errorf("failed to get return record: %w", err)
		}

		if existing.ID != constant.Empty {
			return failure.PreconditionFailed("booking has already been returned") // nolint:wrapcheck
		}

		breakdown = settlement.Calculate(release.Settlement(), req.Settlement(), fees)

		record := inspectionModel.Return{
			ID:              uuid.NewString(),
			BookingID:       booking.ID,
			Odometer:        req.Odometer,
			GasLevel:        req.GasLevel,
			EquipmentStatus: req.EquipmentStatus,
			EquipmentItems:  req.EquipmentItems,
			Damage:          req.Damage,
			IsClean:         req.Settlement().IsClean,
			HasStain:        req.HasStain,
			Metadata:        gModel.NewMetadata(now, user),
		}
		record.ApplyBreakdown(breakdown)

		if err = s.returnRepo.InsertTx(ctx, tx, record); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to create return record")

			return fmt.Errorf("failed to create return record: %w", err)
		}

		if err = s.recordMileage(ctx, tx, booking.CarID, req.Odometer, user); err != nil {
			return err
		}

		booking.BookingStatus = next
		booking.IsReturned = true
		booking.TotalAmount = settleAmount(booking.TotalAmount + breakdown.TotalFee)

		if req.Payment != nil {
			booking.AmountPaid = settleAmount(booking.AmountPaid + *req.Payment)
			booking.Balance = 0
			booking.PaymentStatus = model.PaymentStatusPaid
		} else {
			booking.Balance = settleAmount(math.Max(booking.TotalAmount-booking.AmountPaid, 0))
			booking.PaymentStatus = model.PaymentStatusFor(booking.AmountPaid, booking.TotalAmount)
		}

		err = s.updateBooking(ctx, tx, booking.ID, map[string]any{
			model.FieldBookingStatus: booking.BookingStatus,
			model.FieldIsReturned:    booking.IsReturned,
			model.FieldTotalAmount:   booking.TotalAmount,
			model.FieldAmountPaid:    booking.AmountPaid,
			model.FieldBalance:       booking.Balance,
			model.FieldPaymentStatus: booking.PaymentStatus,
		}, user)
		if err != nil {
			return err
		}

		entry := transactionModel.NewCompletion(booking.ID, booking.CarID, booking.CustomerID, booking.TotalAmount, now, user)
		if err = s.transactionRepo.InsertTx(ctx, tx, entry); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to log completion")

			return fmt.Errorf("failed to log completion: %w", err)
		}

		if booking.DriverID != nil {
			err = s.driverRepo.UpdateTx(ctx, tx, shared.WithModified(map[string]any{
				driverModel.FieldStatus: driverModel.StatusAvailable,
			}, user), shared.FilterByID(*booking.DriverID, driverModel.FieldID, driverModel.TableName))
			if err != nil {
				log.Error().Err(err).Str("driver_id", *booking.DriverID).Msg("failed to free driver")

				return fmt.Errorf("failed to free driver: %w", err)
			}
		}

		carFreed, err = s.occupancy.FreeCarTx(ctx, tx, booking.CarID, booking.ID, user)

		return err
	})
	if err != nil {
		return res, err
	}

	scope.SetAttributes(map[string]any{
		"booking.id":     booking.ID,
		"fee.total":      breakdown.TotalFee,
		"car.freed":      carFreed,
		"booking.amount": booking.TotalAmount,
	})
	log.Info().Str("booking_id", booking.ID).Float64("total_fee", breakdown.TotalFee).Bool("car_freed", carFreed).Msg("booking returned")

	s.afterTransition(ctx, booking, carFreed)

	res.Breakdown = breakdown
	res.Booking.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) recordMileage(ctx context.Context, tx *sqlx.Tx, carID string, odometer int, user string) error {
	filter := shared.FilterByID(carID, carModel.FieldID, carModel.TableName)

	car, err := s.carRepo.GetForUpdateTx(ctx, tx, filter, carModel.FieldID, carModel.FieldMileage)
	if err != nil {
		log.Error().Err(err).Str("car_id", carID).Msg("failed to lock car")

		return fmt.Errorf("failed to lock car: %w", err)
	}

	if car.ID == constant.Empty {
		return failure.NotFound("car not found") // nolint:wrapcheck
	}

	if odometer < car.Mileage {
		return failure.BadRequestFromString(fmt.Sprintf("odometer %d is below the recorded mileage %d", odometer, car.Mileage)) // nolint:wrapcheck
	}

	err = s.carRepo.UpdateTx(ctx, tx, shared.WithModified(map[string]any{
		carModel.FieldMileage: odometer,
	}, user), filter)
	if err != nil {
		log.Error().Err(err).Str("car_id", carID).Msg("failed to update car mileage")

		return fmt.Errorf("failed to update car mileage: %w", err)
	}

	return nil
}

// PreviewReturnFees prices hypothetical return inputs without writing anything.
func (s *serviceImpl) PreviewReturnFees(ctx context.Context, id string, req dto.PreviewReturnRequest) (res settlement.Breakdown, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".PreviewReturnFees")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName), model.FieldID)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	release, err := s.releaseRepo.Get(ctx, shared.FilterByID(id, inspectionModel.FieldBookingID, inspectionModel.ReleaseTableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get release record")

		return res, fmt.Errorf("failed to get release record: %w", err)
	}

	if release.ID == constant.Empty {
		return res, failure.PreconditionFailed("booking has no release record") // nolint:wrapcheck
	}

	fees, err := s.fees.GetFees(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to get fee schedule: %w", err)
	}

	return settlement.Calculate(release.Settlement(), req.Settlement(), fees), nil
}

func settleAmount(value float64) float64 {
	return math.Round(value*100) / 100
}
