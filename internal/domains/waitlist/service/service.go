package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fleet/config"
	"fleet/infras/notification"
	"fleet/infras/otel"
	carModel "fleet/internal/domains/car/model"
	carRepo "fleet/internal/domains/car/repository"
	customerModel "fleet/internal/domains/customer/model"
	customerRepo "fleet/internal/domains/customer/repository"
	"fleet/internal/domains/waitlist/model"
	"fleet/internal/domains/waitlist/model/dto"
	"fleet/internal/domains/waitlist/repository"
	"fleet/shared"
	"fleet/shared/cache"
	"fleet/shared/constant"
	gDto "fleet/shared/dto"
	"fleet/shared/failure"
	gModel "fleet/shared/model"
	"fleet/shared/timezone"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	cacheLockCascade   = "waitlist:cascade"
	cacheRerunCascade  = "waitlist:cascade-rerun"
	cascadeLockSeconds = 300
	maxCascadePasses   = 5

	emailSubject = "Your car is available"
)

type outcome int

const (
	outcomeNotified outcome = iota
	outcomeFailed
	outcomeSkipped
)

// Notifier runs the waitlist cascade for a car that just became available.
type Notifier interface {
	NotifyWaiting(ctx context.Context, carID string) (dto.NotifyReport, error)
}

type Waitlist interface {
	Notifier
	Join(ctx context.Context, carID, customerID string) (dto.WaitlistResponse, error)
	Leave(ctx context.Context, carID, customerID string) error
	List(ctx context.Context, carID string) (dto.GetWaitlistResponse, error)
}

type serviceImpl struct {
	repo         repository.Waitlist
	carRepo      carRepo.Car
	customerRepo customerRepo.Customer
	dispatcher   notification.Dispatcher
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(
	repo repository.Waitlist,
	carRepo carRepo.Car,
	customerRepo customerRepo.Customer,
	dispatcher notification.Dispatcher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Waitlist {
	return &serviceImpl{
		repo:         repo,
		carRepo:      carRepo,
		customerRepo: customerRepo,
		dispatcher:   dispatcher,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

// NewNotifier exposes the cascade half of the waitlist service.
func NewNotifier(waitlist Waitlist) Notifier {
	return waitlist
}

// Join queues the customer for the car. Joining again while still waiting keeps the
// original position; joining again after a notification goes to the back of the queue.
func (s *serviceImpl) Join(ctx context.Context, carID, customerID string) (res dto.WaitlistResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Join")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	car, err := s.carRepo.Get(ctx, shared.FilterByID(carID, carModel.FieldID, carModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("car_id", carID).Msg("failed to get car")

		return res, fmt.Errorf("failed to get car: %w", err)
	}

	if car.ID == constant.Empty {
		return res, failure.NotFound("car not found") // nolint:wrapcheck
	}

	if car.Status == carModel.StatusAvailable {
		return res, failure.BadRequestFromString("car is available, book it directly instead of joining the waitlist") // nolint:wrapcheck
	}

	filter := entryFilter(carID, customerID)

	existing, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("car_id", carID).Msg("failed to get waitlist entry")

		return res, fmt.Errorf("failed to get waitlist entry: %w", err)
	}

	if existing.ID != constant.Empty {
		return s.rejoin(ctx, existing, user)
	}

	now := timezone.Now()
	entry := model.Waitlist{
		ID:         uuid.NewString(),
		CarID:      carID,
		CustomerID: customerID,
		Status:     model.StatusWaiting,
		QueuedAt:   now,
		Metadata:   gModel.NewMetadata(now, user),
	}

	if err = s.repo.Insert(ctx, entry); err != nil {
		if !shared.IsUniqueViolation(err) {
			log.Error().Err(err).Str("car_id", carID).Msg("failed to join waitlist")

			return res, fmt.Errorf("failed to join waitlist: %w", err)
		}

		// a concurrent join won the unique (car_id, customer_id) slot
		entry, err = s.repo.Get(ctx, filter)
		if err != nil {
			log.Error().Err(err).Str("car_id", carID).Msg("failed to get waitlist entry")

			return res, fmt.Errorf("failed to get waitlist entry: %w", err)
		}
	}

	res.FromModel(entry)

	return res, nil
}

func (s *serviceImpl) rejoin(ctx context.Context, existing model.Waitlist, user string) (res dto.WaitlistResponse, err error) {
	if existing.Status == model.StatusWaiting {
		res.FromModel(existing)

		return res, nil
	}

	now := timezone.Now()
	filter := shared.FilterByID(existing.ID, model.FieldID, model.TableName)

	if err = s.repo.Update(ctx, shared.WithModified(model.Requeue(now), user), filter); err != nil {
		log.Error().Err(err).Str("waitlist_id", existing.ID).Msg("failed to requeue waitlist entry")

		return res, fmt.Errorf("failed to requeue waitlist entry: %w", err)
	}

	existing.Status = model.StatusWaiting
	existing.QueuedAt = now
	existing.NotifiedDate = nil
	existing.NotificationMethod = nil
	existing.NotificationSuccess = nil
	existing.NotificationError = nil
	existing.ModifiedAt = now
	existing.ModifiedBy = user

	res.FromModel(existing)

	return res, nil
}

func (s *serviceImpl) Leave(ctx context.Context, carID, customerID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Leave")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := entryFilter(carID, customerID)

	existing, err := s.repo.Get(ctx, filter, model.FieldID)
	if err != nil {
		log.Error().Err(err).Str("car_id", carID).Msg("failed to get waitlist entry")

		return fmt.Errorf("failed to get waitlist entry: %w", err)
	}

	if existing.ID == constant.Empty {
		return failure.NotFound("waitlist entry not found") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(existing.ID, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("waitlist_id", existing.ID).Msg("failed to leave waitlist")

		return fmt.Errorf("failed to leave waitlist: %w", err)
	}

	return nil
}

func (s *serviceImpl) List(ctx context.Context, carID string) (res dto.GetWaitlistResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".List")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	entries, err := s.queue(ctx, shared.FilterAnd(gDto.Filter{
		Field:    model.FieldCarID,
		Value:    carID,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	}))
	if err != nil {
		return res, err
	}

	res.FromModels(entries)

	return res, nil
}

// NotifyWaiting notifies every waiting customer of the car once, oldest first. A failed send
// still marks the entry notified; the customer has to rejoin to be notified again.
//
// Each call first leaves a rerun mark for the car and then competes for the cascade lock. The
// holder consumes the mark before every pass and, after releasing the lock, checks for a mark
// left in the meantime, so an event that arrives while a cascade is running is served by that
// cascade instead of being dropped.
func (s *serviceImpl) NotifyWaiting(ctx context.Context, carID string) (report dto.NotifyReport, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".NotifyWaiting")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	report.CarID = carID

	car, err := s.carRepo.Get(ctx, shared.FilterByID(carID, carModel.FieldID, carModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("car_id", carID).Msg("failed to get car")

		return report, fmt.Errorf("failed to get car: %w", err)
	}

	if car.ID == constant.Empty {
		return report, failure.NotFound("car not found") // nolint:wrapcheck
	}

	lockKey := shared.BuildCacheKey(cacheLockCascade, carID)
	rerunKey := shared.BuildCacheKey(cacheRerunCascade, carID)

	if err = s.cache.Save(ctx, rerunKey, carID, cascadeLockSeconds); err != nil {
		log.Warn().Err(err).Str("car_id", carID).Msg("cascade lock unavailable, continuing without it")

		err = s.cascade(ctx, car, &report)

		return report, err
	}

	for range maxCascadePasses {
		token := uuid.NewString()

		acquired, lockErr := s.cache.Acquire(ctx, lockKey, token, cascadeLockSeconds)
		if lockErr != nil {
			log.Warn().Err(lockErr).Str("car_id", carID).Msg("cascade lock unavailable, continuing without it")

			err = s.cascade(ctx, car, &report)

			return report, err
		}

		if !acquired {
			log.Info().Str("car_id", carID).Msg("waitlist cascade already running for car, left a rerun mark")

			return report, nil
		}

		pending, takeErr := s.cache.Take(ctx, rerunKey)
		if takeErr != nil {
			log.Warn().Err(takeErr).Str("car_id", carID).Msg("failed to read cascade rerun mark, running a pass")

			pending = true
		}

		if pending {
			err = s.cascade(ctx, car, &report)
		}

		s.release(ctx, lockKey, token, carID)

		if err != nil {
			return report, err
		}

		if !s.rerunRequested(ctx, rerunKey) {
			break
		}
	}

	log.Info().
		Str("car_id", carID).
		Int("total", report.Total).
		Int("notified", report.Notified).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("waitlist cascade finished")

	return report, nil
}

// cascade runs one pass over the entries still waiting on the car.
func (s *serviceImpl) cascade(ctx context.Context, car carModel.Car, report *dto.NotifyReport) error {
	entries, err := s.queue(ctx, waitingFilter(car.ID))
	if err != nil {
		return err
	}

	report.Total += len(entries)

	for _, entry := range entries {
		switch s.notifyEntry(ctx, car, entry) {
		case outcomeNotified:
			report.Notified++
		case outcomeFailed:
			report.Failed++
		case outcomeSkipped:
			report.Skipped++
		}
	}

	return nil
}

func (s *serviceImpl) release(ctx context.Context, lockKey, token, carID string) {
	released, err := s.cache.Release(context.WithoutCancel(ctx), lockKey, token)

	switch {
	case err != nil:
		log.Error().Err(err).Str("car_id", carID).Msg("failed to release cascade lock")
	case !released:
		log.Warn().Str("car_id", carID).Msg("cascade lock expired before the cascade finished")
	}
}

// rerunRequested peeks at the rerun mark without consuming it.
func (s *serviceImpl) rerunRequested(ctx context.Context, rerunKey string) bool {
	var mark string

	err := s.cache.Get(ctx, rerunKey, &mark)
	if err != nil && !errors.Is(err, cache.Nil) {
		log.Warn().Err(err).Str("key", rerunKey).Msg("failed to check cascade rerun mark")
	}

	return err == nil
}

func (s *serviceImpl) notifyEntry(ctx context.Context, car carModel.Car, entry model.Waitlist) outcome {
	logger := log.With().Str("waitlist_id", entry.ID).Str("car_id", car.ID).Str("customer_id", entry.CustomerID).Logger()

	customer, err := s.customerRepo.Get(ctx, shared.FilterByID(entry.CustomerID, customerModel.FieldID, customerModel.TableName))
	if err != nil {
		logger.Error().Err(err).Msg("failed to get customer for waitlist entry")

		// The attempt still uses up the entry's turn, exactly like a failed send.
		s.record(ctx, entry, nil, fmt.Errorf("customer lookup failed: %w", err))

		return outcomeFailed
	}

	if customer.ID == constant.Empty || !customer.NotifyEnabled {
		logger.Info().Msg("customer has notifications disabled, skipping")

		return outcomeSkipped
	}

	channels := customer.Channels()
	results := s.dispatch(ctx, car, customer, channels)

	succeeded := []string{}
	errs := []error{}

	for _, result := range results {
		if result.Success {
			succeeded = append(succeeded, result.Channel)

			continue
		}

		errs = append(errs, result.Err)
	}

	if len(channels) == 0 {
		errs = append(errs, errors.New("no reachable notification channel"))
	}

	dispatchErr := errors.Join(errs...)
	if dispatchErr != nil {
		logger.Warn().Err(dispatchErr).Msg("waitlist notification dispatch failed")
	}

	if !s.record(ctx, entry, succeeded, dispatchErr) || len(succeeded) == 0 {
		return outcomeFailed
	}

	return outcomeNotified
}

// record moves the entry to notified with the channels that went through. It reports whether
// the update was stored.
func (s *serviceImpl) record(ctx context.Context, entry model.Waitlist, succeeded []string, dispatchErr error) bool {
	method := model.MethodNone
	if len(succeeded) > 0 {
		method = strings.Join(succeeded, ",")
	}

	var message *string
	if dispatchErr != nil {
		text := dispatchErr.Error()
		message = &text
	}

	update := map[string]any{
		model.FieldStatus:              model.StatusNotified,
		model.FieldNotifiedDate:        timezone.Now(),
		model.FieldNotificationMethod:  method,
		model.FieldNotificationSuccess: len(succeeded) > 0,
		model.FieldNotificationError:   message,
	}

	filter := shared.FilterAnd(
		gDto.Filter{Field: model.FieldID, Value: entry.ID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldStatus, ArgName: "current_status", Value: model.StatusWaiting, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	)

	if err := s.repo.Update(ctx, shared.WithModified(update, constant.ContextSystem), filter); err != nil {
		log.Error().Err(err).Str("waitlist_id", entry.ID).Msg("failed to record waitlist notification")

		return false
	}

	return true
}

// dispatch sends on every channel at once and waits for all of them.
func (s *serviceImpl) dispatch(ctx context.Context, car carModel.Car, customer customerModel.Customer, channels []string) []notification.Result {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Rental.DispatchTimeoutSeconds)*time.Second)
	defer cancel()

	text := availabilityMessage(car, customer)
	results := make([]notification.Result, len(channels))

	group, groupCtx := errgroup.WithContext(ctx)

	for i, channel := range channels {
		group.Go(func() error {
			switch channel {
			case customerModel.ChannelSMS:
				results[i] = s.dispatcher.SendSMS(groupCtx, *customer.Phone, text)
			case customerModel.ChannelEmail:
				results[i] = s.dispatcher.SendEmail(groupCtx, *customer.Email, emailSubject, text)
			}

			return nil
		})
	}

	_ = group.Wait()

	return results
}

func (s *serviceImpl) queue(ctx context.Context, filter gDto.FilterGroup) ([]model.Waitlist, error) {
	params := gDto.QueryParams{SortBy: model.TableName + "." + model.FieldQueuedAt, SortDir: gDto.SortDirAsc}

	entries, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get waitlist entries")

		return nil, fmt.Errorf("failed to get waitlist entries: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].QueuedAt.Equal(entries[j].QueuedAt) {
			return entries[i].ID < entries[j].ID
		}

		return entries[i].QueuedAt.Before(entries[j].QueuedAt)
	})

	return entries, nil
}

func availabilityMessage(car carModel.Car, customer customerModel.Customer) string {
	return fmt.Sprintf("Hi %s, the %s (%s) you were waiting for is available again. Book it before someone else does.",
		customer.FullName, car.Model, car.PlateNumber)
}

func entryFilter(carID, customerID string) gDto.FilterGroup {
	return shared.FilterAnd(
		gDto.Filter{Field: model.FieldCarID, Value: carID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldCustomerID, Value: customerID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	)
}

func waitingFilter(carID string) gDto.FilterGroup {
	return shared.FilterAnd(
		gDto.Filter{Field: model.FieldCarID, Value: carID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldStatus, Value: model.StatusWaiting, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldNotifiedDate, Operator: gDto.FilterIsNull, Table: model.TableName},
	)
}
