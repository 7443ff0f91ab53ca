package car

import (
	"fleet/config"
	"fleet/infras/otel"
	bookingDto "fleet/internal/domains/booking/model/dto"
	bookingService "fleet/internal/domains/booking/service"
	"fleet/internal/domains/waitlist/model/dto"
	waitlistService "fleet/internal/domains/waitlist/service"
	"fleet/shared/constant"
	"fleet/shared/failure"
	"fleet/shared/validator"
	"fleet/transport/http/response"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	bookings bookingService.Booking
	waitlist waitlistService.Waitlist
	cfg      *config.Config
	otel     otel.Otel
}

func New(bookings bookingService.Booking, waitlist waitlistService.Waitlist, cfg *config.Config, otel otel.Otel) Handler {
	return Handler{
		bookings: bookings,
		waitlist: waitlist,
		cfg:      cfg,
		otel:     otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/cars/{id}", func(routerGroup chi.Router) {
		routerGroup.Get("/availability", handler.GetAvailability)
		routerGroup.Get("/waitlist", handler.GetWaitlist)
		routerGroup.Post("/waitlist", handler.JoinWaitlist)
		routerGroup.Delete("/waitlist", handler.LeaveWaitlist)
	})
}

// GetAvailability lists the periods in which the car cannot be booked.
// @Summary Get car availability
// @Description Returns the blocked periods of the car, each extended by the buffer days needed to turn the car around.
// @Tags Car
// @Produce json
// @Param id path string true "Car ID"
// @Param buffer_days query int false "Buffer days after each booking (defaults to the configured value)"
// @Success 200 {object} response.Data[bookingDto.AvailabilityResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/cars/{id}/availability [get]
func (handler *Handler) GetAvailability(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailability")
	defer scope.End()

	carID := chi.URLParam(request, constant.RequestParamID)
	bufferDays := handler.cfg.Rental.BufferDays

	if raw := request.URL.Query().Get(constant.RequestParamBufferDays); raw != constant.Empty {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			err = failure.BadRequestFromString("buffer_days must be a whole number")
			scope.TraceError(err)
			response.WithError(writer, err)

			return
		}

		bufferDays = parsed
	}

	var res bookingDto.AvailabilityResponse

	res, err := handler.bookings.CarAvailability(ctx, carID, bufferDays)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("car_id", carID).Msg("failed to get car availability")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// JoinWaitlist queues a customer for a car that is currently unavailable.
// @Summary Join the waitlist of a car
// @Description Customers join for themselves; staff pass customer_id.
// @Tags Waitlist
// @Accept json
// @Produce json
// @Param id path string true "Car ID"
// @Param request body dto.JoinWaitlistRequest false "Customer (staff only)"
// @Success 200 {object} response.Data[dto.WaitlistResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/cars/{id}/waitlist [post]
// @Security BearerAuth
func (handler *Handler) JoinWaitlist(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".JoinWaitlist")
	defer scope.End()

	carID := chi.URLParam(request, constant.RequestParamID)

	customerID, err := handler.customerID(request)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	res, err := handler.waitlist.Join(ctx, carID, customerID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("car_id", carID).Msg("failed to join waitlist")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// LeaveWaitlist removes the customer from the waitlist of the car.
// @Summary Leave the waitlist of a car
// @Tags Waitlist
// @Accept json
// @Produce json
// @Param id path string true "Car ID"
// @Param request body dto.JoinWaitlistRequest false "Customer (staff only)"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/cars/{id}/waitlist [delete]
// @Security BearerAuth
func (handler *Handler) LeaveWaitlist(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".LeaveWaitlist")
	defer scope.End()

	carID := chi.URLParam(request, constant.RequestParamID)

	customerID, err := handler.customerID(request)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	if err = handler.waitlist.Leave(ctx, carID, customerID); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("car_id", carID).Msg("failed to leave waitlist")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Left the waitlist")
}

// GetWaitlist lists the queue of a car in notification order.
// @Summary Get the waitlist of a car
// @Tags Waitlist
// @Produce json
// @Param id path string true "Car ID"
// @Success 200 {object} response.Data[dto.GetWaitlistResponse]
// @Failure 500 {object} response.Error
// @Router /v1/cars/{id}/waitlist [get]
// @Security BearerAuth
func (handler *Handler) GetWaitlist(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetWaitlist")
	defer scope.End()

	carID := chi.URLParam(request, constant.RequestParamID)

	res, err := handler.waitlist.List(ctx, carID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("car_id", carID).Msg("failed to get waitlist")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// customerID is the caller for customers; staff name the customer in the body.
func (handler *Handler) customerID(request *http.Request) (string, error) {
	ctx := request.Context()

	if role, _ := ctx.Value(constant.ContextKeyUserRole).(string); role == constant.RoleCustomer {
		user, _ := ctx.Value(constant.ContextKeyUserID).(string)

		return user, nil
	}

	req := dto.JoinWaitlistRequest{}

	if request.Body != nil && request.Body != http.NoBody && request.ContentLength != 0 {
		if err := validator.Validate(request.Body, &req); err != nil {
			return constant.Empty, err
		}
	}

	if req.CustomerID == constant.Empty {
		return constant.Empty, failure.BadRequestFromString("customer_id is required") // nolint:wrapcheck
	}

	return req.CustomerID, nil
}
