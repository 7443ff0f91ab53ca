package booking

import (
	"context"
	"fleet/infras/otel"
	"fleet/internal/domains/booking/model/dto"
	"fleet/internal/domains/booking/service"
	"fleet/shared/constant"
	gDto "fleet/shared/dto"
	"fleet/shared/validator"
	"fleet/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	queryCarID         = "car_id"
	queryCustomerID    = "customer_id"
	queryBookingStatus = "booking_status"
)

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Post("/{id}/confirm", handler.ConfirmBooking)
		routerGroup.Post("/{id}/reject", handler.RejectBooking)
		routerGroup.Post("/{id}/cancel", handler.CancelBooking)
		routerGroup.Post("/{id}/release", handler.ReleaseBooking)
		routerGroup.Post("/{id}/return", handler.ReturnBooking)
		routerGroup.Post("/{id}/return/preview", handler.PreviewReturnFees)
	})
}

// CreateBooking requests a car for a date range.
// @Summary Request a booking
// @Description Reserve a car for the inclusive date range. The booking starts Pending and must be paid before its payment deadline.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Requested dates overlap existing bookings; details lists the conflicting periods"
// @Failure 412 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	booking, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking requested " + booking.ID)

	response.WithJSON(writer, http.StatusCreated, booking)
}

// GetBookings lists bookings. Customers only see their own.
// @Summary Get all bookings
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param car_id query string false "Filter by car ID"
// @Param customer_id query string false "Filter by customer ID"
// @Param booking_status query string false "Filter by booking status"
// @Success 200 {object} response.Data[dto.GetBookingsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	query := request.URL.Query()
	filter := dto.GetBookingsFilter{
		CarID:         query.Get(queryCarID),
		CustomerID:    query.Get(queryCustomerID),
		BookingStatus: query.Get(queryBookingStatus),
	}

	bookings, err := handler.service.GetAll(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, bookings)
}

// GetBookingByID retrieves a booking by its ID.
// @Summary Get a booking by ID
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking by ID")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, booking)
}

// ConfirmBooking records the payment of a pending booking.
// @Summary Confirm a booking
// @Description Confirm a Pending booking once at least the reservation fee has been paid before the payment deadline.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.ConfirmBookingRequest true "Payment"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 412 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/confirm [post]
// @Security BearerAuth
func (handler *Handler) ConfirmBooking(writer http.ResponseWriter, request *http.Request) {
	transition(handler, writer, request, "ConfirmBooking", body[dto.ConfirmBookingRequest], handler.service.Confirm)
}

// RejectBooking turns down a pending booking.
// @Summary Reject a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.ReasonRequest false "Reason"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 404 {object} response.Error
// @Failure 412 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/reject [post]
// @Security BearerAuth
func (handler *Handler) RejectBooking(writer http.ResponseWriter, request *http.Request) {
	transition(handler, writer, request, "RejectBooking", reason, handler.service.Reject)
}

// CancelBooking cancels a booking that has not been handed over yet.
// @Summary Cancel a booking
// @Description Cancel a Pending or Confirmed booking. The booking is kept as Cancelled and a cancellation entry is logged.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.ReasonRequest false "Reason"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 404 {object} response.Error
// @Failure 412 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelBooking(writer http.ResponseWriter, request *http.Request) {
	transition(handler, writer, request, "CancelBooking", reason, handler.service.Cancel)
}

// ReleaseBooking hands the car over to the customer.
// @Summary Release a car
// @Description Record the release inspection of a Confirmed booking and start the rental. Condition images are base64 data URLs.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.ReleaseBookingRequest true "Release inspection"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 412 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/release [post]
// @Security BearerAuth
func (handler *Handler) ReleaseBooking(writer http.ResponseWriter, request *http.Request) {
	transition(handler, writer, request, "ReleaseBooking", body[dto.ReleaseBookingRequest], handler.service.Release)
}

// ReturnBooking closes the rental and settles the return fees.
// @Summary Return a car
// @Description Record the return inspection, compute the settlement fees and complete the booking.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.ReturnBookingRequest true "Return inspection"
// @Success 200 {object} response.Data[dto.ReturnResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 412 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/return [post]
// @Security BearerAuth
func (handler *Handler) ReturnBooking(writer http.ResponseWriter, request *http.Request) {
	transition(handler, writer, request, "ReturnBooking", body[dto.ReturnBookingRequest], handler.service.Return)
}

// PreviewReturnFees computes the settlement without recording anything.
// @Summary Preview return fees
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.PreviewReturnRequest true "Return inspection"
// @Success 200 {object} response.Data[settlement.Breakdown]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 412 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/return/preview [post]
// @Security BearerAuth
func (handler *Handler) PreviewReturnFees(writer http.ResponseWriter, request *http.Request) {
	transition(handler, writer, request, "PreviewReturnFees", body[dto.PreviewReturnRequest], handler.service.PreviewReturnFees)
}

// transition decodes the body, applies op to the booking named in the path and writes the
// updated resource.
func transition[Req, Res any](
	handler *Handler,
	writer http.ResponseWriter,
	request *http.Request,
	name string,
	decode func(*http.Request) (Req, error),
	op func(context.Context, string, Req) (Res, error),
) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+name)
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)
	scope.SetAttribute("booking.id", id)

	req, err := decode(request)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("booking_id", id).Str("op", name).Msg("rejected request body")

		response.WithError(writer, err)

		return
	}

	res, err := op(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", id).Str("op", name).Msg("booking transition failed")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

func body[T any](request *http.Request) (T, error) {
	var req T

	err := validator.Validate(request.Body, &req)

	return req, err
}

// reason accepts an empty body on reject and cancel.
func reason(request *http.Request) (dto.ReasonRequest, error) {
	if request.Body == nil || request.Body == http.NoBody || request.ContentLength == 0 {
		return dto.ReasonRequest{}, nil
	}

	return body[dto.ReasonRequest](request)
}
