package car_test

import (
	"context"
	"fleet/config"
	otelMocks "fleet/infras/otel/mocks"
	bookingDto "fleet/internal/domains/booking/model/dto"
	bookingMocks "fleet/internal/domains/booking/service/mocks"
	"fleet/internal/domains/waitlist/model"
	"fleet/internal/domains/waitlist/model/dto"
	waitlistMocks "fleet/internal/domains/waitlist/service/mocks"
	"fleet/internal/handlers/car"
	"fleet/shared/constant"
	"fleet/shared/failure"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const (
	carID      = "6f1c2a9e-0b7d-4e55-9d0f-6a2b1f3c4d5e"
	customerID = "0d9e8f7a-6b5c-4d3e-8f2a-1b0c9d8e7f6a"
)

type fixture struct {
	router   http.Handler
	bookings *bookingMocks.MockBooking
	waitlist *waitlistMocks.MockWaitlist
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	bookings := bookingMocks.NewMockBooking(ctrl)
	waitlist := waitlistMocks.NewMockWaitlist(ctrl)

	cfg := &config.Config{}
	cfg.Rental.BufferDays = 1

	handler := car.New(bookings, waitlist, cfg, otelMocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/v1", handler.Router)

	return fixture{router: router, bookings: bookings, waitlist: waitlist}
}

func (f fixture) serve(method, path, body, role, user string) *httptest.ResponseRecorder {
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, path, http.NoBody)
	} else {
		request = httptest.NewRequest(method, path, strings.NewReader(body))
	}

	ctx := context.WithValue(request.Context(), constant.ContextKeyUserRole, role)
	ctx = context.WithValue(ctx, constant.ContextKeyUserID, user)

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request.WithContext(ctx))

	return recorder
}

func TestGetAvailability(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		setup    func(f fixture)
		wantCode int
	}{
		{
			name: "configured buffer by default",
			setup: func(f fixture) {
				f.bookings.EXPECT().CarAvailability(gomock.Any(), carID, 1).
					Return(bookingDto.AvailabilityResponse{CarID: carID, BufferDays: 1}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:  "buffer override",
			query: "?buffer_days=0",
			setup: func(f fixture) {
				f.bookings.EXPECT().CarAvailability(gomock.Any(), carID, 0).
					Return(bookingDto.AvailabilityResponse{CarID: carID}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "non numeric buffer",
			query:    "?buffer_days=two",
			setup:    func(_ fixture) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown car",
			setup: func(f fixture) {
				f.bookings.EXPECT().CarAvailability(gomock.Any(), carID, 1).
					Return(bookingDto.AvailabilityResponse{}, failure.NotFound("car not found"))
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			res := f.serve(http.MethodGet, "/v1/cars/"+carID+"/availability"+tt.query, "", "", "")

			assert.Equal(t, tt.wantCode, res.Code, res.Body.String())
		})
	}
}

func TestJoinWaitlist(t *testing.T) {
	t.Run("customer joins as themselves", func(t *testing.T) {
		f := newFixture(t)

		f.waitlist.EXPECT().Join(gomock.Any(), carID, customerID).
			Return(dto.WaitlistResponse{CarID: carID, CustomerID: customerID, Status: model.StatusWaiting}, nil)

		res := f.serve(http.MethodPost, "/v1/cars/"+carID+"/waitlist", `{"customer_id":"ignored-for-customers"}`, constant.RoleCustomer, customerID)

		assert.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Body.String(), customerID)
	})

	t.Run("staff name the customer", func(t *testing.T) {
		f := newFixture(t)

		f.waitlist.EXPECT().Join(gomock.Any(), carID, customerID).Return(dto.WaitlistResponse{}, nil)

		res := f.serve(http.MethodPost, "/v1/cars/"+carID+"/waitlist", `{"customer_id":"`+customerID+`"}`, constant.RoleStaff, "staff-1")

		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("staff without customer", func(t *testing.T) {
		f := newFixture(t)

		res := f.serve(http.MethodPost, "/v1/cars/"+carID+"/waitlist", "", constant.RoleStaff, "staff-1")

		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Contains(t, res.Body.String(), "customer_id is required")
	})

	t.Run("car is available", func(t *testing.T) {
		f := newFixture(t)

		f.waitlist.EXPECT().Join(gomock.Any(), carID, customerID).
			Return(dto.WaitlistResponse{}, failure.BadRequestFromString("car is available, book it instead"))

		res := f.serve(http.MethodPost, "/v1/cars/"+carID+"/waitlist", "", constant.RoleCustomer, customerID)

		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}

func TestLeaveWaitlist(t *testing.T) {
	f := newFixture(t)

	f.waitlist.EXPECT().Leave(gomock.Any(), carID, customerID).Return(nil)

	res := f.serve(http.MethodDelete, "/v1/cars/"+carID+"/waitlist", "", constant.RoleCustomer, customerID)

	assert.Equal(t, http.StatusOK, res.Code)
}

func TestGetWaitlist(t *testing.T) {
	f := newFixture(t)

	f.waitlist.EXPECT().List(gomock.Any(), carID).
		Return(dto.GetWaitlistResponse{Entries: []dto.WaitlistResponse{{CustomerID: customerID}}}, nil)

	res := f.serve(http.MethodGet, "/v1/cars/"+carID+"/waitlist", "", constant.RoleStaff, "staff-1")

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), customerID)
}
