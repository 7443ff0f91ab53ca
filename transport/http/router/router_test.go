package router_test

import (
	"fleet/permissions"
	"fleet/transport/http/router"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnregistered(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}

	mux := chi.NewRouter()
	mux.Get("/health", noop)
	mux.Route("/v1", func(v1 chi.Router) {
		v1.Get("/fees", noop)
		v1.Route("/bookings", func(bookings chi.Router) {
			bookings.Get("/", noop)
			bookings.Post("/{id}/confirm", noop)
			bookings.Post("/{id}/refund", noop)
		})
	})

	t.Run("embedded table", func(t *testing.T) {
		r := router.New(router.DomainHandlers{}, permissions.Get())

		missing, err := r.Unregistered(mux)
		require.NoError(t, err)
		assert.Equal(t, []string{"POST /v1/bookings/{id}/refund"}, missing)
	})

	t.Run("no table", func(t *testing.T) {
		r := router.New(router.DomainHandlers{}, nil)

		missing, err := r.Unregistered(mux)
		require.NoError(t, err)
		assert.Len(t, missing, 4)
	})
}
