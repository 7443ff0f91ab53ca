package router

import (
	"fleet/internal/handlers/admin"
	"fleet/internal/handlers/booking"
	"fleet/internal/handlers/car"
	"fleet/internal/handlers/fee"
	"fleet/permissions"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const apiPrefix = "/v1"

type registrar interface {
	Router(r chi.Router)
}

type DomainHandlers struct {
	Booking booking.Handler
	Car     car.Handler
	Fee     fee.Handler
	Admin   admin.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	permissions    *permissions.PermissionData
}

func New(domainHandlers DomainHandlers, perms *permissions.PermissionData) Router {
	return Router{
		DomainHandlers: domainHandlers,
		permissions:    perms,
	}
}

func (r *Router) SetupRoutes(router chi.Router) {
	handlers := []registrar{
		&r.DomainHandlers.Booking,
		&r.DomainHandlers.Car,
		&r.DomainHandlers.Fee,
		&r.DomainHandlers.Admin,
	}

	router.Route(apiPrefix, func(v1 chi.Router) {
		for _, handler := range handlers {
			handler.Router(v1)
		}
	})
}

// Unregistered lists the API routes the permission table does not cover. RBAC denies
// those to everyone, so a non-empty result means a handler is unreachable.
func (r *Router) Unregistered(routes chi.Routes) ([]string, error) {
	var missing []string

	err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, apiPrefix+"/") {
			return nil
		}

		pattern := permissions.RoutePattern(route)

		if r.permissions == nil {
			missing = append(missing, method+" "+pattern)

			return nil
		}

		if _, ok := r.permissions.Lookup(pattern, method); !ok {
			missing = append(missing, method+" "+pattern)
		}

		return nil
	})

	return missing, err //nolint:wrapcheck
}
