package admin

import (
	"fleet/infras/otel"
	"fleet/internal/reclaimer"
	"fleet/shared/constant"
	"fleet/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	reclaimer reclaimer.Reclaimer
	otel      otel.Otel
}

func New(reclaimer reclaimer.Reclaimer, otel otel.Otel) Handler {
	return Handler{
		reclaimer: reclaimer,
		otel:      otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/admin", func(routerGroup chi.Router) {
		routerGroup.Post("/reclaim", handler.Reclaim)
	})
}

// Reclaim runs the expired reservation sweep now instead of waiting for the next tick.
// @Summary Reclaim expired reservations
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Data[reclaimer.Report]
// @Failure 500 {object} response.Error
// @Router /v1/admin/reclaim [post]
// @Security BearerAuth
func (handler *Handler) Reclaim(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Reclaim")
	defer scope.End()

	report, err := handler.reclaimer.Sweep(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to reclaim expired reservations")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, report)
}
