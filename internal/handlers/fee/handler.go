package fee

import (
	"fleet/infras/otel"
	"fleet/internal/domains/fee/model/dto"
	"fleet/internal/domains/fee/service"
	"fleet/shared/constant"
	"fleet/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Provider
	otel    otel.Otel
}

func New(service service.Provider, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/fees", handler.GetFees)
}

// GetFees returns the fee schedule used for confirmation and settlement.
// @Summary Get the fee schedule
// @Tags Fee
// @Produce json
// @Success 200 {object} response.Data[dto.GetFeesResponse]
// @Failure 500 {object} response.Error
// @Router /v1/fees [get]
func (handler *Handler) GetFees(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetFees")
	defer scope.End()

	schedule, err := handler.service.GetFees(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get fees")

		response.WithError(writer, err)

		return
	}

	res := dto.GetFeesResponse{}
	res.FromSchedule(schedule)

	response.WithJSON(writer, http.StatusOK, res)
}
