package admin_test

import (
	"encoding/json"
	otelMocks "fleet/infras/otel/mocks"
	"fleet/internal/handlers/admin"
	"fleet/internal/reclaimer"
	reclaimerMocks "fleet/internal/reclaimer/mocks"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestReclaim(t *testing.T) {
	sweeper := reclaimerMocks.NewMockReclaimer(gomock.NewController(t))
	sweeper.EXPECT().Sweep(gomock.Any()).Return(reclaimer.Report{
		Scanned:   3,
		Reclaimed: 2,
		Skipped:   1,
		Failed:    []reclaimer.Failure{},
	}, nil)

	handler := admin.New(sweeper, otelMocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/v1", handler.Router)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/admin/reclaim", http.NoBody))

	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data reclaimer.Report `json:"data"`
	}

	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.Reclaimed)
	assert.Empty(t, body.Data.Failed)
}
