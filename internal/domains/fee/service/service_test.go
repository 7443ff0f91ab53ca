package service_test

import (
	"context"
	"errors"
	"fleet/config"
	otelMocks "fleet/infras/otel/mocks"
	feeMocks "fleet/internal/domains/fee/mocks"
	"fleet/internal/domains/fee/model"
	"fleet/internal/domains/fee/service"
	cacheMocks "fleet/shared/cache/mocks"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGetFees(t *testing.T) {
	cacheMiss := errors.New("failed to get cache value: redis: nil")

	tests := []struct {
		name    string
		setup   func(repo *feeMocks.MockFeeSchedule, cache *cacheMocks.MockRedisCache)
		want    model.Schedule
		wantErr bool
	}{
		{
			name: "cache hit",
			setup: func(_ *feeMocks.MockFeeSchedule, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), "fee:schedule", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, value any) error {
						*(value.(*model.Schedule)) = model.Schedule{model.KeyReservation: 300}

						return nil
					})
			},
			want: model.Schedule{model.KeyReservation: 300},
		},
		{
			name: "cache miss reads the store",
			setup: func(repo *feeMocks.MockFeeSchedule, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), "fee:schedule", gomock.Any()).Return(cacheMiss)
				repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.FeeSchedule{
					{FeeType: model.KeyReservation, Amount: 500},
					{FeeType: model.KeyGasLevel, Amount: 100},
				}, nil)
				cache.EXPECT().Save(gomock.Any(), "fee:schedule", gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
			},
			want: model.Schedule{model.KeyReservation: 500, model.KeyGasLevel: 100},
		},
		{
			name: "store failure",
			setup: func(repo *feeMocks.MockFeeSchedule, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), "fee:schedule", gomock.Any()).Return(cacheMiss)
				repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := feeMocks.NewMockFeeSchedule(ctrl)
			cache := cacheMocks.NewMockRedisCache(ctrl)
			tt.setup(repo, cache)

			svc := service.New(repo, &config.Config{}, cache, otelMocks.NewOtel())

			got, err := svc.GetFees(context.Background())
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
