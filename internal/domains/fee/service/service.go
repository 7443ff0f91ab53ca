package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fleet/config"
	"fleet/infras/otel"
	"fleet/internal/domains/fee/model"
	"fleet/internal/domains/fee/repository"
	"fleet/shared/cache"
	"fleet/shared/constant"
	gDto "fleet/shared/dto"
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	cacheFeeSchedule = "fee:schedule"
)

// Provider supplies the configured fee amounts. The engine only ever reads them.
type Provider interface {
	GetFees(ctx context.Context) (model.Schedule, error)
}

type serviceImpl struct {
	repo  repository.FeeSchedule
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.FeeSchedule, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Provider {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) GetFees(ctx context.Context) (res model.Schedule, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetFees")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	err = s.cache.Get(ctx, cacheFeeSchedule, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheFeeSchedule).Msg("cache hit for fee schedule")

		return res, nil
	}

	rows, err := s.repo.GetAll(ctx, gDto.QueryParams{}, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to get fee schedule")

		return nil, fmt.Errorf("failed to get fee schedule: %w", err)
	}

	res = model.NewSchedule(rows)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheFeeSchedule, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save fee schedule to cache")
		}
	}()

	return res, nil
}
