package service

import (
	"context"
	inspectionModel "fleet/internal/domains/inspection/model"
	"fleet/shared"
	"fleet/shared/base64"
	"fleet/shared/constant"
	"fmt"
	"path"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const releaseImageDirectory = "releases"

// attachImages uploads the condition images of a committed release and backfills their URLs.
// The release stands even when this fails; uploaded objects are removed if the backfill does not land.
func (s *serviceImpl) attachImages(ctx context.Context, release inspectionModel.Release, images []string) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".attachImages")
	defer scope.End()

	logger := log.With().Str("booking_id", release.BookingID).Str("release_id", release.ID).Logger()
	directory := path.Join(releaseImageDirectory, release.BookingID)
	urls := make(pq.StringArray, 0, len(images))

	for i, image := range images {
		contentType, data, err := base64.Decode(image)
		if err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("skipping undecodable release image")

			continue
		}

		fileName := fmt.Sprintf("%s-%d%s", release.ID, i, base64.Extension(contentType))

		url, err := s.s3.Put(ctx, path.Join(directory, fileName), contentType, data)
		if err != nil {
			logger.Error().Err(err).Int("index", i).Msg("failed to upload release image")
			scope.TraceError(err)

			continue
		}

		urls = append(urls, url)
	}

	if len(urls) == 0 {
		return
	}

	err := s.releaseRepo.Update(ctx, shared.WithModified(map[string]any{
		inspectionModel.FieldImageURLs: urls,
	}, actor(ctx)), shared.FilterByID(release.ID, inspectionModel.FieldID, inspectionModel.ReleaseTableName))
	if err == nil {
		logger.Info().Int("images", len(urls)).Msg("release images attached")

		return
	}

	logger.Error().Err(err).Msg("failed to backfill release image urls")
	scope.TraceError(err)

	for _, url := range urls {
		key, ok := s.s3.KeyFromURL(url)
		if !ok {
			continue
		}

		if err := s.s3.Delete(ctx, key); err != nil {
			logger.Error().Err(err).Str("object", key).Msg("failed to remove orphaned release image")
		}
	}
}
