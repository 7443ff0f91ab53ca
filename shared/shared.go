package shared

import (
	"context"
	"errors"
	"fleet/shared/cache"
	"fleet/shared/constant"
	"fleet/shared/dto"
	"fleet/shared/timezone"
	"maps"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// WithModified copies the update map and stamps the modification metadata onto it.
func WithModified(fields map[string]any, username string) map[string]any {
	updatedFields := make(map[string]any, len(fields)+2)
	maps.Copy(updatedFields, fields)

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = username

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// FilterAnd joins the filters with AND.
func FilterAnd(filters ...dto.Filter) dto.FilterGroup {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters:  make([]any, 0, len(filters)),
	}

	for _, filter := range filters {
		group.Filters = append(group.Filters, filter)
	}

	return group
}

func CalculateTotalPage(totalData, limit int) int {
	if limit <= 0 {
		return 1
	}

	return (totalData + limit - 1) / limit
}

func BuildCacheKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}

	return prefix + ":" + strings.Join(parts, ":")
}

func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, prefix+constant.Asterix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}

// IsUniqueViolation reports whether err came from a unique constraint rejecting a write.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeUniqueViolation
}
