package service

import (
	"context"

	"github.com/rs/zerolog"
)

// fetchWithFallback tries the upstream backend first and falls back to the
// local database on any failure (dial error, timeout, non-2xx). The upstream
// error is logged, not surfaced, when the fallback succeeds; if both paths
// fail the upstream error wins since that is the one the operator can act on.
func fetchWithFallback[T any](
	ctx context.Context,
	name string,
	primary func(ctx context.Context) (T, error),
	fallback func(ctx context.Context) (T, error),
) (T, bool, error) {
	value, err := primary(ctx)
	if err == nil {
		return value, false, nil
	}

	zerolog.Ctx(ctx).Warn().Err(err).Str("source", name).Msg("backend fetch failed, falling back to database")

	fallbackValue, fallbackErr := fallback(ctx)
	if fallbackErr != nil {
		zerolog.Ctx(ctx).Error().Err(fallbackErr).Str("source", name).Msg("database fallback failed")
		var zero T
		return zero, true, err
	}

	return fallbackValue, true, nil
}
