package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/sahara-wellness/backend/internal/pkg/utils"
)

type (
	// RateLimitValidator checks and consumes quota units for a key
	RateLimitValidator interface {
		Validate(key string, limit, quota int64) (bool, int64, int64, error)
	}

	RateLimitMiddleware struct {
		validator RateLimitValidator
		limit     int64
		extractor utils.IPExtractor
	}
)

func NewRateLimitMiddleware(validator RateLimitValidator, limit int64) (*RateLimitMiddleware, error) {
	if validator == nil {
		return nil, fmt.Errorf("validator is nil")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("wrong limit %d", limit)
	}
	return &RateLimitMiddleware{validator: validator, limit: limit, extractor: utils.DefaultIPExtractor}, nil
}

// Handle limits requests per caller IP in a short time window
func (m *RateLimitMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		ctx := r.Context()
		ip := m.extractor.Get(r)
		ok, rem, retryAfter, err := m.validator.Validate(ip, m.limit, 1)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("can't validate rate limit")
			return echo.NewHTTPError(http.StatusInternalServerError, "Service error")
		}
		if rem >= 0 {
			c.Response().Header().Set("X-Rate-Limit-Remaining", fmt.Sprintf("%d", rem))
		}
		if retryAfter > 0 {
			c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		}
		if !ok {
			return echo.NewHTTPError(http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
		}
		return next(c)
	}
}
