package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/sahara-wellness/backend/internal/pkg/model"
	"github.com/sahara-wellness/backend/internal/pkg/utils"
)

const keyHeader = "x-api-key"

type (
	// Admitter decides if a request may proceed
	Admitter interface {
		Admit(ctx context.Context, key, today string, withGlobal bool) error
	}

	AdmissionMiddleware struct {
		admitter Admitter
	}
)

func NewAdmissionMiddleware(admitter Admitter) (*AdmissionMiddleware, error) {
	if admitter == nil {
		return nil, fmt.Errorf("admitter is nil")
	}
	return &AdmissionMiddleware{admitter: admitter}, nil
}

// Handle builds the middleware. withGlobal makes the request count
// against the shared daily cap.
func (a *AdmissionMiddleware) Handle(withGlobal bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			ctx := r.Context()
			log.Ctx(ctx).Trace().Msg("Admission middleware")
			key := r.Header.Get(keyHeader)
			err := a.admitter.Admit(ctx, key, utils.Day(time.Now()), withGlobal)
			if err != nil {
				return admissionError(ctx, err)
			}
			return next(c)
		}
	}
}

func admissionError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, model.ErrMissingKey):
		return echo.NewHTTPError(http.StatusUnauthorized, "API key is missing.")
	case errors.Is(err, model.ErrNoRecord):
		return echo.NewHTTPError(http.StatusForbidden, "Invalid API key.")
	case errors.Is(err, model.ErrQuotaExceeded):
		return echo.NewHTTPError(http.StatusTooManyRequests, "API quota for this key has been exceeded for today.")
	case errors.Is(err, model.ErrGlobalLimitReached):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Aastha is resting. Please check back tomorrow.")
	}
	log.Ctx(ctx).Error().Err(err).Msg("can't admit request")
	return echo.NewHTTPError(http.StatusServiceUnavailable, "Service temporarily unavailable.")
}
