package utils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/sahara-wellness/backend/internal/pkg/model"
)

// ProcessError maps service layer errors to echo HTTP errors.
// Raw store errors never pass through to the caller.
func ProcessError(err error) error {
	var wrongFieldError *model.WrongFieldError
	switch {
	case errors.Is(err, model.ErrNoRecord):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.As(err, &wrongFieldError):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Send()
		return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
