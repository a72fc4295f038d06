package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"labstock/internal/repositories"
	"labstock/internal/services"
)

// RequestValidator plugs go-playground/validator into Echo's c.Validate.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// httpError maps service and repository errors onto HTTP status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, services.ErrPanelNotFound),
		errors.Is(err, services.ErrUnknownStore),
		errors.Is(err, repositories.ErrSnapshotNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrBadConfirmation),
		errors.Is(err, services.ErrIndexOutOfRange):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
