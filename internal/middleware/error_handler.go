package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/roomstay/booking-service/internal/apperr"
	"github.com/roomstay/booking-service/internal/dto"
)

// ErrorHandler maps service error kinds onto HTTP statuses and renders the
// {kind, message} error body. Wire it as echo's HTTPErrorHandler.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := dto.ErrorResponse{Kind: "InternalError", Message: err.Error()}

	if kind := apperr.KindOf(err); kind != "" {
		code = statusFor(kind)
		body.Kind = string(kind)
	} else if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		body.Kind = http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			body.Message = m
		}
	}

	_ = c.JSON(code, body)
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusForbidden
	case apperr.KindInvalidTransition, apperr.KindInvalidState:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindPaymentGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
