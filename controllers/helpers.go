package controllers

import (
	"errors"
	"net/http"

	"backend/services"
	"backend/utils"
)

// statusFor maps service sentinels onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrMalformedRow),
		errors.Is(err, utils.ErrUnparseableDate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
