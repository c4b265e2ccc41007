package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"rentacar-escrow-backend/internal/domain"
	"rentacar-escrow-backend/internal/logger"
	"rentacar-escrow-backend/internal/transfer"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps the engine's error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAmountMustBePositive),
		errors.Is(err, domain.ErrRentalDurationZero),
		errors.Is(err, domain.ErrSelfRentalNotAllowed),
		errors.Is(err, domain.ErrInvalidPrincipal):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrCarNotFound),
		errors.Is(err, domain.ErrRentalNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCarAlreadyRented),
		errors.Is(err, domain.ErrCarAlreadyExists),
		errors.Is(err, domain.ErrAlreadyInitialized),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrBalanceNotAvailable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOverflow),
		errors.Is(err, domain.ErrUnderflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, transfer.ErrTransferFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		logger.Error("request failed", "error", err, "status", status)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
