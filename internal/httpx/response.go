package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"cakeshop-be/internal/backend"
	"cakeshop-be/internal/checkout"
	"cakeshop-be/internal/logger"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses. Backend rejections pass
// their own status and message through so the user sees the backend's
// wording, not a rewrite of it.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var be *backend.Error
	if errors.As(err, &be) {
		status := be.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, errorResponse{Error: be.UserMessage()})
		return
	}

	switch {
	case errors.Is(err, checkout.ErrPendingOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, checkout.ErrAlreadyDecided),
		errors.Is(err, checkout.ErrGatewayAlreadyStarted):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, checkout.ErrShippingMethodRequired),
		errors.Is(err, checkout.ErrPaymentMethodRequired),
		errors.Is(err, checkout.ErrAddressRequired),
		errors.Is(err, checkout.ErrEmptyCartSelection),
		errors.Is(err, checkout.ErrMethodNotOffered),
		errors.Is(err, checkout.ErrGatewayPaymentRequired),
		errors.Is(err, checkout.ErrGatewayNotStarted):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		logger.FromCtx(r.Context()).Error("unhandled request error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
