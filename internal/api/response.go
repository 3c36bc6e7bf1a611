// internal/api/response.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	classifyintent "assistant-workers/internal/workers/assistant/classify-intent"
	confirmoption "assistant-workers/internal/workers/assistant/confirm-option"
	extractrequest "assistant-workers/internal/workers/assistant/extract-request"
	planoptions "assistant-workers/internal/workers/assistant/plan-options"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// errorStatus maps worker sentinels onto an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, classifyintent.ErrInputValidation),
		errors.Is(err, extractrequest.ErrInputValidation),
		errors.Is(err, planoptions.ErrInputValidation),
		errors.Is(err, confirmoption.ErrInputValidation):
		return http.StatusBadRequest, "INPUT_VALIDATION_FAILED"
	case errors.Is(err, planoptions.ErrRestaurantSourceFailed):
		return http.StatusBadGateway, "RESTAURANT_SOURCE_FAILED"
	case errors.Is(err, planoptions.ErrAvailabilitySourceFailed):
		return http.StatusBadGateway, "AVAILABILITY_SOURCE_FAILED"
	case errors.Is(err, confirmoption.ErrOptionConfirmationFailed):
		return http.StatusUnprocessableEntity, "OPTION_CONFIRMATION_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
