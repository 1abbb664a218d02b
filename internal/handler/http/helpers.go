package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/nvillanueva/detalia/internal/checkout"
	"github.com/nvillanueva/detalia/internal/order"
	"github.com/nvillanueva/detalia/internal/orderapi"
	"github.com/nvillanueva/detalia/internal/settings"
)

// ErrorResponse is the uniform error payload. Retryable tells the client the
// action is safe to offer again (proof upload, transition request).
type ErrorResponse struct {
	Error     string   `json:"error"`
	Missing   []string `json:"missing,omitempty"`
	Retryable bool     `json:"retryable,omitempty"`
}

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

// respondWithDomainError maps core errors onto HTTP codes and the uniform
// error payload.
func respondWithDomainError(w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "required fields are missing",
			Missing: verr.Missing,
		})
		return
	}

	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		respondWithError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, order.ErrIllegalTransition):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, orderapi.ErrTransitionRejected):
		respondWithJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Retryable: true})
	case errors.Is(err, checkout.ErrEmptyCart):
		respondWithError(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, checkout.ErrUploadFailed):
		respondWithJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error(), Retryable: true})
	case errors.Is(err, checkout.ErrOrderCreationFailed):
		respondWithError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, settings.ErrUnknownVersion):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "internal error")
	}
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
	}
	return details
}

// decodeAndValidate decodes the request body into dst and runs struct
// validation, writing the error response itself when either step fails.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "validation failed",
				Details: formatValidationErrors(validationErrors),
			})
		} else {
			log.Error().Err(err).Msg("unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "internal validation error")
		}
		return false
	}

	return true
}
