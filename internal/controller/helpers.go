package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	domainErrors "github.com/cassiomorais/simplify-gateway/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domainErrors.ErrOrderNotFound, http.StatusNotFound, "not_found"},
	{domainErrors.ErrGatewayDisabled, http.StatusServiceUnavailable, "gateway_disabled"},
	{domainErrors.ErrMissingCredentials, http.StatusServiceUnavailable, "missing_credentials"},
	{domainErrors.ErrGatewayUnavailable, http.StatusServiceUnavailable, "gateway_unavailable"},
	{domainErrors.ErrInvalidStateTransition, http.StatusConflict, "invalid_state_transition"},
	{domainErrors.ErrAlreadyCaptured, http.StatusConflict, "already_captured"},
	{domainErrors.ErrAlreadyVoided, http.StatusConflict, "already_voided"},
	{domainErrors.ErrLockAcquisitionFailed, http.StatusConflict, "conflict"},
	{domainErrors.ErrDuplicateIdempotencyKey, http.StatusConflict, "duplicate_request"},
	{domainErrors.ErrWrongPaymentMethod, http.StatusUnprocessableEntity, "wrong_payment_method"},
	{domainErrors.ErrMissingAuthorization, http.StatusUnprocessableEntity, "missing_authorization"},
	{domainErrors.ErrAmountMismatch, http.StatusUnprocessableEntity, "amount_mismatch"},
	{domainErrors.ErrBelowMinimumTotal, http.StatusUnprocessableEntity, "below_minimum_total"},
	{domainErrors.ErrMissingPaymentID, http.StatusUnprocessableEntity, "refund_unavailable"},
	{domainErrors.ErrMissingCardToken, http.StatusBadRequest, "missing_card_token"},
	{domainErrors.ErrPaymentDeclined, http.StatusPaymentRequired, "payment_declined"},
	{domainErrors.ErrRefundDeclined, http.StatusPaymentRequired, "refund_declined"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		resp.Code = "validation_error"
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			resp.Code = m.code
			writeJSON(w, m.status, resp)
			return
		}
	}

	var domainErr *domainErrors.DomainError
	if errors.As(err, &domainErr) {
		resp.Code = domainErr.Code
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	log.Error().Err(err).Msg("unhandled error in handler")
	resp.Code = "internal_error"
	resp.Error = "internal server error"
	writeJSON(w, http.StatusInternalServerError, resp)
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domainErrors.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return domainErrors.NewValidationError(ve[0].Field(), ve[0].Tag()+" validation failed")
		}
		return domainErrors.NewValidationError("body", err.Error())
	}
	return nil
}
