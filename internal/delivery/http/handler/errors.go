package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"clinic-booking-api/internal/delivery/http/middleware"
	"clinic-booking-api/internal/domain/entity"
	"clinic-booking-api/internal/service"
	"clinic-booking-api/internal/usecase"
	"clinic-booking-api/pkg/response"
	"clinic-booking-api/pkg/validator"
)

// decodeAndValidate writes the error response itself and reports whether
// the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}

	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}

	return true
}

func callerOrUnauthorized(w http.ResponseWriter, r *http.Request) (entity.Caller, bool) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok || !caller.IsAuthenticated() {
		response.Unauthorized(w, "Invalid token")
		return entity.Caller{}, false
	}
	return caller, true
}

// writeCommonError handles the errors every write endpoint shares and
// reports whether err was one of them.
func writeCommonError(w http.ResponseWriter, err error) bool {
	var rejection *service.BookingRejection
	switch {
	case errors.As(err, &rejection):
		response.Rejection(w, rejection.Code, rejection.Message)
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, "You don't have permission to perform this action")
	default:
		return false
	}
	return true
}
