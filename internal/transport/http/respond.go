package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	courierapp "github.com/trustdelivery/backoffice/internal/courier/app"
	courier "github.com/trustdelivery/backoffice/internal/courier/domain"
	"github.com/trustdelivery/backoffice/internal/identity/app"
	identity "github.com/trustdelivery/backoffice/internal/identity/domain"
)

// envelope is the uniform response shape: status is "success" or "error",
// data carries the payload on success, message explains failures.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Status: "success", Data: data})
}

func respondMessage(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Status: "success", Message: message})
}

func respondErrorMessage(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Status: "error", Message: message})
}

// respondError maps a service error onto an HTTP status and client-safe
// message. Unknown errors become an opaque 500; the real cause goes to the
// log only, with detail exposed in the body when debug mode is on.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, debug bool, err error) {
	var lockedErr *identity.LockedError
	if errors.As(err, &lockedErr) {
		body := map[string]any{
			"status":  "error",
			"message": "Account is locked. Please try again later.",
		}
		if lockedErr.Until != nil {
			body["lockUntil"] = lockedErr.Until
		}
		writeRaw(w, http.StatusForbidden, body)
		return
	}
	var failedErr *identity.FailedLoginError
	if errors.As(err, &failedErr) {
		writeRaw(w, http.StatusUnauthorized, map[string]any{
			"status":            "error",
			"message":           "Invalid email or password.",
			"attemptsRemaining": failedErr.AttemptsRemaining,
		})
		return
	}
	var transitionErr *courier.TransitionError
	if errors.As(err, &transitionErr) {
		writeRaw(w, http.StatusBadRequest, map[string]any{
			"status":          "error",
			"message":         transitionErr.Error(),
			"currentStatus":   transitionErr.From,
			"requestedStatus": transitionErr.To,
		})
		return
	}

	code, message := errorStatus(err)
	if code == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if debug {
			message = err.Error()
		}
	}
	respondErrorMessage(w, code, message)
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, identity.ErrMissingCredentials):
		return http.StatusBadRequest, "Email and password are required."
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password."
	case errors.Is(err, identity.ErrWrongPassword):
		return http.StatusUnauthorized, "Current password is incorrect."
	case errors.Is(err, app.ErrTokenExpired):
		return http.StatusUnauthorized, "Your session has expired. Please log in again."
	case errors.Is(err, app.ErrTokenInvalid):
		return http.StatusUnauthorized, "Session is invalid."
	case errors.Is(err, identity.ErrAccountLocked):
		return http.StatusForbidden, "Account is locked. Please try again later."
	case errors.Is(err, identity.ErrAccountInactive):
		return http.StatusForbidden, "Account is inactive. Please contact support."
	case errors.Is(err, identity.ErrRoleNotAllowed):
		return http.StatusForbidden, "This role cannot be self-registered."
	case errors.Is(err, courierapp.ErrForbidden):
		return http.StatusForbidden, "You do not have permission to perform this action."
	case errors.Is(err, identity.ErrAccountNotFound):
		return http.StatusNotFound, "User not found."
	case errors.Is(err, identity.ErrRiderNotFound):
		return http.StatusNotFound, "Rider not found."
	case errors.Is(err, identity.ErrShopNotFound):
		return http.StatusNotFound, "Shop not found."
	case errors.Is(err, courier.ErrDeliveryNotFound):
		return http.StatusNotFound, "Delivery not found."
	case errors.Is(err, identity.ErrEmailExists):
		return http.StatusBadRequest, "An account with this email already exists."
	case errors.Is(err, identity.ErrUsernameExists):
		return http.StatusBadRequest, "This username is already taken."
	case errors.Is(err, identity.ErrPhoneExists):
		return http.StatusBadRequest, "An account with this phone number already exists."
	case errors.Is(err, identity.ErrUnknownRole):
		return http.StatusBadRequest, "Unknown role."
	case errors.Is(err, identity.ErrLastAdmin):
		return http.StatusBadRequest, "Cannot remove the last administrator."
	case errors.Is(err, courier.ErrUnknownStatus):
		return http.StatusBadRequest, "Unknown delivery status."
	case errors.Is(err, courier.ErrUnknownPaymentStatus):
		return http.StatusBadRequest, "Unknown payment status."
	case errors.Is(err, courier.ErrInvalidTransition):
		return http.StatusBadRequest, "Invalid status transition."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}

func writeRaw(w http.ResponseWriter, code int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
