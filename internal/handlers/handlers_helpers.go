package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medassist-backend/internal/auth"
	"medassist-backend/internal/services"
	"medassist-backend/pkg/httputil"
)

// callerFromRequest reads the identity placed in the context by the JWT middleware.
func callerFromRequest(r *http.Request) (services.Caller, bool) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		return services.Caller{}, false
	}
	role, _ := auth.GetRoleFromContext(r.Context())
	return services.Caller{UserID: userID, Role: role}, true
}

// uuidParam parses a UUID path parameter.
func uuidParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// clientMessage returns the detail wrapped around sentinel, without the
// sentinel's own text, with the first letter upper-cased. Errors that carry no
// detail yield the sentinel text.
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		msg = msg[i+len(sentinel.Error())+2:]
	}
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

// respondServiceError maps service errors to status codes. Anything not
// recognised is logged and answered with a generic 500 carrying fallbackMsg.
func respondServiceError(w http.ResponseWriter, op string, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, clientMessage(err, services.ErrValidation))
	case errors.Is(err, services.ErrDoctorUnavailable):
		httputil.RespondError(w, http.StatusBadRequest, clientMessage(err, services.ErrDoctorUnavailable))
	case errors.Is(err, services.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, clientMessage(err, services.ErrForbidden))
	case errors.Is(err, services.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, clientMessage(err, services.ErrNotFound))
	case errors.Is(err, services.ErrUserAlreadyExists):
		httputil.RespondError(w, http.StatusConflict, clientMessage(err, services.ErrUserAlreadyExists))
	case errors.Is(err, services.ErrInvalidCredentials):
		httputil.RespondError(w, http.StatusUnauthorized, clientMessage(err, services.ErrInvalidCredentials))
	default:
		log.Printf("ERROR [%s] %v", op, err)
		httputil.RespondError(w, http.StatusInternalServerError, fallbackMsg)
	}
}
