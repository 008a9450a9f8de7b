package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"medassist-backend/internal/models"
	"medassist-backend/pkg/httputil"
)

// AuthService defines the interface expected from the auth service.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (string, *models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type AuthHandler struct {
	authService AuthService
}

func NewAuthHandler(authSvc AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authSvc,
	}
}

// HandleRegister handles POST /api/auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	token, user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		log.Printf("Register handler failed for email %s: %v", req.Email, err)
		respondServiceError(w, "AuthHandler", err, "Registration failed due to an internal error")
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, models.AuthResponse{
		Success: true,
		Token:   token,
		User:    models.NewUserResponse(user),
	})
}

// HandleLogin handles POST /api/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Please provide email and password")
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Printf("Login handler failed for email %s: %v", req.Email, err)
		respondServiceError(w, "AuthHandler", err, "Login failed due to an internal error")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.AuthResponse{
		Success: true,
		Token:   token,
		User:    models.NewUserResponse(user),
	})
}

// HandleMe handles GET /api/auth/me.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.Me(r.Context(), caller.UserID)
	if err != nil {
		respondServiceError(w, "AuthHandler", err, "Failed to load user")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.UserEnvelope{Success: true, Data: models.NewUserResponse(user)})
}
