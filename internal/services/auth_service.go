package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"medassist-backend/internal/auth"
	"medassist-backend/internal/config"
	"medassist-backend/internal/models"
	"medassist-backend/internal/store"
)

// Custom errors for auth service
var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrHashingPassword    = errors.New("failed to hash password")
	ErrCreatingToken      = errors.New("failed to create access token")
)

var phonePattern = regexp.MustCompile(`^[\d\s+\-()]+$`)

type AuthService struct {
	store store.Store
	cfg   *config.Config
}

func NewAuthService(s store.Store, cfg *config.Config) *AuthService {
	return &AuthService{
		store: s,
		cfg:   cfg,
	}
}

func validateRegistration(req *models.RegisterRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	if len(req.Name) < 2 {
		return fmt.Errorf("%w: name must be at least 2 characters", ErrValidation)
	}
	if req.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("%w: email is not valid", ErrValidation)
	}
	if len(req.Password) < auth.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, auth.MinPasswordLength)
	}
	if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
		return fmt.Errorf("%w: phone number is not valid", ErrValidation)
	}

	switch req.Role {
	case "":
		req.Role = models.RoleUser
	case models.RoleUser, models.RoleDoctor:
	default:
		return fmt.Errorf("%w: role must be %q or %q", ErrValidation, models.RoleUser, models.RoleDoctor)
	}
	return nil
}

// Register creates a user and logs them in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (string, *models.User, error) {
	if err := validateRegistration(&req); err != nil {
		return "", nil, err
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password for %s: %v", req.Email, err)
		return "", nil, ErrHashingPassword
	}

	user := &models.User{
		ID:             uuid.New(),
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Phone:          req.Phone,
		Role:           req.Role,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return "", nil, ErrUserAlreadyExists
		}
		log.Printf("Error creating user for %s: %v", req.Email, err)
		return "", nil, fmt.Errorf("creating user failed: %w", err)
	}

	token, err := auth.NewAccessToken(user.ID, user.Role, s.cfg.JWTSecret, s.cfg.TokenExpiration)
	if err != nil {
		return "", nil, ErrCreatingToken
	}

	log.Printf("Successfully registered user %s (ID: %s, Role: %s)", user.Email, user.ID, user.Role)
	return token, user, nil
}

// Login verifies user credentials and returns an access token and user info.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials // Basic check before hitting DB
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials // Don't reveal if user exists or password is wrong
		}
		log.Printf("Error retrieving user %s during login: %v", email, err)
		return "", nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.HashedPassword) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.NewAccessToken(user.ID, user.Role, s.cfg.JWTSecret, s.cfg.TokenExpiration)
	if err != nil {
		log.Printf("Error generating JWT for user %s (ID: %s): %v", email, user.ID, err)
		return "", nil, ErrCreatingToken
	}

	log.Printf("Successfully logged in user %s (ID: %s)", email, user.ID)
	return token, user, nil
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}
