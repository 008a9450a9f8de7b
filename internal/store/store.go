package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"medassist-backend/internal/models"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("record already exists")
)

// Store defines the interface for database operations.
// This allows for mocking in tests and potential DB backend switching.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// Doctor operations
	CreateDoctor(ctx context.Context, doctor *models.Doctor) error
	UpdateDoctor(ctx context.Context, doctor *models.Doctor) error
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*models.Doctor, error)
	GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*models.Doctor, error)
	// ListDoctors returns available doctors matching filter, best rated first.
	ListDoctors(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, error)
	// ListSpecializations returns distinct specializations in ascending order.
	ListSpecializations(ctx context.Context) ([]string, error)

	// Appointment operations
	CreateAppointment(ctx context.Context, appt *models.Appointment) error
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	// List methods order by appointment date, then time, ascending.
	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]models.Appointment, error)
	ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]models.Appointment, error)
	UpdateAppointment(ctx context.Context, appt *models.Appointment) error

	// Chat session operations
	// GetActiveChatSession returns ErrNotFound when the user has no session.
	GetActiveChatSession(ctx context.Context, userID uuid.UUID) (*models.ChatSession, error)
	// ResolveActiveChatSession returns the active session, creating an empty one if needed.
	ResolveActiveChatSession(ctx context.Context, userID uuid.UUID) (*models.ChatSession, error)
	// SaveChatSession persists transcript and context of an existing session.
	SaveChatSession(ctx context.Context, session *models.ChatSession) error
	// DeleteChatSessionsByUser removes every session of the user.
	DeleteChatSessionsByUser(ctx context.Context, userID uuid.UUID) error
}
