package models

import (
	"time"

	"github.com/google/uuid"
)

// --- Request Structs ---

// RegisterRequest defines the expected body for the register endpoint.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role"` // "user" (default) or "doctor"
}

// LoginRequest defines the expected body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChatRequest is the body of POST /api/ai/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// DoctorProfileRequest creates or replaces the caller's doctor profile.
type DoctorProfileRequest struct {
	Specialization  string       `json:"specialization"`
	Qualification   string       `json:"qualification"`
	Experience      int          `json:"experience"`
	ConsultationFee float64      `json:"consultationFee"`
	Bio             string       `json:"bio"`
	Location        Location     `json:"location"`
	Availability    Availability `json:"availability"`
	IsAvailable     *bool        `json:"isAvailable,omitempty"` // Defaults to true on creation
}

// DoctorFilter holds the optional query parameters of GET /api/doctors.
type DoctorFilter struct {
	Specialization string
	City           string
	Search         string // Matches specialization or city
}

// CreateAppointmentRequest is the body of POST /api/appointments.
type CreateAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctorId"`
	AppointmentDate string    `json:"appointmentDate"` // YYYY-MM-DD or RFC3339
	AppointmentTime string    `json:"appointmentTime"`
	Reason          string    `json:"reason"`
	Notes           string    `json:"notes"`
}

// UpdateAppointmentRequest is the body of PUT /api/appointments/{id}.
// Nil or empty fields are left unchanged.
type UpdateAppointmentRequest struct {
	Status *AppointmentStatus `json:"status,omitempty"`
	Notes  *string            `json:"notes,omitempty"`
}

// --- Response Structs ---

// UserResponse defines the user information returned by the API.
// Avoid returning sensitive info like HashedPassword.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
	Role  Role      `json:"role"`
}

// NewUserResponse maps a user to its public representation.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Role:  u.Role,
	}
}

// AuthResponse defines the response body for successful authentication.
type AuthResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// UserEnvelope wraps a single user.
type UserEnvelope struct {
	Success bool         `json:"success"`
	Data    UserResponse `json:"data"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MessageResponse is a success acknowledgement with a human readable message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// --- Chat DTOs ---

// ChatResponse is returned for every chat turn, including the degraded fallback turn.
type ChatResponse struct {
	Success  bool           `json:"success"`
	Response string         `json:"response"`
	Context  SessionContext `json:"context"`
	ChatID   *uuid.UUID     `json:"chatId,omitempty"`
}

// ChatHistoryResponse is returned by GET /api/ai/chat/history.
type ChatHistoryResponse struct {
	Success  bool           `json:"success"`
	Messages []Message      `json:"messages"`
	Context  SessionContext `json:"context"`
	ChatID   *uuid.UUID     `json:"chatId,omitempty"` // Absent when the user never chatted
}

// --- Doctor DTOs ---

// DoctorResponse is a doctor profile joined with its owner's public fields.
type DoctorResponse struct {
	ID              uuid.UUID    `json:"id"`
	User            UserResponse `json:"user"`
	Specialization  string       `json:"specialization"`
	Qualification   string       `json:"qualification"`
	Experience      int          `json:"experience"`
	ConsultationFee float64      `json:"consultationFee"`
	Bio             string       `json:"bio,omitempty"`
	Rating          float64      `json:"rating"`
	TotalReviews    int          `json:"totalReviews"`
	Location        Location     `json:"location"`
	Availability    Availability `json:"availability"`
	IsAvailable     bool         `json:"isAvailable"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// DoctorEnvelope wraps a single doctor.
type DoctorEnvelope struct {
	Success bool           `json:"success"`
	Data    DoctorResponse `json:"data"`
}

// DoctorListResponse wraps a list of doctors.
type DoctorListResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Data    []DoctorResponse `json:"data"`
}

// SpecializationsResponse lists distinct specializations.
type SpecializationsResponse struct {
	Success bool     `json:"success"`
	Data    []string `json:"data"`
}

// --- Appointment DTOs ---

// AppointmentDoctor is the doctor summary embedded in appointments.
type AppointmentDoctor struct {
	ID              uuid.UUID    `json:"id"`
	Specialization  string       `json:"specialization"`
	ConsultationFee float64      `json:"consultationFee"`
	User            UserResponse `json:"user"`
}

// AppointmentPatient is the patient summary embedded in appointments.
type AppointmentPatient struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// AppointmentResponse is an appointment with doctor and patient populated.
type AppointmentResponse struct {
	ID              uuid.UUID          `json:"id"`
	Doctor          AppointmentDoctor  `json:"doctor"`
	Patient         AppointmentPatient `json:"patient"`
	AppointmentDate string             `json:"appointmentDate"` // YYYY-MM-DD
	AppointmentTime string             `json:"appointmentTime"`
	Status          AppointmentStatus  `json:"status"`
	Reason          string             `json:"reason,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// AppointmentEnvelope wraps a single appointment.
type AppointmentEnvelope struct {
	Success bool                `json:"success"`
	Data    AppointmentResponse `json:"data"`
}

// AppointmentListResponse wraps a list of appointments.
type AppointmentListResponse struct {
	Success bool                  `json:"success"`
	Count   int                   `json:"count"`
	Data    []AppointmentResponse `json:"data"`
}
