package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies what a user is allowed to do.
type Role string

const (
	RoleUser   Role = "user"   // Patient
	RoleDoctor Role = "doctor" // Can own a doctor profile
	RoleAdmin  Role = "admin"  // Not self-registrable
)

// User represents a user in the database.
type User struct {
	ID             uuid.UUID `db:"id"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	Phone          string    `db:"phone"`
	Role           Role      `db:"role"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Location is the practice address of a doctor.
type Location struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// Slot is a consultation window, e.g. {"09:00", "12:00"}.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DayAvailability lists the slots offered on one weekday.
type DayAvailability struct {
	Day   string `json:"day"`
	Slots []Slot `json:"slots"`
}

// Availability is stored as JSONB.
type Availability struct {
	Days []DayAvailability `json:"days"`
}

// Doctor represents a doctor profile. Exactly one per doctor user.
type Doctor struct {
	ID              uuid.UUID    `db:"id"`
	UserID          uuid.UUID    `db:"user_id"`
	Specialization  string       `db:"specialization"`
	Qualification   string       `db:"qualification"`
	Experience      int          `db:"experience"`
	ConsultationFee float64      `db:"consultation_fee"`
	Bio             string       `db:"bio"`
	Rating          float64      `db:"rating"`
	TotalReviews    int          `db:"total_reviews"`
	Location        Location     `db:"location"`     // address/city/state/pincode columns
	Availability    Availability `db:"availability"` // Stored as JSONB
	IsAvailable     bool         `db:"is_available"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCancelled, AppointmentCompleted:
		return true
	}
	return false
}

// Appointment links a patient with a doctor profile.
type Appointment struct {
	ID              uuid.UUID         `db:"id"`
	PatientID       uuid.UUID         `db:"patient_id"`
	DoctorID        uuid.UUID         `db:"doctor_id"`
	AppointmentDate time.Time         `db:"appointment_date"`
	AppointmentTime string            `db:"appointment_time"`
	Status          AppointmentStatus `db:"status"`
	Reason          string            `db:"reason"`
	Notes           string            `db:"notes"`
	CreatedAt       time.Time         `db:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at"`
}

// ChatSession is a user's transcript plus the context derived from it.
// Transcript and Context are sealed together into a single column by the postgres store.
type ChatSession struct {
	ID         uuid.UUID      `db:"id"`
	UserID     uuid.UUID      `db:"user_id"`
	Transcript []Message      `db:"-"`
	Context    SessionContext `db:"-"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}
