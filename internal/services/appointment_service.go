package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"medassist-backend/internal/models"
	"medassist-backend/internal/store"
)

// ErrDoctorUnavailable is returned when booking a doctor who is not taking appointments.
var ErrDoctorUnavailable = errors.New("doctor is currently not available")

const dateLayout = "2006-01-02"

// Caller identifies who is making a request.
type Caller struct {
	UserID uuid.UUID
	Role   models.Role
}

// AppointmentService handles booking and managing appointments.
// There is no double-booking check.
type AppointmentService struct {
	store store.Store
}

// NewAppointmentService creates a new AppointmentService.
func NewAppointmentService(s store.Store) *AppointmentService {
	return &AppointmentService{store: s}
}

func parseAppointmentDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: appointment date must be YYYY-MM-DD or RFC3339", ErrValidation)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// Create books an appointment for the calling patient.
func (s *AppointmentService) Create(ctx context.Context, caller Caller, req models.CreateAppointmentRequest) (*models.AppointmentResponse, error) {
	if req.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("%w: please provide doctorId", ErrValidation)
	}
	if strings.TrimSpace(req.AppointmentDate) == "" {
		return nil, fmt.Errorf("%w: please provide appointment date", ErrValidation)
	}
	if strings.TrimSpace(req.AppointmentTime) == "" {
		return nil, fmt.Errorf("%w: please provide appointment time", ErrValidation)
	}
	date, err := parseAppointmentDate(req.AppointmentDate)
	if err != nil {
		return nil, err
	}

	doctor, err := s.store.GetDoctorByID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: doctor not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	if !doctor.IsAvailable {
		return nil, ErrDoctorUnavailable
	}

	appt := &models.Appointment{
		ID:              uuid.New(),
		PatientID:       caller.UserID,
		DoctorID:        doctor.ID,
		AppointmentDate: date,
		AppointmentTime: strings.TrimSpace(req.AppointmentTime),
		Status:          models.AppointmentPending,
		Reason:          strings.TrimSpace(req.Reason),
		Notes:           strings.TrimSpace(req.Notes),
	}
	if err := s.store.CreateAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	log.Printf("[AppointmentService] patient %s booked appointment %s with doctor %s on %s %s",
		caller.UserID, appt.ID, doctor.ID, date.Format(dateLayout), appt.AppointmentTime)
	return s.populate(ctx, appt, doctor)
}

// List returns the caller's appointments: those booked with their doctor
// profile for doctors, their own bookings for everyone else.
func (s *AppointmentService) List(ctx context.Context, caller Caller) ([]models.AppointmentResponse, error) {
	var appts []models.Appointment
	if caller.Role == models.RoleDoctor {
		doctor, err := s.store.GetDoctorByUserID(ctx, caller.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return []models.AppointmentResponse{}, nil
			}
			return nil, fmt.Errorf("failed to get doctor profile: %w", err)
		}
		appts, err = s.store.ListAppointmentsByDoctor(ctx, doctor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list appointments: %w", err)
		}
	} else {
		var err error
		appts, err = s.store.ListAppointmentsByPatient(ctx, caller.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to list appointments: %w", err)
		}
	}

	resp := make([]models.AppointmentResponse, 0, len(appts))
	doctors := make(map[uuid.UUID]*models.Doctor)
	for i := range appts {
		doctor, ok := doctors[appts[i].DoctorID]
		if !ok {
			var err error
			doctor, err = s.store.GetDoctorByID(ctx, appts[i].DoctorID)
			if err != nil {
				return nil, fmt.Errorf("failed to get doctor %s: %w", appts[i].DoctorID, err)
			}
			doctors[doctor.ID] = doctor
		}
		a, err := s.populate(ctx, &appts[i], doctor)
		if err != nil {
			return nil, err
		}
		resp = append(resp, *a)
	}
	return resp, nil
}

// Get returns one appointment the caller is allowed to see.
func (s *AppointmentService) Get(ctx context.Context, caller Caller, id uuid.UUID) (*models.AppointmentResponse, error) {
	appt, doctor, err := s.loadAuthorized(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, appt, doctor)
}

// Update changes status and/or notes. Empty values are ignored.
func (s *AppointmentService) Update(ctx context.Context, caller Caller, id uuid.UUID, req models.UpdateAppointmentRequest) (*models.AppointmentResponse, error) {
	if req.Status != nil && *req.Status != "" && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: status must be one of pending, confirmed, cancelled, completed", ErrValidation)
	}

	appt, doctor, err := s.loadAuthorized(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil && *req.Status != "" {
		appt.Status = *req.Status
	}
	if req.Notes != nil && *req.Notes != "" {
		appt.Notes = strings.TrimSpace(*req.Notes)
	}

	if err := s.store.UpdateAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return s.populate(ctx, appt, doctor)
}

// Cancel marks the appointment cancelled. The record is kept.
func (s *AppointmentService) Cancel(ctx context.Context, caller Caller, id uuid.UUID) error {
	appt, _, err := s.loadAuthorized(ctx, caller, id)
	if err != nil {
		return err
	}

	appt.Status = models.AppointmentCancelled
	if err := s.store.UpdateAppointment(ctx, appt); err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	log.Printf("[AppointmentService] appointment %s cancelled by user %s", appt.ID, caller.UserID)
	return nil
}

// loadAuthorized fetches the appointment and checks that the caller is its
// patient or the doctor it was booked with.
func (s *AppointmentService) loadAuthorized(ctx context.Context, caller Caller, id uuid.UUID) (*models.Appointment, *models.Doctor, error) {
	appt, err := s.store.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: appointment not found", ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	doctor, err := s.store.GetDoctorByID(ctx, appt.DoctorID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get doctor %s: %w", appt.DoctorID, err)
	}

	if appt.PatientID == caller.UserID {
		return appt, doctor, nil
	}
	if caller.Role == models.RoleDoctor && doctor.UserID == caller.UserID {
		return appt, doctor, nil
	}
	return nil, nil, fmt.Errorf("%w: not authorized to access this appointment", ErrForbidden)
}

func (s *AppointmentService) populate(ctx context.Context, appt *models.Appointment, doctor *models.Doctor) (*models.AppointmentResponse, error) {
	doctorUser, err := s.store.GetUserByID(ctx, doctor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor user %s: %w", doctor.UserID, err)
	}
	patient, err := s.store.GetUserByID(ctx, appt.PatientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient %s: %w", appt.PatientID, err)
	}

	return &models.AppointmentResponse{
		ID: appt.ID,
		Doctor: models.AppointmentDoctor{
			ID:              doctor.ID,
			Specialization:  doctor.Specialization,
			ConsultationFee: doctor.ConsultationFee,
			User:            models.NewUserResponse(doctorUser),
		},
		Patient: models.AppointmentPatient{
			ID:    patient.ID,
			Name:  patient.Name,
			Email: patient.Email,
		},
		AppointmentDate: appt.AppointmentDate.Format(dateLayout),
		AppointmentTime: appt.AppointmentTime,
		Status:          appt.Status,
		Reason:          appt.Reason,
		Notes:           appt.Notes,
		CreatedAt:       appt.CreatedAt,
		UpdatedAt:       appt.UpdatedAt,
	}, nil
}
