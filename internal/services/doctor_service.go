package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"medassist-backend/internal/models"
	"medassist-backend/internal/store"
)

const maxBioLength = 500

var weekdays = map[string]bool{
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
}

// DoctorService handles doctor profiles.
type DoctorService struct {
	store store.Store
}

// NewDoctorService creates a new DoctorService.
func NewDoctorService(s store.Store) *DoctorService {
	return &DoctorService{store: s}
}

func (s *DoctorService) toResponse(ctx context.Context, d *models.Doctor) (models.DoctorResponse, error) {
	owner, err := s.store.GetUserByID(ctx, d.UserID)
	if err != nil {
		return models.DoctorResponse{}, fmt.Errorf("failed to load owner of doctor %s: %w", d.ID, err)
	}
	return newDoctorResponse(d, owner), nil
}

func newDoctorResponse(d *models.Doctor, owner *models.User) models.DoctorResponse {
	days := d.Availability.Days
	if days == nil {
		days = []models.DayAvailability{}
	}
	return models.DoctorResponse{
		ID:              d.ID,
		User:            models.NewUserResponse(owner),
		Specialization:  d.Specialization,
		Qualification:   d.Qualification,
		Experience:      d.Experience,
		ConsultationFee: d.ConsultationFee,
		Bio:             d.Bio,
		Rating:          d.Rating,
		TotalReviews:    d.TotalReviews,
		Location:        d.Location,
		Availability:    models.Availability{Days: days},
		IsAvailable:     d.IsAvailable,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// ListDoctors returns available doctors matching filter.
func (s *DoctorService) ListDoctors(ctx context.Context, filter models.DoctorFilter) ([]models.DoctorResponse, error) {
	filter.Specialization = strings.TrimSpace(filter.Specialization)
	filter.City = strings.TrimSpace(filter.City)
	filter.Search = strings.TrimSpace(filter.Search)

	doctors, err := s.store.ListDoctors(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	resp := make([]models.DoctorResponse, 0, len(doctors))
	for i := range doctors {
		d, err := s.toResponse(ctx, &doctors[i])
		if err != nil {
			return nil, err
		}
		resp = append(resp, d)
	}
	return resp, nil
}

// GetDoctor returns one doctor profile.
func (s *DoctorService) GetDoctor(ctx context.Context, id uuid.UUID) (*models.DoctorResponse, error) {
	d, err := s.store.GetDoctorByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: doctor not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	resp, err := s.toResponse(ctx, d)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListSpecializations returns the distinct specializations, sorted.
func (s *DoctorService) ListSpecializations(ctx context.Context) ([]string, error) {
	specs, err := s.store.ListSpecializations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list specializations: %w", err)
	}
	return specs, nil
}

func validateDoctorProfile(req *models.DoctorProfileRequest) error {
	req.Specialization = strings.TrimSpace(req.Specialization)
	req.Qualification = strings.TrimSpace(req.Qualification)
	req.Bio = strings.TrimSpace(req.Bio)

	switch {
	case req.Specialization == "":
		return fmt.Errorf("%w: please provide specialization", ErrValidation)
	case req.Qualification == "":
		return fmt.Errorf("%w: please provide qualification", ErrValidation)
	case req.Experience < 0:
		return fmt.Errorf("%w: experience cannot be negative", ErrValidation)
	case req.ConsultationFee < 0:
		return fmt.Errorf("%w: consultation fee cannot be negative", ErrValidation)
	case utf8.RuneCountInString(req.Bio) > maxBioLength:
		return fmt.Errorf("%w: bio cannot exceed %d characters", ErrValidation, maxBioLength)
	}
	for _, day := range req.Availability.Days {
		if !weekdays[day.Day] {
			return fmt.Errorf("%w: unknown availability day %q", ErrValidation, day.Day)
		}
	}
	return nil
}

// UpsertProfile creates the caller's profile, or replaces it if one exists.
// Only users with the doctor role may call it.
func (s *DoctorService) UpsertProfile(ctx context.Context, userID uuid.UUID, role models.Role, req models.DoctorProfileRequest) (*models.DoctorResponse, error) {
	if role != models.RoleDoctor {
		return nil, fmt.Errorf("%w: only doctors can manage a doctor profile", ErrForbidden)
	}
	if err := validateDoctorProfile(&req); err != nil {
		return nil, err
	}

	existing, err := s.store.GetDoctorByUserID(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up doctor profile: %w", err)
	}

	doctor := &models.Doctor{
		UserID:          userID,
		Specialization:  req.Specialization,
		Qualification:   req.Qualification,
		Experience:      req.Experience,
		ConsultationFee: req.ConsultationFee,
		Bio:             req.Bio,
		Location:        req.Location,
		Availability:    req.Availability,
		IsAvailable:     true,
	}

	if existing != nil {
		doctor.ID = existing.ID
		doctor.Rating = existing.Rating
		doctor.TotalReviews = existing.TotalReviews
		doctor.IsAvailable = existing.IsAvailable
		if req.IsAvailable != nil {
			doctor.IsAvailable = *req.IsAvailable
		}
		if err := s.store.UpdateDoctor(ctx, doctor); err != nil {
			return nil, fmt.Errorf("failed to update doctor profile: %w", err)
		}
		log.Printf("[DoctorService] updated profile %s for user %s", doctor.ID, userID)
	} else {
		if req.IsAvailable != nil {
			doctor.IsAvailable = *req.IsAvailable
		}
		doctor.ID = uuid.New()
		if err := s.store.CreateDoctor(ctx, doctor); err != nil {
			return nil, fmt.Errorf("failed to create doctor profile: %w", err)
		}
		log.Printf("[DoctorService] created profile %s for user %s", doctor.ID, userID)
	}

	resp, err := s.toResponse(ctx, doctor)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
