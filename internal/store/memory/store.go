// Package memory is an in-process Store used by tests and by STORE_DRIVER=memory.
// Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"medassist-backend/internal/models"
	"medassist-backend/internal/store"
)

// Compile-time check to ensure MemoryStore implements store.Store
var _ store.Store = (*MemoryStore)(nil)

type MemoryStore struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]models.User
	doctors      map[uuid.UUID]models.Doctor
	appointments map[uuid.UUID]models.Appointment
	sessions     map[uuid.UUID]models.ChatSession
	active       map[uuid.UUID]uuid.UUID // user ID -> active session ID
	now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uuid.UUID]models.User),
		doctors:      make(map[uuid.UUID]models.Doctor),
		appointments: make(map[uuid.UUID]models.Appointment),
		sessions:     make(map[uuid.UUID]models.ChatSession),
		active:       make(map[uuid.UUID]uuid.UUID),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// --- Users ---

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return store.ErrConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *MemoryStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

// --- Doctors ---

func (s *MemoryStore) CreateDoctor(_ context.Context, doctor *models.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.doctors {
		if d.UserID == doctor.UserID {
			return store.ErrConflict
		}
	}
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	doctor.CreatedAt = s.now()
	doctor.UpdatedAt = doctor.CreatedAt
	s.doctors[doctor.ID] = copyDoctor(*doctor)
	return nil
}

func (s *MemoryStore) UpdateDoctor(_ context.Context, doctor *models.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.doctors[doctor.ID]
	if !ok {
		return store.ErrNotFound
	}
	doctor.CreatedAt = existing.CreatedAt
	doctor.UpdatedAt = s.now()
	s.doctors[doctor.ID] = copyDoctor(*doctor)
	return nil
}

func (s *MemoryStore) GetDoctorByID(_ context.Context, id uuid.UUID) (*models.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.doctors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	d = copyDoctor(d)
	return &d, nil
}

func (s *MemoryStore) GetDoctorByUserID(_ context.Context, userID uuid.UUID) (*models.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.doctors {
		if d.UserID == userID {
			d = copyDoctor(d)
			return &d, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *MemoryStore) ListDoctors(_ context.Context, filter models.DoctorFilter) ([]models.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doctors := make([]models.Doctor, 0)
	for _, d := range s.doctors {
		if !d.IsAvailable {
			continue
		}
		if filter.Specialization != "" && !containsFold(d.Specialization, filter.Specialization) {
			continue
		}
		if filter.City != "" && !containsFold(d.Location.City, filter.City) {
			continue
		}
		if filter.Search != "" && !containsFold(d.Specialization, filter.Search) && !containsFold(d.Location.City, filter.Search) {
			continue
		}
		doctors = append(doctors, copyDoctor(d))
	}

	sort.SliceStable(doctors, func(i, j int) bool {
		if doctors[i].Rating != doctors[j].Rating {
			return doctors[i].Rating > doctors[j].Rating
		}
		if doctors[i].TotalReviews != doctors[j].TotalReviews {
			return doctors[i].TotalReviews > doctors[j].TotalReviews
		}
		return doctors[i].CreatedAt.Before(doctors[j].CreatedAt)
	})
	return doctors, nil
}

func (s *MemoryStore) ListSpecializations(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	specializations := make([]string, 0)
	for _, d := range s.doctors {
		if _, ok := seen[d.Specialization]; ok {
			continue
		}
		seen[d.Specialization] = struct{}{}
		specializations = append(specializations, d.Specialization)
	}
	sort.Strings(specializations)
	return specializations, nil
}

// --- Appointments ---

func (s *MemoryStore) CreateAppointment(_ context.Context, appt *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	appt.CreatedAt = s.now()
	appt.UpdatedAt = appt.CreatedAt
	s.appointments[appt.ID] = *appt
	return nil
}

func (s *MemoryStore) GetAppointmentByID(_ context.Context, id uuid.UUID) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) ListAppointmentsByPatient(_ context.Context, patientID uuid.UUID) ([]models.Appointment, error) {
	return s.listAppointments(func(a models.Appointment) bool { return a.PatientID == patientID }), nil
}

func (s *MemoryStore) ListAppointmentsByDoctor(_ context.Context, doctorID uuid.UUID) ([]models.Appointment, error) {
	return s.listAppointments(func(a models.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (s *MemoryStore) listAppointments(keep func(models.Appointment) bool) []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appts := make([]models.Appointment, 0)
	for _, a := range s.appointments {
		if keep(a) {
			appts = append(appts, a)
		}
	}
	sort.SliceStable(appts, func(i, j int) bool {
		if !appts[i].AppointmentDate.Equal(appts[j].AppointmentDate) {
			return appts[i].AppointmentDate.Before(appts[j].AppointmentDate)
		}
		return appts[i].AppointmentTime < appts[j].AppointmentTime
	})
	return appts
}

func (s *MemoryStore) UpdateAppointment(_ context.Context, appt *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[appt.ID]; !ok {
		return store.ErrNotFound
	}
	appt.UpdatedAt = s.now()
	s.appointments[appt.ID] = *appt
	return nil
}

// --- Chat sessions ---

func (s *MemoryStore) GetActiveChatSession(_ context.Context, userID uuid.UUID) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessionID, ok := s.active[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	session := copySession(s.sessions[sessionID])
	return &session, nil
}

func (s *MemoryStore) ResolveActiveChatSession(_ context.Context, userID uuid.UUID) (*models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID, ok := s.active[userID]; ok {
		session := copySession(s.sessions[sessionID])
		return &session, nil
	}

	now := s.now()
	session := models.ChatSession{
		ID:         uuid.New(),
		UserID:     userID,
		Transcript: []models.Message{},
		Context:    models.EmptySessionContext(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.sessions[session.ID] = session
	s.active[userID] = session.ID

	session = copySession(session)
	return &session, nil
}

func (s *MemoryStore) SaveChatSession(_ context.Context, session *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sessions[session.ID]
	if !ok || existing.UserID != session.UserID {
		return store.ErrNotFound
	}
	session.UpdatedAt = s.now()
	s.sessions[session.ID] = copySession(*session)
	return nil
}

func (s *MemoryStore) DeleteChatSessionsByUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
		}
	}
	delete(s.active, userID)
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func copyDoctor(d models.Doctor) models.Doctor {
	days := make([]models.DayAvailability, len(d.Availability.Days))
	for i, day := range d.Availability.Days {
		days[i] = models.DayAvailability{Day: day.Day, Slots: append([]models.Slot(nil), day.Slots...)}
	}
	d.Availability.Days = days
	return d
}

func copySession(s models.ChatSession) models.ChatSession {
	s.Transcript = append([]models.Message{}, s.Transcript...)
	s.Context = models.SessionContext{
		Symptoms:             append([]string{}, s.Context.Symptoms...),
		SuggestedSpecialists: append([]string{}, s.Context.SuggestedSpecialists...),
		DiagnosisHints:       append([]string{}, s.Context.DiagnosisHints...),
	}
	return s
}
