package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist-backend/internal/models"
	"medassist-backend/internal/store/memory"
)

type appointmentFixture struct {
	st      *memory.MemoryStore
	svc     *AppointmentService
	patient Caller
	doctor  Caller
	other   Caller
	profile *models.DoctorResponse
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()
	st := memory.NewMemoryStore()
	patient := seedUser(t, st, "Asha Rao", models.RoleUser)
	doctor := seedUser(t, st, "Dr Mehta", models.RoleDoctor)
	other := seedUser(t, st, "Ravi Kumar", models.RoleUser)

	profile, err := NewDoctorService(st).UpsertProfile(context.Background(), doctor.ID, doctor.Role, cardiologyProfile())
	require.NoError(t, err)

	return &appointmentFixture{
		st:      st,
		svc:     NewAppointmentService(st),
		patient: Caller{UserID: patient.ID, Role: patient.Role},
		doctor:  Caller{UserID: doctor.ID, Role: doctor.Role},
		other:   Caller{UserID: other.ID, Role: other.Role},
		profile: profile,
	}
}

func (f *appointmentFixture) book(t *testing.T, date, at string) *models.AppointmentResponse {
	t.Helper()
	appt, err := f.svc.Create(context.Background(), f.patient, models.CreateAppointmentRequest{
		DoctorID:        f.profile.ID,
		AppointmentDate: date,
		AppointmentTime: at,
		Reason:          "chest pain",
	})
	require.NoError(t, err)
	return appt
}

func TestCreateAppointment(t *testing.T) {
	f := newAppointmentFixture(t)

	appt := f.book(t, "2026-11-02", "10:30")
	assert.Equal(t, models.AppointmentPending, appt.Status)
	assert.Equal(t, "2026-11-02", appt.AppointmentDate)
	assert.Equal(t, "10:30", appt.AppointmentTime)
	assert.Equal(t, f.profile.ID, appt.Doctor.ID)
	assert.Equal(t, "Dr Mehta", appt.Doctor.User.Name)
	assert.Equal(t, "Cardiologist", appt.Doctor.Specialization)
	assert.Equal(t, f.patient.UserID, appt.Patient.ID)
	assert.Equal(t, "Asha Rao", appt.Patient.Name)
}

func TestCreateAppointmentAcceptsRFC3339Date(t *testing.T) {
	f := newAppointmentFixture(t)

	appt := f.book(t, "2026-11-02T15:04:05Z", "16:00")
	assert.Equal(t, "2026-11-02", appt.AppointmentDate)
}

func TestCreateAppointmentErrors(t *testing.T) {
	ctx := context.Background()
	f := newAppointmentFixture(t)
	base := models.CreateAppointmentRequest{DoctorID: f.profile.ID, AppointmentDate: "2026-11-02", AppointmentTime: "10:30"}

	missingDoctor := base
	missingDoctor.DoctorID = uuid.Nil
	_, err := f.svc.Create(ctx, f.patient, missingDoctor)
	assert.ErrorIs(t, err, ErrValidation)

	missingTime := base
	missingTime.AppointmentTime = " "
	_, err = f.svc.Create(ctx, f.patient, missingTime)
	assert.ErrorIs(t, err, ErrValidation)

	badDate := base
	badDate.AppointmentDate = "next tuesday"
	_, err = f.svc.Create(ctx, f.patient, badDate)
	assert.ErrorIs(t, err, ErrValidation)

	unknownDoctor := base
	unknownDoctor.DoctorID = uuid.New()
	_, err = f.svc.Create(ctx, f.patient, unknownDoctor)
	assert.ErrorIs(t, err, ErrNotFound)

	off := false
	req := cardiologyProfile()
	req.IsAvailable = &off
	_, err = NewDoctorService(f.st).UpsertProfile(ctx, f.doctor.UserID, f.doctor.Role, req)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.patient, base)
	assert.ErrorIs(t, err, ErrDoctorUnavailable)
}

func TestListAppointmentsByRole(t *testing.T) {
	ctx := context.Background()
	f := newAppointmentFixture(t)
	later := f.book(t, "2026-11-03", "09:00")
	earlier := f.book(t, "2026-11-02", "11:00")

	mine, err := f.svc.List(ctx, f.patient)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, earlier.ID, mine[0].ID)
	assert.Equal(t, later.ID, mine[1].ID)

	theirs, err := f.svc.List(ctx, f.doctor)
	require.NoError(t, err)
	assert.Len(t, theirs, 2)

	none, err := f.svc.List(ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, none)

	noProfile := seedUser(t, f.st, "Dr New", models.RoleDoctor)
	empty, err := f.svc.List(ctx, Caller{UserID: noProfile.ID, Role: noProfile.Role})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestAppointmentAccessControl(t *testing.T) {
	ctx := context.Background()
	f := newAppointmentFixture(t)
	appt := f.book(t, "2026-11-02", "10:30")

	_, err := f.svc.Get(ctx, f.patient, appt.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, f.doctor, appt.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, f.other, appt.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	noProfile := seedUser(t, f.st, "Dr New", models.RoleDoctor)
	_, err = f.svc.Get(ctx, Caller{UserID: noProfile.ID, Role: noProfile.Role}, appt.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, f.svc.Cancel(ctx, f.other, appt.ID), ErrForbidden)

	_, err = f.svc.Get(ctx, f.patient, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAndCancelAppointment(t *testing.T) {
	ctx := context.Background()
	f := newAppointmentFixture(t)
	appt := f.book(t, "2026-11-02", "10:30")

	confirmed := models.AppointmentConfirmed
	notes := "Bring previous ECG"
	updated, err := f.svc.Update(ctx, f.doctor, appt.ID, models.UpdateAppointmentRequest{Status: &confirmed, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentConfirmed, updated.Status)
	assert.Equal(t, notes, updated.Notes)

	bogus := models.AppointmentStatus("rescheduled")
	_, err = f.svc.Update(ctx, f.doctor, appt.ID, models.UpdateAppointmentRequest{Status: &bogus})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.svc.Cancel(ctx, f.patient, appt.ID))
	got, err := f.svc.Get(ctx, f.patient, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCancelled, got.Status)
	assert.Equal(t, notes, got.Notes)
}
