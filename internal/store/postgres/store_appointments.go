package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"medassist-backend/internal/models"
	"medassist-backend/internal/store"
)

const appointmentColumns = `id, patient_id, doctor_id, appointment_date, appointment_time, status, reason, notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*models.Appointment, error) {
	var a models.Appointment
	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.AppointmentDate,
		&a.AppointmentTime,
		&a.Status,
		&a.Reason,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning appointment: %w", err)
	}
	return &a, nil
}

const createAppointment = `-- name: CreateAppointment :one
INSERT INTO appointments (
    id, patient_id, doctor_id, appointment_date, appointment_time, status, reason, notes
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8
)
RETURNING created_at, updated_at;
`

func (s *PostgresStore) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}

	err := s.db.QueryRow(ctx, createAppointment,
		appt.ID,
		appt.PatientID,
		appt.DoctorID,
		appt.AppointmentDate,
		appt.AppointmentTime,
		appt.Status,
		appt.Reason,
		appt.Notes,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		return mapWriteError("CreateAppointment", err)
	}

	log.Printf("[PostgresStore] CreateAppointment: Inserted appointment %s (patient %s, doctor %s)", appt.ID, appt.PatientID, appt.DoctorID)
	return nil
}

func (s *PostgresStore) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	return scanAppointment(s.db.QueryRow(ctx, query, id))
}

const listAppointmentsByPatient = `-- name: ListAppointmentsByPatient :many
SELECT ` + appointmentColumns + `
FROM appointments
WHERE patient_id = $1
ORDER BY appointment_date ASC, appointment_time ASC;
`

func (s *PostgresStore) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]models.Appointment, error) {
	return s.listAppointments(ctx, listAppointmentsByPatient, patientID)
}

const listAppointmentsByDoctor = `-- name: ListAppointmentsByDoctor :many
SELECT ` + appointmentColumns + `
FROM appointments
WHERE doctor_id = $1
ORDER BY appointment_date ASC, appointment_time ASC;
`

func (s *PostgresStore) ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]models.Appointment, error) {
	return s.listAppointments(ctx, listAppointmentsByDoctor, doctorID)
}

func (s *PostgresStore) listAppointments(ctx context.Context, query string, id uuid.UUID) ([]models.Appointment, error) {
	rows, err := s.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("error querying appointments: %w", err)
	}
	defer rows.Close()

	appts := []models.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointment rows: %w", err)
	}
	return appts, nil
}

const updateAppointment = `-- name: UpdateAppointment :one
UPDATE appointments
SET status = $2, notes = $3, updated_at = NOW()
WHERE id = $1
RETURNING updated_at;
`

// UpdateAppointment persists status and notes. Other fields are immutable after booking.
func (s *PostgresStore) UpdateAppointment(ctx context.Context, appt *models.Appointment) error {
	err := s.db.QueryRow(ctx, updateAppointment, appt.ID, appt.Status, appt.Notes).Scan(&appt.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		return mapWriteError("UpdateAppointment", err)
	}
	return nil
}
