package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"medassist-backend/internal/models"
	"medassist-backend/internal/store"
)

const doctorColumns = `id, user_id, specialization, qualification, experience, consultation_fee, bio,
	rating, total_reviews, address, city, state, pincode, availability, is_available, created_at, updated_at`

func scanDoctor(row pgx.Row) (*models.Doctor, error) {
	var d models.Doctor
	var availability []byte
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Specialization,
		&d.Qualification,
		&d.Experience,
		&d.ConsultationFee,
		&d.Bio,
		&d.Rating,
		&d.TotalReviews,
		&d.Location.Address,
		&d.Location.City,
		&d.Location.State,
		&d.Location.Pincode,
		&availability,
		&d.IsAvailable,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning doctor: %w", err)
	}
	if err := json.Unmarshal(availability, &d.Availability); err != nil {
		return nil, fmt.Errorf("failed to unmarshal doctor availability: %w", err)
	}
	return &d, nil
}

func marshalAvailability(a models.Availability) ([]byte, error) {
	if a.Days == nil {
		a.Days = []models.DayAvailability{}
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal doctor availability: %w", err)
	}
	return data, nil
}

const createDoctor = `-- name: CreateDoctor :one
INSERT INTO doctors (
    id, user_id, specialization, qualification, experience, consultation_fee, bio,
    address, city, state, pincode, availability, is_available
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
)
RETURNING rating, total_reviews, created_at, updated_at;
`

// CreateDoctor inserts a profile. Returns store.ErrConflict if the user already has one.
func (s *PostgresStore) CreateDoctor(ctx context.Context, doctor *models.Doctor) error {
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	availability, err := marshalAvailability(doctor.Availability)
	if err != nil {
		return err
	}

	err = s.db.QueryRow(ctx, createDoctor,
		doctor.ID,
		doctor.UserID,
		doctor.Specialization,
		doctor.Qualification,
		doctor.Experience,
		doctor.ConsultationFee,
		doctor.Bio,
		doctor.Location.Address,
		doctor.Location.City,
		doctor.Location.State,
		doctor.Location.Pincode,
		availability,
		doctor.IsAvailable,
	).Scan(&doctor.Rating, &doctor.TotalReviews, &doctor.CreatedAt, &doctor.UpdatedAt)
	if err != nil {
		return mapWriteError("CreateDoctor", err)
	}

	log.Printf("[PostgresStore] CreateDoctor: Inserted doctor ID %s for user %s", doctor.ID, doctor.UserID)
	return nil
}

const updateDoctor = `-- name: UpdateDoctor :one
UPDATE doctors
SET specialization = $2, qualification = $3, experience = $4, consultation_fee = $5, bio = $6,
    address = $7, city = $8, state = $9, pincode = $10, availability = $11, is_available = $12,
    updated_at = NOW()
WHERE id = $1
RETURNING rating, total_reviews, created_at, updated_at;
`

// UpdateDoctor replaces the editable fields of a profile. Rating and review count are not editable.
func (s *PostgresStore) UpdateDoctor(ctx context.Context, doctor *models.Doctor) error {
	availability, err := marshalAvailability(doctor.Availability)
	if err != nil {
		return err
	}

	err = s.db.QueryRow(ctx, updateDoctor,
		doctor.ID,
		doctor.Specialization,
		doctor.Qualification,
		doctor.Experience,
		doctor.ConsultationFee,
		doctor.Bio,
		doctor.Location.Address,
		doctor.Location.City,
		doctor.Location.State,
		doctor.Location.Pincode,
		availability,
		doctor.IsAvailable,
	).Scan(&doctor.Rating, &doctor.TotalReviews, &doctor.CreatedAt, &doctor.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		return mapWriteError("UpdateDoctor", err)
	}
	return nil
}

func (s *PostgresStore) GetDoctorByID(ctx context.Context, id uuid.UUID) (*models.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`
	return scanDoctor(s.db.QueryRow(ctx, query, id))
}

func (s *PostgresStore) GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*models.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE user_id = $1`
	return scanDoctor(s.db.QueryRow(ctx, query, userID))
}

// ListDoctors builds the WHERE clause dynamically based on which filters are provided.
func (s *PostgresStore) ListDoctors(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, error) {
	whereClauses := []string{"is_available = TRUE"}
	args := []interface{}{}
	argID := 1

	if filter.Specialization != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("specialization ILIKE $%d", argID))
		args = append(args, likePattern(filter.Specialization))
		argID++
	}
	if filter.City != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("city ILIKE $%d", argID))
		args = append(args, likePattern(filter.City))
		argID++
	}
	if filter.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(specialization ILIKE $%d OR city ILIKE $%d)", argID, argID))
		args = append(args, likePattern(filter.Search))
		argID++
	}

	query := fmt.Sprintf(`-- name: ListDoctors :many
		SELECT %s
		FROM doctors
		WHERE %s
		ORDER BY rating DESC, total_reviews DESC, created_at ASC;`,
		doctorColumns,
		strings.Join(whereClauses, " AND "),
	)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying doctors: %w", err)
	}
	defer rows.Close()

	doctors := []models.Doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating doctor rows: %w", err)
	}

	return doctors, nil
}

const listSpecializations = `-- name: ListSpecializations :many
SELECT DISTINCT specialization FROM doctors ORDER BY specialization ASC;
`

func (s *PostgresStore) ListSpecializations(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, listSpecializations)
	if err != nil {
		return nil, fmt.Errorf("error querying specializations: %w", err)
	}

	specializations, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error collecting specializations: %w", err)
	}
	if specializations == nil {
		specializations = []string{}
	}
	return specializations, nil
}
