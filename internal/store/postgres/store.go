package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"medassist-backend/internal/crypto"
	"medassist-backend/internal/models"
	"medassist-backend/internal/store"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type PostgresStore struct {
	db  *pgxpool.Pool
	box *crypto.Box // Seals chat transcripts
}

func NewPostgresStore(db *pgxpool.Pool, box *crypto.Box) *PostgresStore {
	return &PostgresStore{db: db, box: box}
}

// Migrate creates missing tables and indexes. Safe to run on every start.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Println("[PostgresStore] Schema applied.")
	return nil
}

// mapWriteError converts constraint violations to store sentinel errors.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		log.Printf("ERROR [PostgresStore] %s: PostgreSQL error: Code=%s, Message=%s, Detail=%s", op, pgErr.Code, pgErr.Message, pgErr.Detail)
		if pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.Detail)
		}
	} else {
		log.Printf("ERROR [PostgresStore] %s: %v", op, err)
	}
	return fmt.Errorf("database error in %s: %w", op, err)
}

// likePattern turns free text into an ILIKE substring pattern.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// --- User Methods ---

const userColumns = `id, name, email, hashed_password, phone, role, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.HashedPassword,
		&user.Phone,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new user record into the database.
// Returns store.ErrConflict if the email is taken.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	log.Printf("[PostgresStore] CreateUser called for: %s (Role: %s)", user.Email, user.Role)
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, name, email, hashed_password, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := s.db.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.HashedPassword,
		user.Phone,
		user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return mapWriteError("CreateUser", err)
	}

	log.Printf("[PostgresStore] CreateUser: Successfully inserted user ID %s for email %s", user.ID, user.Email)
	return nil
}

// GetUserByEmail retrieves a user by their email address.
// Returns store.ErrNotFound if the user does not exist.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(s.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		log.Printf("ERROR [PostgresStore] GetUserByEmail: Failed to query/scan user for email %s: %v", email, err)
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by primary key.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("database error fetching user by id: %w", err)
	}
	return user, nil
}
