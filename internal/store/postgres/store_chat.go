package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"medassist-backend/internal/models"
	"medassist-backend/internal/store"
)

// sessionPayload is the plaintext sealed into chat_sessions.sealed_data.
type sessionPayload struct {
	Transcript []models.Message      `json:"transcript"`
	Context    models.SessionContext `json:"context"`
}

func (s *PostgresStore) sealSession(session *models.ChatSession) ([]byte, error) {
	transcript := session.Transcript
	if transcript == nil {
		transcript = []models.Message{}
	}
	plaintext, err := json.Marshal(sessionPayload{Transcript: transcript, Context: session.Context.Normalized()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat session: %w", err)
	}
	sealed, err := s.box.Seal(plaintext, session.ID[:])
	if err != nil {
		return nil, fmt.Errorf("failed to seal chat session: %w", err)
	}
	return sealed, nil
}

func (s *PostgresStore) openSession(session *models.ChatSession, sealed []byte) error {
	plaintext, err := s.box.Open(sealed, session.ID[:])
	if err != nil {
		return fmt.Errorf("failed to open chat session %s: %w", session.ID, err)
	}
	var payload sessionPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal chat session %s: %w", session.ID, err)
	}
	session.Transcript = payload.Transcript
	if session.Transcript == nil {
		session.Transcript = []models.Message{}
	}
	session.Context = payload.Context.Normalized()
	return nil
}

const getActiveChatSession = `-- name: GetActiveChatSession :one
SELECT cs.id, cs.user_id, cs.sealed_data, cs.created_at, cs.updated_at
FROM active_chat_sessions a
JOIN chat_sessions cs ON cs.id = a.chat_session_id
WHERE a.user_id = $1;
`

// GetActiveChatSession follows the user's active-session pointer.
func (s *PostgresStore) GetActiveChatSession(ctx context.Context, userID uuid.UUID) (*models.ChatSession, error) {
	var session models.ChatSession
	var sealed []byte
	err := s.db.QueryRow(ctx, getActiveChatSession, userID).Scan(
		&session.ID,
		&session.UserID,
		&sealed,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning chat session: %w", err)
	}

	if err := s.openSession(&session, sealed); err != nil {
		return nil, err
	}
	return &session, nil
}

const insertChatSession = `-- name: InsertChatSession :one
INSERT INTO chat_sessions (id, user_id, sealed_data)
VALUES ($1, $2, $3)
RETURNING created_at, updated_at;
`

const insertActivePointer = `-- name: InsertActivePointer :exec
INSERT INTO active_chat_sessions (user_id, chat_session_id)
VALUES ($1, $2)
ON CONFLICT (user_id) DO NOTHING;
`

// ResolveActiveChatSession returns the active session or creates one.
// The session row and the pointer are written in one transaction; if another
// request created the pointer first, this one rolls back and returns theirs.
func (s *PostgresStore) ResolveActiveChatSession(ctx context.Context, userID uuid.UUID) (*models.ChatSession, error) {
	session, err := s.GetActiveChatSession(ctx, userID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	session = &models.ChatSession{
		ID:         uuid.New(),
		UserID:     userID,
		Transcript: []models.Message{},
		Context:    models.EmptySessionContext(),
	}
	sealed, err := s.sealSession(session)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	if err := tx.QueryRow(ctx, insertChatSession, session.ID, userID, sealed).Scan(&session.CreatedAt, &session.UpdatedAt); err != nil {
		return nil, mapWriteError("ResolveActiveChatSession", err)
	}

	tag, err := tx.Exec(ctx, insertActivePointer, userID, session.ID)
	if err != nil {
		return nil, mapWriteError("ResolveActiveChatSession", err)
	}
	if tag.RowsAffected() == 0 {
		log.Printf("[PostgresStore] ResolveActiveChatSession: lost creation race for user %s, using existing session", userID)
		_ = tx.Rollback(ctx)
		return s.GetActiveChatSession(ctx, userID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit chat session: %w", err)
	}

	log.Printf("[PostgresStore] ResolveActiveChatSession: Created chat session %s for user %s", session.ID, userID)
	return session, nil
}

const updateChatSession = `-- name: UpdateChatSession :one
UPDATE chat_sessions
SET sealed_data = $3, updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING updated_at;
`

// SaveChatSession overwrites transcript and context. Last writer wins.
func (s *PostgresStore) SaveChatSession(ctx context.Context, session *models.ChatSession) error {
	sealed, err := s.sealSession(session)
	if err != nil {
		return err
	}

	err = s.db.QueryRow(ctx, updateChatSession, session.ID, session.UserID, sealed).Scan(&session.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		return mapWriteError("SaveChatSession", err)
	}
	return nil
}

const deleteChatSessionsByUser = `-- name: DeleteChatSessionsByUser :exec
DELETE FROM chat_sessions WHERE user_id = $1;
`

// DeleteChatSessionsByUser removes all sessions; the active pointer goes with them via ON DELETE CASCADE.
func (s *PostgresStore) DeleteChatSessionsByUser(ctx context.Context, userID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, deleteChatSessionsByUser, userID)
	if err != nil {
		return fmt.Errorf("error deleting chat sessions: %w", err)
	}
	log.Printf("[PostgresStore] DeleteChatSessionsByUser: Deleted %d sessions for user %s", tag.RowsAffected(), userID)
	return nil
}
