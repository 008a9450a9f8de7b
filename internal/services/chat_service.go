package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"medassist-backend/internal/completion"
	"medassist-backend/internal/models"
	"medassist-backend/internal/store"
	"medassist-backend/internal/triage"
)

const (
	// SystemInstruction is sent ahead of every conversation.
	SystemInstruction = "You are a medical AI assistant. Help users with symptom analysis, provide general health information, and suggest appropriate medical specialists. Always remind users that you are not a replacement for professional medical advice and they should consult a doctor for serious symptoms. Be empathetic, clear, and helpful."

	// FallbackReply is returned when the completion model cannot be reached.
	FallbackReply = "I'm having trouble connecting right now. Please try again or consult with a healthcare professional for immediate concerns."

	defaultCompletionTimeout = 30 * time.Second

	// saveTimeout bounds the transcript write that follows a completion.
	saveTimeout = 10 * time.Second
)

// ChatReply is the outcome of one chat turn.
type ChatReply struct {
	Reply    string
	Context  models.SessionContext
	ChatID   uuid.UUID
	Degraded bool // The completion call failed and Reply is FallbackReply
}

// ChatHistory is the active session as seen by its owner.
type ChatHistory struct {
	Messages []models.Message
	Context  models.SessionContext
	ChatID   *uuid.UUID // Nil when the user has no session
}

// ChatService runs the triage chat: transcript bookkeeping, model calls and context accumulation.
type ChatService struct {
	store     store.Store
	completer completion.Completer
	extractor triage.Extractor
	timeout   time.Duration
	now       func() time.Time
}

// NewChatService creates a new ChatService.
// timeout bounds each completion call; zero means 30s.
func NewChatService(s store.Store, completer completion.Completer, timeout time.Duration) *ChatService {
	if timeout <= 0 {
		timeout = defaultCompletionTimeout
	}
	return &ChatService{
		store:     s,
		completer: completer,
		extractor: triage.NewKeywordExtractor(),
		timeout:   timeout,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SendMessage appends message to the user's active session and asks the model for a reply.
// A failed completion is not an error: the user's message is kept, no reply or
// context is recorded for the turn, and FallbackReply is returned with an empty context.
// Store failures are returned as errors.
func (s *ChatService) SendMessage(ctx context.Context, userID uuid.UUID, message string) (*ChatReply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: please provide a message", ErrValidation)
	}

	session, err := s.store.ResolveActiveChatSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve chat session: %w", err)
	}

	session.Transcript = append(session.Transcript, models.Message{
		Role:      models.MessageRoleUser,
		Content:   message,
		Timestamp: s.now(),
	})

	reply, err := s.complete(ctx, session.Transcript)
	if err != nil {
		log.Printf("WARN [ChatService] completion failed for user %s (session %s): %v", userID, session.ID, err)
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
		return &ChatReply{
			Reply:    FallbackReply,
			Context:  models.EmptySessionContext(),
			ChatID:   session.ID,
			Degraded: true,
		}, nil
	}

	session.Context = triage.Accumulate(
		session.Context,
		s.extractor.Symptoms(message),
		s.extractor.Specialists(reply),
	)
	session.Transcript = append(session.Transcript, models.Message{
		Role:      models.MessageRoleAssistant,
		Content:   reply,
		Timestamp: s.now(),
	})

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	log.Printf("[ChatService] user %s session %s: %d messages, symptoms=%v, specialists=%v",
		userID, session.ID, len(session.Transcript), session.Context.Symptoms, session.Context.SuggestedSpecialists)
	return &ChatReply{Reply: reply, Context: session.Context, ChatID: session.ID}, nil
}

// complete calls the model with the whole transcript. The call is detached from
// the caller's cancellation and bounded only by the service timeout.
func (s *ChatService) complete(ctx context.Context, transcript []models.Message) (string, error) {
	turns := make([]models.Turn, len(transcript))
	for i, m := range transcript {
		turns[i] = models.Turn{Role: m.Role, Content: m.Content}
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	reply, err := s.completer.Complete(callCtx, SystemInstruction, turns)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", completion.ErrEmptyReply
	}
	return reply, nil
}

// save persists the turn. Once the model has been called the write no longer
// depends on the caller staying connected, only on saveTimeout.
func (s *ChatService) save(ctx context.Context, session *models.ChatSession) error {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	if err := s.store.SaveChatSession(saveCtx, session); err != nil {
		return fmt.Errorf("failed to save chat session: %w", err)
	}
	return nil
}

// GetHistory returns the active session's transcript and context.
func (s *ChatService) GetHistory(ctx context.Context, userID uuid.UUID) (*ChatHistory, error) {
	session, err := s.store.GetActiveChatSession(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &ChatHistory{Messages: []models.Message{}, Context: models.EmptySessionContext()}, nil
		}
		return nil, fmt.Errorf("failed to load chat session: %w", err)
	}

	messages := session.Transcript
	if messages == nil {
		messages = []models.Message{}
	}
	chatID := session.ID
	return &ChatHistory{Messages: messages, Context: session.Context.Normalized(), ChatID: &chatID}, nil
}

// ClearHistory deletes every session the user owns.
func (s *ChatService) ClearHistory(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.DeleteChatSessionsByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear chat history: %w", err)
	}
	log.Printf("[ChatService] cleared chat history for user %s", userID)
	return nil
}
