package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist-backend/internal/completion"
	"medassist-backend/internal/models"
	"medassist-backend/internal/store/memory"
)

type stubCompleter struct {
	replies []string
	err     error
	calls   int
	system  string
	history [][]models.Turn
}

func (c *stubCompleter) Complete(ctx context.Context, system string, history []models.Turn) (string, error) {
	c.calls++
	c.system = system
	c.history = append(c.history, append([]models.Turn(nil), history...))
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return "", nil
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

type failingSaveStore struct {
	*memory.MemoryStore
	err error
}

func (s *failingSaveStore) SaveChatSession(ctx context.Context, session *models.ChatSession) error {
	return s.err
}

// ctxStore fails writes on a finished context, as the pgx store does.
type ctxStore struct {
	*memory.MemoryStore
}

func (s *ctxStore) SaveChatSession(ctx context.Context, session *models.ChatSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.SaveChatSession(ctx, session)
}

func TestSendMessageAccumulatesContext(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	st := memory.NewMemoryStore()
	comp := &stubCompleter{replies: []string{
		"A cardiologist can help with that.",
		"You could also see a General Physician.",
	}}
	svc := NewChatService(st, comp, time.Second)

	first, err := svc.SendMessage(ctx, userID, "I have a fever and a headache")
	require.NoError(t, err)
	assert.False(t, first.Degraded)
	assert.Equal(t, "A cardiologist can help with that.", first.Reply)
	assert.Equal(t, []string{"fever", "headache"}, first.Context.Symptoms)
	assert.Equal(t, []string{"cardiologist"}, first.Context.SuggestedSpecialists)
	assert.Equal(t, []string{}, first.Context.DiagnosisHints)

	second, err := svc.SendMessage(ctx, userID, "Now I also have a COUGH and fever")
	require.NoError(t, err)
	assert.Equal(t, first.ChatID, second.ChatID)
	assert.Equal(t, []string{"fever", "headache", "cough"}, second.Context.Symptoms)
	assert.Equal(t, []string{"cardiologist", "general physician"}, second.Context.SuggestedSpecialists)

	assert.Equal(t, SystemInstruction, comp.system)
	require.Len(t, comp.history, 2)
	require.Len(t, comp.history[1], 3)
	assert.Equal(t, models.MessageRoleUser, comp.history[1][0].Role)
	assert.Equal(t, models.MessageRoleAssistant, comp.history[1][1].Role)
	assert.Equal(t, "Now I also have a COUGH and fever", comp.history[1][2].Content)

	history, err := svc.GetHistory(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, history.ChatID)
	assert.Equal(t, second.ChatID, *history.ChatID)
	require.Len(t, history.Messages, 4)
	assert.Equal(t, models.MessageRoleUser, history.Messages[0].Role)
	assert.Equal(t, models.MessageRoleAssistant, history.Messages[3].Role)
	assert.False(t, history.Messages[0].Timestamp.IsZero())
	assert.Equal(t, second.Context, history.Context)
}

func TestSendMessageMultiWordTermsMustBeContiguous(t *testing.T) {
	svc := NewChatService(memory.NewMemoryStore(), &stubCompleter{replies: []string{"ok"}}, time.Second)

	reply, err := svc.SendMessage(context.Background(), uuid.New(), "pain in my chest")
	require.NoError(t, err)
	assert.Equal(t, []string{"pain"}, reply.Context.Symptoms)
	assert.Equal(t, []string{}, reply.Context.SuggestedSpecialists)
}

func TestSendMessageFallbackKeepsUserMessage(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	st := memory.NewMemoryStore()

	ok := NewChatService(st, &stubCompleter{replies: []string{"See a dermatologist."}}, time.Second)
	_, err := ok.SendMessage(ctx, userID, "I have a rash")
	require.NoError(t, err)

	svc := NewChatService(st, &stubCompleter{err: errors.New("connection refused")}, time.Second)
	reply, err := svc.SendMessage(ctx, userID, "and a fever too")
	require.NoError(t, err)
	assert.True(t, reply.Degraded)
	assert.Equal(t, FallbackReply, reply.Reply)
	assert.Equal(t, models.EmptySessionContext(), reply.Context)

	history, err := svc.GetHistory(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, reply.ChatID, *history.ChatID)
	require.Len(t, history.Messages, 3)
	last := history.Messages[2]
	assert.Equal(t, models.MessageRoleUser, last.Role)
	assert.Equal(t, "and a fever too", last.Content)
	// Nothing extracted for the failed turn.
	assert.Equal(t, []string{"rash"}, history.Context.Symptoms)
	assert.Equal(t, []string{"dermatologist"}, history.Context.SuggestedSpecialists)
}

func TestSendMessageUnconfiguredModelFallsBack(t *testing.T) {
	svc := NewChatService(memory.NewMemoryStore(), completion.Unavailable{}, time.Second)

	reply, err := svc.SendMessage(context.Background(), uuid.New(), "I feel dizziness")
	require.NoError(t, err)
	assert.True(t, reply.Degraded)
	assert.Equal(t, FallbackReply, reply.Reply)
	assert.NotEqual(t, uuid.Nil, reply.ChatID)
}

func TestSendMessageEmptyReplyFallsBack(t *testing.T) {
	svc := NewChatService(memory.NewMemoryStore(), &stubCompleter{replies: []string{"   "}}, time.Second)

	reply, err := svc.SendMessage(context.Background(), uuid.New(), "nausea")
	require.NoError(t, err)
	assert.True(t, reply.Degraded)
	assert.Equal(t, FallbackReply, reply.Reply)
}

func TestSendMessageRejectsBlankMessage(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	st := memory.NewMemoryStore()
	comp := &stubCompleter{replies: []string{"unused"}}
	svc := NewChatService(st, comp, time.Second)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := svc.SendMessage(ctx, userID, msg)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Zero(t, comp.calls)

	history, err := svc.GetHistory(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, history.ChatID)
}

func TestSendMessagePropagatesSaveFailure(t *testing.T) {
	saveErr := errors.New("disk full")
	st := &failingSaveStore{MemoryStore: memory.NewMemoryStore(), err: saveErr}

	for name, comp := range map[string]completion.Completer{
		"success":  &stubCompleter{replies: []string{"hello"}},
		"fallback": completion.Unavailable{},
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewChatService(st, comp, time.Second)
			_, err := svc.SendMessage(context.Background(), uuid.New(), "fever")
			assert.ErrorIs(t, err, saveErr)
		})
	}
}

func TestSendMessageCompletionSurvivesClientCancel(t *testing.T) {
	st := &ctxStore{MemoryStore: memory.NewMemoryStore()}
	userID := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())

	comp := completerFunc(func(callCtx context.Context, _ string, _ []models.Turn) (string, error) {
		// The client goes away while the model is thinking.
		cancel()
		if err := callCtx.Err(); err != nil {
			return "", err
		}
		if _, hasDeadline := callCtx.Deadline(); !hasDeadline {
			return "", errors.New("missing deadline")
		}
		return "A neurologist may help.", nil
	})
	svc := NewChatService(st, comp, time.Second)

	reply, err := svc.SendMessage(ctx, userID, "headache")
	require.NoError(t, err)
	assert.False(t, reply.Degraded)
	assert.Equal(t, []string{"neurologist"}, reply.Context.SuggestedSpecialists)

	history, err := svc.GetHistory(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, history.Messages, 2)
}

func TestSendMessageFallbackPersistsAfterRequestDeadline(t *testing.T) {
	st := &ctxStore{MemoryStore: memory.NewMemoryStore()}
	userID := uuid.New()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	blocking := completerFunc(func(callCtx context.Context, _ string, _ []models.Turn) (string, error) {
		<-callCtx.Done()
		return "", callCtx.Err()
	})
	svc := NewChatService(st, blocking, 200*time.Millisecond)

	reply, err := svc.SendMessage(ctx, userID, "I feel nausea")
	require.NoError(t, err)
	assert.True(t, reply.Degraded)
	assert.Equal(t, FallbackReply, reply.Reply)
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)

	history, err := svc.GetHistory(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "I feel nausea", history.Messages[0].Content)
	assert.Empty(t, history.Context.Symptoms)
}

type completerFunc func(ctx context.Context, system string, history []models.Turn) (string, error)

func (f completerFunc) Complete(ctx context.Context, system string, history []models.Turn) (string, error) {
	return f(ctx, system, history)
}

func TestGetHistoryWithoutSession(t *testing.T) {
	svc := NewChatService(memory.NewMemoryStore(), completion.Unavailable{}, 0)

	history, err := svc.GetHistory(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, history.ChatID)
	assert.Equal(t, []models.Message{}, history.Messages)
	assert.Equal(t, models.EmptySessionContext(), history.Context)
}

func TestClearHistoryStartsFresh(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	svc := NewChatService(memory.NewMemoryStore(), &stubCompleter{replies: []string{"ok", "ok"}}, time.Second)

	first, err := svc.SendMessage(ctx, userID, "fever")
	require.NoError(t, err)

	require.NoError(t, svc.ClearHistory(ctx, userID))

	history, err := svc.GetHistory(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, history.ChatID)
	assert.Empty(t, history.Messages)
	assert.Empty(t, history.Context.Symptoms)

	second, err := svc.SendMessage(ctx, userID, "cough")
	require.NoError(t, err)
	assert.NotEqual(t, first.ChatID, second.ChatID)
	assert.Equal(t, []string{"cough"}, second.Context.Symptoms)
}
