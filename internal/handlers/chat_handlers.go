package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"medassist-backend/internal/models"
	"medassist-backend/internal/services"
	"medassist-backend/pkg/httputil"
)

// ChatService defines the interface expected from the chat service.
type ChatService interface {
	SendMessage(ctx context.Context, userID uuid.UUID, message string) (*services.ChatReply, error)
	GetHistory(ctx context.Context, userID uuid.UUID) (*services.ChatHistory, error)
	ClearHistory(ctx context.Context, userID uuid.UUID) error
}

// ChatHandlers handles the AI triage chat endpoints.
type ChatHandlers struct {
	chatService ChatService
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(chatService ChatService) *ChatHandlers {
	return &ChatHandlers{
		chatService: chatService,
	}
}

// HandleSendMessage handles POST /api/ai/chat.
// A model outage still answers 200 with the fallback reply.
func (h *ChatHandlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.ChatRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.chatService.SendMessage(r.Context(), caller.UserID, req.Message)
	if err != nil {
		respondServiceError(w, "ChatHandlers", err, "Failed to process chat message")
		return
	}

	chatID := reply.ChatID
	httputil.RespondJSON(w, http.StatusOK, models.ChatResponse{
		Success:  true,
		Response: reply.Reply,
		Context:  reply.Context.Normalized(),
		ChatID:   &chatID,
	})
}

// HandleGetHistory handles GET /api/ai/chat/history.
func (h *ChatHandlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	history, err := h.chatService.GetHistory(r.Context(), caller.UserID)
	if err != nil {
		respondServiceError(w, "ChatHandlers", err, "Failed to load chat history")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.ChatHistoryResponse{
		Success:  true,
		Messages: history.Messages,
		Context:  history.Context.Normalized(),
		ChatID:   history.ChatID,
	})
}

// HandleClearHistory handles DELETE /api/ai/chat/history.
func (h *ChatHandlers) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.chatService.ClearHistory(r.Context(), caller.UserID); err != nil {
		respondServiceError(w, "ChatHandlers", err, "Failed to clear chat history")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.MessageResponse{Success: true, Message: "Chat history cleared successfully"})
}
