package handler

import (
	"log/slog"
	"net/http"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/service"
)

// AssistantHandler serves the AI chat and web search.
type AssistantHandler struct {
	chat   *service.ChatService
	search *service.SearchService
	logger *slog.Logger
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(chat *service.ChatService, search *service.SearchService, logger *slog.Logger) *AssistantHandler {
	return &AssistantHandler{chat: chat, search: search, logger: logger}
}

// Chat handles POST /api/v1/ai/chat.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reply, err := h.chat.Chat(r.Context(), userID(r), req.Messages)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// Search handles POST /api/v1/ai/search.
func (h *AssistantHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req dto.SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.search.Search(r.Context(), userID(r), req.Query, req.MaxResults)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
