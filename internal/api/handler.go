package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/luminagear/lumina-support/internal/db"
	"github.com/luminagear/lumina-support/internal/llm"
	"github.com/luminagear/lumina-support/internal/models"
	"go.uber.org/zap"
)

type Handler struct {
	store  *db.Store
	chat   *llm.Service
	logger *zap.Logger
}

func NewHandler(store *db.Store, chat *llm.Service, logger *zap.Logger) *Handler {
	return &Handler{
		store:  store,
		chat:   chat,
		logger: logger,
	}
}

// Routes registers all endpoints on the given mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /api/chat", h.HandleChat)
	mux.HandleFunc("GET /api/conversations", h.GetConversations)
	mux.HandleFunc("GET /api/conversations/{sessionID}/messages", h.GetMessages)
	mux.HandleFunc("DELETE /api/conversations/{sessionID}", h.DeleteConversation)
	mux.HandleFunc("OPTIONS /", h.Preflight)
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Lumina Support API is running"})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) Preflight(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	resp, err := h.chat.GenerateReply(r.Context(), req.Message, req.SessionID)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("failed to generate reply",
				zap.Error(err),
				zap.String("sessionId", req.SessionID))
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.store.ListConversations()
	if err != nil {
		h.logger.Error("failed to list conversations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Debug("retrieved conversations", zap.Int("count", len(conversations)))
	writeJSON(w, http.StatusOK, conversations)
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	messages, err := h.store.ListMessages(sessionID, 0)
	if err != nil {
		h.logger.Error("failed to list messages",
			zap.Error(err),
			zap.String("sessionId", sessionID))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	if err := h.store.DeleteConversation(sessionID); err != nil {
		h.logger.Error("failed to delete conversation",
			zap.Error(err),
			zap.String("sessionId", sessionID))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation deleted successfully"})
}

// statusForError maps the error taxonomy onto HTTP statuses. Validation
// failures are the caller's to fix; everything else is server-class, with
// quota and upstream outages distinguishable for retrying clients.
func statusForError(err error) int {
	if errors.Is(err, llm.ErrEmptyMessage) || errors.Is(err, llm.ErrMessageTooLong) {
		return http.StatusBadRequest
	}
	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		switch perr.Kind {
		case llm.KindQuota:
			return http.StatusServiceUnavailable
		case llm.KindUnavailable:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	setCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
