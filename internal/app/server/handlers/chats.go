package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/DaniRico987/Sagittarius/internal/core/services"
	"github.com/DaniRico987/Sagittarius/pkg/middleware"
)

type ChatHandler struct {
	convSvc *services.ConversationService
}

func NewChatHandler(c *services.ConversationService) *ChatHandler {
	return &ChatHandler{convSvc: c}
}

func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	log, _ := r.Context().Value(middleware.LoggerKey).(*slog.Logger)
	var req struct {
		Name         string   `json:"name"`
		Participants []string `json:"participants"`
		IsGroup      bool     `json:"isGroup"`
		Admins       []string `json:"admins"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.ErrorContext(r.Context(), "chat handler - create - bad request")
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	conv, err := h.convSvc.CreateConversation(r.Context(), req.Name, req.Participants, req.IsGroup, req.Admins)
	if err != nil {
		log.ErrorContext(r.Context(), "chat handler - create failed", "err", err)
		writeError(w, err)
		return
	}
	log.InfoContext(r.Context(), "chat handler - conversation created", "conversation_id", conv.ID, "is_group", conv.IsGroup)
	writeJSON(w, http.StatusCreated, conv)
}

func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	views, err := h.convSvc.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.convSvc.GetMessages(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// DirectMessages serves the legacy two-user history endpoint for
// messages stored without a conversation id.
func (h *ChatHandler) DirectMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.convSvc.DirectHistory(r.Context(), r.PathValue("userId"), r.PathValue("receiverId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}
