package handlers

import (
	"log/slog"
	"net/http"

	"github.com/DaniRico987/Sagittarius/internal/app/router"
	"github.com/DaniRico987/Sagittarius/internal/core/contracts"
	"github.com/DaniRico987/Sagittarius/internal/core/domain"
	"github.com/DaniRico987/Sagittarius/internal/core/services"
	"github.com/DaniRico987/Sagittarius/pkg/middleware"
)

// UserHandler serves the user directory and the friend workflow.
// Friend-state changes are pushed to the affected users' live
// connections on top of the HTTP response.
type UserHandler struct {
	userSvc  *services.UserService
	router   *router.Router
	presence contracts.PresenceStore
}

func NewUserHandler(u *services.UserService, rt *router.Router, presence contracts.PresenceStore) *UserHandler {
	return &UserHandler{userSvc: u, router: rt, presence: presence}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userSvc.FindAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userSvc.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Online(w http.ResponseWriter, r *http.Request) {
	ids, err := h.presence.OnlineUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"online": ids})
}

func (h *UserHandler) Friends(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	friends, err := h.userSvc.GetFriends(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

func (h *UserHandler) FriendRequests(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	reqs, err := h.userSvc.GetFriendRequests(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (h *UserHandler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	log, _ := r.Context().Value(middleware.LoggerKey).(*slog.Logger)
	userID, _ := middleware.UserFromContext(r.Context())
	friendID := r.PathValue("id")
	if err := h.userSvc.SendFriendRequest(r.Context(), userID, friendID); err != nil {
		writeError(w, err)
		return
	}
	if sender, err := h.userSvc.FindByID(r.Context(), userID); err == nil {
		h.router.NotifyFriendRequestSent(r.Context(), userID, friendID, domain.UserRef{
			ID: sender.ID, Name: sender.Name, Avatar: sender.Avatar,
		})
	}
	log.InfoContext(r.Context(), "user handler - friend request sent", "from", userID, "to", friendID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "friend request sent"})
}

func (h *UserHandler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	log, _ := r.Context().Value(middleware.LoggerKey).(*slog.Logger)
	userID, _ := middleware.UserFromContext(r.Context())
	friendID := r.PathValue("id")
	if err := h.userSvc.AcceptFriendRequest(r.Context(), userID, friendID); err != nil {
		writeError(w, err)
		return
	}
	if accepter, err := h.userSvc.FindByID(r.Context(), userID); err == nil {
		h.router.NotifyFriendRequestAccepted(r.Context(), userID, friendID, domain.UserRef{
			ID: accepter.ID, Name: accepter.Name, Avatar: accepter.Avatar,
		})
	}
	log.InfoContext(r.Context(), "user handler - friend request accepted", "user_id", userID, "friend_id", friendID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "friend request accepted"})
}

func (h *UserHandler) RejectFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	friendID := r.PathValue("id")
	if err := h.userSvc.RejectFriendRequest(r.Context(), userID, friendID); err != nil {
		writeError(w, err)
		return
	}
	h.router.NotifyFriendRequestRejected(r.Context(), userID, friendID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "friend request rejected"})
}

func (h *UserHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	log, _ := r.Context().Value(middleware.LoggerKey).(*slog.Logger)
	userID, _ := middleware.UserFromContext(r.Context())
	friendID := r.PathValue("id")
	if err := h.userSvc.RemoveFriend(r.Context(), userID, friendID); err != nil {
		writeError(w, err)
		return
	}
	h.router.NotifyFriendRemoved(r.Context(), userID, friendID)
	log.InfoContext(r.Context(), "user handler - friend removed", "user_id", userID, "friend_id", friendID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "friend removed"})
}
