package handler

import (
	"log/slog"
	"net/http"

	"github.com/neonmatrix/neonmatrix/internal/auth"
	"github.com/neonmatrix/neonmatrix/internal/store"
)

type ProfileHandler struct {
	users *store.UserStore
}

func NewProfileHandler(users *store.UserStore) *ProfileHandler {
	return &ProfileHandler{users: users}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	user, err := h.users.GetByID(userID)
	if err != nil {
		slog.Error("failed to load profile", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": userPayload(user),
	})
}
