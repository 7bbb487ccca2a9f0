package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/neonmatrix/neonmatrix/internal/auth"
	"github.com/neonmatrix/neonmatrix/internal/model"
	"github.com/neonmatrix/neonmatrix/internal/store"
)

// userPayload is the user shape returned by signup and profile. The
// password hash and raw balance units never appear in responses.
func userPayload(u *model.User) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"email":     u.Email,
		"username":  u.Username,
		"balance":   u.BalanceString(),
		"createdAt": u.CreatedAt,
	}
}

type AuthHandler struct {
	users  *store.UserStore
	tokens *auth.TokenService
}

func NewAuthHandler(users *store.UserStore, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email, username and password are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	existing, err := h.users.GetByEmail(req.Email)
	if err != nil {
		slog.Error("failed to check existing user", "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if existing != nil {
		writeError(w, http.StatusBadRequest, "Email already in use")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid password")
		return
	}

	user, err := h.users.Create(req.Email, req.Username, hash)
	if err != nil {
		// Lost the race against a concurrent signup for the same email.
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			writeError(w, http.StatusBadRequest, "Email already in use")
			return
		}
		slog.Error("failed to create user", "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    userPayload(user),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		slog.Error("failed to look up user", "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	// Unknown email and wrong password answer identically so login cannot
	// be used to probe which emails are registered.
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusBadRequest, "Invalid email or password")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
	})
}
