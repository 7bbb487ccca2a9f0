package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/neonmatrix/neonmatrix/internal/auth"
	"github.com/neonmatrix/neonmatrix/internal/model"
	"github.com/neonmatrix/neonmatrix/internal/store"
	"github.com/neonmatrix/neonmatrix/internal/websocket"
)

type SessionHandler struct {
	sessions *store.GameSessionStore
	users    *store.UserStore
	hub      *websocket.Hub
}

// NewSessionHandler creates the handler. hub may be nil when no event feed
// is wired.
func NewSessionHandler(sessions *store.GameSessionStore, users *store.UserStore, hub *websocket.Hub) *SessionHandler {
	return &SessionHandler{sessions: sessions, users: users, hub: hub}
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	sessions, err := h.sessions.ListByUser(userID)
	if err != nil {
		slog.Error("failed to list sessions", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if sessions == nil {
		sessions = []model.GameSession{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req struct {
		TimeTaken  *int   `json:"timeTaken"`
		Moves      *int   `json:"moves"`
		Difficulty string `json:"difficulty"`
		Result     string `json:"result"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.TimeTaken == nil || req.Moves == nil || *req.TimeTaken < 0 || *req.Moves < 0 {
		writeError(w, http.StatusBadRequest, "timeTaken and moves must be non-negative integers")
		return
	}
	if !model.ValidDifficulty(req.Difficulty) {
		writeError(w, http.StatusBadRequest, "difficulty must be easy, medium or hard")
		return
	}
	switch req.Result {
	case model.ResultWin, model.ResultLose, model.ResultIncomplete:
	default:
		writeError(w, http.StatusBadRequest, "result must be win, lose or incomplete")
		return
	}

	session, balanceUnits, err := h.sessions.Record(userID, *req.TimeTaken, *req.Moves, req.Difficulty, req.Result)
	if err != nil {
		slog.Error("failed to record session", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	balance := model.UnitsToDecimal(balanceUnits).StringFixed(8)
	if h.hub != nil {
		h.hub.Broadcast(websocket.SessionRecorded(userID, session.ID, balance))
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Game session saved successfully",
		"session": session,
		"balance": balance,
	})
}

// UpdateBalance validates the submitted amount but does not apply it; the
// balance is recomputed from the session ledger so clients cannot set
// arbitrary amounts.
func (h *SessionHandler) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req struct {
		Balance json.RawMessage `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var raw string
	if err := json.Unmarshal(req.Balance, &raw); err != nil {
		// Numbers are accepted as well as strings.
		raw = string(req.Balance)
	}
	if _, err := decimal.NewFromString(raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid balance")
		return
	}

	user, err := h.users.ReconcileBalance(userID)
	if err != nil {
		slog.Error("failed to reconcile balance", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	balance := user.BalanceString()
	if h.hub != nil {
		h.hub.Broadcast(websocket.BalanceUpdated(userID, balance))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Balance updated successfully",
		"balance": balance,
	})
}
