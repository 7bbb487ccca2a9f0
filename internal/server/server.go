package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/neonmatrix/neonmatrix/internal/auth"
	"github.com/neonmatrix/neonmatrix/internal/backup"
	"github.com/neonmatrix/neonmatrix/internal/handler"
	"github.com/neonmatrix/neonmatrix/internal/middleware"
	"github.com/neonmatrix/neonmatrix/internal/store"
	ws "github.com/neonmatrix/neonmatrix/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	profileH      *handler.ProfileHandler
	sessionH      *handler.SessionHandler
	userStore     *store.UserStore
	tokens        *auth.TokenService
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	frontendURL   string
	logger        *slog.Logger
}

func New(db *sql.DB, tokens *auth.TokenService, backupCfg backup.Config, frontendURL string, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewGameSessionStore(db)
	backupStore := store.NewBackupStore(db)

	backupMgr := backup.NewManager(backupCfg, db, backupStore, func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type: "backup_status",
			Extra: map[string]any{
				"state":       string(s.State),
				"in_progress": s.InProgress,
				"error":       s.Error,
			},
		})
	}, logger.With("component", "backup"))

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, tokens),
		profileH:      handler.NewProfileHandler(userStore),
		sessionH:      handler.NewSessionHandler(sessionStore, userStore, hub),
		userStore:     userStore,
		tokens:        tokens,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		frontendURL:   frontendURL,
		logger:        logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/signup", s.rateLimitedHandler(s.authH.Signup))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))

	// Protected routes behind bearer token middleware
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/profile", s.profileH.Get)
	protectedMux.HandleFunc("GET /api/user/sessions", s.sessionH.List)
	protectedMux.HandleFunc("POST /api/user/sessions", s.sessionH.Create)
	protectedMux.HandleFunc("POST /api/user/balance", s.sessionH.UpdateBalance)

	authMiddleware := middleware.RequireAuth(s.tokens, s.userStore)
	outerMux.Handle("/api/", authMiddleware(protectedMux))

	var h http.Handler = outerMux
	if s.frontendURL != "" {
		h = middleware.CORS(s.frontendURL)(h)
	}
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
