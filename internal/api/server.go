package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"chatline/internal/api/httpx"
	"chatline/internal/assistant"
	"chatline/internal/auth"
	"chatline/internal/message"
	"chatline/internal/user"
	"chatline/pkg/jwt"
)

const requestsPerSecond = 10

type Server struct {
	router  *mux.Router
	handler http.Handler
	logger  *zap.Logger
}

type Handlers struct {
	Auth      *auth.Handler
	Users     *user.Handler
	Messages  *message.Handler
	Assistant *assistant.Handler
}

func NewServer(tokens *jwt.JWT, handlers Handlers, logger *zap.Logger) *Server {
	router := mux.NewRouter()

	s := &Server{router: router, logger: logger}
	s.setupRoutes(tokens, handlers)

	chain := Logging(logger)(RateLimit(requestsPerSecond)(router))
	s.handler = cors.AllowAll().Handler(chain)
	return s
}

func (s *Server) setupRoutes(tokens *jwt.JWT, h Handlers) {
	s.router.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)

	s.router.HandleFunc("/api/auth/register", h.Auth.Register).Methods(http.MethodPost)
	s.router.HandleFunc("/api/auth/login", h.Auth.Login).Methods(http.MethodPost)

	authed := s.router.PathPrefix("/api").Subrouter()
	authed.Use(auth.Middleware(tokens))
	authed.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost)
	authed.HandleFunc("/users", h.Users.List).Methods(http.MethodGet)
	authed.HandleFunc("/messages", h.Messages.Get).Methods(http.MethodGet)
	authed.HandleFunc("/messages", h.Messages.Post).Methods(http.MethodPost)
	authed.HandleFunc("/ai", h.Assistant.Relay).Methods(http.MethodPost)
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Run(addr string) error {
	s.logger.Info("starting server", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.handler)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
