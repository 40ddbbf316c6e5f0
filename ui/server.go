package ui

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"surveyml/app"
	"surveyml/domain/core"
	"surveyml/internal"
	"surveyml/ports"
)

// SourceFactory resolves the survey source named in a training request. An empty name
// selects the configured default.
type SourceFactory func(name string) (ports.SurveySource, error)

// Session is one trained run held in memory.
type Session struct {
	ID           core.SessionID `json:"session_id"`
	CreatedAt    time.Time      `json:"created_at"`
	Source       string         `json:"source"`
	Artifacts    *app.Artifacts `json:"-"`
	LoadWarnings []core.Warning `json:"load_warnings,omitempty"`
}

// SessionConfig bounds the sessions held in memory. A value <= 0 disables that bound.
type SessionConfig struct {
	MaxSessions int           `json:"max_sessions"`
	TTL         time.Duration `json:"ttl"`
}

// DefaultSessionConfig keeps at most 32 sessions for two hours each
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{MaxSessions: 32, TTL: 2 * time.Hour}
}

// Server serves the dashboard API over trained sessions
type Server struct {
	router   *gin.Engine
	pipeline *app.PipelineService
	sources  SourceFactory
	config   SessionConfig
	logger   *internal.Logger
	now      func() time.Time

	sessions   map[core.SessionID]*Session
	sessionsMu sync.RWMutex
}

// NewServer creates a server training with pipeline on sources resolved by factory
func NewServer(pipeline *app.PipelineService, factory SourceFactory, config SessionConfig) *Server {
	s := &Server{
		router:   gin.New(),
		pipeline: pipeline,
		sources:  factory,
		config:   config,
		logger:   internal.DefaultLogger,
		now:      time.Now,
		sessions: make(map[core.SessionID]*Session),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api/sessions")
	api.POST("", s.handleCreateSession)
	api.GET("/:id/report", s.handleReport)
	api.GET("/:id/importance", s.handleImportance)
	api.POST("/:id/predict", s.handlePredict)
	api.GET("/:id/summary", s.handleSummary)
	api.GET("/:id/insights", s.handleInsights)
}

// Handler exposes the router for httptest and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("[Server] listening on http://%s", addr)
	return s.router.Run(addr)
}

// putSession stores sess after dropping expired sessions and, at the cap, the oldest ones.
func (s *Server) putSession(sess *Session) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	s.pruneExpiredLocked()
	for s.config.MaxSessions > 0 && len(s.sessions) >= s.config.MaxSessions {
		var oldest *Session
		for _, held := range s.sessions {
			if oldest == nil || held.CreatedAt.Before(oldest.CreatedAt) {
				oldest = held
			}
		}
		delete(s.sessions, oldest.ID)
		s.logger.Info("[Server] session %s evicted, limit of %d sessions reached", oldest.ID, s.config.MaxSessions)
	}
	s.sessions[sess.ID] = sess
}

func (s *Server) pruneExpiredLocked() {
	for id, held := range s.sessions {
		if s.expired(held) {
			delete(s.sessions, id)
			s.logger.Debug("[Server] session %s expired", id)
		}
	}
}

func (s *Server) expired(sess *Session) bool {
	return s.config.TTL > 0 && s.now().Sub(sess.CreatedAt) > s.config.TTL
}

func (s *Server) session(id core.SessionID) (*Session, bool) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	sess, ok := s.sessions[id]
	if ok && s.expired(sess) {
		delete(s.sessions, id)
		return nil, false
	}
	return sess, ok
}

// SessionCount returns the number of sessions held
func (s *Server) SessionCount() int {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return len(s.sessions)
}
