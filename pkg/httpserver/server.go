package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	orchestratorx "github.com/dataseed/cobranza-agent/agent/agents/orchestrator"
	contractx "github.com/dataseed/cobranza-agent/agent/contract"
	repox "github.com/dataseed/cobranza-agent/agent/repo"
)

// Conversationalist is the chat entrypoint the server exposes over HTTP.
type Conversationalist interface {
	HandleMessage(ctx context.Context, threadID string, text string) (string, error)
}

// ModelProbe checks that the inference backend is reachable.
type ModelProbe func(ctx context.Context) error

type Config struct {
	Host            string        `envconfig:"HOST" split_words:"true" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" split_words:"true" default:"8000"`
	Debug           bool          `envconfig:"DEBUG" split_words:"true" default:"false"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"90s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
	AllowOrigins    []string      `envconfig:"ALLOW_ORIGINS" split_words:"true" default:"*"`
}

// Server is the HTTP boundary of the collection agent. It owns routing
// and status-code mapping and nothing else; conversation semantics live
// behind the Conversationalist.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server

	agent Conversationalist
	repo  repox.Repository
	probe ModelProbe

	shutdownTimeout time.Duration
}

type chatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id"`
}

type chatResponse struct {
	Reply    string `json:"reply"`
	ThreadID string `json:"thread_id"`
}

func New(agent Conversationalist, repo repox.Repository, probe ModelProbe, cfg Config) (*Server, error) {
	if agent == nil {
		return nil, errors.New("httpserver: conversationalist is required")
	}
	if repo == nil {
		return nil, errors.New("httpserver: repository is required")
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	engine.Use(cors.New(corsConfig))

	s := &Server{
		engine: engine,
		agent:  agent,
		repo:   repo,
		probe:  probe,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	api.POST("/chat", s.handleChat)
	api.GET("/health", s.handleHealth)
	api.GET("/customers/:id/promises", s.handlePromises)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	log.Info().Msg("http server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("httpserver: shutdown: %w", err)
	}
	return <-errCh
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de la petición inválido"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mensaje vacío"})
		return
	}

	threadID := strings.TrimSpace(req.ThreadID)
	if threadID == "" {
		threadID = uuid.NewString()
	}

	reply, err := s.agent.HandleMessage(c.Request.Context(), threadID, req.Message)
	if err != nil {
		s.writeChatError(c, threadID, err)
		return
	}

	c.JSON(http.StatusOK, chatResponse{Reply: reply, ThreadID: threadID})
}

// writeChatError maps agent errors onto status codes without leaking
// internals to the caller. Operators get the detail through the log.
func (s *Server) writeChatError(c *gin.Context, threadID string, err error) {
	switch {
	case errors.Is(err, orchestratorx.ErrInvalidMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mensaje vacío"})
	case errors.Is(err, orchestratorx.ErrInvalidThread), errors.Is(err, contractx.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Petición inválida"})
	default:
		log.Error().Err(err).Str("thread_id", threadID).Msg("chat turn failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno en el agente"})
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.probe == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	if err := s.probe(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("model backend unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "model_backend": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "model_backend": "reachable"})
}

func (s *Server) handlePromises(c *gin.Context) {
	customerID := strings.TrimSpace(c.Param("id"))
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cédula requerida"})
		return
	}

	promises, err := s.repo.PromisesByCustomer(c.Request.Context(), customerID)
	if err != nil {
		log.Error().Err(err).Str("customer_id", customerID).Msg("promise listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno en el agente"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer_id": customerID, "promises": promises})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
