// Package server exposes the engine over HTTP. Handlers are thin: they bind
// parameters, call the engine or a call-out client, and map typed failures to
// status codes.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"logsieve/internal/ai"
	"logsieve/internal/config"
	"logsieve/internal/engine"
	"logsieve/internal/logger"
	"logsieve/internal/model"
	"logsieve/internal/translate"
)

// Server wires the engine and config store into a gin router.
type Server struct {
	store  *config.Store
	engine *engine.Engine
}

// New returns a Server backed by store and eng.
func New(store *config.Store, eng *engine.Engine) *Server {
	return &Server{
		store:  store,
		engine: eng,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog(), s.cors())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "logsieve backend is running"})
	})
	r.GET("/hosts", s.handleHosts)
	r.GET("/logs/:host", s.handleLogs)
	r.GET("/stats/:host", s.handleStats)
	r.POST("/analyze", s.handleAnalyze)
	r.POST("/translate", s.handleTranslate)
	r.POST("/config/reload", s.handleReload)

	return r
}

func (s *Server) handleHosts(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Hosts())
}

func (s *Server) handleLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid limit"})
		return
	}

	records, err := s.engine.LogsForHost(c.Param("host"), limit)
	if err != nil {
		s.engineError(c, err)
		return
	}
	if records == nil {
		records = []model.LogRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleStats(c *gin.Context) {
	agg, err := s.engine.AggregateForHost(c.Param("host"), c.DefaultQuery("time_range", "1h"))
	if err != nil {
		s.engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, agg)
}

func (s *Server) engineError(c *gin.Context, err error) {
	if errors.Is(err, engine.ErrHostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Host not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}

type analyzeRequest struct {
	Logs []string `json:"logs"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	cfg := s.store.Current()
	client := ai.NewClient(cfg.AI)
	result, err := client.Analyze(c.Request.Context(), req.Logs)
	if err != nil {
		if errors.Is(err, ai.ErrNoAPIKey) {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Gemini API Key not configured"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": result})
}

type translateRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleTranslate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	cfg := s.store.Current()
	client := translate.NewClient(cfg.Translation)
	result, err := client.Translate(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, translate.ErrNoAPIKey) {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "DeepL API Key not configured"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"translated_text": result})
}

func (s *Server) handleReload(c *gin.Context) {
	cfg := s.store.Current()
	if hash := cfg.Server.AdminTokenHash; hash != "" {
		token := c.GetHeader("X-Admin-Token")
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid admin token"})
			return
		}
	}

	if err := s.store.Reload(); err != nil {
		logger.Error("error reloading configuration", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error reloading configuration: " + err.Error()})
		return
	}

	next := s.store.Current()
	logger.Setup(next.Logging.Level, next.Logging.Format)
	logger.Info("configuration reloaded successfully")
	c.JSON(http.StatusOK, gin.H{"message": "Configuration reloaded successfully"})
}

// requestLog tags each request with an id and logs its outcome.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)

		start := time.Now()
		c.Next()

		logger.Info("request",
			"id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// cors honors the server.cors config; an empty origin list allows any origin.
func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := s.store.Current()
		if !cfg.Server.CORS.Enabled {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		allowed := "*"
		if len(cfg.Server.CORS.Origins) > 0 {
			allowed = ""
			for _, o := range cfg.Server.CORS.Origins {
				if o == origin {
					allowed = origin
					break
				}
			}
		}
		if allowed != "" {
			c.Header("Access-Control-Allow-Origin", allowed)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, X-Admin-Token")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
