package devapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/models"
)

const requestIDHeader = "X-Request-ID"

type executeRequest struct {
	Text string `json:"text" binding:"required"`
}

type scheduleRequest struct {
	Text  string `json:"text" binding:"required"`
	Title string `json:"title"`
}

type whatsappRequest struct {
	Contact string         `json:"contact" binding:"required"`
	Message string         `json:"message" binding:"required"`
	Channel models.Channel `json:"channel"`
}

type appRequest struct {
	App string `json:"app" binding:"required"`
}

type actionRequest struct {
	Action string `json:"action" binding:"required"`
}

type errorRequest struct {
	Error string `json:"error" binding:"required"`
}

// Server serves the API over HTTP on a loopback address.
type Server struct {
	api    *API
	addr   string
	router *gin.Engine
	logger logger.Logger
}

func NewServer(api *API, addr string, l logger.Logger) *Server {
	s := &Server{api: api, addr: addr, logger: logger.Component(l, "devapi.server")}
	s.router = s.routes()
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: loopbackOrigin,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders:   []string{"Content-Length", requestIDHeader},
	}))

	r.GET("/health", s.health)
	r.GET("/ready", s.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/execute", s.execute)
		api.POST("/parse", s.parse)
		api.POST("/schedule", s.schedule)
		api.GET("/reminders", s.reminders)
		api.GET("/apps/scan", s.scanApps)
		api.POST("/apps/open", s.openApp)
		api.POST("/apps/close", s.closeApp)
		api.POST("/whatsapp", s.sendWhatsApp)
		api.GET("/system/status", s.systemStatus)
		api.POST("/system/action", s.systemAction)
		api.POST("/system/optimize", s.optimize)
		api.POST("/errors/explain", s.explainError)
		api.POST("/errors/fix", s.fixError)
	}
	return r
}

// loopbackOrigin accepts http(s) origins on localhost or a loopback IP, on
// any port.
func loopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		start := time.Now()
		c.Next()
		s.logger.Debug("request served", map[string]interface{}{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"took_ms":    time.Since(start).Milliseconds(),
		})
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dev API listening", map[string]interface{}{"address": s.addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("dev API shutdown failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("dev API stopped", nil)
	return nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) execute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.api.Execute(c.Request.Context(), req.Text))
}

func (s *Server) parse(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.api.ParseIntent(req.Text))
}

func (s *Server) schedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Title == "" {
		req.Title = "Reminder"
	}
	c.JSON(http.StatusOK, s.api.ScheduleTask(c.Request.Context(), req.Text, req.Title))
}

func (s *Server) reminders(c *gin.Context) {
	rows, err := s.api.Reminders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if rows == nil {
		rows = []models.Reminder{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "reminders": rows})
}

func (s *Server) scanApps(c *gin.Context) {
	c.JSON(http.StatusOK, s.api.ScanSystemApps(c.Request.Context()))
}

func (s *Server) openApp(c *gin.Context) {
	var req appRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.api.OpenApp(c.Request.Context(), req.App))
}

func (s *Server) closeApp(c *gin.Context) {
	var req appRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.api.CloseApp(c.Request.Context(), req.App))
}

func (s *Server) sendWhatsApp(c *gin.Context) {
	var req whatsappRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.api.SendWhatsAppMessage(c.Request.Context(), req.Contact, req.Message, req.Channel))
}

func (s *Server) systemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.api.SystemStatus(c.Request.Context()))
}

func (s *Server) systemAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.api.SystemAction(c.Request.Context(), req.Action))
}

func (s *Server) optimize(c *gin.Context) {
	c.JSON(http.StatusOK, s.api.OptimizeSystem(c.Request.Context()))
}

func (s *Server) explainError(c *gin.Context) {
	var req errorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.api.ExplainError(req.Error))
}

func (s *Server) fixError(c *gin.Context) {
	var req errorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.api.FixErrorSafely(req.Error))
}
