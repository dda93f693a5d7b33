// Package server is the local kawai dashboard: the magic-link landing route
// plus JSON views over the backend, gated by the shared session.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/existflow/kawai/internal/api"
	"github.com/existflow/kawai/internal/auth"
	"github.com/existflow/kawai/internal/bot"
	"github.com/existflow/kawai/internal/config"
	"github.com/existflow/kawai/internal/logger"
	"github.com/existflow/kawai/internal/session"
)

// Deps are the collaborators the server routes to
type Deps struct {
	Config    *config.Config
	Sessions  *session.Store
	API       *api.Client
	Handshake *auth.Handshake
	Auth      *auth.Authenticator
	Logger    *logger.Logger
}

// Server is the local dashboard server
type Server struct {
	Deps
	echo *echo.Echo
}

// New creates a new server
func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = logger.Default()
	}
	s := &Server{Deps: d}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(s.requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.GET("/", s.handleLanding)
	e.GET("/health", s.handleHealth)
	e.GET("/wa", s.handleWhatsApp)

	// Auth endpoints (public)
	e.GET("/auth/magic", s.handleMagicLink)
	e.POST("/auth/login", s.handleAdminLogin)
	e.POST("/auth/register", s.handleRegister)

	// Session-gated views
	protected := e.Group("")
	protected.Use(s.requireSession)
	protected.GET("/dashboard-user", s.handleSummary)
	protected.GET("/notes", s.handleListNotes)
	protected.POST("/notes", s.handleCreateNote)
	protected.GET("/notes/:id", s.handleNoteDetail)
	protected.PUT("/notes/:id", s.handleUpdateNote)
	protected.DELETE("/notes/:id", s.handleDeleteNote)
	protected.GET("/links", s.handleListLinks)
	protected.DELETE("/links/:id", s.handleDeleteLink)
	protected.GET("/reminders", s.handleListReminders)
	protected.PUT("/reminders/:id", s.handleUpdateReminder)
	protected.DELETE("/reminders/:id", s.handleDeleteReminder)
	protected.GET("/calendar", s.handleCalendar)
	protected.GET("/chat", s.handleChatHistory)
	protected.POST("/chat", s.handleChatSend)
	protected.POST("/logout", s.handleLogout)

	admin := protected.Group("/admin")
	admin.Use(s.requireAdmin)
	admin.GET("", s.handleAdmin)
	admin.POST("/ban", s.handleBan)

	s.echo = e
}

// requestLogger logs every request through the project logger
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		err := next(c)

		res := c.Response()
		s.Logger.Info("HTTP Response",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)),
			logger.F("duration", time.Since(start).String()))

		return err
	}
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type landingResponse struct {
	Authenticated bool   `json:"authenticated"`
	Name          string `json:"name,omitempty"`
	Role          string `json:"role,omitempty"`
	Home          string `json:"home,omitempty"`
	BotLink       string `json:"bot_link,omitempty"`
	ConfigError   string `json:"config_error,omitempty"`
}

// handleLanding reports the session and how to reach the bot
func (s *Server) handleLanding(c echo.Context) error {
	st := s.Sessions.Current()
	resp := landingResponse{Authenticated: st.Authenticated}
	if st.Authenticated {
		resp.Name = st.User.Name
		resp.Role = st.User.Role
		resp.Home = auth.LandingRoute(st.User.Role)
	}

	if link, err := bot.DeepLink(s.Config.BotNumber, ""); err != nil {
		resp.ConfigError = err.Error()
	} else {
		resp.BotLink = link
	}
	return c.JSON(http.StatusOK, resp)
}

// handleWhatsApp redirects to the bot, or refuses when no number is configured
func (s *Server) handleWhatsApp(c echo.Context) error {
	link, err := bot.DeepLink(s.Config.BotNumber, c.QueryParam("text"))
	if err != nil {
		s.Logger.Warn("bot link blocked", logger.F("error", err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	}
	return c.Redirect(http.StatusFound, link)
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

func refreshHeader(delay time.Duration, to string) string {
	return fmt.Sprintf("%d; url=%s", int(delay.Round(time.Second)/time.Second), to)
}
