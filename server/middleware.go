package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const ctxUser = "user"

// requireSession sends unauthenticated page loads home and rejects other calls.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		st := s.Sessions.Current()
		if !st.Authenticated {
			if c.Request().Method == http.MethodGet {
				return c.Redirect(http.StatusSeeOther, "/")
			}
			return errorJSON(c, http.StatusUnauthorized, "not logged in")
		}

		c.Set(ctxUser, st.User)
		return next(c)
	}
}

// requireAdmin must run after requireSession
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		st := s.Sessions.Current()
		if !st.User.IsAdmin() {
			return errorJSON(c, http.StatusForbidden, "admin only")
		}
		return next(c)
	}
}
