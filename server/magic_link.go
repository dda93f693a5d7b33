package server

import (
	"fmt"
	"html"
	"net/http"

	"github.com/labstack/echo/v4"
)

const failurePage = `<!doctype html>
<html><head><meta charset="utf-8"><title>kawai</title></head>
<body><p>%s</p><p>Redirecting to the home page...</p></body></html>`

// handleMagicLink runs the handshake for /auth/magic?token=...
func (s *Server) handleMagicLink(c echo.Context) error {
	res := s.Handshake.Run(c.Request().Context(), c.QueryParam("token"))
	if res.OK() {
		return c.Redirect(http.StatusSeeOther, res.Route)
	}

	c.Response().Header().Set("Refresh", refreshHeader(res.Delay, res.Route))
	return c.HTML(http.StatusUnauthorized, fmt.Sprintf(failurePage, html.EscapeString(res.Message)))
}
