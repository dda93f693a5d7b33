package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/existflow/kawai/internal/api"
	"github.com/existflow/kawai/internal/auth"
	"github.com/existflow/kawai/internal/logger"
)

type loginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type registerRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	SecretCode  string `json:"secret_code"`
}

type authResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone_number"`
	Role  string `json:"role"`
	Route string `json:"route"`
}

func (s *Server) handleAdminLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	user, err := s.Auth.AdminLogin(c.Request().Context(), req.PhoneNumber, req.Password)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, authResponse{
		Name:  user.Name,
		Phone: user.PhoneNumber,
		Role:  user.Role,
		Route: auth.LandingRoute(user.Role),
	})
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	err := s.Auth.Register(c.Request().Context(), auth.RegisterForm{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		SecretCode:  req.SecretCode,
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "registered, log in through the bot's magic link"})
}

func (s *Server) handleLogout(c echo.Context) error {
	if err := s.Sessions.Logout(c.Request().Context()); err != nil {
		s.Logger.Error("logout error", logger.F("error", err))
	}
	return c.NoContent(http.StatusNoContent)
}

// writeError maps client, validation and backend errors to responses.
func (s *Server) writeError(c echo.Context, err error) error {
	var apiErr *api.APIError
	var vErr *auth.ValidationError

	switch {
	case errors.As(err, &vErr):
		return errorJSON(c, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, api.ErrInvalidID), errors.Is(err, api.ErrMissingPhone):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &apiErr):
		status := http.StatusBadGateway
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			status = apiErr.Status
		}
		return errorJSON(c, status, apiErr.Message)
	default:
		s.Logger.Error("request failed", logger.F("error", err))
		return errorJSON(c, http.StatusInternalServerError, api.FallbackMessage)
	}
}
