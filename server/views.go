package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/existflow/kawai/internal/api"
	"github.com/existflow/kawai/internal/model"
)

func (s *Server) handleSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, s.API.Summary(c.Request().Context()))
}

func (s *Server) handleListNotes(c echo.Context) error {
	return c.JSON(http.StatusOK, s.API.ListNotes(c.Request().Context(), c.QueryParam("search")))
}

func (s *Server) handleCreateNote(c echo.Context) error {
	var req api.NewNote
	if err := c.Bind(&req); err != nil || req.Content == "" {
		return errorJSON(c, http.StatusBadRequest, "content required")
	}
	note, err := s.API.CreateNote(c.Request().Context(), req)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, note)
}

func (s *Server) handleNoteDetail(c echo.Context) error {
	note, err := s.API.NoteDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, note)
}

func (s *Server) handleUpdateNote(c echo.Context) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if err := s.API.UpdateNote(c.Request().Context(), c.Param("id"), req.Content); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteNote(c echo.Context) error {
	if err := s.API.DeleteNote(c.Request().Context(), c.Param("id")); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListLinks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.API.ListLinks(c.Request().Context(), c.QueryParam("search")))
}

// handleDeleteLink deletes the note the link was derived from
func (s *Server) handleDeleteLink(c echo.Context) error {
	if err := s.API.DeleteLink(c.Request().Context(), c.Param("id")); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListReminders(c echo.Context) error {
	return c.JSON(http.StatusOK, s.API.ListReminders(c.Request().Context(), c.QueryParam("search")))
}

func (s *Server) handleUpdateReminder(c echo.Context) error {
	var req model.ReminderUpdate
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if err := s.API.UpdateReminder(c.Request().Context(), c.Param("id"), req); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteReminder(c echo.Context) error {
	if err := s.API.DeleteReminder(c.Request().Context(), c.Param("id")); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCalendar(c echo.Context) error {
	return c.JSON(http.StatusOK, api.Calendar(s.API.ListReminders(c.Request().Context(), "")))
}

func (s *Server) handleChatHistory(c echo.Context) error {
	user := c.Get(ctxUser).(model.User)
	return c.JSON(http.StatusOK, s.API.ChatHistory(c.Request().Context(), user.PhoneNumber))
}

func (s *Server) handleChatSend(c echo.Context) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil || req.Message == "" {
		return errorJSON(c, http.StatusBadRequest, "message required")
	}
	user := c.Get(ctxUser).(model.User)
	err := s.API.SendChat(c.Request().Context(), api.ChatSend{PhoneNumber: user.PhoneNumber, Message: req.Message})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type adminResponse struct {
	Stats model.AdminStats `json:"stats"`
	Users []model.User     `json:"users"`
}

func (s *Server) handleAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, adminResponse{
		Stats: s.API.AdminStats(ctx),
		Users: s.API.ListUsers(ctx),
	})
}

func (s *Server) handleBan(c echo.Context) error {
	var req struct {
		PhoneNumber string `json:"phone_number"`
		Action      string `json:"action"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	var err error
	switch req.Action {
	case "", "ban":
		err = s.API.BanUser(c.Request().Context(), req.PhoneNumber)
	case "unban":
		err = s.API.UnbanUser(c.Request().Context(), req.PhoneNumber)
	default:
		return errorJSON(c, http.StatusBadRequest, "action must be ban or unban")
	}
	if err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
