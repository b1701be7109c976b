package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/outcomed/internal/intent"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: s.version,
		Rules:   len(s.svc.Rules()),
	})
}

// handleOutput analyzes command output. Empty output is valid and yields no
// signals.
func (s *Server) handleOutput(c echo.Context) error {
	var req OutputRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid output request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	report := s.svc.AnalyzeOutput(c.Request().Context(), req.Output, req.Command)
	return c.JSON(http.StatusOK, report)
}

// handleIntent classifies one phrase. An empty phrase is neutral.
func (s *Server) handleIntent(c echo.Context) error {
	var req IntentRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid intent request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.JSON(http.StatusOK, s.svc.DetectIntent(c.Request().Context(), req.Phrase))
}

func (s *Server) handleConversation(c echo.Context) error {
	var req ConversationRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid conversation request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	turns := req.Turns
	if req.AutoIndex {
		turns = intent.Indexed(turns)
	}

	report, err := s.svc.AnalyzeConversation(c.Request().Context(), turns)
	if err != nil {
		if errors.Is(err, intent.ErrInvalidRole) || errors.Is(err, intent.ErrInvalidIndex) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleRules(c echo.Context) error {
	rules := s.svc.Rules()
	return c.JSON(http.StatusOK, RulesResponse{Count: len(rules), Rules: rules})
}
