package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/supplier_fte_dashboard/internal/domain"
	"github.com/locvowork/supplier_fte_dashboard/internal/logger"
	"github.com/locvowork/supplier_fte_dashboard/internal/service"
	"github.com/locvowork/supplier_fte_dashboard/internal/service/serviceutils"
)

const (
	SessionCookieName = "fte_session"
	sessionIDKey      = "session_id"
)

// SessionMiddleware attaches a dashboard session to every request, issuing
// a new cookie when the client has none or its session expired.
func SessionMiddleware(svc *service.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			var id string
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				id = cookie.Value
			}

			sess, err := svc.Resolve(ctx, id)
			if err != nil {
				return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to resolve session", err)
			}
			if sess.ID != id {
				c.SetCookie(&http.Cookie{
					Name:     SessionCookieName,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(sessionIDKey, sess.ID)
			c.SetRequest(c.Request().WithContext(logger.WithSession(ctx, sess.ID)))
			return next(c)
		}
	}
}

func sessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}

type SessionHandler struct {
	svc *service.SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// WorkflowsHandler handles GET /api/workflows
func (h *SessionHandler) WorkflowsHandler(c echo.Context) error {
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Workflows retrieved successfully", service.Workflows())
}

// EndHandler handles DELETE /api/session and expires the session cookie
func (h *SessionHandler) EndHandler(c echo.Context) error {
	if err := h.svc.End(c.Request().Context(), sessionID(c)); err != nil && !errors.Is(err, domain.ErrNoSession) {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to end session", err)
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Session ended", nil)
}
