package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/society-waste-service/internal/api/dto"
	"github.com/spec-kit/society-waste-service/internal/auth"
	"github.com/spec-kit/society-waste-service/internal/service"
	apperrors "github.com/spec-kit/society-waste-service/pkg/util"
)

// SessionHandler serves the unified login and the session lifecycle.
type SessionHandler struct {
	auth *service.AuthService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(authService *service.AuthService) *SessionHandler {
	return &SessionHandler{auth: authService}
}

// Login handles POST /login for either kind of account.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}
	result, err := h.auth.LoginAny(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(loginResponse(result))
}

// Logout handles POST /logout.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), principal.Session.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Current handles GET /session.
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(dto.SessionResponse{
		SessionID:   principal.Session.ID,
		SubjectType: principal.Session.SubjectType,
		IsAdmin:     principal.IsAdmin(),
		Account:     dto.NewAccountResponse(principal.Account),
		Admin:       dto.NewAdminResponse(principal.Admin),
		CreatedAt:   principal.Session.CreatedAt,
	})
}

// Route handles GET /session/route?view=, telling the client which view it may show.
func (h *SessionHandler) Route(c *fiber.Ctx) error {
	requested := auth.View(c.Query("view", string(auth.ViewHome)))
	principal, loggedIn := auth.PrincipalFromContext(c)
	view, redirected := auth.ResolveView(loggedIn, loggedIn && principal.IsAdmin(), requested)
	return c.JSON(dto.RouteResponse{View: string(view), Redirected: redirected})
}
