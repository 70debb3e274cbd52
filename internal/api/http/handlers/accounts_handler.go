package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/society-waste-service/internal/api/dto"
	"github.com/spec-kit/society-waste-service/internal/service"
	apperrors "github.com/spec-kit/society-waste-service/pkg/util"
)

// AdminSignupKeyHeader carries the key that unlocks admin signup when one is configured.
const AdminSignupKeyHeader = "X-Admin-Signup-Key"

// AccountsHandler exposes signup and login for societies and administrators.
type AccountsHandler struct {
	auth *service.AuthService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(authService *service.AuthService) *AccountsHandler {
	return &AccountsHandler{auth: authService}
}

// SignupAccount handles POST /accounts/signup.
func (h *AccountsHandler) SignupAccount(c *fiber.Ctx) error {
	var req dto.AccountSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	account, err := h.auth.SignupAccount(c.UserContext(), service.SignupAccountInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		SocietyName:   req.SocietyName,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		ContactNumber: req.ContactNumber,
		TotalFamilies: int(req.TotalFamilies),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.SignupResponse{ID: account.ID, Message: "User created"})
}

// LoginAccount handles POST /accounts/login.
func (h *AccountsHandler) LoginAccount(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}
	result, err := h.auth.LoginAccount(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(loginResponse(result))
}

// SignupAdmin handles POST /admins/signup.
func (h *AccountsHandler) SignupAdmin(c *fiber.Ctx) error {
	var req dto.AdminSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	admin, err := h.auth.SignupAdmin(c.UserContext(), service.SignupAdminInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, c.Get(AdminSignupKeyHeader))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.SignupResponse{ID: admin.ID, Message: "Admin created"})
}

// LoginAdmin handles POST /admins/login.
func (h *AccountsHandler) LoginAdmin(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}
	result, err := h.auth.LoginAdmin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(loginResponse(result))
}

func parseLogin(c *fiber.Ctx) (dto.LoginRequest, error) {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return req, apperrors.NewValidationError("email and password required", nil)
	}
	return req, nil
}

func loginResponse(result *service.LoginResult) dto.LoginResponse {
	resp := dto.LoginResponse{
		Account: dto.NewAccountResponse(result.Account),
		Admin:   dto.NewAdminResponse(result.Admin),
		IsAdmin: result.IsAdmin(),
		Token:   result.Token,
	}
	if !result.ExpiresAt.IsZero() {
		exp := result.ExpiresAt
		resp.ExpiresAt = &exp
	}
	return resp
}
