package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/society-waste-service/internal/api/dto"
	"github.com/spec-kit/society-waste-service/internal/service"
)

// SocietiesHandler serves the public society directory.
type SocietiesHandler struct {
	service *service.SocietyService
}

// NewSocietiesHandler constructs handler.
func NewSocietiesHandler(societyService *service.SocietyService) *SocietiesHandler {
	return &SocietiesHandler{service: societyService}
}

// List handles GET /societies.
func (h *SocietiesHandler) List(c *fiber.Ctx) error {
	accounts, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSocietyList(accounts))
}

// Get handles GET /societies/:id.
func (h *SocietiesHandler) Get(c *fiber.Ctx) error {
	account, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAccountResponse(account))
}

// Schedule handles GET /societies/:id/schedule.
func (h *SocietiesHandler) Schedule(c *fiber.Ctx) error {
	slots, err := h.service.Schedule(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSchedule(slots))
}

// Map handles GET /societies/map.
func (h *SocietiesHandler) Map(c *fiber.Ctx) error {
	pins, err := h.service.MapPins(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewMapPins(pins))
}
