package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/society-waste-service/internal/api/dto"
	"github.com/spec-kit/society-waste-service/internal/auth"
	"github.com/spec-kit/society-waste-service/internal/service"
	"github.com/spec-kit/society-waste-service/internal/storage"
	apperrors "github.com/spec-kit/society-waste-service/pkg/util"
)

// IssuesHandler manages issue reporting and triage endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// Submit handles POST /accounts/:ownerId/issues (multipart: description, location, address, image?).
func (h *IssuesHandler) Submit(c *fiber.Ctx) error {
	input := service.SubmitIssueInput{
		Description: c.FormValue("description"),
		Location:    c.FormValue("location"),
		Address:     c.FormValue("address"),
	}

	fileHeader, err := uploadedImage(c)
	if err != nil {
		return err
	}
	if fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return apperrors.NewValidationError("unreadable image upload", nil)
		}
		defer file.Close()
		input.Image = &storage.Upload{
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
			Body:        file,
		}
	}

	issue, err := h.service.SubmitIssue(c.UserContext(), c.Params("ownerId"), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewIssueResponse(issue))
}

// ListForOwner handles GET /accounts/:ownerId/issues.
func (h *IssuesHandler) ListForOwner(c *fiber.Ctx) error {
	issues, err := h.service.ListIssuesForOwner(c.UserContext(), c.Params("ownerId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIssueList(issues))
}

// ListAll handles GET /issues.
func (h *IssuesHandler) ListAll(c *fiber.Ctx) error {
	issues, err := h.service.ListAllIssues(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAdminIssueList(issues))
}

// UpdateStatus handles PUT /issues/:issueId.
func (h *IssuesHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || !principal.IsAdmin() {
		return apperrors.NewForbidden("administrator required")
	}
	var req dto.UpdateIssueStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issue, err := h.service.SetStatus(c.UserContext(), c.Params("issueId"), req.Status, principal.SubjectID())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIssueResponse(issue))
}

// History handles GET /issues/:issueId/history.
func (h *IssuesHandler) History(c *fiber.Ctx) error {
	changes, err := h.service.StatusHistory(c.UserContext(), c.Params("issueId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewStatusHistory(changes))
}

// uploadedImage returns the optional "image" part of a multipart submission.
func uploadedImage(c *fiber.Ctx) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.NewValidationError("invalid multipart payload", nil)
	}
	if files := form.File["image"]; len(files) > 0 {
		return files[0], nil
	}
	return nil, nil
}
