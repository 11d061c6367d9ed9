package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"visa-processing/internal/domain"
	"visa-processing/internal/middleware"
	"visa-processing/internal/pkg/validate"
	"visa-processing/internal/service/document"
)

type DocumentHandler struct {
	documentService document.Service
}

func NewDocumentHandler(documentService document.Service) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return middleware.BadRequest("File is required")
	}

	input := domain.UploadDocumentInput{
		Type: c.FormValue("type"),
	}
	if raw := c.FormValue("application_id"); raw != "" {
		appID, err := uuid.Parse(raw)
		if err != nil {
			return middleware.BadRequest("Invalid application_id parameter")
		}
		input.ApplicationID = &appID
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	src, err := file.Open()
	if err != nil {
		return middleware.BadRequest("Unable to read uploaded file")
	}
	defer src.Close()

	doc, err := h.documentService.Upload(c.Context(), middleware.CurrentActor(c), input, file.Filename, file.Size, mimeType, src)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, doc)
}

func (h *DocumentHandler) ListMine(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	result, err := h.documentService.ListByUser(c.Context(), middleware.GetCurrentUserID(c), params)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, result)
}

func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.documentService.GetByID(c.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, doc)
}

func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.documentService.Delete(c.Context(), middleware.CurrentActor(c), id); err != nil {
		return err
	}

	return respondMessage(c, fiber.StatusOK, "Document deleted")
}

func (h *DocumentHandler) ListByApplication(c *fiber.Ctx) error {
	appID, err := uuid.Parse(c.Query("application_id"))
	if err != nil {
		return middleware.BadRequest("Invalid or missing application_id parameter")
	}

	docs, err := h.documentService.ListByApplication(c.Context(), middleware.CurrentActor(c), appID)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, docs)
}

func (h *DocumentHandler) Review(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.ReviewDocumentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	doc, err := h.documentService.Review(c.Context(), middleware.CurrentActor(c), id, input)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, doc)
}
