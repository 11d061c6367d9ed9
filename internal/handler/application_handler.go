package handler

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"visa-processing/internal/domain"
	"visa-processing/internal/middleware"
	"visa-processing/internal/pkg/validate"
	"visa-processing/internal/service/application"
	"visa-processing/internal/service/export"
)

type ApplicationHandler struct {
	appService    application.Service
	exportService export.Service
}

func NewApplicationHandler(appService application.Service, exportService export.Service) *ApplicationHandler {
	return &ApplicationHandler{
		appService:    appService,
		exportService: exportService,
	}
}

func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateApplicationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	app, err := h.appService.Create(c.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, app)
}

func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	result, err := h.appService.ListByUser(c.Context(), middleware.GetCurrentUserID(c), params)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, result)
}

func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	app, err := h.appService.GetByID(c.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, app)
}

func (h *ApplicationHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.UpdateApplicationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	app, err := h.appService.Update(c.Context(), middleware.CurrentActor(c), id, input)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, app)
}

func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	app, err := h.appService.Submit(c.Context(), middleware.CurrentActor(c), id, requestMeta(c))
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, app)
}

func (h *ApplicationHandler) Cancel(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	app, err := h.appService.Cancel(c.Context(), middleware.CurrentActor(c), id, requestMeta(c))
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, app)
}

func (h *ApplicationHandler) ListAll(c *fiber.Ctx) error {
	filter, err := parseApplicationFilter(c)
	if err != nil {
		return err
	}
	params := getPaginationParams(c)

	result, err := h.appService.ListAll(c.Context(), filter, params)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, result)
}

func (h *ApplicationHandler) SetStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.SetStatusInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	app, err := h.appService.SetStatus(c.Context(), middleware.CurrentActor(c), id, input, requestMeta(c))
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, app)
}

func (h *ApplicationHandler) AssignOfficer(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.AssignOfficerInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	app, err := h.appService.AssignOfficer(c.Context(), middleware.CurrentActor(c), id, input, requestMeta(c))
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, app)
}

func (h *ApplicationHandler) SendCostEstimation(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.CostEstimationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	app, err := h.appService.SendCostEstimation(c.Context(), middleware.CurrentActor(c), id, input, requestMeta(c))
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, app)
}

func (h *ApplicationHandler) Export(c *fiber.Ctx) error {
	from, err := parseDateQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := h.exportService.ApplicationsCSV(c.Context(), middleware.CurrentActor(c), c.Query("status"), from, to, &buf); err != nil {
		return err
	}

	filename := fmt.Sprintf("applications-%s.csv", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}

func parseApplicationFilter(c *fiber.Ctx) (domain.ApplicationFilter, error) {
	var filter domain.ApplicationFilter

	if raw := c.Query("status"); raw != "" {
		status, ok := domain.NormalizeStatus(raw)
		if !ok {
			return filter, middleware.BadRequest("Invalid status filter: " + raw)
		}
		filter.Status = &status
	}
	if raw := c.Query("visa_type"); raw != "" {
		visaType := domain.VisaType(raw)
		if !visaType.IsValid() {
			return filter, middleware.BadRequest("Invalid visa_type filter: " + raw)
		}
		filter.VisaType = &visaType
	}
	filter.Search = c.Query("search")

	from, err := parseDateQuery(c, "from")
	if err != nil {
		return filter, err
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		return filter, err
	}
	filter.From = from
	filter.To = to

	return filter, nil
}

func parseDateQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, middleware.BadRequest("Invalid " + name + " date, expected YYYY-MM-DD")
	}
	return &t, nil
}
