package handlers

import (
	"errors"
	"fmt"

	"labchem/internal/forms"
	"labchem/internal/middleware"
	"labchem/internal/models"
	"labchem/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ReagentHandler handles HTTP requests for reagents.
type ReagentHandler struct {
	service *services.ReagentService
	l       *zap.Logger
}

// NewReagentHandler creates a new ReagentHandler.
func NewReagentHandler(service *services.ReagentService, l *zap.Logger) *ReagentHandler {
	return &ReagentHandler{
		service: service,
		l:       l,
	}
}

// RegisterRoutes registers the reagent routes. The list is public, every
// mutation goes through guard.
func (h *ReagentHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	router.Get("/database", h.HandleList)
	router.Get("/new_reagent", guard, h.HandleNewPage)
	router.Post("/new_reagent", guard, h.HandleCreate)
	router.Get("/edit/:id", guard, h.HandleEditPage)
	router.Post("/edit/:id", guard, h.HandleUpdate)
	router.Get("/delete/:id", guard, h.HandleDelete)
}

// HandleList renders every reagent.
func (h *ReagentHandler) HandleList(c *fiber.Ctx) error {
	reagents, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, fiber.StatusOK, "database", fiber.Map{"Reagents": reagents})
}

// HandleNewPage shows an empty reagent form.
func (h *ReagentHandler) HandleNewPage(c *fiber.Ctx) error {
	return h.renderForm(c, fiber.StatusOK, 0, forms.ReagentForm{}, nil)
}

// HandleCreate stores a new reagent.
func (h *ReagentHandler) HandleCreate(c *fiber.Ctx) error {
	var form forms.ReagentForm
	if err := c.BodyParser(&form); err != nil {
		h.l.Debug("failed to parse reagent form", zap.Error(err))
		return fiber.ErrBadRequest
	}

	reagent, err := h.service.Create(c.UserContext(), &form)
	if err != nil {
		return h.fail(c, 0, form, err)
	}

	h.l.Info("reagent created", zap.Uint("id", reagent.ID), zap.String("name", reagent.Name))
	middleware.Session(c).AddFlash("success", fmt.Sprintf("Reagent %q added.", reagent.Name))
	return redirect(c, "/database")
}

// HandleEditPage shows the form prefilled with a stored reagent.
func (h *ReagentHandler) HandleEditPage(c *fiber.Ctx) error {
	id, err := reagentID(c)
	if err != nil {
		return err
	}

	reagent, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, id, forms.ReagentForm{}, err)
	}
	return h.renderForm(c, fiber.StatusOK, id, forms.ReagentFormFrom(reagent), nil)
}

// HandleUpdate overwrites a stored reagent.
func (h *ReagentHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := reagentID(c)
	if err != nil {
		return err
	}

	var form forms.ReagentForm
	if err := c.BodyParser(&form); err != nil {
		h.l.Debug("failed to parse reagent form", zap.Error(err))
		return fiber.ErrBadRequest
	}

	reagent, err := h.service.Update(c.UserContext(), id, &form)
	if err != nil {
		return h.fail(c, id, form, err)
	}

	h.l.Info("reagent updated", zap.Uint("id", reagent.ID))
	middleware.Session(c).AddFlash("success", fmt.Sprintf("Reagent %q updated.", reagent.Name))
	return redirect(c, "/database")
}

// HandleDelete removes a reagent and confirms it by name on the next page.
func (h *ReagentHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := reagentID(c)
	if err != nil {
		return err
	}

	reagent, err := h.service.Delete(c.UserContext(), id)
	if err != nil {
		return h.fail(c, id, forms.ReagentForm{}, err)
	}

	h.l.Info("reagent deleted", zap.Uint("id", reagent.ID), zap.String("name", reagent.Name))
	middleware.Session(c).AddFlash("success", fmt.Sprintf("Reagent %q deleted.", reagent.Name))
	return redirect(c, "/database")
}

// fail maps service errors: unknown IDs become 404, invalid forms are shown again.
func (h *ReagentHandler) fail(c *fiber.Ctx, id uint, form forms.ReagentForm, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Reagent with ID %d not found", id))
	case errors.As(err, &verr):
		return h.renderForm(c, fiber.StatusUnprocessableEntity, id, form, verr.Fields)
	}
	return err
}

func (h *ReagentHandler) renderForm(c *fiber.Ctx, status int, id uint, form forms.ReagentForm, errs forms.FieldErrors) error {
	action, title := "/new_reagent", "New reagent"
	if id != 0 {
		action, title = fmt.Sprintf("/edit/%d", id), "Edit reagent"
	}
	return render(c, status, "reagent_form", fiber.Map{
		"Title":     title,
		"Form":      form,
		"Errors":    errs,
		"Units":     models.Units,
		"ReagentID": id,
		"Action":    action,
	})
}

// reagentID reads the :id parameter; anything that is not a positive integer cannot exist.
func reagentID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Reagent %q not found", c.Params("id")))
	}
	return uint(id), nil
}
