package handlers

import (
	"access_service/internal/service"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type OrganizationHandler struct {
	organizationService *service.OrganizationService
}

func NewOrganizationHandler(organizationService *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		organizationService: organizationService,
	}
}

func (h *OrganizationHandler) RegisterRoutes(app *fiber.App) {
	orgGroup := app.Group("/protected/access/organizations")

	orgGroup.Post("/", h.CreateOrganization)
	orgGroup.Get("/", h.GetOrganizations)
	orgGroup.Get("/:id", h.GetOrganization)
	orgGroup.Put("/:id", h.UpdateOrganization)
	orgGroup.Delete("/:id", h.DeleteOrganization)
}

func (h *OrganizationHandler) CreateOrganization(c fiber.Ctx) error {
	var request struct {
		OrganizationID string `json:"organizationId"`
		Theme          string `json:"theme"`
	}

	if err := c.Bind().Body(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	org, err := h.organizationService.CreateOrganization(c.Context(), request.OrganizationID, request.Theme)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Organization created successfully",
		"data":    org,
	})
}

func (h *OrganizationHandler) GetOrganizations(c fiber.Ctx) error {
	orgs, err := h.organizationService.GetAllOrganizations(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"organizations": orgs,
		},
	})
}

func (h *OrganizationHandler) GetOrganization(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid organization id",
		})
	}

	org, err := h.organizationService.GetOrganizationByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": org,
	})
}

func (h *OrganizationHandler) UpdateOrganization(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid organization id",
		})
	}

	var request struct {
		Theme string `json:"theme"`
	}

	if err := c.Bind().Body(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	org, err := h.organizationService.UpdateTheme(c.Context(), id, request.Theme)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Organization updated successfully",
		"data":    org,
	})
}

func (h *OrganizationHandler) DeleteOrganization(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid organization id",
		})
	}

	if err := h.organizationService.DeleteOrganization(c.Context(), id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Organization deleted successfully",
	})
}
