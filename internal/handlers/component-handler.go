package handlers

import (
	"access_service/internal/service"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type ComponentHandler struct {
	componentService *service.ComponentService
}

func NewComponentHandler(componentService *service.ComponentService) *ComponentHandler {
	return &ComponentHandler{
		componentService: componentService,
	}
}

func (h *ComponentHandler) RegisterRoutes(app *fiber.App) {
	componentGroup := app.Group("/protected/access/components")

	componentGroup.Post("/", h.CreateComponent)
	componentGroup.Get("/", h.GetComponents)
	componentGroup.Get("/:id", h.GetComponent)
	componentGroup.Put("/:id", h.UpdateComponent)
	componentGroup.Put("/:id/status", h.SetComponentStatus)
	componentGroup.Delete("/:id", h.DeleteComponent)
	componentGroup.Post("/:id/restore", h.RestoreComponent)
}

// actorFromHeader reads the gateway-injected user id used for audit fields.
func actorFromHeader(c fiber.Ctx) (bson.ObjectID, error) {
	return bson.ObjectIDFromHex(c.Get("X-User-ID"))
}

// optionalObjectID parses a hex id that may be absent. An empty value is
// the zero ObjectID, not an error; a component without a usage location is
// a valid unanchored component.
func optionalObjectID(hex string) (bson.ObjectID, error) {
	if hex == "" {
		return bson.ObjectID{}, nil
	}
	return bson.ObjectIDFromHex(hex)
}

func (h *ComponentHandler) CreateComponent(c fiber.Ctx) error {
	var request struct {
		ComponentName string `json:"componentName"`
		Description   string `json:"description"`
		UsageLocation string `json:"usageLocation"`
	}

	if err := c.Bind().Body(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	createdBy, err := actorFromHeader(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or missing X-User-ID header",
		})
	}

	usageLocation, err := optionalObjectID(request.UsageLocation)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid usageLocation",
		})
	}

	component, err := h.componentService.CreateComponent(c.Context(), request.ComponentName, request.Description, usageLocation, createdBy)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Component created successfully",
		"data":    component,
	})
}

func (h *ComponentHandler) GetComponents(c fiber.Ctx) error {
	if moduleHex := c.Query("usageLocation"); moduleHex != "" {
		moduleID, err := bson.ObjectIDFromHex(moduleHex)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid usageLocation",
			})
		}

		components, err := h.componentService.GetComponentsByModule(c.Context(), moduleID)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{
			"data": fiber.Map{
				"components": components,
			},
		})
	}

	components, err := h.componentService.GetAllComponents(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"components": components,
		},
	})
}

func (h *ComponentHandler) GetComponent(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid component id",
		})
	}

	component, err := h.componentService.GetComponentByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": component,
	})
}

func (h *ComponentHandler) UpdateComponent(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid component id",
		})
	}

	var request struct {
		Description   string `json:"description"`
		UsageLocation string `json:"usageLocation"`
	}

	if err := c.Bind().Body(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updatedBy, err := actorFromHeader(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or missing X-User-ID header",
		})
	}

	usageLocation, err := optionalObjectID(request.UsageLocation)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid usageLocation",
		})
	}

	component, err := h.componentService.UpdateComponent(c.Context(), id, request.Description, usageLocation, updatedBy)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Component updated successfully",
		"data":    component,
	})
}

func (h *ComponentHandler) SetComponentStatus(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid component id",
		})
	}

	var request struct {
		Status string `json:"status"`
	}

	if err := c.Bind().Body(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updatedBy, err := actorFromHeader(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or missing X-User-ID header",
		})
	}

	component, err := h.componentService.SetStatus(c.Context(), id, request.Status, updatedBy)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Component status updated successfully",
		"data":    component,
	})
}

func (h *ComponentHandler) DeleteComponent(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid component id",
		})
	}

	deletedBy, err := actorFromHeader(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or missing X-User-ID header",
		})
	}

	if err := h.componentService.DeleteComponent(c.Context(), id, deletedBy); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Component deleted successfully",
	})
}

func (h *ComponentHandler) RestoreComponent(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid component id",
		})
	}

	restoredBy, err := actorFromHeader(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or missing X-User-ID header",
		})
	}

	component, err := h.componentService.RestoreComponent(c.Context(), id, restoredBy)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Component restored successfully",
		"data":    component,
	})
}
