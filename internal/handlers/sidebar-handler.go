package handlers

import (
	"access_service/internal/models"
	"access_service/internal/service"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type SidebarHandler struct {
	sidebarService *service.SidebarService
}

func NewSidebarHandler(sidebarService *service.SidebarService) *SidebarHandler {
	return &SidebarHandler{
		sidebarService: sidebarService,
	}
}

func (h *SidebarHandler) RegisterRoutes(app *fiber.App) {
	sidebarGroup := app.Group("/protected/access/sidebar-modules")

	sidebarGroup.Post("/", h.CreateModule)
	sidebarGroup.Get("/", h.GetModules)
	sidebarGroup.Get("/:id", h.GetModule)
	sidebarGroup.Put("/:id", h.UpdateModule)
	sidebarGroup.Delete("/:id", h.DeleteModule)
}

func (h *SidebarHandler) CreateModule(c fiber.Ctx) error {
	var request struct {
		SidebarName string                `json:"sidebarName"`
		Name        string                `json:"name"`
		Href        string                `json:"href"`
		Icon        string                `json:"icon"`
		Order       int                   `json:"order"`
		Children    []models.SidebarChild `json:"children"`
	}

	if err := c.Bind().Body(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	module, err := h.sidebarService.CreateModule(c.Context(), &models.SidebarModule{
		SidebarName: request.SidebarName,
		Name:        request.Name,
		Href:        request.Href,
		Icon:        request.Icon,
		Order:       request.Order,
		Children:    request.Children,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Sidebar module created successfully",
		"data":    module,
	})
}

func (h *SidebarHandler) GetModules(c fiber.Ctx) error {
	modules, err := h.sidebarService.GetAllModules(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"modules": modules,
		},
	})
}

func (h *SidebarHandler) GetModule(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid module id",
		})
	}

	module, err := h.sidebarService.GetModuleByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": module,
	})
}

func (h *SidebarHandler) UpdateModule(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid module id",
		})
	}

	var request struct {
		SidebarName string                `json:"sidebarName"`
		Name        string                `json:"name"`
		Href        string                `json:"href"`
		Icon        string                `json:"icon"`
		Order       int                   `json:"order"`
		Children    []models.SidebarChild `json:"children"`
	}

	if err := c.Bind().Body(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	module, err := h.sidebarService.UpdateModule(c.Context(), id, &models.SidebarModule{
		SidebarName: request.SidebarName,
		Name:        request.Name,
		Href:        request.Href,
		Icon:        request.Icon,
		Order:       request.Order,
		Children:    request.Children,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Sidebar module updated successfully",
		"data":    module,
	})
}

func (h *SidebarHandler) DeleteModule(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid module id",
		})
	}

	if err := h.sidebarService.DeleteModule(c.Context(), id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Sidebar module deleted successfully",
	})
}
