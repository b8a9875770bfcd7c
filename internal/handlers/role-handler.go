package handlers

import (
	"access_service/internal/service"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type RoleHandler struct {
	roleService *service.RoleService
}

func NewRoleHandler(roleService *service.RoleService) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
	}
}

func (h *RoleHandler) RegisterRoutes(app *fiber.App) {
	roleGroup := app.Group("/protected/access/roles")

	roleGroup.Post("/", h.CreateRole)
	roleGroup.Get("/", h.GetRoles)
	roleGroup.Get("/:id", h.GetRole)
	roleGroup.Put("/:id", h.RenameRole)
	roleGroup.Delete("/:id", h.DeleteRole)
	roleGroup.Post("/:id/restore", h.RestoreRole)
}

func (h *RoleHandler) CreateRole(c fiber.Ctx) error {
	var request struct {
		RoleName string `json:"roleName"`
	}

	if err := c.Bind().Body(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	createdBy, err := bson.ObjectIDFromHex(c.Get("X-User-ID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or missing X-User-ID header",
		})
	}

	role, err := h.roleService.CreateRole(c.Context(), request.RoleName, createdBy)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Role created successfully",
		"data":    role,
	})
}

func (h *RoleHandler) GetRoles(c fiber.Ctx) error {
	createdBy, err := bson.ObjectIDFromHex(c.Get("X-User-ID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or missing X-User-ID header",
		})
	}

	roles, err := h.roleService.GetRolesByCreator(c.Context(), createdBy)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"roles": roles,
		},
	})
}

func (h *RoleHandler) GetRole(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role id",
		})
	}

	role, err := h.roleService.GetRoleByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": role,
	})
}

func (h *RoleHandler) RenameRole(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role id",
		})
	}

	var request struct {
		RoleName string `json:"roleName"`
	}

	if err := c.Bind().Body(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	role, err := h.roleService.RenameRole(c.Context(), id, request.RoleName)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Role updated successfully",
		"data":    role,
	})
}

func (h *RoleHandler) DeleteRole(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role id",
		})
	}

	if err := h.roleService.DeleteRole(c.Context(), id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Role deleted successfully",
	})
}

func (h *RoleHandler) RestoreRole(c fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role id",
		})
	}

	role, err := h.roleService.RestoreRole(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Role restored successfully",
		"data":    role,
	})
}
