package handlers

import (
	"log"
	"strings"

	"access_service/internal/models"
	"access_service/internal/service"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	// Counter for sidebar resolutions
	sidebarResolves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_sidebar_resolves_total",
			Help: "Total number of sidebar access resolutions",
		},
		[]string{"result"}, // result: allowed/empty/failure
	)

	// Counter for access matrix saves
	matrixSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_matrix_saves_total",
			Help: "Total number of access matrix save attempts",
		},
		[]string{"mode", "status"}, // mode: create/update/abac, status: saved/noop/failure
	)

	// Histogram for save duration
	saveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "access_matrix_save_duration_seconds",
			Help:    "Time spent persisting access matrix edits",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
)

type AccessHandler struct {
	resolverService *service.AccessResolverService
	writerService   *service.AccessWriterService
	jwtService      *service.JWTService
}

func NewAccessHandler(resolverService *service.AccessResolverService, writerService *service.AccessWriterService, jwtService *service.JWTService) *AccessHandler {
	return &AccessHandler{
		resolverService: resolverService,
		writerService:   writerService,
		jwtService:      jwtService,
	}
}

func (h *AccessHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	accessGroup := app.Group("/protected/access")

	accessGroup.Get("/sidebar", h.GetSidebarAccess)
	accessGroup.Get("/matrix/catalog", h.GetAccessMatrixCatalog)
	accessGroup.Get("/matrix/roles/:roleId/permissions", h.GetPermissionsForRole)
	accessGroup.Post("/matrix", h.SaveAccessMatrix)
}

// identityFromRequest builds the explicit identity every core operation
// receives. Gateway headers are the verified-session fast path; a bearer
// token from the auth provider is accepted as the fallback.
func (h *AccessHandler) identityFromRequest(c fiber.Ctx) (models.Identity, error) {
	userHex := c.Get("X-User-ID")
	roleHex := c.Get("X-Role-ID")
	orgHex := c.Get("X-Organization-ID")

	if userHex == "" || roleHex == "" || orgHex == "" {
		auth := c.Get("Authorization")
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			claims, err := h.jwtService.ParseToken(token)
			if err != nil {
				return models.Identity{}, err
			}
			if userHex == "" {
				userHex = claims.UserID
			}
			if roleHex == "" {
				roleHex = claims.RoleID
			}
			if orgHex == "" {
				orgHex = claims.OrganizationID
			}
		}
	}

	var identity models.Identity
	var err error
	if identity.UserID, err = bson.ObjectIDFromHex(userHex); err != nil {
		return models.Identity{}, err
	}
	if identity.RoleID, err = bson.ObjectIDFromHex(roleHex); err != nil {
		return models.Identity{}, err
	}
	if identity.OrganizationID, err = bson.ObjectIDFromHex(orgHex); err != nil {
		return models.Identity{}, err
	}
	return identity, nil
}

func (h *AccessHandler) GetSidebarAccess(c fiber.Ctx) error {
	identity, err := h.identityFromRequest(c)
	if err != nil {
		sidebarResolves.WithLabelValues("failure").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or missing identity",
		})
	}

	groups, err := h.resolverService.ResolveSidebarAccess(c.Context(), identity)
	if err != nil {
		sidebarResolves.WithLabelValues("failure").Inc()
		return respondError(c, err)
	}

	if len(groups) == 0 {
		sidebarResolves.WithLabelValues("empty").Inc()
	} else {
		sidebarResolves.WithLabelValues("allowed").Inc()
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"sidebars": groups,
		},
	})
}

func (h *AccessHandler) GetAccessMatrixCatalog(c fiber.Ctx) error {
	createdByHex := c.Get("X-User-ID")
	if createdByHex == "" {
		createdByHex = c.Query("createdBy")
	}

	createdBy, err := bson.ObjectIDFromHex(createdByHex)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID format",
		})
	}

	catalog, err := h.resolverService.GetAccessMatrixCatalog(c.Context(), createdBy)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": catalog,
	})
}

func (h *AccessHandler) GetPermissionsForRole(c fiber.Ctx) error {
	roleID, err := bson.ObjectIDFromHex(c.Params("roleId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role ID format",
		})
	}

	var userID bson.ObjectID
	if userHex := c.Query("userId"); userHex != "" {
		userID, err = bson.ObjectIDFromHex(userHex)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid user ID format",
			})
		}
	}

	var orgID bson.ObjectID
	if orgHex := c.Query("organizationId"); orgHex != "" {
		orgID, err = bson.ObjectIDFromHex(orgHex)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid organization ID format",
			})
		}
	}

	view, err := h.resolverService.ResolveRolePermissions(c.Context(), roleID, userID, orgID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": view,
	})
}

func (h *AccessHandler) SaveAccessMatrix(c fiber.Ctx) error {
	var request struct {
		Mode           string `json:"mode"`
		RoleID         string `json:"roleId"`
		UserID         string `json:"userId"`
		OrganizationID string `json:"organizationId"`
		Permissions    []struct {
			Module      string             `json:"module"`
			AccessLevel models.AccessLevel `json:"accessLevel"`
			Components  []string           `json:"components"`
		} `json:"permissions"`
	}

	if err := c.Bind().Body(&request); err != nil {
		matrixSaves.WithLabelValues("unknown", "failure").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	mode := strings.ToLower(strings.TrimSpace(request.Mode))
	switch mode {
	case "create", "update", "abac", "createorupdateabac":
	default:
		matrixSaves.WithLabelValues("unknown", "failure").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "mode must be one of create, update, createOrUpdateAbac",
		})
	}
	if mode == "createorupdateabac" {
		mode = "abac"
	}

	roleID, err := bson.ObjectIDFromHex(request.RoleID)
	if err != nil {
		matrixSaves.WithLabelValues(mode, "failure").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role ID format",
		})
	}
	orgID, err := bson.ObjectIDFromHex(request.OrganizationID)
	if err != nil {
		matrixSaves.WithLabelValues(mode, "failure").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid organization ID format",
		})
	}

	var userID bson.ObjectID
	if request.UserID != "" {
		userID, err = bson.ObjectIDFromHex(request.UserID)
		if err != nil {
			matrixSaves.WithLabelValues(mode, "failure").Inc()
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid user ID format",
			})
		}
	}

	permissions := make([]models.ModulePermission, 0, len(request.Permissions))
	for _, p := range request.Permissions {
		moduleID, err := bson.ObjectIDFromHex(p.Module)
		if err != nil {
			matrixSaves.WithLabelValues(mode, "failure").Inc()
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid module ID format: " + p.Module,
			})
		}
		entry := models.ModulePermission{
			Module:      moduleID,
			AccessLevel: p.AccessLevel,
			Components:  make([]bson.ObjectID, 0, len(p.Components)),
		}
		for _, componentHex := range p.Components {
			componentID, err := bson.ObjectIDFromHex(componentHex)
			if err != nil {
				matrixSaves.WithLabelValues(mode, "failure").Inc()
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid component ID format: " + componentHex,
				})
			}
			entry.Components = append(entry.Components, componentID)
		}
		permissions = append(permissions, entry)
	}

	timer := prometheus.NewTimer(saveDuration.WithLabelValues(mode))
	defer timer.ObserveDuration()

	var result *service.SaveResult
	switch mode {
	case "create":
		result, err = h.writerService.CreateOrUpdateRbac(c.Context(), roleID, orgID, permissions)
	case "update":
		result, err = h.writerService.UpdateRbac(c.Context(), roleID, orgID, permissions)
	case "abac":
		result, err = h.writerService.CreateOrUpdateAbac(c.Context(), roleID, userID, orgID, permissions)
	}
	if err != nil {
		matrixSaves.WithLabelValues(mode, "failure").Inc()
		log.Printf("Access matrix save failed (mode=%s, role=%s): %v", mode, roleID.Hex(), err)
		return respondError(c, err)
	}

	if result.Noop {
		matrixSaves.WithLabelValues(mode, "noop").Inc()
		return c.JSON(fiber.Map{
			"message": "no changes",
		})
	}

	matrixSaves.WithLabelValues(mode, "saved").Inc()
	status := fiber.StatusOK
	message := "Access matrix updated successfully"
	if result.Created {
		status = fiber.StatusCreated
		message = "Access matrix created successfully"
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"data":    result.Record,
	})
}
