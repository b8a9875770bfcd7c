package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"access_service/internal/apperr"
	"access_service/internal/models"
	"access_service/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const sidebarCachePrefix = "sidebar-access:"

// AccessResolverService answers "what can this identity see" by locating
// the right AccessRecord and expanding it against the live catalogs. Every
// resolve re-reads the catalogs; no state is held between calls.
type AccessResolverService struct {
	accessRepo    *repository.AccessRepository
	roleRepo      *repository.RoleRepository
	sidebarRepo   *repository.SidebarRepository
	componentRepo *repository.ComponentRepository
	redisRepo     *repository.RedisRepo
	cacheTTL      time.Duration
}

func NewAccessResolverService(repos *repository.Repositories, cacheTTL time.Duration) *AccessResolverService {
	return &AccessResolverService{
		accessRepo:    repos.AccessRepository,
		roleRepo:      repos.RoleRepository,
		sidebarRepo:   repos.SidebarRepository,
		componentRepo: repos.ComponentRepository,
		redisRepo:     repos.RedisRepository,
		cacheTTL:      cacheTTL,
	}
}

// ResolveSidebarAccess returns the menu groups an identity may navigate.
// No matching record yields an empty result, never an error.
func (s *AccessResolverService) ResolveSidebarAccess(ctx context.Context, identity models.Identity) ([]models.SidebarGroup, error) {
	if identity.UserID.IsZero() {
		return nil, apperr.Validation("userId", "user id is required")
	}
	if identity.RoleID.IsZero() {
		return nil, apperr.Validation("roleId", "role id is required")
	}
	if identity.OrganizationID.IsZero() {
		return nil, apperr.Validation("organizationId", "organization id is required")
	}

	cacheKey := sidebarCacheKey(identity)
	var cached []models.SidebarGroup
	if err := s.redisRepo.GetStructCached(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	record, err := s.FindRecordForIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}

	groups := []models.SidebarGroup{}
	if record != nil {
		modules, err := s.sidebarRepo.FindAllActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("error loading sidebar catalog: %w", err)
		}
		groups = BuildSidebarGroups(record, modules)
	}

	if err := s.redisRepo.SaveStructCached(ctx, cacheKey, groups, s.cacheTTL); err != nil {
		log.Printf("Warning: failed to cache sidebar view for %s: %v", identity.UserID.Hex(), err)
	}
	return groups, nil
}

// FindRecordForIdentity walks the resolution fallback chain: a user-level
// override wins outright (organization ignored), then the role record for
// the identity's organization, then any role record at all. The last step
// papers over inconsistent data and is logged, not silently trusted. A nil
// record with nil error means no access anywhere.
func (s *AccessResolverService) FindRecordForIdentity(ctx context.Context, identity models.Identity) (*models.AccessRecord, error) {
	record, err := s.accessRepo.FindUserRecord(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	record, err = s.accessRepo.FindRoleRecord(ctx, identity.RoleID, identity.OrganizationID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	record, err = s.accessRepo.FindRoleRecordAnyOrg(ctx, identity.RoleID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		log.Printf("Warning: role %s has no access record for organization %s, falling back to organization-agnostic record %s",
			identity.RoleID.Hex(), identity.OrganizationID.Hex(), record.ID.Hex())
	}
	return record, nil
}

// ResolveRolePermissions backs the permission-matrix editor: the whole
// live catalog annotated with the current grant. A zero userID asks for
// the role-level (RBAC) view; a set userID asks for the user's effective
// view, preferring the ABAC override and falling back to the RBAC
// baseline as the prefill. HasRecord distinguishes a legitimate first-time
// setup from a record that grants nothing.
func (s *AccessResolverService) ResolveRolePermissions(ctx context.Context, roleID, userID, orgID bson.ObjectID) (*models.RolePermissionsView, error) {
	if roleID.IsZero() {
		return nil, apperr.Validation("roleId", "role id is required")
	}

	role, err := s.roleRepo.FindActiveByID(ctx, roleID)
	if err != nil {
		return nil, err
	}

	var record *models.AccessRecord
	if !userID.IsZero() {
		record, err = s.accessRepo.FindUserRecord(ctx, userID)
		if err != nil {
			return nil, err
		}
	}
	if record == nil {
		if !orgID.IsZero() {
			record, err = s.accessRepo.FindRoleRecord(ctx, roleID, orgID)
		} else {
			record, err = s.accessRepo.FindRoleRecordAnyOrg(ctx, roleID)
		}
		if err != nil {
			return nil, err
		}
	}

	modules, err := s.sidebarRepo.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading sidebar catalog: %w", err)
	}
	components, err := s.componentRepo.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading component catalog: %w", err)
	}

	view := &models.RolePermissionsView{
		Role:        models.RoleRef{ID: role.ID.Hex(), RoleName: role.RoleName},
		HasRecord:   record != nil,
		Permissions: BuildModuleGrants(record, modules, components),
	}
	if record != nil {
		view.MatrixType = record.MatrixType
	}
	return view, nil
}

// GetAccessMatrixCatalog seeds the permission-editor UI with the roles
// owned by one admin plus the full sidebar catalog and nested components.
func (s *AccessResolverService) GetAccessMatrixCatalog(ctx context.Context, createdBy bson.ObjectID) (*models.AccessMatrixCatalog, error) {
	roles, err := s.roleRepo.FindByCreator(ctx, createdBy)
	if err != nil {
		return nil, fmt.Errorf("error loading roles: %w", err)
	}

	modules, err := s.sidebarRepo.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading sidebar catalog: %w", err)
	}
	components, err := s.componentRepo.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading component catalog: %w", err)
	}

	catalog := &models.AccessMatrixCatalog{
		Roles:        make([]models.RoleRef, 0, len(roles)),
		SidebarItems: make([]models.CatalogSidebarItem, 0, len(modules)),
	}
	for _, r := range roles {
		catalog.Roles = append(catalog.Roles, models.RoleRef{ID: r.ID.Hex(), RoleName: r.RoleName})
	}

	byLocation := componentsByLocation(components)
	for _, m := range modules {
		item := models.CatalogSidebarItem{
			ID:                m.ID.Hex(),
			SidebarName:       m.SidebarName,
			Name:              m.Name,
			Icon:              m.Icon,
			Order:             m.Order,
			Children:          m.Children,
			DynamicComponents: []models.CatalogComponent{},
		}
		if item.Children == nil {
			item.Children = []models.SidebarChild{}
		}
		for _, c := range byLocation[m.ID] {
			item.DynamicComponents = append(item.DynamicComponents, models.CatalogComponent{
				ID:            c.ID.Hex(),
				ComponentName: c.ComponentName,
				Description:   c.Description,
				Status:        c.Status,
			})
		}
		catalog.SidebarItems = append(catalog.SidebarItems, item)
	}
	return catalog, nil
}

func sidebarCacheKey(identity models.Identity) string {
	return sidebarCachePrefix + identity.UserID.Hex() + ":" + identity.RoleID.Hex() + ":" + identity.OrganizationID.Hex()
}
