package service

import (
	"context"
	"fmt"
	"log"

	"access_service/internal/apperr"
	"access_service/internal/events"
	"access_service/internal/models"
	"access_service/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// The writer depends on narrow views of the repositories; the concrete
// repository types satisfy them.
type accessRecordStore interface {
	FindRoleRecord(ctx context.Context, roleID, orgID bson.ObjectID) (*models.AccessRecord, error)
	FindRoleRecordAnyOrg(ctx context.Context, roleID bson.ObjectID) (*models.AccessRecord, error)
	FindAbacRecord(ctx context.Context, roleID, userID, orgID bson.ObjectID) (*models.AccessRecord, error)
	FindAbacRecordAnyOrg(ctx context.Context, roleID, userID bson.ObjectID) (*models.AccessRecord, error)
	Insert(ctx context.Context, record *models.AccessRecord) (*models.AccessRecord, error)
	Update(ctx context.Context, record *models.AccessRecord) error
}

type roleStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Role, error)
	FindActiveByID(ctx context.Context, id bson.ObjectID) (*models.Role, error)
}

type organizationStore interface {
	FindActiveByID(ctx context.Context, id bson.ObjectID) (*models.Organization, error)
	FindActiveByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Organization, error)
}

type sidebarStore interface {
	FindAllActive(ctx context.Context) ([]*models.SidebarModule, error)
	FindActiveByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.SidebarModule, error)
}

type componentStore interface {
	FindAllActive(ctx context.Context) ([]*models.DynamicComponent, error)
}

type sidebarCache interface {
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// AccessWriterService persists permission edits. The ordinary path keeps
// one record per (role, user, organization) and replaces its permission
// array wholesale; the privileged role shares one record across every
// organization and merges instead of replacing on the create path; the
// ABAC path diffs against the role-level baseline before touching a
// per-user record. Concurrent editors of the same record are
// last-write-wins; there is no version token.
type AccessWriterService struct {
	accessRepo    accessRecordStore
	roleRepo      roleStore
	orgRepo       organizationStore
	sidebarRepo   sidebarStore
	componentRepo componentStore
	redisRepo     sidebarCache
	publisher     events.Publisher
}

func NewAccessWriterService(repos *repository.Repositories, publisher events.Publisher) *AccessWriterService {
	return &AccessWriterService{
		accessRepo:    repos.AccessRepository,
		roleRepo:      repos.RoleRepository,
		orgRepo:       repos.OrganizationRepository,
		sidebarRepo:   repos.SidebarRepository,
		componentRepo: repos.ComponentRepository,
		redisRepo:     repos.RedisRepository,
		publisher:     publisher,
	}
}

// SaveResult distinguishes the three caller-visible outcomes: a persisted
// record (created or updated) or a recognized no-op.
type SaveResult struct {
	Record  *models.AccessRecordView
	Created bool
	Noop    bool
}

// CreateOrUpdateRbac is the create path for role-level records.
func (s *AccessWriterService) CreateOrUpdateRbac(ctx context.Context, roleID, orgID bson.ObjectID, perms []models.ModulePermission) (*SaveResult, error) {
	role, _, normalized, err := s.validateWrite(ctx, roleID, orgID, perms)
	if err != nil {
		return nil, err
	}

	if role.IsPrivileged() {
		return s.savePrivilegedCreate(ctx, role, orgID, normalized)
	}

	record, err := s.accessRepo.FindRoleRecord(ctx, roleID, orgID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &models.AccessRecord{
			RoleID:          roleID,
			OrganizationIDs: []bson.ObjectID{orgID},
			Permissions:     normalized,
			MatrixType:      models.MatrixTypeRBAC,
		}
		if _, err := s.accessRepo.Insert(ctx, record); err != nil {
			return nil, err
		}
		return s.finishWrite(ctx, record, true, len(normalized))
	}

	changed := countChangedModules(record.Permissions, normalized)
	record.Permissions = normalized
	if err := s.accessRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	return s.finishWrite(ctx, record, false, changed)
}

// UpdateRbac is the update path: the record must already exist.
func (s *AccessWriterService) UpdateRbac(ctx context.Context, roleID, orgID bson.ObjectID, perms []models.ModulePermission) (*SaveResult, error) {
	role, _, normalized, err := s.validateWrite(ctx, roleID, orgID, perms)
	if err != nil {
		return nil, err
	}

	var record *models.AccessRecord
	if role.IsPrivileged() {
		record, err = s.accessRepo.FindRoleRecordAnyOrg(ctx, roleID)
	} else {
		record, err = s.accessRepo.FindRoleRecord(ctx, roleID, orgID)
	}
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperr.NotFound("access record for role", roleID.Hex())
	}

	changed := countChangedModules(record.Permissions, normalized)
	record.Permissions = normalized
	if role.IsPrivileged() && !record.HasOrganization(orgID) {
		record.OrganizationIDs = append(record.OrganizationIDs, orgID)
	}
	if err := s.accessRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	return s.finishWrite(ctx, record, false, changed)
}

// savePrivilegedCreate handles the role whose single record accumulates
// organizations. The incoming payload is one organization's editable view,
// so stored modules it does not mention must survive the save.
func (s *AccessWriterService) savePrivilegedCreate(ctx context.Context, role *models.Role, orgID bson.ObjectID, normalized []models.ModulePermission) (*SaveResult, error) {
	record, err := s.accessRepo.FindRoleRecordAnyOrg(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &models.AccessRecord{
			RoleID:          role.ID,
			OrganizationIDs: []bson.ObjectID{orgID},
			Permissions:     normalized,
			MatrixType:      models.MatrixTypeRBAC,
		}
		if _, err := s.accessRepo.Insert(ctx, record); err != nil {
			return nil, err
		}
		return s.finishWrite(ctx, record, true, len(normalized))
	}

	orgAdded := false
	if !record.HasOrganization(orgID) {
		record.OrganizationIDs = append(record.OrganizationIDs, orgID)
		orgAdded = true
	}

	merged, changed := MergePermissions(record.Permissions, normalized)
	switch {
	case changed:
		changedCount := countChangedModules(record.Permissions, normalized)
		record.Permissions = merged
		if err := s.accessRepo.Update(ctx, record); err != nil {
			return nil, err
		}
		return s.finishWrite(ctx, record, false, changedCount)
	case orgAdded:
		// No permission changes, but the record now covers a new
		// organization and must be saved for that reason alone.
		if err := s.accessRepo.Update(ctx, record); err != nil {
			return nil, err
		}
		return s.finishWrite(ctx, record, false, 0)
	default:
		view, err := s.populateRecord(ctx, record)
		if err != nil {
			return nil, err
		}
		return &SaveResult{Record: view, Noop: true}, nil
	}
}

// CreateOrUpdateAbac persists a per-user override. The payload is diffed
// against the role-level baseline, not against any prior override: an
// override identical to the baseline is meaningless and is not written.
func (s *AccessWriterService) CreateOrUpdateAbac(ctx context.Context, roleID, userID, orgID bson.ObjectID, perms []models.ModulePermission) (*SaveResult, error) {
	if userID.IsZero() {
		return nil, apperr.Validation("userId", "user id is required")
	}

	role, _, normalized, err := s.validateWrite(ctx, roleID, orgID, perms)
	if err != nil {
		return nil, err
	}

	var baseline *models.AccessRecord
	if role.IsPrivileged() {
		baseline, err = s.accessRepo.FindRoleRecordAnyOrg(ctx, roleID)
	} else {
		baseline, err = s.accessRepo.FindRoleRecord(ctx, roleID, orgID)
	}
	if err != nil {
		return nil, err
	}

	var baselinePerms []models.ModulePermission
	if baseline != nil {
		baselinePerms = NormalizePermissions(baseline.Permissions)
	}
	if PermissionsEqual(normalized, baselinePerms) {
		return &SaveResult{Noop: true}, nil
	}

	var record *models.AccessRecord
	if role.IsPrivileged() {
		record, err = s.accessRepo.FindAbacRecordAnyOrg(ctx, roleID, userID)
	} else {
		record, err = s.accessRepo.FindAbacRecord(ctx, roleID, userID, orgID)
	}
	if err != nil {
		return nil, err
	}

	if record == nil {
		record = &models.AccessRecord{
			RoleID:          roleID,
			UserID:          userID,
			OrganizationIDs: []bson.ObjectID{orgID},
			Permissions:     normalized,
			MatrixType:      models.MatrixTypeABAC,
		}
		if _, err := s.accessRepo.Insert(ctx, record); err != nil {
			return nil, err
		}
		return s.finishWrite(ctx, record, true, len(normalized))
	}

	changed := countChangedModules(record.Permissions, normalized)
	record.Permissions = normalized
	if !record.HasOrganization(orgID) {
		record.OrganizationIDs = append(record.OrganizationIDs, orgID)
	}
	if err := s.accessRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	return s.finishWrite(ctx, record, false, changed)
}

// validateWrite runs the shared checks every entry point requires. Any
// failure aborts the whole write before anything is persisted.
func (s *AccessWriterService) validateWrite(ctx context.Context, roleID, orgID bson.ObjectID, perms []models.ModulePermission) (*models.Role, *models.Organization, []models.ModulePermission, error) {
	if roleID.IsZero() {
		return nil, nil, nil, apperr.Validation("roleId", "role id is required")
	}
	if orgID.IsZero() {
		return nil, nil, nil, apperr.Validation("organizationId", "organization id is required")
	}

	role, err := s.roleRepo.FindActiveByID(ctx, roleID)
	if err != nil {
		return nil, nil, nil, err
	}
	org, err := s.orgRepo.FindActiveByID(ctx, orgID)
	if err != nil {
		return nil, nil, nil, err
	}

	normalized := NormalizePermissions(perms)

	moduleIDs := make([]bson.ObjectID, 0, len(normalized))
	seen := make(map[bson.ObjectID]bool, len(normalized))
	for _, p := range normalized {
		if p.Module.IsZero() {
			return nil, nil, nil, apperr.Validation("permissions", "permission entry is missing a module reference")
		}
		if seen[p.Module] {
			return nil, nil, nil, apperr.Validation("permissions", fmt.Sprintf("duplicate permission entry for module %s", p.Module.Hex()))
		}
		seen[p.Module] = true
		moduleIDs = append(moduleIDs, p.Module)
	}

	modules, err := s.sidebarRepo.FindActiveByIDs(ctx, moduleIDs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error validating module references: %w", err)
	}
	found := make(map[bson.ObjectID]bool, len(modules))
	for _, m := range modules {
		found[m.ID] = true
	}
	for _, id := range moduleIDs {
		if !found[id] {
			return nil, nil, nil, apperr.Validation("permissions", fmt.Sprintf("unknown or deleted module %s", id.Hex()))
		}
	}

	return role, org, normalized, nil
}

// finishWrite invalidates cached sidebar views, emits the change event and
// returns the record populated with catalog labels, so the caller can show
// a confirmation without a second round-trip. Cache and event failures are
// logged, not surfaced: the write itself already succeeded.
func (s *AccessWriterService) finishWrite(ctx context.Context, record *models.AccessRecord, created bool, changedModules int) (*SaveResult, error) {
	if err := s.redisRepo.DeleteByPrefix(ctx, sidebarCachePrefix); err != nil {
		log.Printf("Warning: failed to invalidate sidebar cache: %v", err)
	}

	if s.publisher != nil {
		eventType := events.AccessMatrixUpdated
		if created {
			eventType = events.AccessMatrixCreated
		}
		orgIDs := make([]string, len(record.OrganizationIDs))
		for i, id := range record.OrganizationIDs {
			orgIDs[i] = id.Hex()
		}
		userID := ""
		if record.IsUserLevel() {
			userID = record.UserID.Hex()
		}
		event := events.NewAccessMatrixEvent(eventType, record.ID.Hex(), record.RoleID.Hex(), userID, orgIDs, record.MatrixType, changedModules)
		if err := s.publisher.PublishAccessMatrixSaved(ctx, event); err != nil {
			log.Printf("Warning: failed to publish %s event: %v", eventType, err)
		}
	}

	view, err := s.populateRecord(ctx, record)
	if err != nil {
		return nil, err
	}
	return &SaveResult{Record: view, Created: created}, nil
}

func (s *AccessWriterService) populateRecord(ctx context.Context, record *models.AccessRecord) (*models.AccessRecordView, error) {
	role, err := s.roleRepo.FindByID(ctx, record.RoleID)
	if err != nil {
		return nil, err
	}
	orgs, err := s.orgRepo.FindActiveByIDs(ctx, record.OrganizationIDs)
	if err != nil {
		return nil, fmt.Errorf("error loading organizations: %w", err)
	}
	modules, err := s.sidebarRepo.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading sidebar catalog: %w", err)
	}
	components, err := s.componentRepo.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading component catalog: %w", err)
	}

	view := &models.AccessRecordView{
		ID:            record.ID.Hex(),
		Role:          models.RoleRef{ID: role.ID.Hex(), RoleName: role.RoleName},
		Organizations: make([]models.OrganizationRef, 0, len(orgs)),
		Permissions:   buildRecordGrants(record, modules, components),
		MatrixType:    record.MatrixType,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
	if record.IsUserLevel() {
		view.UserID = record.UserID.Hex()
	}
	for _, o := range orgs {
		view.Organizations = append(view.Organizations, models.OrganizationRef{ID: o.ID.Hex(), OrganizationID: o.OrganizationID})
	}
	return view, nil
}

// buildRecordGrants labels only the record's own entries, unlike
// BuildModuleGrants which annotates the whole catalog.
func buildRecordGrants(record *models.AccessRecord, modules []*models.SidebarModule, components []*models.DynamicComponent) []models.ModuleGrant {
	perms := make(map[bson.ObjectID]models.ModulePermission, len(record.Permissions))
	for _, p := range record.Permissions {
		perms[p.Module] = p
	}

	byLocation := componentsByLocation(components)

	grants := []models.ModuleGrant{}
	for _, m := range modules {
		entry, ok := perms[m.ID]
		if !ok {
			continue
		}
		grant := models.ModuleGrant{
			ModuleID:    m.ID.Hex(),
			Name:        m.Name,
			SidebarName: m.SidebarName,
			Icon:        m.Icon,
			Order:       m.Order,
			Permissions: entry.AccessLevel,
			Components:  []models.ComponentGrant{},
		}
		for _, c := range byLocation[m.ID] {
			grant.Components = append(grant.Components, models.ComponentGrant{
				ID:            c.ID.Hex(),
				ComponentName: c.ComponentName,
				HasAccess:     componentGranted(entry, c.ID),
			})
		}
		grants = append(grants, grant)
	}
	return grants
}

// countChangedModules counts incoming entries that differ from what the
// record stores, for event payloads. Stored modules the incoming set never
// mentions are not changes.
func countChangedModules(existing, incoming []models.ModulePermission) int {
	byModule := make(map[bson.ObjectID]models.ModulePermission, len(existing))
	for _, p := range existing {
		byModule[p.Module] = p
	}

	count := 0
	for _, p := range incoming {
		prev, ok := byModule[p.Module]
		if !ok || prev.AccessLevel != p.AccessLevel || !componentSetsEqual(prev.Components, p.Components) {
			count++
		}
	}
	return count
}
