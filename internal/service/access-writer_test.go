package service

import (
	"context"
	"testing"

	"access_service/internal/apperr"
	"access_service/internal/events"
	"access_service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type fakeAccessStore struct {
	records []*models.AccessRecord
	inserts int
	updates int
}

func (f *fakeAccessStore) FindRoleRecord(ctx context.Context, roleID, orgID bson.ObjectID) (*models.AccessRecord, error) {
	for _, r := range f.records {
		if !r.IsDeleted && !r.IsUserLevel() && r.RoleID == roleID && r.HasOrganization(orgID) {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeAccessStore) FindRoleRecordAnyOrg(ctx context.Context, roleID bson.ObjectID) (*models.AccessRecord, error) {
	for _, r := range f.records {
		if !r.IsDeleted && !r.IsUserLevel() && r.RoleID == roleID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeAccessStore) FindAbacRecord(ctx context.Context, roleID, userID, orgID bson.ObjectID) (*models.AccessRecord, error) {
	for _, r := range f.records {
		if !r.IsDeleted && r.UserID == userID && r.RoleID == roleID && r.HasOrganization(orgID) {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeAccessStore) FindAbacRecordAnyOrg(ctx context.Context, roleID, userID bson.ObjectID) (*models.AccessRecord, error) {
	for _, r := range f.records {
		if !r.IsDeleted && r.UserID == userID && r.RoleID == roleID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeAccessStore) Insert(ctx context.Context, record *models.AccessRecord) (*models.AccessRecord, error) {
	record.ID = bson.NewObjectID()
	if record.Permissions == nil {
		record.Permissions = []models.ModulePermission{}
	}
	f.records = append(f.records, record)
	f.inserts++
	return record, nil
}

func (f *fakeAccessStore) Update(ctx context.Context, record *models.AccessRecord) error {
	f.updates++
	return nil
}

func (f *fakeAccessStore) userRecords() []*models.AccessRecord {
	var out []*models.AccessRecord
	for _, r := range f.records {
		if r.IsUserLevel() {
			out = append(out, r)
		}
	}
	return out
}

type fakeRoleStore struct {
	roles map[bson.ObjectID]*models.Role
}

func (f *fakeRoleStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.Role, error) {
	if r, ok := f.roles[id]; ok {
		return r, nil
	}
	return nil, apperr.NotFound("role", id.Hex())
}

func (f *fakeRoleStore) FindActiveByID(ctx context.Context, id bson.ObjectID) (*models.Role, error) {
	return f.FindByID(ctx, id)
}

type fakeOrganizationStore struct {
	orgs map[bson.ObjectID]*models.Organization
}

func (f *fakeOrganizationStore) FindActiveByID(ctx context.Context, id bson.ObjectID) (*models.Organization, error) {
	if o, ok := f.orgs[id]; ok {
		return o, nil
	}
	return nil, apperr.NotFound("organization", id.Hex())
}

func (f *fakeOrganizationStore) FindActiveByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Organization, error) {
	var out []*models.Organization
	for _, id := range ids {
		if o, ok := f.orgs[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeSidebarStore struct {
	modules []*models.SidebarModule
}

func (f *fakeSidebarStore) FindAllActive(ctx context.Context) ([]*models.SidebarModule, error) {
	return f.modules, nil
}

func (f *fakeSidebarStore) FindActiveByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.SidebarModule, error) {
	want := make(map[bson.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*models.SidebarModule
	for _, m := range f.modules {
		if want[m.ID] {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeComponentStore struct {
	components []*models.DynamicComponent
}

func (f *fakeComponentStore) FindAllActive(ctx context.Context) ([]*models.DynamicComponent, error) {
	return f.components, nil
}

type fakeSidebarCache struct {
	invalidations int
}

func (f *fakeSidebarCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	f.invalidations++
	return nil
}

type fakeEventPublisher struct {
	events []*events.AccessMatrixEvent
}

func (f *fakeEventPublisher) PublishAccessMatrixSaved(ctx context.Context, event *events.AccessMatrixEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventPublisher) Close() error {
	return nil
}

type writerFixture struct {
	writer    *AccessWriterService
	access    *fakeAccessStore
	cache     *fakeSidebarCache
	publisher *fakeEventPublisher

	frontDesk  *models.Role
	hotelOwner *models.Role
	org1       *models.Organization
	org2       *models.Organization
	moduleA    *models.SidebarModule
	moduleB    *models.SidebarModule
}

func newWriterFixture() *writerFixture {
	fx := &writerFixture{
		access:    &fakeAccessStore{},
		cache:     &fakeSidebarCache{},
		publisher: &fakeEventPublisher{},

		frontDesk:  &models.Role{ID: bson.NewObjectID(), RoleName: "front-desk"},
		hotelOwner: &models.Role{ID: bson.NewObjectID(), RoleName: models.PrivilegedRoleName},
		org1:       &models.Organization{ID: bson.NewObjectID(), OrganizationID: "hotel-001"},
		org2:       &models.Organization{ID: bson.NewObjectID(), OrganizationID: "hotel-002"},
		moduleA:    &models.SidebarModule{ID: bson.NewObjectID(), SidebarName: "Front Desk", Name: "reservations", Order: 1},
		moduleB:    &models.SidebarModule{ID: bson.NewObjectID(), SidebarName: "Operations", Name: "housekeeping", Order: 2},
	}

	fx.writer = &AccessWriterService{
		accessRepo: fx.access,
		roleRepo: &fakeRoleStore{roles: map[bson.ObjectID]*models.Role{
			fx.frontDesk.ID:  fx.frontDesk,
			fx.hotelOwner.ID: fx.hotelOwner,
		}},
		orgRepo: &fakeOrganizationStore{orgs: map[bson.ObjectID]*models.Organization{
			fx.org1.ID: fx.org1,
			fx.org2.ID: fx.org2,
		}},
		sidebarRepo:   &fakeSidebarStore{modules: []*models.SidebarModule{fx.moduleA, fx.moduleB}},
		componentRepo: &fakeComponentStore{},
		redisRepo:     fx.cache,
		publisher:     fx.publisher,
	}
	return fx
}

func TestCreateRbacFirstSave(t *testing.T) {
	fx := newWriterFixture()

	perms := []models.ModulePermission{
		grant(fx.moduleA.ID, fullAccess()),
		// Write verbs without read must be gated off on the way in.
		grant(fx.moduleB.ID, models.AccessLevel{Create: true, Update: true}),
	}

	result, err := fx.writer.CreateOrUpdateRbac(context.Background(), fx.frontDesk.ID, fx.org1.ID, perms)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !result.Created || result.Noop {
		t.Errorf("Expected a created record, got created=%v noop=%v", result.Created, result.Noop)
	}
	if fx.access.inserts != 1 {
		t.Fatalf("Expected 1 insert, got %d", fx.access.inserts)
	}

	record := fx.access.records[0]
	if record.MatrixType != models.MatrixTypeRBAC {
		t.Errorf("Expected RBAC record, got %s", record.MatrixType)
	}
	if record.IsUserLevel() {
		t.Error("Expected role-level record without a user id")
	}
	if len(record.OrganizationIDs) != 1 || record.OrganizationIDs[0] != fx.org1.ID {
		t.Errorf("Unexpected organizations: %v", record.OrganizationIDs)
	}
	for _, p := range record.Permissions {
		if p.Module == fx.moduleB.ID && (p.AccessLevel.Create || p.AccessLevel.Update) {
			t.Error("Expected write verbs without read to be stored cleared")
		}
	}

	if result.Record == nil || result.Record.Role.RoleName != "front-desk" {
		t.Error("Expected populated record view with role labels")
	}
	if fx.cache.invalidations == 0 {
		t.Error("Expected sidebar cache invalidation after a save")
	}
	if len(fx.publisher.events) != 1 || fx.publisher.events[0].Type != events.AccessMatrixCreated {
		t.Errorf("Expected one created event, got %+v", fx.publisher.events)
	}
}

func TestCreateRbacReplacesExistingRecord(t *testing.T) {
	fx := newWriterFixture()
	fx.access.records = append(fx.access.records, &models.AccessRecord{
		ID:              bson.NewObjectID(),
		RoleID:          fx.frontDesk.ID,
		OrganizationIDs: []bson.ObjectID{fx.org1.ID},
		Permissions:     []models.ModulePermission{grant(fx.moduleA.ID, fullAccess())},
		MatrixType:      models.MatrixTypeRBAC,
	})

	result, err := fx.writer.CreateOrUpdateRbac(context.Background(), fx.frontDesk.ID, fx.org1.ID,
		[]models.ModulePermission{grant(fx.moduleB.ID, readOnly())})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Created {
		t.Error("Expected update of existing record, not a create")
	}
	if fx.access.inserts != 0 || fx.access.updates != 1 {
		t.Errorf("Expected 1 update and no inserts, got %d/%d", fx.access.updates, fx.access.inserts)
	}

	// An ordinary role's permission array is replaced wholesale.
	record := fx.access.records[0]
	if len(record.Permissions) != 1 || record.Permissions[0].Module != fx.moduleB.ID {
		t.Errorf("Expected permissions replaced, got %+v", record.Permissions)
	}
	if len(fx.publisher.events) != 1 || fx.publisher.events[0].Type != events.AccessMatrixUpdated {
		t.Errorf("Expected one updated event, got %+v", fx.publisher.events)
	}
}

func TestUpdateRbacRequiresExistingRecord(t *testing.T) {
	fx := newWriterFixture()

	_, err := fx.writer.UpdateRbac(context.Background(), fx.frontDesk.ID, fx.org1.ID,
		[]models.ModulePermission{grant(fx.moduleA.ID, readOnly())})

	if !apperr.IsNotFound(err) {
		t.Errorf("Expected not-found error for missing record, got %v", err)
	}
	if fx.access.inserts != 0 || fx.access.updates != 0 {
		t.Error("Expected no writes on the update path without a record")
	}
}

func TestPrivilegedCreateMergesAndAccumulatesOrganizations(t *testing.T) {
	fx := newWriterFixture()
	fx.access.records = append(fx.access.records, &models.AccessRecord{
		ID:              bson.NewObjectID(),
		RoleID:          fx.hotelOwner.ID,
		OrganizationIDs: []bson.ObjectID{fx.org1.ID},
		Permissions:     []models.ModulePermission{grant(fx.moduleA.ID, fullAccess())},
		MatrixType:      models.MatrixTypeRBAC,
	})

	// An edit made through a second organization's view grants one more
	// module; the module granted through the first must survive.
	result, err := fx.writer.CreateOrUpdateRbac(context.Background(), fx.hotelOwner.ID, fx.org2.ID,
		[]models.ModulePermission{grant(fx.moduleB.ID, readOnly())})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Created || result.Noop {
		t.Errorf("Expected an in-place update, got created=%v noop=%v", result.Created, result.Noop)
	}

	record := fx.access.records[0]
	if !record.HasOrganization(fx.org1.ID) || !record.HasOrganization(fx.org2.ID) {
		t.Errorf("Expected both organizations on the shared record, got %v", record.OrganizationIDs)
	}
	moduleSet := make(map[bson.ObjectID]models.AccessLevel)
	for _, p := range record.Permissions {
		moduleSet[p.Module] = p.AccessLevel
	}
	if moduleSet[fx.moduleA.ID] != fullAccess() {
		t.Error("Expected module granted through the first organization to survive the merge")
	}
	if moduleSet[fx.moduleB.ID] != readOnly() {
		t.Error("Expected incoming module appended by the merge")
	}

	// The identical payload through the same organization changes nothing.
	updatesBefore := fx.access.updates
	result, err = fx.writer.CreateOrUpdateRbac(context.Background(), fx.hotelOwner.ID, fx.org2.ID,
		[]models.ModulePermission{grant(fx.moduleB.ID, readOnly())})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Noop {
		t.Error("Expected a recognized no-op for an identical privileged payload")
	}
	if result.Record == nil {
		t.Error("Expected the no-op to still return the populated record")
	}
	if fx.access.updates != updatesBefore {
		t.Error("Expected no write for the no-op")
	}
}

func TestPrivilegedCreateSavesOrganizationAdditionAlone(t *testing.T) {
	fx := newWriterFixture()
	fx.access.records = append(fx.access.records, &models.AccessRecord{
		ID:              bson.NewObjectID(),
		RoleID:          fx.hotelOwner.ID,
		OrganizationIDs: []bson.ObjectID{fx.org1.ID},
		Permissions:     []models.ModulePermission{grant(fx.moduleA.ID, fullAccess())},
		MatrixType:      models.MatrixTypeRBAC,
	})

	// Same grants through a new organization: no permission change, but
	// the record now covers one more organization and must be saved.
	result, err := fx.writer.CreateOrUpdateRbac(context.Background(), fx.hotelOwner.ID, fx.org2.ID,
		[]models.ModulePermission{grant(fx.moduleA.ID, fullAccess())})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Noop {
		t.Error("Expected the organization addition to count as a save")
	}
	if fx.access.updates != 1 {
		t.Errorf("Expected 1 update, got %d", fx.access.updates)
	}
	if !fx.access.records[0].HasOrganization(fx.org2.ID) {
		t.Error("Expected the new organization appended to the shared record")
	}
}

func TestAbacNoopWhenMatchingBaseline(t *testing.T) {
	fx := newWriterFixture()
	userID := bson.NewObjectID()
	baseline := []models.ModulePermission{grant(fx.moduleA.ID, fullAccess())}
	fx.access.records = append(fx.access.records, &models.AccessRecord{
		ID:              bson.NewObjectID(),
		RoleID:          fx.frontDesk.ID,
		OrganizationIDs: []bson.ObjectID{fx.org1.ID},
		Permissions:     baseline,
		MatrixType:      models.MatrixTypeRBAC,
	})

	result, err := fx.writer.CreateOrUpdateAbac(context.Background(), fx.frontDesk.ID, userID, fx.org1.ID,
		[]models.ModulePermission{grant(fx.moduleA.ID, fullAccess())})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !result.Noop {
		t.Error("Expected a payload identical to the baseline to be a no-op")
	}
	if len(fx.access.userRecords()) != 0 {
		t.Error("Expected no user-level record for a baseline-identical payload")
	}
	if len(fx.publisher.events) != 0 {
		t.Error("Expected no event for the no-op")
	}
}

func TestAbacOverridePersisted(t *testing.T) {
	fx := newWriterFixture()
	userID := bson.NewObjectID()
	fx.access.records = append(fx.access.records, &models.AccessRecord{
		ID:              bson.NewObjectID(),
		RoleID:          fx.frontDesk.ID,
		OrganizationIDs: []bson.ObjectID{fx.org1.ID},
		Permissions:     []models.ModulePermission{grant(fx.moduleA.ID, fullAccess())},
		MatrixType:      models.MatrixTypeRBAC,
	})

	result, err := fx.writer.CreateOrUpdateAbac(context.Background(), fx.frontDesk.ID, userID, fx.org1.ID,
		[]models.ModulePermission{grant(fx.moduleA.ID, readOnly())})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !result.Created {
		t.Error("Expected a new user-level record")
	}
	overrides := fx.access.userRecords()
	if len(overrides) != 1 {
		t.Fatalf("Expected 1 user-level record, got %d", len(overrides))
	}
	record := overrides[0]
	if record.MatrixType != models.MatrixTypeABAC {
		t.Errorf("Expected ABAC record, got %s", record.MatrixType)
	}
	if record.UserID != userID {
		t.Error("Expected the override bound to the user")
	}
	if result.Record == nil || result.Record.UserID != userID.Hex() {
		t.Error("Expected the populated view to carry the user id")
	}
}

func TestAbacRequiresUser(t *testing.T) {
	fx := newWriterFixture()

	_, err := fx.writer.CreateOrUpdateAbac(context.Background(), fx.frontDesk.ID, bson.ObjectID{}, fx.org1.ID,
		[]models.ModulePermission{grant(fx.moduleA.ID, readOnly())})

	if !apperr.IsValidation(err) {
		t.Errorf("Expected validation error without a user id, got %v", err)
	}
}

func TestWriteRejectsUnknownModule(t *testing.T) {
	fx := newWriterFixture()

	_, err := fx.writer.CreateOrUpdateRbac(context.Background(), fx.frontDesk.ID, fx.org1.ID,
		[]models.ModulePermission{grant(bson.NewObjectID(), readOnly())})

	if !apperr.IsValidation(err) {
		t.Errorf("Expected validation error for an unknown module, got %v", err)
	}
	if fx.access.inserts != 0 {
		t.Error("Expected nothing persisted when validation fails")
	}
}
