package service

import (
	"access_service/internal/models"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func grant(module bson.ObjectID, access models.AccessLevel, components ...bson.ObjectID) models.ModulePermission {
	return models.ModulePermission{Module: module, AccessLevel: access, Components: components}
}

func TestNormalizePermissions(t *testing.T) {
	moduleA := bson.NewObjectID()
	moduleB := bson.NewObjectID()
	component := bson.NewObjectID()

	out := NormalizePermissions([]models.ModulePermission{
		{Module: moduleA, AccessLevel: models.AccessLevel{Create: true, Update: true, Delete: true}, Components: []bson.ObjectID{component}},
		{Module: moduleB, AccessLevel: readOnly()},
	})

	if len(out) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(out))
	}

	// Read false gates everything else off.
	first := out[0]
	if first.AccessLevel.Create || first.AccessLevel.Update || first.AccessLevel.Delete {
		t.Errorf("Expected write verbs cleared without read, got %+v", first.AccessLevel)
	}
	if len(first.Components) != 0 {
		t.Errorf("Expected components cleared without read, got %d", len(first.Components))
	}

	// Components are always a concrete slice.
	if out[1].Components == nil {
		t.Error("Expected nil components normalized to an empty slice")
	}
}

func TestPermissionsEqual(t *testing.T) {
	moduleA := bson.NewObjectID()
	moduleB := bson.NewObjectID()
	c1 := bson.NewObjectID()
	c2 := bson.NewObjectID()

	base := []models.ModulePermission{
		grant(moduleA, fullAccess(), c1, c2),
		grant(moduleB, readOnly()),
	}

	testCases := []struct {
		name  string
		other []models.ModulePermission
		equal bool
	}{
		{
			name: "same grants different order",
			other: []models.ModulePermission{
				grant(moduleB, readOnly()),
				grant(moduleA, fullAccess(), c2, c1),
			},
			equal: true,
		},
		{
			name: "different verb",
			other: []models.ModulePermission{
				grant(moduleA, fullAccess(), c1, c2),
				grant(moduleB, models.AccessLevel{Read: true, Update: true}),
			},
			equal: false,
		},
		{
			name: "different component membership",
			other: []models.ModulePermission{
				grant(moduleA, fullAccess(), c1),
				grant(moduleB, readOnly()),
			},
			equal: false,
		},
		{
			name: "different module set",
			other: []models.ModulePermission{
				grant(moduleA, fullAccess(), c1, c2),
				grant(bson.NewObjectID(), readOnly()),
			},
			equal: false,
		},
		{
			name:  "different length",
			other: base[:1],
			equal: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PermissionsEqual(base, tc.other); got != tc.equal {
				t.Errorf("Expected PermissionsEqual=%v, got %v", tc.equal, got)
			}
		})
	}
}

func TestMergePermissionsNeverDropsModules(t *testing.T) {
	moduleA := bson.NewObjectID()
	moduleB := bson.NewObjectID()
	moduleC := bson.NewObjectID()

	existing := []models.ModulePermission{
		grant(moduleA, fullAccess()),
		grant(moduleB, readOnly()),
	}
	incoming := []models.ModulePermission{
		grant(moduleB, fullAccess()),
		grant(moduleC, readOnly()),
	}

	merged, changed := MergePermissions(existing, incoming)

	if !changed {
		t.Fatal("Expected merge to report a change")
	}
	if len(merged) != 3 {
		t.Fatalf("Expected 3 modules after merge, got %d", len(merged))
	}

	byModule := make(map[bson.ObjectID]models.ModulePermission)
	for _, p := range merged {
		byModule[p.Module] = p
	}
	if byModule[moduleA].AccessLevel != fullAccess() {
		t.Error("Expected module absent from incoming to survive untouched")
	}
	if byModule[moduleB].AccessLevel != fullAccess() {
		t.Error("Expected matching module updated from incoming")
	}
	if byModule[moduleC].AccessLevel != readOnly() {
		t.Error("Expected new module appended")
	}
}

func TestMergePermissionsNoChange(t *testing.T) {
	moduleA := bson.NewObjectID()
	component := bson.NewObjectID()

	existing := []models.ModulePermission{grant(moduleA, readOnly(), component)}
	incoming := []models.ModulePermission{grant(moduleA, readOnly(), component)}

	merged, changed := MergePermissions(existing, incoming)

	if changed {
		t.Error("Expected identical incoming set to report no change")
	}
	if len(merged) != 1 {
		t.Errorf("Expected 1 module, got %d", len(merged))
	}
}

func catalogModule(sidebarName, name string, order int) *models.SidebarModule {
	return &models.SidebarModule{
		ID:          bson.NewObjectID(),
		SidebarName: sidebarName,
		Name:        name,
		Href:        "/" + name,
		Order:       order,
	}
}

func TestBuildSidebarGroups(t *testing.T) {
	reservations := catalogModule("Front Desk", "reservations", 1)
	checkIn := catalogModule("Front Desk", "check-in", 2)
	housekeeping := catalogModule("Operations", "housekeeping", 3)
	nightAudit := catalogModule("Operations", "night-audit", 4)
	modules := []*models.SidebarModule{reservations, checkIn, housekeeping, nightAudit}

	record := &models.AccessRecord{
		Permissions: []models.ModulePermission{
			grant(reservations.ID, fullAccess()),
			grant(checkIn.ID, readOnly()),
			grant(housekeeping.ID, models.AccessLevel{}), // hidden
			grant(nightAudit.ID, readOnly()),
			grant(bson.NewObjectID(), fullAccess()), // vanished from catalog
		},
	}

	groups := BuildSidebarGroups(record, modules)

	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}

	frontDesk := groups[0]
	if frontDesk.SidebarName != "Front Desk" || frontDesk.Order != 1 {
		t.Errorf("Unexpected first group: %+v", frontDesk)
	}
	if len(frontDesk.Items) != 2 {
		t.Fatalf("Expected 2 Front Desk items, got %d", len(frontDesk.Items))
	}
	if frontDesk.Items[0].Name != "reservations" || frontDesk.Items[1].Name != "check-in" {
		t.Error("Expected items in catalog order")
	}
	if frontDesk.Items[0].Children == nil {
		t.Error("Expected children normalized to an empty slice")
	}

	operations := groups[1]
	if len(operations.Items) != 1 || operations.Items[0].Name != "night-audit" {
		t.Errorf("Expected hidden module excluded, got %+v", operations.Items)
	}
}

func TestBuildSidebarGroupsNilRecord(t *testing.T) {
	modules := []*models.SidebarModule{catalogModule("Front Desk", "reservations", 1)}

	groups := BuildSidebarGroups(nil, modules)

	if groups == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(groups) != 0 {
		t.Errorf("Expected no groups without a record, got %d", len(groups))
	}
}

func TestBuildModuleGrants(t *testing.T) {
	reservations := catalogModule("Front Desk", "reservations", 1)
	housekeeping := catalogModule("Operations", "housekeeping", 2)
	modules := []*models.SidebarModule{reservations, housekeeping}

	granted := &models.DynamicComponent{
		ID:            bson.NewObjectID(),
		ComponentName: "RateOverride",
		Status:        models.ComponentStatusActive,
		UsageLocation: reservations.ID,
	}
	denied := &models.DynamicComponent{
		ID:            bson.NewObjectID(),
		ComponentName: "WalkInPanel",
		Status:        models.ComponentStatusActive,
		UsageLocation: reservations.ID,
	}
	components := []*models.DynamicComponent{granted, denied}

	record := &models.AccessRecord{
		Permissions: []models.ModulePermission{
			grant(reservations.ID, readOnly(), granted.ID),
		},
	}

	grants := BuildModuleGrants(record, modules, components)

	if len(grants) != 2 {
		t.Fatalf("Expected the whole catalog annotated, got %d entries", len(grants))
	}

	first := grants[0]
	if !first.Permissions.Read || first.Permissions.Create {
		t.Errorf("Unexpected permissions on granted module: %+v", first.Permissions)
	}
	if len(first.Components) != 2 {
		t.Fatalf("Expected 2 components on reservations, got %d", len(first.Components))
	}
	for _, c := range first.Components {
		want := c.ID == granted.ID.Hex()
		if c.HasAccess != want {
			t.Errorf("Component %s: expected HasAccess=%v, got %v", c.ComponentName, want, c.HasAccess)
		}
	}

	second := grants[1]
	if second.Permissions.Read {
		t.Error("Expected no grant on module absent from the record")
	}
	if second.Components == nil {
		t.Error("Expected components normalized to an empty slice")
	}
}

func TestBuildModuleGrantsNilRecord(t *testing.T) {
	module := catalogModule("Front Desk", "reservations", 1)

	grants := BuildModuleGrants(nil, []*models.SidebarModule{module}, nil)

	if len(grants) != 1 {
		t.Fatalf("Expected 1 grant entry, got %d", len(grants))
	}
	if grants[0].Permissions.Read {
		t.Error("Expected no access anywhere without a record")
	}
}

func TestBuildSnapshot(t *testing.T) {
	reservations := catalogModule("Front Desk", "reservations", 1)
	housekeeping := catalogModule("Operations", "housekeeping", 2)
	modules := []*models.SidebarModule{reservations, housekeeping}

	component := &models.DynamicComponent{
		ID:            bson.NewObjectID(),
		ComponentName: "RateOverride",
		UsageLocation: reservations.ID,
	}

	perms := []models.ModulePermission{
		grant(reservations.ID, fullAccess(), component.ID),
	}

	snapshot := BuildSnapshot(perms, modules, []*models.DynamicComponent{component})

	if len(snapshot) != 1 {
		t.Fatalf("Expected only granted modules in the snapshot, got %d", len(snapshot))
	}
	m := snapshot[0]
	if m.ModuleID != reservations.ID.Hex() || m.Name != "reservations" {
		t.Errorf("Unexpected module snapshot: %+v", m)
	}
	if m.Access != fullAccess() {
		t.Errorf("Unexpected access level: %+v", m.Access)
	}
	if len(m.Components) != 1 || !m.Components[0].HasAccess {
		t.Errorf("Expected granted component in the snapshot, got %+v", m.Components)
	}
}
