package service

import (
	"access_service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Pure joins between a stored AccessRecord and the live catalogs. Names,
// icons and ordering always come from the catalog rows, never from data
// cached inside the record, and a module that vanished from the catalog is
// simply absent from the expanded result.

// NormalizePermissions coerces an incoming permission payload into its
// canonical stored shape: read gates every other verb, and the component
// list is always a concrete slice. Component membership alone encodes
// component read access; component create/update/delete are never stored.
func NormalizePermissions(perms []models.ModulePermission) []models.ModulePermission {
	out := make([]models.ModulePermission, 0, len(perms))
	for _, p := range perms {
		entry := models.ModulePermission{
			Module:      p.Module,
			AccessLevel: p.AccessLevel,
			Components:  p.Components,
		}
		if !entry.AccessLevel.Read {
			entry.AccessLevel.Create = false
			entry.AccessLevel.Update = false
			entry.AccessLevel.Delete = false
			entry.Components = nil
		}
		if entry.Components == nil {
			entry.Components = []bson.ObjectID{}
		}
		out = append(out, entry)
	}
	return out
}

// PermissionsEqual reports whether two permission arrays grant exactly the
// same access: same module set, same verbs, same component membership.
// Order of modules and components is not significant.
func PermissionsEqual(a, b []models.ModulePermission) bool {
	if len(a) != len(b) {
		return false
	}

	byModule := make(map[bson.ObjectID]models.ModulePermission, len(a))
	for _, p := range a {
		byModule[p.Module] = p
	}

	for _, p := range b {
		other, ok := byModule[p.Module]
		if !ok {
			return false
		}
		if other.AccessLevel != p.AccessLevel {
			return false
		}
		if !componentSetsEqual(other.Components, p.Components) {
			return false
		}
	}
	return true
}

func componentSetsEqual(a, b []bson.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[bson.ObjectID]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if !set[id] {
			return false
		}
	}
	return true
}

// MergePermissions folds an incoming permission set into an existing one:
// matching modules are updated in place, new modules are appended, and
// modules absent from the incoming set survive untouched. The privileged
// role's record spans several organizations, so an edit made through one
// organization's view must never drop the modules granted through another.
func MergePermissions(existing, incoming []models.ModulePermission) ([]models.ModulePermission, bool) {
	merged := make([]models.ModulePermission, len(existing))
	copy(merged, existing)

	index := make(map[bson.ObjectID]int, len(merged))
	for i, p := range merged {
		index[p.Module] = i
	}

	changed := false
	for _, p := range incoming {
		if i, ok := index[p.Module]; ok {
			if merged[i].AccessLevel != p.AccessLevel || !componentSetsEqual(merged[i].Components, p.Components) {
				merged[i] = p
				changed = true
			}
			continue
		}
		merged = append(merged, p)
		index[p.Module] = len(merged) - 1
		changed = true
	}
	return merged, changed
}

// BuildSidebarGroups expands a record into the navigable menu: only
// modules granted read appear, grouped by sidebar name. A group's position
// is the smallest order among its members and members keep ascending
// order, which the catalog slice already carries.
func BuildSidebarGroups(record *models.AccessRecord, modules []*models.SidebarModule) []models.SidebarGroup {
	groups := []models.SidebarGroup{}
	if record == nil {
		return groups
	}

	granted := make(map[bson.ObjectID]bool, len(record.Permissions))
	for _, p := range record.Permissions {
		if p.AccessLevel.Read {
			granted[p.Module] = true
		}
	}

	groupIndex := make(map[string]int)
	for _, m := range modules {
		if !granted[m.ID] {
			continue
		}

		item := models.SidebarItem{
			ID:       m.ID.Hex(),
			Name:     m.Name,
			Href:     m.Href,
			Icon:     m.Icon,
			Children: m.Children,
			Order:    m.Order,
		}
		if item.Children == nil {
			item.Children = []models.SidebarChild{}
		}

		if i, ok := groupIndex[m.SidebarName]; ok {
			groups[i].Items = append(groups[i].Items, item)
			continue
		}
		groupIndex[m.SidebarName] = len(groups)
		groups = append(groups, models.SidebarGroup{
			SidebarName: m.SidebarName,
			Order:       m.Order,
			Items:       []models.SidebarItem{item},
		})
	}
	return groups
}

// BuildModuleGrants annotates the whole live catalog with the grants held
// in a record (nil record means no grant anywhere), the shape the
// permission-matrix editor consumes.
func BuildModuleGrants(record *models.AccessRecord, modules []*models.SidebarModule, components []*models.DynamicComponent) []models.ModuleGrant {
	var perms map[bson.ObjectID]models.ModulePermission
	if record != nil {
		perms = make(map[bson.ObjectID]models.ModulePermission, len(record.Permissions))
		for _, p := range record.Permissions {
			perms[p.Module] = p
		}
	}

	byLocation := componentsByLocation(components)

	grants := make([]models.ModuleGrant, 0, len(modules))
	for _, m := range modules {
		grant := models.ModuleGrant{
			ModuleID:    m.ID.Hex(),
			Name:        m.Name,
			SidebarName: m.SidebarName,
			Icon:        m.Icon,
			Order:       m.Order,
			Components:  []models.ComponentGrant{},
		}

		entry, hasEntry := perms[m.ID]
		if hasEntry {
			grant.Permissions = entry.AccessLevel
		}

		for _, c := range byLocation[m.ID] {
			grant.Components = append(grant.Components, models.ComponentGrant{
				ID:            c.ID.Hex(),
				ComponentName: c.ComponentName,
				Description:   c.Description,
				Status:        c.Status,
				HasAccess:     hasEntry && componentGranted(entry, c.ID),
			})
		}
		grants = append(grants, grant)
	}
	return grants
}

// BuildSnapshot converts stored permissions into the diff engine's value
// snapshot, joined against the catalogs for display metadata.
func BuildSnapshot(perms []models.ModulePermission, modules []*models.SidebarModule, components []*models.DynamicComponent) PermissionSnapshot {
	byID := make(map[bson.ObjectID]models.ModulePermission, len(perms))
	for _, p := range perms {
		byID[p.Module] = p
	}

	byLocation := componentsByLocation(components)

	snapshot := PermissionSnapshot{}
	for _, m := range modules {
		entry, hasEntry := byID[m.ID]
		if !hasEntry {
			continue
		}

		ms := ModuleSnapshot{
			ModuleID:    m.ID.Hex(),
			Name:        m.Name,
			SidebarName: m.SidebarName,
			Icon:        m.Icon,
			Order:       m.Order,
			Access:      entry.AccessLevel,
		}
		for _, c := range byLocation[m.ID] {
			ms.Components = append(ms.Components, ComponentSnapshot{
				ComponentID:   c.ID.Hex(),
				ComponentName: c.ComponentName,
				HasAccess:     componentGranted(entry, c.ID),
			})
		}
		snapshot = append(snapshot, ms)
	}
	return snapshot
}

func componentsByLocation(components []*models.DynamicComponent) map[bson.ObjectID][]*models.DynamicComponent {
	byLocation := make(map[bson.ObjectID][]*models.DynamicComponent, len(components))
	for _, c := range components {
		if c.UsageLocation.IsZero() {
			continue
		}
		byLocation[c.UsageLocation] = append(byLocation[c.UsageLocation], c)
	}
	return byLocation
}

func componentGranted(entry models.ModulePermission, componentID bson.ObjectID) bool {
	for _, id := range entry.Components {
		if id == componentID {
			return true
		}
	}
	return false
}
