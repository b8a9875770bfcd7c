package service

import "access_service/internal/models"

// The diff engine is pure and synchronous: it compares two in-memory
// permission snapshots and never touches the database. Callers invoke it
// explicitly after a batch of edits; nothing here runs as a side effect of
// a setter.

type Verb string

const (
	VerbCreate Verb = "create"
	VerbRead   Verb = "read"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
)

// ComponentSnapshot tracks the single controllable bit of a dynamic
// component. Create/update/delete are never true for components.
type ComponentSnapshot struct {
	ComponentID   string
	ComponentName string
	HasAccess     bool
}

// ModuleSnapshot is one module's row in a permission snapshot, carrying
// display metadata so change summaries can be built without re-fetching.
type ModuleSnapshot struct {
	ModuleID    string
	Name        string
	SidebarName string
	Icon        string
	Order       int
	Access      models.AccessLevel
	Components  []ComponentSnapshot
}

type PermissionSnapshot []ModuleSnapshot

// Clone returns an independent copy so held "before" snapshots cannot be
// mutated through later edits to the working copy.
func (s PermissionSnapshot) Clone() PermissionSnapshot {
	if s == nil {
		return nil
	}
	out := make(PermissionSnapshot, len(s))
	for i, m := range s {
		out[i] = m
		if m.Components != nil {
			out[i].Components = make([]ComponentSnapshot, len(m.Components))
			copy(out[i].Components, m.Components)
		}
	}
	return out
}

type ChangeIntent string

const (
	// IntentFullyGranted: every verb on the module is now true.
	IntentFullyGranted ChangeIntent = "fully-granted"
	// IntentPartiallyGranted: read is true, the other verbs are mixed.
	IntentPartiallyGranted ChangeIntent = "partially-granted"
	// IntentRevoked: read was true before and is false now.
	IntentRevoked ChangeIntent = "revoked"
)

type ComponentChange struct {
	ComponentID   string `json:"componentId"`
	ComponentName string `json:"componentName"`
	Before        bool   `json:"before"`
	After         bool   `json:"after"`
}

type ChangeEntry struct {
	ModuleID    string             `json:"moduleId"`
	Name        string             `json:"name"`
	SidebarName string             `json:"sidebarName"`
	Before      models.AccessLevel `json:"before"`
	After       models.AccessLevel `json:"after"`
	IsGranted   bool               `json:"isGranted"`
	IsRevoked   bool               `json:"isRevoked"`
	Intent      ChangeIntent       `json:"intent"`
	Components  []ComponentChange  `json:"components,omitempty"`
}

type DiffResult struct {
	HasChanges bool          `json:"hasChanges"`
	Changes    []ChangeEntry `json:"changes"`
}

// Diff compares two snapshots module-by-module. HasChanges reflects every
// field-level difference, including modules added or removed between the
// snapshots; the visible change list is filtered to modules whose read bit
// is true on at least one side, since a toggle on an already-hidden module
// carries no user-facing meaning.
func Diff(before, after PermissionSnapshot) DiffResult {
	result := DiffResult{Changes: []ChangeEntry{}}

	if len(before) != len(after) {
		result.HasChanges = true
	}

	beforeByID := make(map[string]ModuleSnapshot, len(before))
	for _, m := range before {
		beforeByID[m.ModuleID] = m
	}

	seen := make(map[string]bool, len(after))
	for _, m := range after {
		seen[m.ModuleID] = true
		prev, ok := beforeByID[m.ModuleID]
		if !ok {
			prev = ModuleSnapshot{ModuleID: m.ModuleID, Name: m.Name, SidebarName: m.SidebarName}
		}

		componentChanges := diffComponents(prev.Components, m.Components)
		changed := !ok || prev.Access != m.Access || len(componentChanges) > 0
		if !changed {
			continue
		}
		result.HasChanges = true

		if !prev.Access.Read && !m.Access.Read {
			continue
		}
		result.Changes = append(result.Changes, buildChangeEntry(prev, m, componentChanges))
	}

	// Modules dropped from the catalog since the snapshot was taken.
	for _, prev := range before {
		if seen[prev.ModuleID] {
			continue
		}
		result.HasChanges = true
		if !prev.Access.Read {
			continue
		}
		gone := ModuleSnapshot{ModuleID: prev.ModuleID, Name: prev.Name, SidebarName: prev.SidebarName}
		result.Changes = append(result.Changes, buildChangeEntry(prev, gone, diffComponents(prev.Components, nil)))
	}

	return result
}

func buildChangeEntry(before, after ModuleSnapshot, componentChanges []ComponentChange) ChangeEntry {
	entry := ChangeEntry{
		ModuleID:    after.ModuleID,
		Name:        after.Name,
		SidebarName: after.SidebarName,
		Before:      before.Access,
		After:       after.Access,
		IsGranted:   after.Access.Read,
		IsRevoked:   before.Access.Read && !after.Access.Read,
		Components:  componentChanges,
	}
	if entry.Name == "" {
		entry.Name = before.Name
	}
	if entry.SidebarName == "" {
		entry.SidebarName = before.SidebarName
	}

	switch {
	case after.Access.Create && after.Access.Read && after.Access.Update && after.Access.Delete:
		entry.Intent = IntentFullyGranted
	case after.Access.Read:
		entry.Intent = IntentPartiallyGranted
	default:
		entry.Intent = IntentRevoked
	}
	return entry
}

func diffComponents(before, after []ComponentSnapshot) []ComponentChange {
	beforeByID := make(map[string]ComponentSnapshot, len(before))
	for _, c := range before {
		beforeByID[c.ComponentID] = c
	}

	var changes []ComponentChange
	seen := make(map[string]bool, len(after))
	for _, c := range after {
		seen[c.ComponentID] = true
		prev, ok := beforeByID[c.ComponentID]
		if ok && prev.HasAccess == c.HasAccess {
			continue
		}
		if !ok && !c.HasAccess {
			continue
		}
		changes = append(changes, ComponentChange{
			ComponentID:   c.ComponentID,
			ComponentName: c.ComponentName,
			Before:        prev.HasAccess,
			After:         c.HasAccess,
		})
	}
	for _, prev := range before {
		if seen[prev.ComponentID] || !prev.HasAccess {
			continue
		}
		changes = append(changes, ComponentChange{
			ComponentID:   prev.ComponentID,
			ComponentName: prev.ComponentName,
			Before:        true,
			After:         false,
		})
	}
	return changes
}

// ToggleVerb flips one verb on a module. Read gates every other verb, so
// turning read off cascades create/update/delete (and every component) off
// in the same operation, and a write verb cannot be turned on while the
// module is hidden.
func ToggleVerb(m *ModuleSnapshot, verb Verb) {
	switch verb {
	case VerbRead:
		m.Access.Read = !m.Access.Read
		if !m.Access.Read {
			m.Access.Create = false
			m.Access.Update = false
			m.Access.Delete = false
			for i := range m.Components {
				m.Components[i].HasAccess = false
			}
		}
	case VerbCreate:
		if !m.Access.Read && !m.Access.Create {
			return
		}
		m.Access.Create = !m.Access.Create
	case VerbUpdate:
		if !m.Access.Read && !m.Access.Update {
			return
		}
		m.Access.Update = !m.Access.Update
	case VerbDelete:
		if !m.Access.Read && !m.Access.Delete {
			return
		}
		m.Access.Delete = !m.Access.Delete
	}
}

// ToggleComponent flips one component's read bit. A hidden module cannot
// expose a component.
func ToggleComponent(m *ModuleSnapshot, componentID string) {
	for i := range m.Components {
		if m.Components[i].ComponentID != componentID {
			continue
		}
		if !m.Components[i].HasAccess && !m.Access.Read {
			return
		}
		m.Components[i].HasAccess = !m.Components[i].HasAccess
		return
	}
}

// ToggleGroupVerb is the column-wide "select all" for one sidebar group:
// a pure toggle of the all-granted state, not a one-way set. When every
// member already has the verb it is cleared for all of them, otherwise it
// is set for all of them. Components participate only in the read column;
// clearing read cascades through each touched module as usual.
func ToggleGroupVerb(snapshot PermissionSnapshot, sidebarName string, verb Verb) {
	allGranted := true
	members := 0
	for i := range snapshot {
		if snapshot[i].SidebarName != sidebarName {
			continue
		}
		if verb != VerbRead && !snapshot[i].Access.Read {
			continue
		}
		members++
		if !verbValue(snapshot[i].Access, verb) {
			allGranted = false
		}
	}
	if members == 0 {
		return
	}

	target := !allGranted
	for i := range snapshot {
		m := &snapshot[i]
		if m.SidebarName != sidebarName {
			continue
		}
		switch verb {
		case VerbRead:
			m.Access.Read = target
			if !target {
				m.Access.Create = false
				m.Access.Update = false
				m.Access.Delete = false
			}
			for j := range m.Components {
				m.Components[j].HasAccess = target
			}
		case VerbCreate:
			if m.Access.Read {
				m.Access.Create = target
			}
		case VerbUpdate:
			if m.Access.Read {
				m.Access.Update = target
			}
		case VerbDelete:
			if m.Access.Read {
				m.Access.Delete = target
			}
		}
	}
}

func verbValue(a models.AccessLevel, verb Verb) bool {
	switch verb {
	case VerbCreate:
		return a.Create
	case VerbRead:
		return a.Read
	case VerbUpdate:
		return a.Update
	case VerbDelete:
		return a.Delete
	}
	return false
}
