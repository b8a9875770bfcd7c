package models

// Response shapes returned by the resolver and writer. These are joined
// against the live catalogs so callers never render stale names or icons
// cached inside an AccessRecord.

type SidebarItem struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Href     string         `json:"href"`
	Icon     string         `json:"icon"`
	Children []SidebarChild `json:"children"`
	Order    int            `json:"order"`
}

type SidebarGroup struct {
	SidebarName string        `json:"sidebarName"`
	Order       int           `json:"order"`
	Items       []SidebarItem `json:"items"`
}

type ComponentGrant struct {
	ID            string `json:"id"`
	ComponentName string `json:"componentName"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status,omitempty"`
	HasAccess     bool   `json:"hasAccess"`
}

type ModuleGrant struct {
	ModuleID    string           `json:"moduleId"`
	Name        string           `json:"name"`
	SidebarName string           `json:"sidebarName"`
	Icon        string           `json:"icon"`
	Order       int              `json:"order"`
	Permissions AccessLevel      `json:"permissions"`
	Components  []ComponentGrant `json:"dynamicComponents"`
}

type RoleRef struct {
	ID       string `json:"id"`
	RoleName string `json:"roleName"`
}

type OrganizationRef struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
}

// RolePermissionsView backs the permission-matrix editor. HasRecord
// distinguishes "no access record yet" (legitimate first-time setup) from
// "record exists but grants nothing".
type RolePermissionsView struct {
	Role        RoleRef       `json:"role"`
	HasRecord   bool          `json:"hasRecord"`
	MatrixType  string        `json:"matrixType,omitempty"`
	Permissions []ModuleGrant `json:"permissions"`
}

type CatalogComponent struct {
	ID            string `json:"id"`
	ComponentName string `json:"componentName"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status"`
}

type CatalogSidebarItem struct {
	ID                string             `json:"id"`
	SidebarName       string             `json:"sidebarName"`
	Name              string             `json:"name"`
	Icon              string             `json:"icon"`
	Order             int                `json:"order"`
	Children          []SidebarChild     `json:"children"`
	DynamicComponents []CatalogComponent `json:"dynamicComponents"`
}

type AccessMatrixCatalog struct {
	Roles        []RoleRef            `json:"roles"`
	SidebarItems []CatalogSidebarItem `json:"sidebarItems"`
}

// AccessRecordView is the fully populated record returned by every
// successful write so callers can render a confirmation without a second
// round-trip.
type AccessRecordView struct {
	ID            string            `json:"id"`
	Role          RoleRef           `json:"role"`
	UserID        string            `json:"userId,omitempty"`
	Organizations []OrganizationRef `json:"organizations"`
	Permissions   []ModuleGrant     `json:"permissions"`
	MatrixType    string            `json:"matrixType"`
	CreatedAt     int               `json:"createdAt"`
	UpdatedAt     int               `json:"updatedAt"`
}
