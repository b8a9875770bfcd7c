package models

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// PrivilegedRoleName marks the role whose access record is shared across
// organizations instead of one record per organization.
const PrivilegedRoleName = "hotel-owner"

const (
	MatrixTypeRBAC = "RBAC"
	MatrixTypeABAC = "ABAC"
)

const (
	ComponentStatusActive   = "active"
	ComponentStatusInactive = "inactive"
	ComponentStatusArchived = "archived"
)

type Role struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	RoleName  string        `bson:"roleName" json:"roleName" validate:"required"`
	CreatedBy bson.ObjectID `bson:"createdBy,omitempty" json:"createdBy"`
	IsDeleted bool          `bson:"isDeleted" json:"isDeleted"`
	CreatedAt int           `bson:"createdAt" json:"createdAt"`
	UpdatedAt int           `bson:"updatedAt" json:"updatedAt"`
}

func (r *Role) IsPrivileged() bool {
	return strings.EqualFold(strings.TrimSpace(r.RoleName), PrivilegedRoleName)
}

type Organization struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID string        `bson:"organizationId" json:"organizationId" validate:"required"`
	Theme          string        `bson:"theme,omitempty" json:"theme"`
	IsDeleted      bool          `bson:"isDeleted" json:"isDeleted"`
	CreatedAt      int           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      int           `bson:"updatedAt" json:"updatedAt"`
}

type SidebarChild struct {
	Name string `bson:"name" json:"name"`
	Href string `bson:"href" json:"href"`
}

// SidebarModule is a navigable menu entry. Order drives both menu position
// and the tie-break order when modules are grouped by SidebarName.
type SidebarModule struct {
	ID          bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	SidebarName string         `bson:"sidebarName" json:"sidebarName"`
	Name        string         `bson:"name" json:"name" validate:"required"`
	Href        string         `bson:"href" json:"href"`
	Icon        string         `bson:"icon,omitempty" json:"icon"`
	Children    []SidebarChild `bson:"children,omitempty" json:"children"`
	Order       int            `bson:"order" json:"order"`
	IsDeleted   bool           `bson:"isDeleted" json:"isDeleted"`
	CreatedAt   int            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   int            `bson:"updatedAt" json:"updatedAt"`
}

// DynamicComponent is a sub-feature hosted inside one SidebarModule
// (its usage location). Only its read bit is ever controllable.
type DynamicComponent struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ComponentName string        `bson:"componentName" json:"componentName" validate:"required"`
	Description   string        `bson:"description,omitempty" json:"description"`
	Status        string        `bson:"status" json:"status"`
	UsageLocation bson.ObjectID `bson:"usageLocation,omitempty" json:"usageLocation"`
	CreatedBy     bson.ObjectID `bson:"createdBy,omitempty" json:"createdBy"`
	UpdatedBy     bson.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy"`
	DeletedBy     bson.ObjectID `bson:"deletedBy,omitempty" json:"deletedBy"`
	RestoredBy    bson.ObjectID `bson:"restoredBy,omitempty" json:"restoredBy"`
	DeletedAt     int           `bson:"deletedAt,omitempty" json:"deletedAt"`
	RestoredAt    int           `bson:"restoredAt,omitempty" json:"restoredAt"`
	IsDeleted     bool          `bson:"isDeleted" json:"isDeleted"`
	CreatedAt     int           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     int           `bson:"updatedAt" json:"updatedAt"`
}

type AccessLevel struct {
	Create bool `bson:"create" json:"create"`
	Read   bool `bson:"read" json:"read"`
	Update bool `bson:"update" json:"update"`
	Delete bool `bson:"delete" json:"delete"`
}

// ModulePermission is one row of an access matrix: the verbs granted on a
// module plus the set of dynamic components the holder may see inside it.
// Component membership in Components means read=true for that component.
type ModulePermission struct {
	Module      bson.ObjectID   `bson:"module" json:"module"`
	AccessLevel AccessLevel     `bson:"accessLevel" json:"accessLevel"`
	Components  []bson.ObjectID `bson:"components" json:"components"`
}

// AccessRecord is the persisted permission matrix. A zero UserID means the
// record is the role-level (RBAC) baseline; a set UserID is a per-user
// (ABAC) override. OrganizationIDs normally holds one entry; the privileged
// role accumulates every organization it was granted under on one record.
type AccessRecord struct {
	ID              bson.ObjectID      `bson:"_id,omitempty" json:"id"`
	RoleID          bson.ObjectID      `bson:"roleId" json:"roleId"`
	UserID          bson.ObjectID      `bson:"userId,omitempty" json:"userId"`
	OrganizationIDs []bson.ObjectID    `bson:"organizationId" json:"organizationId"`
	Permissions     []ModulePermission `bson:"permissions" json:"permissions"`
	MatrixType      string             `bson:"matrixType" json:"matrixType"`
	IsDeleted       bool               `bson:"isDeleted" json:"isDeleted"`
	CreatedAt       int                `bson:"createdAt" json:"createdAt"`
	UpdatedAt       int                `bson:"updatedAt" json:"updatedAt"`
}

func (r *AccessRecord) IsUserLevel() bool {
	return !r.UserID.IsZero()
}

func (r *AccessRecord) HasOrganization(orgID bson.ObjectID) bool {
	for _, id := range r.OrganizationIDs {
		if id == orgID {
			return true
		}
	}
	return false
}

// Identity is the verified session triple every core operation receives
// explicitly. Nothing in the service reads ambient session state.
type Identity struct {
	UserID         bson.ObjectID
	RoleID         bson.ObjectID
	OrganizationID bson.ObjectID
}

type Claims struct {
	jwt.RegisteredClaims
	UserID         string `json:"userId"`
	RoleID         string `json:"roleId"`
	OrganizationID string `json:"organizationId"`
}
