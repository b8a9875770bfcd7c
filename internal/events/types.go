package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// AccessMatrixCreated is emitted when a brand-new access record is persisted.
	AccessMatrixCreated EventType = "access.matrix.created"
	// AccessMatrixUpdated is emitted when an existing access record changes.
	AccessMatrixUpdated EventType = "access.matrix.updated"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Version   string    `json:"version"`
}

// AccessMatrixEvent tells downstream services (gateway, dashboard) that a
// role's or user's grants changed and any cached view should be refreshed.
type AccessMatrixEvent struct {
	BaseEvent
	RecordID        string   `json:"record_id"`
	RoleID          string   `json:"role_id"`
	UserID          string   `json:"user_id,omitempty"`
	OrganizationIDs []string `json:"organization_ids"`
	MatrixType      string   `json:"matrix_type"`
	ChangedModules  int      `json:"changed_modules"`
}

func NewAccessMatrixEvent(eventType EventType, recordID, roleID, userID string, organizationIDs []string, matrixType string, changedModules int) *AccessMatrixEvent {
	return &AccessMatrixEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			Timestamp: time.Now().Unix(),
			Version:   "1.0",
		},
		RecordID:        recordID,
		RoleID:          roleID,
		UserID:          userID,
		OrganizationIDs: organizationIDs,
		MatrixType:      matrixType,
		ChangedModules:  changedModules,
	}
}

func (e *AccessMatrixEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
