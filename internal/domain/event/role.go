package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RoleType int

const (
	RoleAreaLead RoleType = iota
)

func (r RoleType) String() string {
	switch r {
	case RoleAreaLead:
		return "area_lead"
	default:
		return "unknown"
	}
}

// AreaRole grants a marshal a role within an area. Only the area-lead role
// exists today; the table replaced the inline lead list on Area.
type AreaRole struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	MarshalID uuid.UUID `json:"marshal_id"`
	AreaID    uuid.UUID `json:"area_id"`
	Role      RoleType  `json:"role"`

	CreatedAt time.Time `json:"created_at"`
}

func NewAreaRole(eventID, marshalID, areaID uuid.UUID, role RoleType) (*AreaRole, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID cannot be nil")
	}
	if marshalID == uuid.Nil {
		return nil, fmt.Errorf("marshal ID cannot be nil")
	}
	if areaID == uuid.Nil {
		return nil, fmt.Errorf("area ID cannot be nil")
	}

	return &AreaRole{
		ID:        uuid.New(),
		EventID:   eventID,
		MarshalID: marshalID,
		AreaID:    areaID,
		Role:      role,
		CreatedAt: time.Now(),
	}, nil
}
