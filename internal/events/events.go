// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"callcenter_backend/platform/events"
	"callcenter_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// InMemoryBus is a type alias to the platform InMemoryBus
type InMemoryBus = events.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// User Domain Events
// =============================================================================

// UserCreated is published when an admin creates a new agent account.
// The plain password travels only on the in-process bus so the notification
// module can mail login credentials; it is never persisted.
type UserCreated struct {
	BaseEvent
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"-"`
}

func (e UserCreated) EventName() string { return "users.user.created" }

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadDispositioned is published after a disposition apply commits.
// Admin dashboards consume it via SSE; delivery is fire-and-forget.
type LeadDispositioned struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	AgentID     uuid.UUID `json:"agentId"`
	Disposition string    `json:"disposition"`
}

func (e LeadDispositioned) EventName() string { return "leads.lead.dispositioned" }

// LeadsReassigned is published after a bulk reassignment.
type LeadsReassigned struct {
	BaseEvent
	LeadCount int64      `json:"leadCount"`
	TargetID  *uuid.UUID `json:"targetId,omitempty"`
}

func (e LeadsReassigned) EventName() string { return "leads.leads.reassigned" }

// ImportCompleted is published when an import job finishes, successfully or not.
type ImportCompleted struct {
	BaseEvent
	JobID        uuid.UUID `json:"jobId"`
	ListName     string    `json:"listName"`
	InsertedRows int64     `json:"insertedRows"`
	Failed       bool      `json:"failed"`
}

func (e ImportCompleted) EventName() string { return "leads.import.completed" }
