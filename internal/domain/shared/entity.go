package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is embedded by every persisted domain type.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a fresh identity with matching created/updated times.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch records a modification.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// BaseAggregateRoot is embedded by entities that are saved with an
// optimistic version check (sales, products) or that raise events.
// Version starts at 1 and moves by one per committed mutation.
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	pending []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// IncrementVersion bumps the version and the modification time together.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
	a.Touch()
}

// AddDomainEvent queues an event until the aggregate has been stored.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns the queued events without draining them.
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

// PullDomainEvents drains the queue. Callers publish the result after the
// owning transaction has committed.
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}
