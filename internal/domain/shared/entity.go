package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// AuditedAggregateRoot extends BaseAggregateRoot with actor audit columns.
// Actor ids are opaque strings resolved outside the core; the domain validates
// only their shape.
type AuditedAggregateRoot struct {
	BaseAggregateRoot
	CreatedBy string `gorm:"type:varchar(36);not null"`
	UpdatedBy string `gorm:"type:varchar(36);not null"`
}

// NewAuditedAggregateRoot creates a new audited aggregate root
func NewAuditedAggregateRoot(actorID string) AuditedAggregateRoot {
	return AuditedAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		CreatedBy:         actorID,
		UpdatedBy:         actorID,
	}
}

// SetUpdatedBy records the actor responsible for the latest mutation
func (a *AuditedAggregateRoot) SetUpdatedBy(actorID string) {
	a.UpdatedBy = actorID
}

// IsActorID reports whether s is a plausible actor id (UUID-shaped).
func IsActorID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
