// Package projection pairs domain entities with the timestamps their store assigned.
package projection

import "time"

// Metadata is owned by the persistence layer. Domain code never sets it.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch returns metadata for a write at now. A zero receiver marks a first insert.
func (m Metadata) Touch(now time.Time) Metadata {
	if m.CreatedAt.IsZero() {
		return Metadata{CreatedAt: now, UpdatedAt: now}
	}
	return Metadata{CreatedAt: m.CreatedAt, UpdatedAt: now}
}

// Projection is what repositories hand back: the stored entity plus its metadata.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

