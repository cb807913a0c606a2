package domain

import "time"

// Organization is the tenant root. Every operational entity is scoped
// by its organization ID.
type Organization struct {
	ID        string
	Name      string
	Timezone  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
