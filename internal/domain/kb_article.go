package domain

import "time"

// KBArticle is a knowledge base entry.
type KBArticle struct {
	ID             string
	OrganizationID string
	AuthorID       string
	Title          string
	Body           string
	Category       string
	Published      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
