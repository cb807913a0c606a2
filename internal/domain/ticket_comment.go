package domain

import "time"

// CommentAuthorType identifies who wrote a ticket comment.
type CommentAuthorType string

const (
	AuthorTypeUser   CommentAuthorType = "user"
	AuthorTypePortal CommentAuthorType = "portal"
	AuthorTypeSystem CommentAuthorType = "system"
)

// TicketComment is an entry in a ticket's conversation thread.
// Internal comments are hidden from portal users.
type TicketComment struct {
	ID             string
	OrganizationID string
	TicketID       string
	AuthorType     CommentAuthorType
	AuthorID       *string
	Body           string
	IsInternal     bool
	CreatedAt      time.Time
}
