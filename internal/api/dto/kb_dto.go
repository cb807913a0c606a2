package dto

import (
	"time"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// KBArticleRequest creates or updates a knowledge base article.
type KBArticleRequest struct {
	Title     string `json:"title" validate:"required,max=500"`
	Body      string `json:"body" validate:"required"`
	Category  string `json:"category,omitempty" validate:"max=100"`
	Published bool   `json:"published"`
}

// KBArticleResponse is the wire shape of an article.
type KBArticleResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category,omitempty"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KBArticleFromDomain maps an article to its wire shape.
func KBArticleFromDomain(a *domain.KBArticle) KBArticleResponse {
	return KBArticleResponse{
		ID:        a.ID,
		AuthorID:  a.AuthorID,
		Title:     a.Title,
		Body:      a.Body,
		Category:  a.Category,
		Published: a.Published,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// PortalTicketRequest opens a ticket via the client portal.
type PortalTicketRequest struct {
	Subject     string `json:"subject" validate:"required,max=500"`
	Description string `json:"description" validate:"required"`
	Type        string `json:"type" validate:"required"`
}

// PortalSettingsRequest updates portal configuration.
type PortalSettingsRequest struct {
	WelcomeMessage     string   `json:"welcome_message,omitempty"`
	AllowedTicketTypes []string `json:"allowed_ticket_types,omitempty"`
	SmsUpdatesEnabled  bool     `json:"sms_updates_enabled"`
}
