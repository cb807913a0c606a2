package service

import (
	"context"
	"strings"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/tenant"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// KBService manages knowledge base articles. Unpublished articles are
// only visible to operators.
type KBService struct {
	articles repository.KBRepository
	audit    *AuditService
}

func NewKBService(kbRepo repository.KBRepository, audit *AuditService) *KBService {
	return &KBService{articles: kbRepo, audit: audit}
}

// CreateArticle stores a new draft article.
func (s *KBService) CreateArticle(ctx context.Context, authorID string, article *domain.KBArticle) (*domain.KBArticle, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	article.Title = strings.TrimSpace(article.Title)
	if article.Title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	article.OrganizationID = orgID
	article.AuthorID = authorID
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}
	s.audit.RecordChange(ctx, orgID, "kb.article_created", "kb_article", article.ID,
		nil, map[string]any{"title": article.Title}, domain.SubjectTypeUser, &authorID)
	return article, nil
}

// UpdateArticle persists article edits, including publish state.
func (s *KBService) UpdateArticle(ctx context.Context, editorID string, article *domain.KBArticle) (*domain.KBArticle, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.articles.GetByID(ctx, orgID, article.ID)
	if err != nil {
		return nil, err
	}
	article.OrganizationID = orgID
	article.AuthorID = current.AuthorID
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	s.audit.RecordChange(ctx, orgID, "kb.article_updated", "kb_article", article.ID,
		map[string]any{"published": current.Published}, map[string]any{"published": article.Published},
		domain.SubjectTypeUser, &editorID)
	return article, nil
}

// GetArticle fetches one article, restricting portal callers to
// published content.
func (s *KBService) GetArticle(ctx context.Context, id string, publishedOnly bool) (*domain.KBArticle, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	article, err := s.articles.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if publishedOnly && !article.Published {
		return nil, apperrors.NewNotFound("kb article", nil)
	}
	return article, nil
}

// ListArticles lists articles in scope.
func (s *KBService) ListArticles(ctx context.Context, publishedOnly bool, limit, offset int) ([]domain.KBArticle, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.articles.List(ctx, orgID, publishedOnly, limit, offset)
}
