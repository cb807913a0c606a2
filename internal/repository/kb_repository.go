package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// KBRepository persists knowledge base articles.
type KBRepository interface {
	Create(ctx context.Context, article *domain.KBArticle) error
	Update(ctx context.Context, article *domain.KBArticle) error
	GetByID(ctx context.Context, organizationID, id string) (*domain.KBArticle, error)
	List(ctx context.Context, organizationID string, publishedOnly bool, limit, offset int) ([]domain.KBArticle, error)
}

type kbRepository struct {
	pool *pgxpool.Pool
}

// NewKBRepository builds repository.
func NewKBRepository(pool *pgxpool.Pool) KBRepository {
	return &kbRepository{pool: pool}
}

const kbColumns = `id, organization_id, author_id, title, body, category, published, created_at, updated_at`

func (r *kbRepository) Create(ctx context.Context, article *domain.KBArticle) error {
	const query = `
        INSERT INTO kb_articles (organization_id, author_id, title, body, category, published)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		article.OrganizationID,
		article.AuthorID,
		article.Title,
		article.Body,
		article.Category,
		article.Published,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
}

func (r *kbRepository) Update(ctx context.Context, article *domain.KBArticle) error {
	const query = `
        UPDATE kb_articles SET title=$1, body=$2, category=$3, published=$4, updated_at=NOW()
        WHERE id=$5 AND organization_id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		article.Title,
		article.Body,
		article.Category,
		article.Published,
		article.ID,
		article.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *kbRepository) GetByID(ctx context.Context, organizationID, id string) (*domain.KBArticle, error) {
	query := `SELECT ` + kbColumns + ` FROM kb_articles WHERE id=$1 AND organization_id=$2`
	return scanKBArticle(r.pool.QueryRow(ctx, query, id, organizationID))
}

func (r *kbRepository) List(ctx context.Context, organizationID string, publishedOnly bool, limit, offset int) ([]domain.KBArticle, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + kbColumns + ` FROM kb_articles WHERE organization_id=$1`
	if publishedOnly {
		query += ` AND published`
	}
	query += ` ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.KBArticle
	for rows.Next() {
		article, err := scanKBArticle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *article)
	}
	return result, rows.Err()
}

func scanKBArticle(row pgx.Row) (*domain.KBArticle, error) {
	var article domain.KBArticle
	if err := row.Scan(
		&article.ID,
		&article.OrganizationID,
		&article.AuthorID,
		&article.Title,
		&article.Body,
		&article.Category,
		&article.Published,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &article, nil
}
