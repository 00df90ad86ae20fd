package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
)

// ErrDuplicateArticleID signals a uniqueness conflict on article_id.
var ErrDuplicateArticleID = errors.New("duplicate article id")

// ArticleUpdate describes a partial article mutation.
type ArticleUpdate struct {
	Title    *string
	Content  *string
	Category *domain.Category
	Tags     *[]string
}

// IsEmpty reports whether the update carries no fields.
func (u ArticleUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.Category == nil && u.Tags == nil
}

// ArticleRepository encapsulates knowledge-base persistence.
type ArticleRepository interface {
	Insert(ctx context.Context, article *domain.Article) error
	MaxArticleNumber(ctx context.Context) (int, error)
	GetByArticleID(ctx context.Context, articleID string) (*domain.Article, error)
	List(ctx context.Context) ([]domain.Article, error)
	Update(ctx context.Context, articleID string, update ArticleUpdate) (bool, error)
	Delete(ctx context.Context, articleID string) (bool, error)
	SearchRanked(ctx context.Context, query string, limit int) ([]domain.Article, error)
	SearchPattern(ctx context.Context, pattern string, limit int) ([]domain.Article, error)
}

type articleRepository struct {
	pool *pgxpool.Pool
}

// NewArticleRepository instantiates repository.
func NewArticleRepository(pool *pgxpool.Pool) ArticleRepository {
	return &articleRepository{pool: pool}
}

const articleColumns = `id, article_id, title, content, category, tags, source, created_at, updated_at`

func (r *articleRepository) Insert(ctx context.Context, article *domain.Article) error {
	const query = `
        INSERT INTO kb_articles (article_id, title, content, category, tags, source)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		article.ArticleID,
		article.Title,
		article.Content,
		article.Category,
		article.Tags,
		article.Source,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateArticleID
		}
		return err
	}
	return nil
}

// MaxArticleNumber returns the highest KB-<digits> suffix, or 0.
func (r *articleRepository) MaxArticleNumber(ctx context.Context) (int, error) {
	const query = `
        SELECT COALESCE(MAX(substring(article_id FROM '^KB-(\d+)$')::int), 0)
        FROM kb_articles
        WHERE article_id ~ '^KB-\d+$'`
	var max int
	if err := r.pool.QueryRow(ctx, query).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

func (r *articleRepository) GetByArticleID(ctx context.Context, articleID string) (*domain.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM kb_articles WHERE article_id=$1`
	var article domain.Article
	if err := r.pool.QueryRow(ctx, query, articleID).Scan(
		&article.ID,
		&article.ArticleID,
		&article.Title,
		&article.Content,
		&article.Category,
		&article.Tags,
		&article.Source,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) List(ctx context.Context) ([]domain.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM kb_articles ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

func (r *articleRepository) Update(ctx context.Context, articleID string, update ArticleUpdate) (bool, error) {
	const query = `
        UPDATE kb_articles SET
            title=COALESCE($2, title),
            content=COALESCE($3, content),
            category=COALESCE($4, category),
            tags=COALESCE($5, tags),
            updated_at=NOW()
        WHERE article_id=$1`
	var tags any
	if update.Tags != nil {
		tags = *update.Tags
	}
	cmd, err := r.pool.Exec(ctx, query, articleID, update.Title, update.Content, update.Category, tags)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *articleRepository) Delete(ctx context.Context, articleID string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM kb_articles WHERE article_id=$1`, articleID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// SearchRanked runs a relevance-ranked full-text search over title, content
// and tags.
func (r *articleRepository) SearchRanked(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	sql := `
        SELECT ` + articleColumns + `
        FROM kb_articles
        WHERE to_tsvector('english', title || ' ' || content || ' ' || array_to_string(tags, ' '))
              @@ plainto_tsquery('english', $1)
        ORDER BY ts_rank(
            to_tsvector('english', title || ' ' || content || ' ' || array_to_string(tags, ' ')),
            plainto_tsquery('english', $1)) DESC
        LIMIT $2`
	rows, err := r.pool.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// SearchPattern applies a case-insensitive regex alternation across title,
// content and tags. Used as the fallback when ranked search yields nothing.
func (r *articleRepository) SearchPattern(ctx context.Context, pattern string, limit int) ([]domain.Article, error) {
	sql := `
        SELECT ` + articleColumns + `
        FROM kb_articles
        WHERE title ~* $1
           OR content ~* $1
           OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ~* $1)
        LIMIT $2`
	rows, err := r.pool.Query(ctx, sql, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

func scanArticles(rows pgx.Rows) ([]domain.Article, error) {
	var result []domain.Article
	for rows.Next() {
		var article domain.Article
		if err := rows.Scan(
			&article.ID,
			&article.ArticleID,
			&article.Title,
			&article.Content,
			&article.Category,
			&article.Tags,
			&article.Source,
			&article.CreatedAt,
			&article.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, article)
	}
	return result, rows.Err()
}
