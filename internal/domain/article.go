package domain

import "time"

// ArticleSourcePreloaded marks articles shipped with the seed data.
const ArticleSourcePreloaded = "preloaded"

// ArticleSourceManual marks articles created through the admin API.
const ArticleSourceManual = "manual"

// Article is a knowledge-base entry. ArticleID carries the KB-NNN
// identifier and is immutable once assigned.
type Article struct {
	ID        int64
	ArticleID string
	Title     string
	Content   string
	Category  Category
	Tags      []string
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
