package dto

import (
	"time"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
)

// ArticleCreateRequest is the POST /api/kb payload.
type ArticleCreateRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// ArticleUpdateRequest is the PUT /api/kb/:id payload. Absent fields are
// left unchanged; an entirely empty payload is rejected.
type ArticleUpdateRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
}

// Empty reports whether the update carries no fields.
func (r ArticleUpdateRequest) Empty() bool {
	return r.Title == nil && r.Content == nil && r.Category == nil && r.Tags == nil
}

// ArticleResponse is the wire shape of a knowledge-base article.
type ArticleResponse struct {
	ArticleID string   `json:"article_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Source    string   `json:"source"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// NewArticleResponse maps a domain article onto the wire shape.
func NewArticleResponse(a domain.Article) ArticleResponse {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return ArticleResponse{
		ArticleID: a.ArticleID,
		Title:     a.Title,
		Content:   a.Content,
		Category:  string(a.Category),
		Tags:      tags,
		Source:    a.Source,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339),
	}
}

// NewArticleResponses maps an article slice.
func NewArticleResponses(articles []domain.Article) []ArticleResponse {
	out := make([]ArticleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, NewArticleResponse(a))
	}
	return out
}
