package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/voice-servicedesk/internal/ai"
	"github.com/spec-kit/voice-servicedesk/internal/domain"
	"github.com/spec-kit/voice-servicedesk/internal/repository"
	"github.com/spec-kit/voice-servicedesk/internal/textextract"
)

const (
	searchResultLimit     = 3
	searchFallbackTokens  = 3
	promptContentLimit    = 800
	rawSummaryLimit       = 400
	uploadPromptLimit     = 6000
	uploadFallbackLimit   = 3000
	articleCreateAttempts = 3
)

const searchSystemPrompt = "You are an IT support assistant. Summarize KB articles into a concise voice-friendly troubleshooting response. Maximum %d sentences."

const uploadSystemPrompt = "You are an IT knowledge base manager. Extract and structure IT troubleshooting information from documents into KB articles."

// SearchResult is the outcome of a knowledge-base search. Search never
// fails outright once a match exists; degraded paths fill Summary from the
// raw top match.
type SearchResult struct {
	Found      bool
	Summary    string
	ArticleIDs []string
	Message    string
}

// ArticleRef identifies a stored article.
type ArticleRef struct {
	ArticleID string `json:"article_id"`
	Title     string `json:"title"`
}

// ArticleCreateInput describes article creation payload.
type ArticleCreateInput struct {
	Title    string
	Content  string
	Category domain.Category
	Tags     []string
	Source   string
}

// KnowledgeService coordinates knowledge-base search, summarization and
// article management.
type KnowledgeService struct {
	articles   repository.ArticleRepository
	summarizer ai.Summarizer
	extractor  textextract.Extractor
	logger     *zap.Logger

	maxSentences int
}

// NewKnowledgeService constructs the service.
func NewKnowledgeService(articles repository.ArticleRepository, summarizer ai.Summarizer, extractor textextract.Extractor, maxSentences int, logger *zap.Logger) *KnowledgeService {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	return &KnowledgeService{
		articles:     articles,
		summarizer:   summarizer,
		extractor:    extractor,
		logger:       logger,
		maxSentences: maxSentences,
	}
}

// Search runs a relevance-ranked full-text search, falling back to a
// case-insensitive token alternation when ranked search is unavailable or
// empty, then asks the summarizer for a voice-length answer.
func (s *KnowledgeService) Search(ctx context.Context, query string) SearchResult {
	articles, err := s.articles.SearchRanked(ctx, query, searchResultLimit)
	if err != nil {
		s.logger.Warn("ranked search unavailable", zap.Error(err))
		articles = nil
	}
	if len(articles) == 0 {
		if pattern := fallbackPattern(query); pattern != "" {
			articles, err = s.articles.SearchPattern(ctx, pattern, searchResultLimit)
			if err != nil {
				s.logger.Warn("pattern search failed", zap.Error(err))
				articles = nil
			}
		}
	}
	if len(articles) == 0 {
		return SearchResult{
			Found:   false,
			Message: "No relevant articles found in the knowledge base. Please describe your issue in more detail so I can create a ticket.",
		}
	}

	ids := make([]string, 0, len(articles))
	blocks := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ArticleID)
		blocks = append(blocks, fmt.Sprintf("Title: %s\n%s", a.Title, truncate(a.Content, promptContentLimit)))
	}

	system := fmt.Sprintf(searchSystemPrompt, s.maxSentences)
	user := fmt.Sprintf("User query: %s\n\nKB Articles:\n%s\n\nProvide a concise troubleshooting response suitable for voice (max %d sentences).",
		query, strings.Join(blocks, "\n\n"), s.maxSentences)

	summary, err := s.summarizer.Complete(ctx, system, user)
	if err != nil {
		s.logger.Warn("summarizer failed; returning raw article", zap.Error(err))
		top := articles[0]
		summary = fmt.Sprintf("From %s: %s", top.Title, truncate(top.Content, rawSummaryLimit))
	}
	return SearchResult{Found: true, Summary: summary, ArticleIDs: ids}
}

// CreateArticle allocates the next KB-NNN identifier and inserts the
// article, with the same bounded collision retry as ticket numbering.
func (s *KnowledgeService) CreateArticle(ctx context.Context, input ArticleCreateInput) (*domain.Article, error) {
	last, err := s.articles.MaxArticleNumber(ctx)
	if err != nil {
		return nil, err
	}
	category := input.Category
	if !domain.ValidCategory(category) {
		category = domain.CategoryGeneral
	}
	source := input.Source
	if source == "" {
		source = domain.ArticleSourceManual
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	for attempt := 0; attempt < articleCreateAttempts; attempt++ {
		article := &domain.Article{
			ArticleID: fmt.Sprintf("KB-%03d", last+1+attempt),
			Title:     strings.TrimSpace(input.Title),
			Content:   input.Content,
			Category:  category,
			Tags:      tags,
			Source:    source,
		}
		err := s.articles.Insert(ctx, article)
		if err == nil {
			return article, nil
		}
		if !errors.Is(err, repository.ErrDuplicateArticleID) {
			return nil, err
		}
	}
	return nil, errors.New("could not allocate an article id")
}

// ListArticles returns all articles, newest first.
func (s *KnowledgeService) ListArticles(ctx context.Context) ([]domain.Article, error) {
	return s.articles.List(ctx)
}

// UpdateArticle applies a partial update. Returns false when no article
// matched.
func (s *KnowledgeService) UpdateArticle(ctx context.Context, rawID string, update repository.ArticleUpdate) (bool, error) {
	return s.articles.Update(ctx, NormalizeID(rawID), update)
}

// DeleteArticle removes an article.
func (s *KnowledgeService) DeleteArticle(ctx context.Context, rawID string) (bool, error) {
	return s.articles.Delete(ctx, NormalizeID(rawID))
}

// UploadDocument extracts text from an uploaded file, asks the LLM to
// structure it into articles, and stores them. When structuring fails the
// document is stored as a single article titled from the filename.
func (s *KnowledgeService) UploadDocument(ctx context.Context, filename string, content []byte) ([]ArticleRef, error) {
	text, err := s.extractor.Extract(filename, content)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("could not extract text from the document")
	}

	drafts := s.structureArticles(ctx, filename, text)

	saved := make([]ArticleRef, 0, len(drafts))
	for _, draft := range drafts {
		article, err := s.CreateArticle(ctx, draft)
		if err != nil {
			return saved, err
		}
		saved = append(saved, ArticleRef{ArticleID: article.ArticleID, Title: article.Title})
	}
	return saved, nil
}

type structuredArticles struct {
	Articles []struct {
		Title    string   `json:"title"`
		Content  string   `json:"content"`
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
	} `json:"articles"`
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

func (s *KnowledgeService) structureArticles(ctx context.Context, filename, text string) []ArticleCreateInput {
	user := fmt.Sprintf(`Document: %s
Content: %s

Extract 1-5 IT troubleshooting knowledge base articles from this document. Return ONLY valid JSON:
{
  "articles": [
    {
      "title": "Article title",
      "content": "Full troubleshooting content with steps",
      "category": "network|software|hardware|access|email|general",
      "tags": ["tag1", "tag2"]
    }
  ]
}`, filename, truncate(text, uploadPromptLimit))

	response, err := s.summarizer.Complete(ctx, uploadSystemPrompt, user)
	if err == nil {
		if raw := jsonObjectPattern.FindString(response); raw != "" {
			var parsed structuredArticles
			if json.Unmarshal([]byte(raw), &parsed) == nil && len(parsed.Articles) > 0 {
				drafts := make([]ArticleCreateInput, 0, len(parsed.Articles))
				for _, a := range parsed.Articles {
					drafts = append(drafts, ArticleCreateInput{
						Title:    a.Title,
						Content:  a.Content,
						Category: domain.Category(a.Category),
						Tags:     a.Tags,
						Source:   filename,
					})
				}
				return drafts
			}
		}
		s.logger.Warn("could not parse structured articles; storing document as-is", zap.String("file", filename))
	} else {
		s.logger.Warn("article structuring failed; storing document as-is", zap.Error(err))
	}

	return []ArticleCreateInput{{
		Title:    titleFromFilename(filename),
		Content:  truncate(text, uploadFallbackLimit),
		Category: domain.CategoryGeneral,
		Tags:     []string{"uploaded"},
		Source:   filename,
	}}
}

// fallbackPattern builds a case-insensitive alternation from up to the
// first three whitespace-split query tokens, regex-quoted.
func fallbackPattern(query string) string {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) > searchFallbackTokens {
		tokens = tokens[:searchFallbackTokens]
	}
	quoted := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		quoted = append(quoted, regexp.QuoteMeta(tok))
	}
	return strings.Join(quoted, "|")
}

func titleFromFilename(filename string) string {
	base := filename
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	base = strings.ReplaceAll(base, "_", " ")
	return strings.Title(base) //nolint:staticcheck
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
