package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voice-servicedesk/internal/api/dto"
	"github.com/spec-kit/voice-servicedesk/internal/domain"
	"github.com/spec-kit/voice-servicedesk/internal/repository"
	"github.com/spec-kit/voice-servicedesk/internal/service"
	"github.com/spec-kit/voice-servicedesk/internal/textextract"
	apperrors "github.com/spec-kit/voice-servicedesk/pkg/util/errorutil"
)

// KnowledgeHandler exposes knowledge-base endpoints.
type KnowledgeHandler struct {
	knowledge *service.KnowledgeService
}

// NewKnowledgeHandler constructs handler.
func NewKnowledgeHandler(knowledge *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: knowledge}
}

// List handles GET /api/kb.
func (h *KnowledgeHandler) List(c *fiber.Ctx) error {
	articles, err := h.knowledge.ListArticles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"count":    len(articles),
		"articles": dto.NewArticleResponses(articles),
	})
}

// Create handles POST /api/kb.
func (h *KnowledgeHandler) Create(c *fiber.Ctx) error {
	var req dto.ArticleCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("title and content are required", nil)
	}

	article, err := h.knowledge.CreateArticle(c.UserContext(), service.ArticleCreateInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: domain.Category(req.Category),
		Tags:     req.Tags,
		Source:   domain.ArticleSourceManual,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewArticleResponse(*article))
}

// Update handles PUT /api/kb/:id.
func (h *KnowledgeHandler) Update(c *fiber.Ctx) error {
	var req dto.ArticleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Empty() {
		return apperrors.NewValidationError("no fields to update", nil)
	}

	update := repository.ArticleUpdate{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	}
	if req.Category != nil {
		category := domain.Category(strings.ToLower(*req.Category))
		if !domain.ValidCategory(category) {
			return apperrors.NewValidationError("invalid category", map[string]any{"category": *req.Category})
		}
		update.Category = &category
	}

	id := service.NormalizeID(c.Params("id"))
	ok, err := h.knowledge.UpdateArticle(c.UserContext(), id, update)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFound("article", map[string]any{"article_id": id})
	}
	return c.JSON(fiber.Map{"updated": true, "article_id": id})
}

// Delete handles DELETE /api/kb/:id.
func (h *KnowledgeHandler) Delete(c *fiber.Ctx) error {
	id := service.NormalizeID(c.Params("id"))
	ok, err := h.knowledge.DeleteArticle(c.UserContext(), id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFound("article", map[string]any{"article_id": id})
	}
	return c.JSON(fiber.Map{"deleted": true, "article_id": id})
}

// Search handles GET /api/kb/search.
func (h *KnowledgeHandler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return apperrors.NewValidationError("query parameter q is required", nil)
	}

	result := h.knowledge.Search(c.UserContext(), query)
	if !result.Found {
		return c.JSON(fiber.Map{"found": false, "message": result.Message})
	}
	return c.JSON(fiber.Map{
		"found":    true,
		"summary":  result.Summary,
		"articles": result.ArticleIDs,
	})
}

// Upload handles POST /api/kb/upload.
func (h *KnowledgeHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("a file upload is required", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	refs, err := h.knowledge.UploadDocument(c.UserContext(), fileHeader.Filename, content)
	if err != nil {
		if errors.Is(err, textextract.ErrUnsupportedType) {
			return apperrors.NewValidationError("unsupported file type", map[string]any{"filename": fileHeader.Filename})
		}
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"created":  len(refs),
		"articles": refs,
	})
}
