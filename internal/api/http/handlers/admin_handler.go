package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voice-servicedesk/internal/api/dto"
	"github.com/spec-kit/voice-servicedesk/internal/domain"
	"github.com/spec-kit/voice-servicedesk/internal/service"
	apperrors "github.com/spec-kit/voice-servicedesk/pkg/util/errorutil"
)

// AdminHandler exposes agent-configuration endpoints.
type AdminHandler struct {
	agentConfig *service.AgentConfigService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(agentConfig *service.AgentConfigService) *AdminHandler {
	return &AdminHandler{agentConfig: agentConfig}
}

// GetConfig handles GET /api/admin/config.
func (h *AdminHandler) GetConfig(c *fiber.Ctx) error {
	cfg := h.agentConfig.Get(c.UserContext())
	return c.JSON(dto.AgentConfigResponse{
		SystemPrompt:  cfg.SystemPrompt,
		Voice:         cfg.Voice,
		AgentName:     cfg.AgentName,
		DefaultPrompt: service.DefaultSystemPrompt,
	})
}

// UpdateConfig handles PUT /api/admin/config.
func (h *AdminHandler) UpdateConfig(c *fiber.Ctx) error {
	var req dto.AgentConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.SystemPrompt) == "" {
		return apperrors.NewValidationError("system_prompt is required", nil)
	}

	defaults := h.agentConfig.Default()
	cfg := domain.AgentConfig{
		SystemPrompt: req.SystemPrompt,
		Voice:        req.Voice,
		AgentName:    req.AgentName,
	}
	if cfg.Voice == "" {
		cfg.Voice = defaults.Voice
	}
	if cfg.AgentName == "" {
		cfg.AgentName = defaults.AgentName
	}

	if err := h.agentConfig.Update(c.UserContext(), cfg); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"updated": true})
}

// ResetConfig handles POST /api/admin/config/reset.
func (h *AdminHandler) ResetConfig(c *fiber.Ctx) error {
	if err := h.agentConfig.Reset(c.UserContext()); err != nil {
		return err
	}
	cfg := h.agentConfig.Default()
	return c.JSON(dto.AgentConfigResponse{
		SystemPrompt:  cfg.SystemPrompt,
		Voice:         cfg.Voice,
		AgentName:     cfg.AgentName,
		DefaultPrompt: service.DefaultSystemPrompt,
	})
}
