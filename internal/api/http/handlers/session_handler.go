package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/voice-servicedesk/internal/config"
	apperrors "github.com/spec-kit/voice-servicedesk/pkg/util/errorutil"
)

// SessionHandler mints short-lived client credentials for direct browser
// connections to the upstream realtime peer.
type SessionHandler struct {
	cfg    config.RealtimeConfig
	client *http.Client
	logger *zap.Logger
}

// NewSessionHandler returns a new handler instance.
func NewSessionHandler(cfg config.RealtimeConfig, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Create handles POST /api/session. The upstream response body is relayed
// verbatim.
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	if h.cfg.APIKey == "" {
		return apperrors.NewUpstreamError("realtime API key not configured", nil)
	}

	payload, err := json.Marshal(fiber.Map{
		"expires_after": fiber.Map{"seconds": h.cfg.SessionTokenTTLSeconds},
	})
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(c.UserContext(), http.MethodPost, h.cfg.SessionTokenURL, bytes.NewReader(payload))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Error("session token request failed", zap.Error(err))
		return apperrors.NewUpstreamError("could not reach the realtime service", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewUpstreamError("could not read the realtime response", err)
	}
	if resp.StatusCode >= 400 {
		h.logger.Warn("session token request rejected", zap.Int("status", resp.StatusCode))
		return apperrors.NewUpstreamError(fmt.Sprintf("realtime service returned status %d", resp.StatusCode), nil)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}
