package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/voice-servicedesk/internal/config"
	"github.com/spec-kit/voice-servicedesk/internal/domain"
	"github.com/spec-kit/voice-servicedesk/internal/persistence"
	"github.com/spec-kit/voice-servicedesk/internal/repository"
)

// DefaultSystemPrompt is the compiled-in agent instruction set, used when
// no admin configuration record exists.
const DefaultSystemPrompt = `You are Rex, an advanced AI-powered IT Service Desk assistant. You are professional, efficient, and helpful.

YOUR CAPABILITIES:
1. TROUBLESHOOT technical issues - provide step-by-step solutions using the knowledge base
2. CREATE TICKETS - log support requests that need tracking
3. SEARCH KNOWLEDGE BASE - find known solutions for IT problems
4. CHECK & UPDATE TICKETS - retrieve status and update existing tickets
5. MAJOR INCIDENTS - report active priority incidents and add affected users to them

WORKFLOW FOR USER ISSUES:
1. Listen to the user's problem
2. Search the knowledge base first using search_knowledge_base
3. Provide the solution from KB results
4. If issue needs tracking or cannot be resolved immediately, create a ticket

TICKET PRIORITIES: low (minor inconvenience), medium (work impacted), high (cannot work), critical (business-critical outage)
TICKET CATEGORIES: network, software, hardware, access, email, general

Always confirm ticket creation with the ticket ID (e.g., "I've created ticket TKT-007 for you").
Be concise - this is a voice interface. Keep responses under 3-4 sentences.
Start by greeting the user and asking how you can help with IT today.`

const (
	agentConfigCacheKey = "voicedesk:agent_config"
	agentConfigCacheTTL = 5 * time.Minute
)

// AgentConfigService serves the singleton agent configuration with a Redis
// cache in front of Postgres and a compiled-in default behind both.
type AgentConfigService struct {
	repo     repository.ConfigRepository
	cache    *persistence.Redis
	defaults config.AgentConfig
	logger   *zap.Logger
}

// NewAgentConfigService constructs the service.
func NewAgentConfigService(repo repository.ConfigRepository, cache *persistence.Redis, defaults config.AgentConfig, logger *zap.Logger) *AgentConfigService {
	return &AgentConfigService{repo: repo, cache: cache, defaults: defaults, logger: logger}
}

// Default returns the compiled-in configuration.
func (s *AgentConfigService) Default() domain.AgentConfig {
	return domain.AgentConfig{
		SystemPrompt: DefaultSystemPrompt,
		Voice:        s.defaults.Voice,
		AgentName:    s.defaults.Name,
	}
}

// Get returns the current agent configuration. It never fails: cache and
// store errors degrade to the compiled-in default.
func (s *AgentConfigService) Get(ctx context.Context) domain.AgentConfig {
	if cached, ok := s.fromCache(ctx); ok {
		return cached
	}

	cfg, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("agent config lookup failed; using defaults", zap.Error(err))
		}
		return s.Default()
	}

	s.toCache(ctx, *cfg)
	return *cfg
}

// Update overwrites the configuration record wholesale and invalidates the
// cache.
func (s *AgentConfigService) Update(ctx context.Context, cfg domain.AgentConfig) error {
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Reset deletes the configuration record, reverting to defaults.
func (s *AgentConfigService) Reset(ctx context.Context) error {
	if _, err := s.repo.Delete(ctx); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *AgentConfigService) fromCache(ctx context.Context) (domain.AgentConfig, bool) {
	if s.cache == nil || s.cache.Client == nil {
		return domain.AgentConfig{}, false
	}
	raw, err := s.cache.Client.Get(ctx, agentConfigCacheKey).Result()
	if err != nil {
		return domain.AgentConfig{}, false
	}
	var cfg domain.AgentConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return domain.AgentConfig{}, false
	}
	return cfg, true
}

func (s *AgentConfigService) toCache(ctx context.Context, cfg domain.AgentConfig) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, agentConfigCacheKey, raw, agentConfigCacheTTL).Err(); err != nil {
		s.logger.Debug("agent config cache write failed", zap.Error(err))
	}
}

func (s *AgentConfigService) invalidate(ctx context.Context) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	if err := s.cache.Client.Del(ctx, agentConfigCacheKey).Err(); err != nil {
		s.logger.Debug("agent config cache invalidation failed", zap.Error(err))
	}
}
