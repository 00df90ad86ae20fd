package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
)

const agentConfigKey = "agent_config"

// ConfigRepository stores the singleton agent-configuration record.
type ConfigRepository interface {
	Get(ctx context.Context) (*domain.AgentConfig, error)
	Upsert(ctx context.Context, cfg domain.AgentConfig) error
	Delete(ctx context.Context) (bool, error)
}

type configRepository struct {
	pool *pgxpool.Pool
}

// NewConfigRepository instantiates repository.
func NewConfigRepository(pool *pgxpool.Pool) ConfigRepository {
	return &configRepository{pool: pool}
}

func (r *configRepository) Get(ctx context.Context) (*domain.AgentConfig, error) {
	const query = `SELECT system_prompt, voice, agent_name, updated_at FROM agent_config WHERE key=$1`
	var cfg domain.AgentConfig
	if err := r.pool.QueryRow(ctx, query, agentConfigKey).Scan(
		&cfg.SystemPrompt,
		&cfg.Voice,
		&cfg.AgentName,
		&cfg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *configRepository) Upsert(ctx context.Context, cfg domain.AgentConfig) error {
	const query = `
        INSERT INTO agent_config (key, system_prompt, voice, agent_name, updated_at)
        VALUES ($1,$2,$3,$4,NOW())
        ON CONFLICT (key) DO UPDATE SET
            system_prompt=EXCLUDED.system_prompt,
            voice=EXCLUDED.voice,
            agent_name=EXCLUDED.agent_name,
            updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query, agentConfigKey, cfg.SystemPrompt, cfg.Voice, cfg.AgentName)
	return err
}

func (r *configRepository) Delete(ctx context.Context) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM agent_config WHERE key=$1`, agentConfigKey)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
