package domain

import "time"

// AgentConfig is the singleton voice-agent configuration record.
type AgentConfig struct {
	SystemPrompt string
	Voice        string
	AgentName    string
	UpdatedAt    time.Time
}
