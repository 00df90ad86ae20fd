package dto

// AgentConfigRequest is the PUT /api/admin/config payload.
type AgentConfigRequest struct {
	SystemPrompt string `json:"system_prompt"`
	Voice        string `json:"voice"`
	AgentName    string `json:"agent_name"`
}

// AgentConfigResponse is the wire shape of the agent configuration. The
// compiled-in default prompt rides along so admin tooling can diff against
// it.
type AgentConfigResponse struct {
	SystemPrompt  string `json:"system_prompt"`
	Voice         string `json:"voice"`
	AgentName     string `json:"agent_name"`
	DefaultPrompt string `json:"default_prompt"`
}
