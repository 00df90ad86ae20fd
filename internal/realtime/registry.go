package realtime

// Tool names accepted by the dispatcher.
const (
	ToolCreateTicket    = "create_ticket"
	ToolSearchKnowledge = "search_knowledge_base"
	ToolGetTicket       = "get_ticket"
	ToolListTickets     = "list_tickets"
	ToolUpdateTicket    = "update_ticket_status"
	ToolListIncidents   = "list_priority_incidents"
	ToolJoinIncident    = "add_me_to_priority_incident"
)

// Property describes one tool parameter in the wire schema.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Schema is the JSON-schema object describing a tool's parameters.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Tool is one callable operation advertised to the upstream peer. The
// descriptor list is sent verbatim in the session-configuration message.
type Tool struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Schema `json:"parameters"`
}

// Registry returns the static, ordered tool catalog.
func Registry() []Tool {
	return []Tool{
		{
			Type:        "function",
			Name:        ToolCreateTicket,
			Description: "Create a new IT support ticket for tracking an issue",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"title":       {Type: "string", Description: "Brief title of the IT issue"},
					"description": {Type: "string", Description: "Detailed description of the problem"},
					"priority": {
						Type:        "string",
						Enum:        []string{"low", "medium", "high", "critical"},
						Description: "Issue priority level",
					},
					"category": {
						Type:        "string",
						Enum:        []string{"network", "software", "hardware", "access", "email", "general"},
						Description: "Issue category",
					},
				},
				Required: []string{"title", "description", "priority", "category"},
			},
		},
		{
			Type:        "function",
			Name:        ToolSearchKnowledge,
			Description: "Search the IT knowledge base for troubleshooting solutions",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"query": {Type: "string", Description: "Search query describing the technical issue"},
				},
				Required: []string{"query"},
			},
		},
		{
			Type:        "function",
			Name:        ToolGetTicket,
			Description: "Get details of a specific support ticket",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"ticket_id": {Type: "string", Description: "Ticket ID (e.g., TKT-001)"},
				},
				Required: []string{"ticket_id"},
			},
		},
		{
			Type:        "function",
			Name:        ToolListTickets,
			Description: "List support tickets, optionally filtered by status",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"status": {
						Type:        "string",
						Enum:        []string{"open", "in_progress", "resolved", "closed", "all"},
						Description: "Filter by ticket status",
					},
				},
			},
		},
		{
			Type:        "function",
			Name:        ToolUpdateTicket,
			Description: "Update the status of an existing ticket",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"ticket_id": {Type: "string", Description: "Ticket ID to update"},
					"status": {
						Type: "string",
						Enum: []string{"open", "in_progress", "resolved", "closed"},
					},
					"note": {Type: "string", Description: "Optional resolution or status note"},
				},
				Required: []string{"ticket_id", "status"},
			},
		},
		{
			Type:        "function",
			Name:        ToolListIncidents,
			Description: "List currently active priority incidents (major outages)",
			Parameters: Schema{
				Type:       "object",
				Properties: map[string]Property{},
			},
		},
		{
			Type:        "function",
			Name:        ToolJoinIncident,
			Description: "Add the current caller to an active priority incident's affected users",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"incident_id": {Type: "string", Description: "Incident ID (e.g., INC-1001)"},
				},
				Required: []string{"incident_id"},
			},
		},
	}
}
