package realtime

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
)

// ErrUnknownTool is returned when a call names a tool outside the registry.
var ErrUnknownTool = errors.New("unknown tool")

// ToolCall is one intercepted function invocation from the upstream peer.
type ToolCall struct {
	Name         string
	CallID       string
	RawArguments string
}

// ToolArgs is the decoded argument set for one tool call.
type ToolArgs interface {
	isToolArgs()
}

type CreateTicketArgs struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    domain.Category
}

type SearchKnowledgeArgs struct {
	Query string
}

type GetTicketArgs struct {
	TicketID string
}

type ListTicketsArgs struct {
	Status string
}

type UpdateTicketArgs struct {
	TicketID string
	Status   string
	Note     string
}

type ListIncidentsArgs struct{}

type JoinIncidentArgs struct {
	IncidentID string
}

func (CreateTicketArgs) isToolArgs()    {}
func (SearchKnowledgeArgs) isToolArgs() {}
func (GetTicketArgs) isToolArgs()       {}
func (ListTicketsArgs) isToolArgs()     {}
func (UpdateTicketArgs) isToolArgs()    {}
func (ListIncidentsArgs) isToolArgs()   {}
func (JoinIncidentArgs) isToolArgs()    {}

// DecodeArgs parses a raw argument payload for the named tool. Malformed
// payloads decode as if the upstream sent an empty object; per-field defaults
// cover anything missing. Only an unregistered tool name is an error.
func DecodeArgs(name, raw string) (ToolArgs, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		fields = map[string]json.RawMessage{}
	}

	switch name {
	case ToolCreateTicket:
		args := CreateTicketArgs{
			Title:       stringField(fields, "title", ""),
			Description: stringField(fields, "description", ""),
			Priority:    domain.TicketPriority(stringField(fields, "priority", string(domain.TicketPriorityMedium))),
			Category:    domain.Category(stringField(fields, "category", string(domain.CategoryGeneral))),
		}
		if !domain.ValidPriority(args.Priority) {
			args.Priority = domain.TicketPriorityMedium
		}
		if !domain.ValidCategory(args.Category) {
			args.Category = domain.CategoryGeneral
		}
		return args, nil
	case ToolSearchKnowledge:
		return SearchKnowledgeArgs{Query: stringField(fields, "query", "")}, nil
	case ToolGetTicket:
		return GetTicketArgs{TicketID: stringField(fields, "ticket_id", "")}, nil
	case ToolListTickets:
		return ListTicketsArgs{Status: stringField(fields, "status", "all")}, nil
	case ToolUpdateTicket:
		return UpdateTicketArgs{
			TicketID: stringField(fields, "ticket_id", ""),
			Status:   stringField(fields, "status", ""),
			Note:     stringField(fields, "note", ""),
		}, nil
	case ToolListIncidents:
		return ListIncidentsArgs{}, nil
	case ToolJoinIncident:
		return JoinIncidentArgs{IncidentID: stringField(fields, "incident_id", "")}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

func stringField(fields map[string]json.RawMessage, key, fallback string) string {
	raw, ok := fields[key]
	if !ok {
		return fallback
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return fallback
	}
	return s
}
