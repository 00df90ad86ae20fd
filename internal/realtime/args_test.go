package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
)

func TestDecodeArgsCreateTicketDefaults(t *testing.T) {
	args, err := DecodeArgs(ToolCreateTicket, `{"title":"VPN down"}`)
	require.NoError(t, err)

	create, ok := args.(CreateTicketArgs)
	require.True(t, ok)
	assert.Equal(t, "VPN down", create.Title)
	assert.Empty(t, create.Description)
	assert.Equal(t, domain.TicketPriorityMedium, create.Priority)
	assert.Equal(t, domain.CategoryGeneral, create.Category)
}

func TestDecodeArgsInvalidEnumFallsBack(t *testing.T) {
	args, err := DecodeArgs(ToolCreateTicket, `{"title":"x","priority":"urgent","category":"printers"}`)
	require.NoError(t, err)

	create := args.(CreateTicketArgs)
	assert.Equal(t, domain.TicketPriorityMedium, create.Priority)
	assert.Equal(t, domain.CategoryGeneral, create.Category)
}

func TestDecodeArgsMalformedPayload(t *testing.T) {
	args, err := DecodeArgs(ToolListTickets, `{"status": not json`)
	require.NoError(t, err)

	list := args.(ListTicketsArgs)
	assert.Equal(t, "all", list.Status)
}

func TestDecodeArgsWrongFieldType(t *testing.T) {
	args, err := DecodeArgs(ToolGetTicket, `{"ticket_id": 42}`)
	require.NoError(t, err)

	get := args.(GetTicketArgs)
	assert.Empty(t, get.TicketID)
}

func TestDecodeArgsUnknownTool(t *testing.T) {
	_, err := DecodeArgs("reboot_datacenter", `{}`)
	require.ErrorIs(t, err, ErrUnknownTool)
}

func TestDecodeArgsUpdateTicket(t *testing.T) {
	args, err := DecodeArgs(ToolUpdateTicket, `{"ticket_id":"tkt-004","status":"resolved","note":"fixed"}`)
	require.NoError(t, err)

	update := args.(UpdateTicketArgs)
	assert.Equal(t, "tkt-004", update.TicketID)
	assert.Equal(t, "resolved", update.Status)
	assert.Equal(t, "fixed", update.Note)
}

func TestDecodeArgsEveryRegisteredTool(t *testing.T) {
	for _, tool := range Registry() {
		_, err := DecodeArgs(tool.Name, `{}`)
		assert.NoError(t, err, "tool %s", tool.Name)
	}
}
