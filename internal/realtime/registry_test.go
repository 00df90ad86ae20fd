package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCatalog(t *testing.T) {
	tools := Registry()
	require.Len(t, tools, 7)

	names := make(map[string]bool, len(tools))
	for _, tool := range tools {
		assert.Equal(t, "function", tool.Type)
		assert.NotEmpty(t, tool.Description)
		assert.Equal(t, "object", tool.Parameters.Type)
		assert.False(t, names[tool.Name], "duplicate tool %s", tool.Name)
		names[tool.Name] = true
	}

	for _, name := range []string{
		ToolCreateTicket,
		ToolSearchKnowledge,
		ToolGetTicket,
		ToolListTickets,
		ToolUpdateTicket,
		ToolListIncidents,
		ToolJoinIncident,
	} {
		assert.True(t, names[name], "missing tool %s", name)
	}
}

func TestRegistryCreateTicketSchema(t *testing.T) {
	var create Tool
	for _, tool := range Registry() {
		if tool.Name == ToolCreateTicket {
			create = tool
		}
	}
	require.Equal(t, ToolCreateTicket, create.Name)

	assert.ElementsMatch(t, []string{"title", "description", "priority", "category"}, create.Parameters.Required)
	assert.Equal(t, []string{"low", "medium", "high", "critical"}, create.Parameters.Properties["priority"].Enum)
	assert.Equal(t, []string{"network", "software", "hardware", "access", "email", "general"}, create.Parameters.Properties["category"].Enum)
}

func TestRegistrySerialization(t *testing.T) {
	data, err := json.Marshal(Registry())
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 7)

	first := decoded[0]
	assert.Equal(t, "function", first["type"])
	params, ok := first["parameters"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", params["type"])
}

func TestRegistryNoRequiredParamsForIncidentListing(t *testing.T) {
	for _, tool := range Registry() {
		if tool.Name == ToolListIncidents {
			assert.Empty(t, tool.Parameters.Required)
			assert.Empty(t, tool.Parameters.Properties)
			return
		}
	}
	t.Fatalf("tool %s not registered", ToolListIncidents)
}
