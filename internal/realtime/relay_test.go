package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/voice-servicedesk/internal/config"
	"github.com/spec-kit/voice-servicedesk/internal/observability"
	"github.com/spec-kit/voice-servicedesk/internal/service"
)

func newTestRelay(t *testing.T, upstream *fakeConn) (*Relay, *http.Header) {
	t.Helper()
	logger := zap.NewNop()
	agentConfig := service.NewAgentConfigService(fakeConfigRepo{}, nil, config.AgentConfig{Voice: "Rex", Name: "Rex"}, logger)
	dispatcher := newTestDispatcher(&fakeTicketRepo{}, observability.NewMetrics())

	var dialedHeader http.Header
	relay := NewRelay(config.RealtimeConfig{
		URL:    "wss://upstream.test/v1/realtime",
		APIKey: "sk-test",
	}, agentConfig, dispatcher, logger)
	relay.dial = func(ctx context.Context, url string, header http.Header) (Conn, error) {
		dialedHeader = header
		return upstream, nil
	}
	return relay, &dialedHeader
}

func runRelay(t *testing.T, relay *Relay, client *fakeConn) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		relay.Handle(client)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("relay session did not terminate")
	}
}

func TestRelaySessionConfiguration(t *testing.T) {
	upstream := newFakeConn()
	client := newFakeConn()
	relay, dialedHeader := newTestRelay(t, upstream)

	close(client.in)
	runRelay(t, relay, client)

	require.Equal(t, "Bearer sk-test", dialedHeader.Get("Authorization"))

	frames := upstream.frames()
	require.NotEmpty(t, frames)
	first := frames[0]
	require.Equal(t, "session.update", first["type"])

	session := first["session"].(map[string]any)
	assert.Equal(t, "Rex", session["voice"])
	assert.Contains(t, session["instructions"], "IT Service Desk")
	assert.Equal(t, map[string]any{"type": "server_vad"}, session["turn_detection"])

	audio := session["audio"].(map[string]any)
	input := audio["input"].(map[string]any)["format"].(map[string]any)
	assert.Equal(t, "audio/pcm", input["type"])
	assert.Equal(t, float64(24000), input["rate"])

	tools := session["tools"].([]any)
	assert.Len(t, tools, 7)
}

func TestRelayClientAllowList(t *testing.T) {
	upstream := newFakeConn()
	client := newFakeConn()
	relay, _ := newTestRelay(t, upstream)

	client.in <- []byte(`{"type":"input_audio_buffer.append","audio":"AAAA"}`)
	client.in <- []byte(`{"type":"session.update","session":{"voice":"evil"}}`)
	client.in <- []byte(`not json at all`)
	client.in <- []byte(`{"type":"response.create"}`)
	close(client.in)

	runRelay(t, relay, client)

	var forwarded []string
	for _, frame := range upstream.frames()[1:] { // skip session configuration
		forwarded = append(forwarded, frame["type"].(string))
	}
	assert.Equal(t, []string{"input_audio_buffer.append", "response.create"}, forwarded)
}

func TestRelayInterceptsFunctionCalls(t *testing.T) {
	upstream := newFakeConn()
	client := newFakeConn()
	relay, _ := newTestRelay(t, upstream)

	upstream.in <- []byte(`{"type":"response.output_audio.delta","delta":"AAAA"}`)
	upstream.in <- []byte(`{"type":"response.function_call_arguments.done","name":"list_tickets","call_id":"c1","arguments":"{}"}`)
	close(upstream.in)

	runRelay(t, relay, client)

	types := make([]string, 0)
	for _, frame := range client.frames() {
		types = append(types, frame["type"].(string))
	}
	assert.Equal(t, []string{"response.output_audio.delta", "function.started", "function.executed"}, types)

	upstreamTypes := make([]string, 0)
	for _, frame := range upstream.frames()[1:] {
		upstreamTypes = append(upstreamTypes, frame["type"].(string))
	}
	assert.Equal(t, []string{"conversation.item.create", "response.create"}, upstreamTypes)

	item := upstream.frames()[1]["item"].(map[string]any)
	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(item["output"].(string)), &result))
	assert.Equal(t, "No tickets found.", result["message"])
}

func TestRelayDialFailureSendsErrorFrame(t *testing.T) {
	client := newFakeConn()
	relay, _ := newTestRelay(t, newFakeConn())
	relay.dial = func(ctx context.Context, url string, header http.Header) (Conn, error) {
		return nil, context.DeadlineExceeded
	}

	runRelay(t, relay, client)

	frames := client.frames()
	require.Len(t, frames, 1)
	assert.Equal(t, "error", frames[0]["type"])

	select {
	case <-client.closed:
	default:
		t.Fatal("client connection left open")
	}
}
