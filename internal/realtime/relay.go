package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	fasthttpws "github.com/fasthttp/websocket"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/spec-kit/voice-servicedesk/internal/config"
	"github.com/spec-kit/voice-servicedesk/internal/service"
)

// Upstream event type carrying a completed function call.
const eventFunctionCallDone = "response.function_call_arguments.done"

// PCM sample rate negotiated with the upstream peer.
const audioSampleRate = 24000

// Client messages forwarded to the upstream peer. Anything else from the
// browser is dropped without closing the session.
var clientAllowedTypes = map[string]bool{
	"input_audio_buffer.append": true,
	"input_audio_buffer.clear":  true,
	"conversation.item.create":  true,
	"response.create":           true,
}

// Conn is the subset of a websocket connection the relay needs. Both the
// server-side and the dialed upstream connections satisfy it.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// DialFunc opens the upstream websocket connection.
type DialFunc func(ctx context.Context, url string, header http.Header) (Conn, error)

func defaultDial(ctx context.Context, url string, header http.Header) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// safeConn serializes writes to a single-writer websocket connection.
type safeConn struct {
	mu   sync.Mutex
	conn Conn
}

func (c *safeConn) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.WriteRaw(data)
}

func (c *safeConn) WriteRaw(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Relay bridges one browser websocket to one upstream realtime session. It
// configures the upstream session, then pumps frames both ways until either
// side disconnects, intercepting completed function calls for local
// execution.
type Relay struct {
	cfg         config.RealtimeConfig
	agentConfig *service.AgentConfigService
	dispatcher  *Dispatcher
	tools       []Tool
	logger      *zap.Logger
	dial        DialFunc
}

// NewRelay constructs a relay using the default upstream dialer.
func NewRelay(cfg config.RealtimeConfig, agentConfig *service.AgentConfigService, dispatcher *Dispatcher, logger *zap.Logger) *Relay {
	return &Relay{
		cfg:         cfg,
		agentConfig: agentConfig,
		dispatcher:  dispatcher,
		tools:       Registry(),
		logger:      logger,
		dial:        defaultDial,
	}
}

// Handle runs one relay session to completion. The client connection is
// always closed before return.
func (r *Relay) Handle(clientConn Conn) {
	defer clientConn.Close()
	client := &safeConn{conn: clientConn}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	header := http.Header{}
	if r.cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}
	upstreamConn, err := r.dial(ctx, r.cfg.URL, header)
	if err != nil {
		r.logger.Error("upstream dial failed", zap.String("url", r.cfg.URL), zap.Error(err))
		r.sendError(client, "could not reach the voice service")
		return
	}
	defer upstreamConn.Close()
	upstream := &safeConn{conn: upstreamConn}

	if err := upstream.WriteJSON(r.sessionUpdate(ctx)); err != nil {
		r.logger.Error("session configuration failed", zap.Error(err))
		r.sendError(client, "could not configure the voice session")
		return
	}
	r.logger.Info("relay session started", zap.String("url", r.cfg.URL))

	done := make(chan error, 2)
	go func() {
		done <- r.pumpClientToUpstream(clientConn, upstream)
	}()
	go func() {
		done <- r.pumpUpstreamToClient(ctx, upstreamConn, client, upstream)
	}()

	first := <-done
	if first != nil && !isExpectedClose(first) {
		r.logger.Warn("relay session error", zap.Error(first))
		r.sendError(client, "voice session ended unexpectedly")
	}
	// closing both ends unblocks the remaining pump
	cancel()
	clientConn.Close()
	upstreamConn.Close()
	<-done
	r.logger.Info("relay session closed")
}

// sessionUpdate builds the upstream session-configuration message from the
// current agent configuration and the static tool catalog.
func (r *Relay) sessionUpdate(ctx context.Context) map[string]any {
	agent := r.agentConfig.Get(ctx)
	pcm := map[string]any{
		"format": map[string]any{"type": "audio/pcm", "rate": audioSampleRate},
	}
	return map[string]any{
		"type": "session.update",
		"session": map[string]any{
			"voice":          agent.Voice,
			"instructions":   agent.SystemPrompt,
			"turn_detection": map[string]any{"type": "server_vad"},
			"audio": map[string]any{
				"input":  pcm,
				"output": pcm,
			},
			"tools": r.tools,
		},
	}
}

// pumpClientToUpstream forwards allow-listed browser frames upstream. Frames
// that are not JSON objects or carry an unlisted type are dropped.
func (r *Relay) pumpClientToUpstream(clientConn Conn, upstream *safeConn) error {
	for {
		_, raw, err := clientConn.ReadMessage()
		if err != nil {
			return fmt.Errorf("client read: %w", err)
		}
		var frame struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		if !clientAllowedTypes[frame.Type] {
			continue
		}
		if err := upstream.WriteRaw(raw); err != nil {
			return fmt.Errorf("upstream write: %w", err)
		}
	}
}

// pumpUpstreamToClient forwards upstream frames to the browser, intercepting
// completed function calls for dispatch.
func (r *Relay) pumpUpstreamToClient(ctx context.Context, upstreamConn Conn, client, upstream *safeConn) error {
	for {
		_, raw, err := upstreamConn.ReadMessage()
		if err != nil {
			return fmt.Errorf("upstream read: %w", err)
		}
		var event struct {
			Type      string `json:"type"`
			Name      string `json:"name"`
			CallID    string `json:"call_id"`
			Arguments string `json:"arguments"`
		}
		if err := json.Unmarshal(raw, &event); err != nil {
			return fmt.Errorf("malformed upstream frame: %w", err)
		}
		if event.Type == eventFunctionCallDone {
			r.dispatcher.Dispatch(ctx, ToolCall{
				Name:         event.Name,
				CallID:       event.CallID,
				RawArguments: event.Arguments,
			}, client, upstream)
			continue
		}
		if err := client.WriteRaw(raw); err != nil {
			return fmt.Errorf("client write: %w", err)
		}
	}
}

// sendError delivers a best-effort error frame to the browser.
func (r *Relay) sendError(client *safeConn, message string) {
	_ = client.WriteJSON(map[string]any{"type": "error", "message": message})
}

// isExpectedClose reports whether err is an ordinary disconnect from either
// peer. The browser side and the upstream side surface distinct close-error
// types.
func isExpectedClose(err error) bool {
	var upstreamClose *websocket.CloseError
	if errors.As(err, &upstreamClose) {
		return normalCloseCode(upstreamClose.Code)
	}
	var clientClose *fasthttpws.CloseError
	if errors.As(err, &clientClose) {
		return normalCloseCode(clientClose.Code)
	}
	return false
}

func normalCloseCode(code int) bool {
	switch code {
	case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
		return true
	}
	return false
}
