package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/voice-servicedesk/internal/events"
	"github.com/spec-kit/voice-servicedesk/internal/observability"
)

// JSONWriter delivers one JSON message to a websocket peer.
type JSONWriter interface {
	WriteJSON(v any) error
}

// Dispatcher drives the notification sequence around each intercepted tool
// call: a started notification to the client, execution, the function output
// and a response trigger to the upstream peer, then an executed mirror back
// to the client. Each step failure is logged and the sequence continues,
// except that the response trigger is skipped when the output never reached
// the upstream.
type Dispatcher struct {
	actions    *Actions
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewDispatcher constructs a tool-call dispatcher.
func NewDispatcher(actions *Actions, metrics *observability.Metrics, dispatcher events.Dispatcher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{actions: actions, metrics: metrics, dispatcher: dispatcher, logger: logger}
}

// Dispatch handles one completed function call from the upstream peer.
func (d *Dispatcher) Dispatch(ctx context.Context, call ToolCall, client, upstream JSONWriter) {
	if err := client.WriteJSON(map[string]any{
		"type":     "function.started",
		"function": call.Name,
	}); err != nil {
		d.logger.Warn("started notification failed", zap.String("tool", call.Name), zap.Error(err))
	}

	start := time.Now()
	result := d.actions.Execute(ctx, call)
	elapsed := time.Since(start)
	outcome := resultOutcome(result)
	d.metrics.RecordToolCall(call.Name, outcome, elapsed)
	d.logger.Info("tool executed",
		zap.String("tool", call.Name),
		zap.String("call_id", call.CallID),
		zap.String("outcome", outcome),
		zap.Duration("duration", elapsed),
	)

	if d.dispatcher != nil {
		_ = d.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventToolExecuted,
			Subject:   call.CallID,
			Timestamp: time.Now(),
			Payload:   events.ToolExecutedPayload{Tool: call.Name, Success: outcome == "ok"},
		})
	}

	output, err := json.Marshal(result)
	if err != nil {
		d.logger.Error("tool result not marshalable", zap.String("tool", call.Name), zap.Error(err))
		output = []byte(`{"error":"internal error"}`)
	}

	outputDelivered := true
	if err := upstream.WriteJSON(map[string]any{
		"type": "conversation.item.create",
		"item": map[string]any{
			"type":    "function_call_output",
			"call_id": call.CallID,
			"output":  string(output),
		},
	}); err != nil {
		outputDelivered = false
		d.logger.Warn("function output not delivered", zap.String("tool", call.Name), zap.Error(err))
	}

	if outputDelivered {
		if err := upstream.WriteJSON(map[string]any{"type": "response.create"}); err != nil {
			d.logger.Warn("response trigger failed", zap.String("tool", call.Name), zap.Error(err))
		}
	}

	if err := client.WriteJSON(map[string]any{
		"type":     "function.executed",
		"function": call.Name,
		"args":     decodedArgs(call.RawArguments),
		"result":   result,
	}); err != nil {
		d.logger.Warn("executed notification failed", zap.String("tool", call.Name), zap.Error(err))
	}
}

// resultOutcome classifies a result map for metrics. A payload carrying
// error, success:false or found:false counts as a failure.
func resultOutcome(result map[string]any) string {
	if _, ok := result["error"]; ok {
		return "error"
	}
	if success, ok := result["success"].(bool); ok && !success {
		return "failed"
	}
	if found, ok := result["found"].(bool); ok && !found {
		return "not_found"
	}
	return "ok"
}

func decodedArgs(raw string) map[string]any {
	args := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{}
	}
	return args
}
