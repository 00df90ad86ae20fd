package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/voice-servicedesk/internal/events"
)

// NotificationService logs domain events for operator visibility.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventIncidentJoined, n.handleIncidentJoined)
	n.dispatcher.Subscribe(events.EventToolExecuted, n.handleToolExecuted)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.Subject), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.String("ticket_id", event.Subject), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleIncidentJoined(ctx context.Context, event events.Event) error {
	n.logger.Info("IncidentJoined", zap.String("incident_id", event.Subject), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleToolExecuted(ctx context.Context, event events.Event) error {
	n.logger.Debug("ToolExecuted", zap.String("session_id", event.Subject), zap.Any("payload", event.Payload))
	return nil
}
