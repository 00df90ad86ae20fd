package handlers

import (
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"

	"github.com/spec-kit/voice-servicedesk/internal/realtime"
)

// RelayHandler upgrades browser connections and hands them to the relay.
type RelayHandler struct {
	relay *realtime.Relay
}

// NewRelayHandler constructs handler.
func NewRelayHandler(relay *realtime.Relay) *RelayHandler {
	return &RelayHandler{relay: relay}
}

// Upgrade rejects plain HTTP requests on the websocket route.
func (h *RelayHandler) Upgrade(c *fiber.Ctx) error {
	if fiberws.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve runs one relay session per connection.
func (h *RelayHandler) Serve() fiber.Handler {
	return fiberws.New(func(conn *fiberws.Conn) {
		h.relay.Handle(conn)
	})
}
