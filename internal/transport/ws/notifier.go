package ws

import "log/slog"

// RegistryNotifier implements match.Notifier using the connection registry.
// Delivery is fire-and-forget: users without a live connection are skipped.
type RegistryNotifier struct {
	registry *Registry
	logger   *slog.Logger
}

func NewRegistryNotifier(registry *Registry, logger *slog.Logger) *RegistryNotifier {
	return &RegistryNotifier{registry: registry, logger: logger}
}

func (n *RegistryNotifier) Notify(userID uint64, message string) {
	evt, err := NewEvent(EventTypeMatchUpdate, MatchUpdatePayload{Message: message})
	if err != nil {
		n.logger.Error("ws notifier marshal failed", "err", err)
		return
	}
	n.registry.Send(userID, evt)
}
