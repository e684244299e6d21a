package notifier

import (
	"context"
	"log/slog"

	"booking-core/internal/usecase/shared"
)

// LogNotifier publishes transition events to the structured log. It stands
// in for a message broker; subscribers tail the log stream.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) shared.Notifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) PublishTransition(ctx context.Context, event shared.TransitionEvent) error {
	n.logger.Info("transition event",
		slog.String("entity_type", event.EntityType),
		slog.String("entity_id", event.EntityID.String()),
		slog.String("from_status", event.FromStatus),
		slog.String("to_status", event.ToStatus),
		slog.String("timestamp", event.Timestamp),
		slog.String("actor_id", event.ActorID.String()),
	)
	return nil
}
