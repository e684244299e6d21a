package shared

import "context"

// Notifier publishes transition events to interested listeners. Publishing
// happens after commit; implementations must not assume an open transaction.
type Notifier interface {
	PublishTransition(ctx context.Context, event TransitionEvent) error
}
