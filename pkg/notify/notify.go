package notify

import (
	"context"

	"go.uber.org/zap"
)

// NotificationType tags what a notification is about
type NotificationType string

const (
	TypeShiftAssigned       NotificationType = "shift_assigned"
	TypeSwapRequest         NotificationType = "swap_request"
	TypeSwapCompleted       NotificationType = "swap_completed"
	TypeSubstituteAvailable NotificationType = "substitute_available"
	TypePointsEarned        NotificationType = "points_earned"
)

// Notification is one message for one family (or substitute user)
type Notification struct {
	FamilyID string
	Type     NotificationType
	Title    string
	Body     string
	Data     map[string]string
}

// Notifier dispatches notifications. Delivery is fire-and-forget from the
// core's perspective: a failed dispatch is logged as a warning by the
// caller and never blocks or fails a core state transition.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// LogNotifier writes notifications to the log instead of delivering them.
// Used when no mail credentials are configured, and in tests.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) Notify(ctx context.Context, notification Notification) error {
	n.Logger.Info("Notification (log only)",
		zap.String("family_id", notification.FamilyID),
		zap.String("type", string(notification.Type)),
		zap.String("title", notification.Title),
		zap.String("body", notification.Body))
	return nil
}
