package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes notifications to the service log. It is always
// registered so grade updates remain visible even with no webhook configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs the sink.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, notification Notification) error {
	n.logger.Info("notification",
		zap.String("title", notification.Title),
		zap.String("message", notification.Message),
		zap.Int("slot", notification.Slot),
	)
	return nil
}
