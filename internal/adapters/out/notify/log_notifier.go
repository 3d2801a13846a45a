// Package notify delivers user notifications. LogNotifier writes them to the
// structured log, which is enough until a push or SMS provider is wired in.
package notify

import (
	"context"
	"log/slog"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
)

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "LogNotifier")}
}

// Notify logs message for userID. Empty messages are rejected.
func (n *LogNotifier) Notify(ctx context.Context, userID kernel.UUID, message string) error {
	if err := userID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("user id", err)
	}
	if message == "" {
		return errs.NewValueIsRequiredError("message")
	}

	n.logger.InfoContext(ctx, "notification sent", "user_id", userID.String(), "message", message)
	return nil
}
