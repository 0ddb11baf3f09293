package auth

import (
	"context"

	"tickerdesk/internal/platform/middleware"
)

// Observability helpers for logging and metrics. Emails and credentials are
// never logged; failures carry a reason label only.

func (o *options) authFailure(ctx context.Context, strategy, reason string, isError bool, err error) {
	attrs := []any{
		"strategy", strategy,
		"reason", reason,
	}
	if requestID := middleware.GetRequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	if isError && err != nil {
		attrs = append(attrs, "error", err)
		o.logger.ErrorContext(ctx, "authentication error", attrs...)
	} else {
		o.logger.InfoContext(ctx, "authentication failed", attrs...)
	}
	o.metrics.IncrementAuthFailures(reason)
}

func (o *options) authSuccess(ctx context.Context, strategy, userID string) {
	attrs := []any{
		"strategy", strategy,
		"user_id", userID,
	}
	if requestID := middleware.GetRequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	o.logger.InfoContext(ctx, "authentication succeeded", attrs...)
	o.metrics.IncrementLogins(strategy)
}
