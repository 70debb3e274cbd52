package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/society-waste-service/internal/config"
	"github.com/spec-kit/society-waste-service/internal/events"
)

// NotificationService turns issue events into outbound notifications. Delivery is stubbed:
// the target is logged instead of contacted.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{logger: logger, cfg: cfg}
}

// Handle delivers the notifications for one event. Admins hear about new reports through
// the webhook; the reporting society is emailed when its report moves.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventIssueCreated:
		n.logger.Info("issue reported", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
		n.sendWebhook(ctx, event)
	case events.EventIssueStatusChanged:
		n.logger.Info("issue status changed", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
		n.sendEmail(ctx, event)
		n.sendWebhook(ctx, event)
	default:
		n.logger.Debug("no notification for event", zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (n *NotificationService) sendEmail(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	fields := []zap.Field{
		zap.String("from", n.cfg.EmailFrom),
		zap.String("issue_id", event.IssueID),
	}
	if payload, ok := event.Payload.(events.IssueStatusChangedPayload); ok {
		fields = append(fields,
			zap.String("owner_id", payload.OwnerID),
			zap.String("new_status", string(payload.NewStatus)))
	}
	n.logger.Debug("email notification", fields...)
}

func (n *NotificationService) sendWebhook(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("issue_id", event.IssueID),
		zap.String("event_type", string(event.Type)))
}
