package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/e-taas/session-service/internal/config"
	"github.com/e-taas/session-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleOTPIssued)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handleOTPIssued)
	n.dispatcher.Subscribe(events.EventSellerApplied, n.handleSellerApplied)
	n.dispatcher.Subscribe(events.EventRoleSwitched, n.handleRoleSwitched)
}

func (n *NotificationService) handleOTPIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OTPIssuedPayload)
	if !ok {
		return nil
	}
	n.sendEmailNotificationStub(ctx, payload.Email, payload.Purpose)
	return nil
}

func (n *NotificationService) handleSellerApplied(ctx context.Context, event events.Event) error {
	n.logger.Info("SellerApplied", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRoleSwitched(ctx context.Context, event events.Event) error {
	n.logger.Info("RoleSwitched", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// sendEmailNotificationStub stands in for a real mail provider. The code is
// deliberately not logged.
func (n *NotificationService) sendEmailNotificationStub(_ context.Context, email, purpose string) {
	n.logger.Info("email notification",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", email),
		zap.String("purpose", purpose),
	)
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if n.cfg.WebhookURL == "" {
		return
	}
	n.logger.Info("webhook notification",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event", string(event.Type)),
	)
}
