package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/ward-api/internal/config"
	"github.com/jwalitptl/ward-api/internal/email"
	"github.com/jwalitptl/ward-api/internal/model"
	"github.com/jwalitptl/ward-api/pkg/logger"
	"github.com/jwalitptl/ward-api/pkg/messaging"
)

// Service is the outbound SMS boundary. Send is invoked exactly once per
// successful delivery completion; there is no retry policy here.
type Service interface {
	Send(ctx context.Context, phone, message string, patientID uuid.UUID) error
}

// NewService selects the transport from config: "smtp" sends through a
// carrier email-to-SMS gateway, anything else publishes to the redis
// notification channel for the external dispatcher.
func NewService(cfg config.NotificationConfig, broker messaging.Broker, emailSvc email.Service, log *logger.Logger) Service {
	if cfg.Provider == "smtp" {
		return &gatewaySender{
			emailSvc:      emailSvc,
			gatewayDomain: cfg.GatewayDomain,
			logger:        log,
		}
	}
	return &brokerSender{
		broker:  broker,
		channel: cfg.Channel,
		logger:  log,
	}
}

type brokerSender struct {
	broker  messaging.Broker
	channel string
	logger  *logger.Logger
}

func (s *brokerSender) Send(ctx context.Context, phone, message string, patientID uuid.UUID) error {
	msg := &model.SMSMessage{
		Phone:     phone,
		Body:      message,
		PatientID: &patientID,
		QueuedAt:  time.Now(),
	}
	if err := s.broker.Publish(ctx, s.channel, msg); err != nil {
		return fmt.Errorf("failed to publish SMS: %w", err)
	}

	s.logger.ZL.Info().
		Str("phone", phone).
		Str("patient_id", patientID.String()).
		Msg("SMS queued for dispatch")
	return nil
}

type gatewaySender struct {
	emailSvc      email.Service
	gatewayDomain string
	logger        *logger.Logger
}

func (s *gatewaySender) Send(ctx context.Context, phone, message string, patientID uuid.UUID) error {
	to := fmt.Sprintf("%s@%s", phone, s.gatewayDomain)
	if err := s.emailSvc.SendCustom(ctx, to, "", message); err != nil {
		return fmt.Errorf("failed to send SMS via gateway: %w", err)
	}

	s.logger.ZL.Info().
		Str("phone", phone).
		Str("patient_id", patientID.String()).
		Msg("SMS sent via carrier gateway")
	return nil
}
