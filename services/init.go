package services

import (
	"context"
	"time"

	"github.com/sponsorengage/mailer/config"
	"github.com/sponsorengage/mailer/interfaces"
	"github.com/sponsorengage/mailer/internal/logger"
	"github.com/sponsorengage/mailer/internal/repository"
	"github.com/sponsorengage/mailer/services/bulkmailer"
	"github.com/sponsorengage/mailer/services/events"
	"github.com/sponsorengage/mailer/services/invitations"
	"github.com/sponsorengage/mailer/services/ses"
)

type Services struct {
	EventPublisher    interfaces.EventPublisher
	MailTransport     interfaces.MailTransport
	BulkMailer        interfaces.BulkMailer
	InvitationSender  interfaces.InvitationSender
	InvitationMonitor interfaces.InvitationMonitor
}

func InitServices(ctx context.Context, cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	var publisher interfaces.EventPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		rabbitPublisher, err := events.NewRabbitMQPublisher(cfg.AppConfig.RabbitMQURL, log, nil)
		if err != nil {
			return nil, err
		}
		publisher = rabbitPublisher
	}

	transport, err := ses.NewSESMailTransport(ctx, ses.Config{
		Region:          cfg.SESConfig.Region,
		AccessKeyID:     cfg.SESConfig.AccessKeyID,
		SecretAccessKey: cfg.SESConfig.SecretAccessKey,
		FromAddress:     cfg.SESConfig.FromAddress,
	}, log)
	if err != nil {
		return nil, err
	}

	mailer := bulkmailer.NewBulkMailer(transport, bulkmailer.Config{
		MaxRetries:         cfg.MailerConfig.MaxRetries,
		RetryBackoff:       time.Duration(cfg.MailerConfig.RetryBackoffSeconds) * time.Second,
		MaxConcurrentSends: cfg.MailerConfig.MaxConcurrentSends,
	}, log)

	sender := invitations.NewInvitationSender(
		log,
		invitations.SenderConfig{SignInURL: cfg.AppConfig.SignInURL},
		mailer,
		repos.InvitationRepository,
		repos.InvitationStatusRepository,
		publisher,
	)

	monitor := invitations.NewInvitationMonitor(
		log,
		invitations.MonitorConfig{
			FailureAgeThreshold: time.Duration(cfg.MonitorConfig.FailureAgeThresholdHours) * time.Hour,
		},
		transport,
		repos.InvitationRepository,
		repos.InvitationStatusRepository,
		publisher,
	)

	return &Services{
		EventPublisher:    publisher,
		MailTransport:     transport,
		BulkMailer:        mailer,
		InvitationSender:  sender,
		InvitationMonitor: monitor,
	}, nil
}
