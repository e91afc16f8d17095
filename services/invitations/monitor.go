package invitations

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/sponsorengage/mailer/interfaces"
	"github.com/sponsorengage/mailer/internal/enum"
	mailererrors "github.com/sponsorengage/mailer/internal/errors"
	"github.com/sponsorengage/mailer/internal/logger"
	"github.com/sponsorengage/mailer/internal/tracing"
	"github.com/sponsorengage/mailer/internal/utils"
)

const defaultFailureAge = 72 * time.Hour

type MonitorConfig struct {
	// FailureAgeThreshold is how long an invitation may stay without a
	// terminal delivery event before it is written off as Failure.
	FailureAgeThreshold time.Duration
}

type invitationMonitor struct {
	log        logger.Logger
	cfg        MonitorConfig
	transport  interfaces.MailTransport
	invitation interfaces.InvitationRepository
	statuses   interfaces.InvitationStatusRepository
	publisher  interfaces.EventPublisher
}

func NewInvitationMonitor(
	log logger.Logger,
	cfg MonitorConfig,
	transport interfaces.MailTransport,
	invitation interfaces.InvitationRepository,
	statuses interfaces.InvitationStatusRepository,
	publisher interfaces.EventPublisher,
) interfaces.InvitationMonitor {
	if cfg.FailureAgeThreshold <= 0 {
		cfg.FailureAgeThreshold = defaultFailureAge
	}
	return &invitationMonitor{
		log:        log,
		cfg:        cfg,
		transport:  transport,
		invitation: invitation,
		statuses:   statuses,
		publisher:  publisher,
	}
}

func (m *invitationMonitor) MonitorInvitationEmails(ctx context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "InvitationMonitor.MonitorInvitationEmails")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	defer func() {
		if r := recover(); r != nil {
			tracing.TraceErr(span, errors.Errorf("panic in invitation monitor: %v", r))
			m.log.Errorf("Invitation monitor recovered from panic: %v", r)
		}
	}()

	if err := m.run(ctx, span); err != nil {
		tracing.TraceErr(span, err)
		m.log.Errorf("Invitation monitor pass failed: %v", err)
	}
}

func (m *invitationMonitor) run(ctx context.Context, span opentracing.Span) error {
	statusIDs, err := m.resolveStatusIDs(ctx)
	if err != nil {
		return err
	}

	pending, err := m.invitation.FindPending(ctx, statusIDs[enum.InvitationStatusPending])
	if err != nil {
		return errors.Wrap(err, "failed to load pending invitations")
	}
	span.LogFields(log.Int("pendingInvitations", len(pending)))
	if len(pending) == 0 {
		return nil
	}

	now := utils.Now()
	succeeded := make([]string, 0, len(pending))
	failed := make([]string, 0, len(pending))
	for _, invitation := range pending {
		history, err := m.transport.GetMessageEvents(ctx, invitation.MessageID)
		if err != nil {
			if errors.Is(err, mailererrors.ErrSendThrottled) {
				m.log.Warnf("Provider throttled event lookup for message %s, skipping", invitation.MessageID)
			} else {
				m.log.Errorf("Failed to fetch events for message %s: %v", invitation.MessageID, err)
			}
			continue
		}

		switch classifyDeliveryEvents(history.Events, now, m.cfg.FailureAgeThreshold) {
		case enum.InvitationStatusSuccess:
			succeeded = append(succeeded, invitation.MessageID)
		case enum.InvitationStatusFailure:
			failed = append(failed, invitation.MessageID)
		}
	}

	if err := m.applyStatus(ctx, statusIDs, enum.InvitationStatusSuccess, succeeded); err != nil {
		return err
	}
	if err := m.applyStatus(ctx, statusIDs, enum.InvitationStatusFailure, failed); err != nil {
		return err
	}

	m.log.Infof("Invitation monitor pass complete: %d checked, %d succeeded, %d failed", len(pending), len(succeeded), len(failed))
	return nil
}

func (m *invitationMonitor) resolveStatusIDs(ctx context.Context) (map[enum.InvitationStatus]string, error) {
	ids := make(map[enum.InvitationStatus]string, 3)
	for _, name := range []enum.InvitationStatus{
		enum.InvitationStatusPending,
		enum.InvitationStatusSuccess,
		enum.InvitationStatusFailure,
	} {
		status, err := m.statuses.GetByName(ctx, name.String())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve status %s", name)
		}
		if status == nil {
			return nil, errors.Wrapf(mailererrors.ErrStatusNotFound, "status %s is not seeded", name)
		}
		ids[name] = status.ID
	}
	return ids, nil
}

func (m *invitationMonitor) applyStatus(ctx context.Context, statusIDs map[enum.InvitationStatus]string, status enum.InvitationStatus, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	updated, err := m.invitation.BulkSetStatus(ctx, statusIDs[status], messageIDs)
	if err != nil {
		return errors.Wrapf(err, "failed to mark %d invitations as %s", len(messageIDs), status)
	}
	m.log.Infof("Marked %d invitations as %s", updated, status)

	if m.publisher != nil {
		if err := m.publisher.PublishInvitationStatusChanged(ctx, messageIDs, status); err != nil {
			m.log.Warnf("Failed to publish status change event for %s: %v", status, err)
		}
	}
	return nil
}
