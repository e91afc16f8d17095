package invitations

import (
	"context"
	"fmt"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"

	"github.com/sponsorengage/mailer/interfaces"
	"github.com/sponsorengage/mailer/internal/enum"
	mailererrors "github.com/sponsorengage/mailer/internal/errors"
	"github.com/sponsorengage/mailer/internal/logger"
	"github.com/sponsorengage/mailer/internal/models"
	"github.com/sponsorengage/mailer/internal/templates"
	"github.com/sponsorengage/mailer/internal/tracing"
)

type SenderConfig struct {
	// SignInURL is embedded in the invitation body.
	SignInURL string
}

type invitationSender struct {
	log        logger.Logger
	cfg        SenderConfig
	mailer     interfaces.BulkMailer
	invitation interfaces.InvitationRepository
	statuses   interfaces.InvitationStatusRepository
	publisher  interfaces.EventPublisher
}

func NewInvitationSender(
	log logger.Logger,
	cfg SenderConfig,
	mailer interfaces.BulkMailer,
	invitation interfaces.InvitationRepository,
	statuses interfaces.InvitationStatusRepository,
	publisher interfaces.EventPublisher,
) interfaces.InvitationSender {
	return &invitationSender{
		log:        log,
		cfg:        cfg,
		mailer:     mailer,
		invitation: invitation,
		statuses:   statuses,
		publisher:  publisher,
	}
}

func (s *invitationSender) SendInvitations(ctx context.Context, invites []interfaces.ContactInvite) (*interfaces.InvitationSendSummary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "InvitationSender.SendInvitations")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogFields(log.Int("invites", len(invites)))

	summary := &interfaces.InvitationSendSummary{}
	if len(invites) == 0 {
		return summary, nil
	}

	pendingStatus, err := s.statuses.GetByName(ctx, enum.InvitationStatusPending.String())
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if pendingStatus == nil {
		tracing.TraceErr(span, mailererrors.ErrStatusNotFound)
		return nil, mailererrors.ErrStatusNotFound
	}

	jobs := make([]interfaces.EmailJob, 0, len(invites))
	jobInvites := make([]interfaces.ContactInvite, 0, len(invites))
	for _, invite := range invites {
		validation := mailvalidate.ValidateEmailSyntax(invite.Email)
		if !validation.IsValid || validation.IsSystemGenerated {
			s.log.Warnf("Skipping invitation with invalid recipient address for user organisation %s", invite.UserOrganisationID)
			summary.Invalid++
			continue
		}

		jobs = append(jobs, interfaces.EmailJob{
			To:      []string{validation.CleanEmail},
			Subject: fmt.Sprintf("You have been invited to assess studies for %s", invite.OrganisationName),
			TemplateData: templates.InvitationData{
				OrganisationName: invite.OrganisationName,
				StudyCount:       invite.StudyCount,
				SignInURL:        s.cfg.SignInURL,
			},
			RenderHTML: templates.InvitationHTML,
			RenderText: templates.InvitationText,
		})
		jobInvites = append(jobInvites, invite)
	}

	if len(jobs) == 0 {
		return summary, nil
	}

	outcomes, err := s.mailer.SendBulk(ctx, jobs)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	for _, outcome := range outcomes {
		invite := jobInvites[outcome.JobIndex]
		if !outcome.Succeeded() {
			s.log.Errorf("Invitation send failed for user organisation %s: %v", invite.UserOrganisationID, outcome.Err)
			summary.Failed++
			continue
		}

		record := &models.Invitation{
			MessageID:          outcome.Result.MessageID,
			UserOrganisationID: invite.UserOrganisationID,
			RecipientEmail:     outcome.Result.Recipients[0],
			StatusID:           pendingStatus.ID,
		}
		if _, err := s.invitation.Create(ctx, record); err != nil {
			tracing.TraceErr(span, err)
			s.log.Errorf("Failed to record invitation for message %s: %v", outcome.Result.MessageID, err)
			summary.Failed++
			continue
		}
		summary.Sent++

		if s.publisher != nil {
			if err := s.publisher.PublishInvitationSent(ctx, record); err != nil {
				s.log.Warnf("Failed to publish invitation sent event for %s: %v", record.ID, err)
			}
		}
	}

	s.log.Infof("Invitation batch complete: %d sent, %d failed, %d invalid", summary.Sent, summary.Failed, summary.Invalid)
	return summary, nil
}
