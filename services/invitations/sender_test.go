package invitations

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sponsorengage/mailer/interfaces"
)

type fakeBulkMailer struct {
	jobs     []interfaces.EmailJob
	outcomes func(jobs []interfaces.EmailJob) []interfaces.SendOutcome
	err      error
}

func (f *fakeBulkMailer) SendBulk(ctx context.Context, jobs []interfaces.EmailJob) ([]interfaces.SendOutcome, error) {
	f.jobs = jobs
	if f.err != nil {
		return nil, f.err
	}
	if f.outcomes != nil {
		return f.outcomes(jobs), nil
	}
	outcomes := make([]interfaces.SendOutcome, len(jobs))
	for i, job := range jobs {
		outcomes[i] = interfaces.SendOutcome{
			JobIndex: i,
			Result:   &interfaces.SendResult{MessageID: job.To[0], Recipients: job.To},
		}
	}
	return outcomes, nil
}

func testInvite(email, userOrgID string) interfaces.ContactInvite {
	return interfaces.ContactInvite{
		Email:              email,
		UserOrganisationID: userOrgID,
		OrganisationName:   "Acme Pharma",
		StudyCount:         3,
	}
}

func newTestSender(mailer interfaces.BulkMailer, repo *fakeInvitationRepo, publisher *fakePublisher) interfaces.InvitationSender {
	return NewInvitationSender(getLogger(), SenderConfig{SignInURL: "https://assessments.example.com/signin"}, mailer, repo, &fakeStatusRepo{}, publisher)
}

func TestSendInvitationsRecordsPendingRows(t *testing.T) {
	mailer := &fakeBulkMailer{}
	repo := &fakeInvitationRepo{}
	publisher := &fakePublisher{}
	sender := newTestSender(mailer, repo, publisher)

	summary, err := sender.SendInvitations(context.Background(), []interfaces.ContactInvite{
		testInvite("alice@example.com", "uo_1"),
		testInvite("bob@example.com", "uo_2"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Sent)
	assert.Zero(t, summary.Failed)
	assert.Zero(t, summary.Invalid)

	require.Len(t, repo.created, 2)
	assert.Equal(t, "status_Pending", repo.created[0].StatusID)
	assert.Equal(t, "uo_1", repo.created[0].UserOrganisationID)
	assert.Equal(t, "alice@example.com", repo.created[0].RecipientEmail)
	assert.Len(t, publisher.sent, 2)
}

func TestSendInvitationsSkipsInvalidAddresses(t *testing.T) {
	mailer := &fakeBulkMailer{}
	repo := &fakeInvitationRepo{}
	sender := newTestSender(mailer, repo, &fakePublisher{})

	summary, err := sender.SendInvitations(context.Background(), []interfaces.ContactInvite{
		testInvite("not-an-email", "uo_1"),
		testInvite("carol@example.com", "uo_2"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Invalid)
	require.Len(t, mailer.jobs, 1)
	assert.Equal(t, []string{"carol@example.com"}, mailer.jobs[0].To)
}

func TestSendInvitationsCountsFailedOutcomes(t *testing.T) {
	mailer := &fakeBulkMailer{
		outcomes: func(jobs []interfaces.EmailJob) []interfaces.SendOutcome {
			return []interfaces.SendOutcome{
				{JobIndex: 0, Result: &interfaces.SendResult{MessageID: "m1", Recipients: jobs[0].To}},
				{JobIndex: 1, Err: errors.New("provider rejected the message")},
			}
		},
	}
	repo := &fakeInvitationRepo{}
	sender := newTestSender(mailer, repo, &fakePublisher{})

	summary, err := sender.SendInvitations(context.Background(), []interfaces.ContactInvite{
		testInvite("alice@example.com", "uo_1"),
		testInvite("bob@example.com", "uo_2"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "m1", repo.created[0].MessageID)
}

func TestSendInvitationsBulkFailureIsFatal(t *testing.T) {
	mailer := &fakeBulkMailer{err: errors.New("quota unavailable")}
	repo := &fakeInvitationRepo{}
	sender := newTestSender(mailer, repo, &fakePublisher{})

	summary, err := sender.SendInvitations(context.Background(), []interfaces.ContactInvite{
		testInvite("alice@example.com", "uo_1"),
	})

	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Empty(t, repo.created)
}

func TestSendInvitationsEmptyBatch(t *testing.T) {
	mailer := &fakeBulkMailer{}
	sender := newTestSender(mailer, &fakeInvitationRepo{}, &fakePublisher{})

	summary, err := sender.SendInvitations(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, summary.Sent)
	assert.Empty(t, mailer.jobs)
}

func TestSendInvitationsSubjectAndTemplateData(t *testing.T) {
	mailer := &fakeBulkMailer{}
	sender := newTestSender(mailer, &fakeInvitationRepo{}, &fakePublisher{})

	_, err := sender.SendInvitations(context.Background(), []interfaces.ContactInvite{
		testInvite("alice@example.com", "uo_1"),
	})

	require.NoError(t, err)
	require.Len(t, mailer.jobs, 1)
	assert.Equal(t, "You have been invited to assess studies for Acme Pharma", mailer.jobs[0].Subject)
	html, err := mailer.jobs[0].RenderHTML(mailer.jobs[0].TemplateData)
	require.NoError(t, err)
	assert.Contains(t, html, "Acme Pharma")
	assert.Contains(t, html, "https://assessments.example.com/signin")
}
