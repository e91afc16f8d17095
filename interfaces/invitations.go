package interfaces

import "context"

// ContactInvite describes one sponsor contact to invite.
type ContactInvite struct {
	Email              string
	UserOrganisationID string
	OrganisationName   string
	StudyCount         int
}

// InvitationSendSummary reports how an invitation batch settled.
type InvitationSendSummary struct {
	Sent    int
	Failed  int
	Invalid int
}

// InvitationSender builds and dispatches invitation emails, persisting a
// Pending invitation row per successful send.
type InvitationSender interface {
	SendInvitations(ctx context.Context, invites []ContactInvite) (*InvitationSendSummary, error)
}

// InvitationMonitor reconciles Pending invitations against the provider's
// delivery event history.
type InvitationMonitor interface {
	// MonitorInvitationEmails runs one reconciliation pass. It never returns
	// an error and never panics; failures are logged.
	MonitorInvitationEmails(ctx context.Context)
}
