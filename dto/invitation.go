package dto

// InvitationSent is published after an invitation email was accepted by the
// mail provider and the Pending invitation row was created.
type InvitationSent struct {
	InvitationID       string `json:"invitationId"`
	MessageID          string `json:"messageId"`
	UserOrganisationID string `json:"userOrganisationId"`
	RecipientEmail     string `json:"recipientEmail"`
}

// InvitationStatusChanged is published after a reconciliation pass moved a
// batch of invitations to a terminal status.
type InvitationStatusChanged struct {
	MessageIDs []string `json:"messageIds"`
	Status     string   `json:"status"`
}
