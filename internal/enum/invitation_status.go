package enum

// InvitationStatus names the fixed reference-data vocabulary for invitation
// delivery outcomes. The reconciler moves invitations from Pending to one of
// the terminal statuses, never the other way.
type InvitationStatus string

const (
	InvitationStatusPending InvitationStatus = "Pending"
	InvitationStatusSuccess InvitationStatus = "Success"
	InvitationStatusFailure InvitationStatus = "Failure"
)

func (t InvitationStatus) String() string {
	return string(t)
}
