package invitations

import (
	"sort"
	"time"

	"github.com/sponsorengage/mailer/interfaces"
	"github.com/sponsorengage/mailer/internal/enum"
)

// classifyDeliveryEvents decides an invitation's status from its provider
// event history. The newest event wins: a delivery means Success, a permanent
// bounce or an outright rejection means Failure. Transient states stay
// Pending until the message has been in flight longer than failureAge, after
// which the invitation is written off as Failure.
func classifyDeliveryEvents(events []interfaces.DeliveryEvent, now time.Time, failureAge time.Duration) enum.InvitationStatus {
	if len(events) == 0 {
		return enum.InvitationStatusPending
	}

	sorted := make([]interfaces.DeliveryEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	latest := sorted[0]
	switch latest.Type {
	case enum.DeliveryEventDelivery:
		return enum.InvitationStatusSuccess
	case enum.DeliveryEventBounce:
		if latest.BounceSubtype == enum.BouncePermanent {
			return enum.InvitationStatusFailure
		}
	case enum.DeliveryEventReject, enum.DeliveryEventRenderingFailure:
		return enum.InvitationStatusFailure
	}

	if now.Sub(latest.Timestamp) > failureAge {
		return enum.InvitationStatusFailure
	}
	return enum.InvitationStatusPending
}
