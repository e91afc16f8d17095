package invitations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sponsorengage/mailer/interfaces"
	"github.com/sponsorengage/mailer/internal/enum"
)

func TestClassifyDeliveryEvents(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	threshold := 72 * time.Hour

	event := func(eventType enum.DeliveryEventType, age time.Duration) interfaces.DeliveryEvent {
		return interfaces.DeliveryEvent{Timestamp: now.Add(-age), Type: eventType}
	}

	t.Run("delivery means success", func(t *testing.T) {
		status := classifyDeliveryEvents([]interfaces.DeliveryEvent{
			event(enum.DeliveryEventSend, 2*time.Hour),
			event(enum.DeliveryEventDelivery, time.Hour),
		}, now, threshold)
		assert.Equal(t, enum.InvitationStatusSuccess, status)
	})

	t.Run("latest event wins regardless of input order", func(t *testing.T) {
		status := classifyDeliveryEvents([]interfaces.DeliveryEvent{
			event(enum.DeliveryEventDelivery, time.Hour),
			event(enum.DeliveryEventSend, 2*time.Hour),
		}, now, threshold)
		assert.Equal(t, enum.InvitationStatusSuccess, status)
	})

	t.Run("permanent bounce means failure", func(t *testing.T) {
		bounce := event(enum.DeliveryEventBounce, time.Hour)
		bounce.BounceSubtype = enum.BouncePermanent
		status := classifyDeliveryEvents([]interfaces.DeliveryEvent{
			event(enum.DeliveryEventSend, 2*time.Hour),
			bounce,
		}, now, threshold)
		assert.Equal(t, enum.InvitationStatusFailure, status)
	})

	t.Run("transient bounce stays pending inside threshold", func(t *testing.T) {
		bounce := event(enum.DeliveryEventBounce, time.Hour)
		bounce.BounceSubtype = enum.BounceTransient
		status := classifyDeliveryEvents([]interfaces.DeliveryEvent{bounce}, now, threshold)
		assert.Equal(t, enum.InvitationStatusPending, status)
	})

	t.Run("reject means failure", func(t *testing.T) {
		status := classifyDeliveryEvents([]interfaces.DeliveryEvent{
			event(enum.DeliveryEventReject, time.Minute),
		}, now, threshold)
		assert.Equal(t, enum.InvitationStatusFailure, status)
	})

	t.Run("rendering failure means failure", func(t *testing.T) {
		status := classifyDeliveryEvents([]interfaces.DeliveryEvent{
			event(enum.DeliveryEventRenderingFailure, time.Minute),
		}, now, threshold)
		assert.Equal(t, enum.InvitationStatusFailure, status)
	})

	t.Run("stale send means failure", func(t *testing.T) {
		status := classifyDeliveryEvents([]interfaces.DeliveryEvent{
			event(enum.DeliveryEventSend, 73*time.Hour),
		}, now, threshold)
		assert.Equal(t, enum.InvitationStatusFailure, status)
	})

	t.Run("recent send stays pending", func(t *testing.T) {
		status := classifyDeliveryEvents([]interfaces.DeliveryEvent{
			event(enum.DeliveryEventSend, time.Hour),
		}, now, threshold)
		assert.Equal(t, enum.InvitationStatusPending, status)
	})

	t.Run("no events stays pending", func(t *testing.T) {
		status := classifyDeliveryEvents(nil, now, threshold)
		assert.Equal(t, enum.InvitationStatusPending, status)
	})
}
