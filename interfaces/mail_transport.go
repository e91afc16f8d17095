package interfaces

import (
	"context"
	"time"

	"github.com/sponsorengage/mailer/internal/enum"
)

// MailTransport abstracts the third-party email provider. Errors returned by
// SendMessage and GetMessageEvents wrap errors.ErrSendThrottled when the
// provider rejected the call for rate-limit reasons.
type MailTransport interface {
	// SendMessage dispatches one message and returns the provider-assigned
	// message id.
	SendMessage(ctx context.Context, message *OutboundMessage) (string, error)
	// GetSendQuota fetches the account's current sustainable send rate.
	GetSendQuota(ctx context.Context) (*SendQuota, error)
	// GetMessageEvents fetches the delivery event history for a message.
	GetMessageEvents(ctx context.Context, messageID string) (*MessageEvents, error)
}

type OutboundMessage struct {
	To       []string
	Subject  string
	BodyHTML string
	BodyText string
}

type SendQuota struct {
	// MaxSendRate is the provider-reported maximum messages per second.
	// Zero means the provider could not report a usable rate.
	MaxSendRate float64
}

type DeliveryEvent struct {
	Timestamp     time.Time
	Type          enum.DeliveryEventType
	BounceSubtype enum.BounceSubtype
}

type MessageEvents struct {
	MessageID string
	Events    []DeliveryEvent
}
