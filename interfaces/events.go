package interfaces

import (
	"context"

	"github.com/sponsorengage/mailer/internal/enum"
	"github.com/sponsorengage/mailer/internal/models"
)

// EventPublisher pushes invitation lifecycle events onto the message bus for
// downstream consumers (notification digests, audit trail).
type EventPublisher interface {
	PublishInvitationSent(ctx context.Context, invitation *models.Invitation) error
	PublishInvitationStatusChanged(ctx context.Context, messageIDs []string, status enum.InvitationStatus) error
	Close() error
}
