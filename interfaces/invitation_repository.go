package interfaces

import (
	"context"

	"github.com/sponsorengage/mailer/internal/models"
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) (string, error)
	// FindPending returns invitations currently in the given status,
	// deduplicated to the newest row per user-organisation relationship.
	FindPending(ctx context.Context, pendingStatusID string) ([]models.Invitation, error)
	// BulkSetStatus moves every invitation matching the message ids to the
	// given status in a single update. Returns the number of rows updated.
	BulkSetStatus(ctx context.Context, statusID string, messageIDs []string) (int64, error)
}

type InvitationStatusRepository interface {
	// GetByName resolves a status row from the fixed vocabulary. Returns nil
	// without error when the name is unknown.
	GetByName(ctx context.Context, name string) (*models.InvitationStatus, error)
}
