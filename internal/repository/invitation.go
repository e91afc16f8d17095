package repository

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/sponsorengage/mailer/interfaces"
	"github.com/sponsorengage/mailer/internal/models"
	"github.com/sponsorengage/mailer/internal/tracing"
	"github.com/sponsorengage/mailer/internal/utils"
)

type invitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) interfaces.InvitationRepository {
	return &invitationRepository{
		db: db,
	}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *models.Invitation) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "invitationRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if invitation == nil {
		return "", ErrInvalidInput
	}

	if invitation.MessageID != "" {
		invitation.MessageID = strings.Trim(invitation.MessageID, "<>")
	}
	if invitation.SentAt.IsZero() {
		invitation.SentAt = utils.Now()
	}

	result := r.db.WithContext(ctx).Create(invitation)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return "", result.Error
	}

	return invitation.ID, nil
}

// FindPending returns one row per user-organisation relationship: when a
// relationship somehow accumulated multiple pending invitations, only the
// newest is evaluated.
func (r *invitationRepository) FindPending(ctx context.Context, pendingStatusID string) ([]models.Invitation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "invitationRepository.FindPending")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var invitations []models.Invitation
	err := r.db.WithContext(ctx).
		Select("DISTINCT ON (user_organisation_id) *").
		Where("status_id = ?", pendingStatusID).
		Order("user_organisation_id, created_at DESC").
		Find(&invitations).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	span.LogKV("result.count", len(invitations))
	return invitations, nil
}

func (r *invitationRepository) BulkSetStatus(ctx context.Context, statusID string, messageIDs []string) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "invitationRepository.BulkSetStatus")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if statusID == "" {
		return 0, ErrInvalidInput
	}
	if len(messageIDs) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("message_id = ANY(?)", pq.Array(messageIDs)).
		Updates(map[string]interface{}{
			"status_id":  statusID,
			"updated_at": utils.Now(),
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return 0, result.Error
	}

	span.LogKV("result.updated", result.RowsAffected)
	return result.RowsAffected, nil
}
