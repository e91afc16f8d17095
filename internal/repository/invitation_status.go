package repository

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/sponsorengage/mailer/interfaces"
	"github.com/sponsorengage/mailer/internal/models"
	"github.com/sponsorengage/mailer/internal/tracing"
)

type invitationStatusRepository struct {
	db *gorm.DB
}

func NewInvitationStatusRepository(db *gorm.DB) interfaces.InvitationStatusRepository {
	return &invitationStatusRepository{
		db: db,
	}
}

func (r *invitationStatusRepository) GetByName(ctx context.Context, name string) (*models.InvitationStatus, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "invitationStatusRepository.GetByName")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var status models.InvitationStatus
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&status).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &status, nil
}
