package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/sponsorengage/mailer/internal/utils"
)

// Invitation tracks one invitation email sent to a sponsor contact. The
// provider-assigned MessageID correlates the row with the provider's delivery
// event history; StatusID points into the invitation_statuses reference table.
type Invitation struct {
	ID                 string `gorm:"column:id;type:varchar(50);primaryKey"`
	MessageID          string `gorm:"column:message_id;uniqueIndex;type:varchar(255);not null"`
	UserOrganisationID string `gorm:"column:user_organisation_id;type:varchar(50);index;not null"`
	RecipientEmail     string `gorm:"column:recipient_email;type:varchar(255);not null"`
	StatusID           string `gorm:"column:status_id;type:varchar(50);index;not null"`

	SentAt    time.Time `gorm:"column:sent_at;type:timestamp;index"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
}

func (Invitation) TableName() string {
	return "invitations"
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = utils.GenerateNanoIDWithPrefix("invite", 24)
	}
	i.CreatedAt = utils.Now()
	return nil
}
