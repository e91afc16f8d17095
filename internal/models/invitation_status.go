package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/sponsorengage/mailer/internal/utils"
)

// InvitationStatus is the fixed status vocabulary (Pending/Success/Failure).
// Rows are seeded at migration time and treated as required reference data.
type InvitationStatus struct {
	ID   string `gorm:"column:id;type:varchar(50);primaryKey"`
	Name string `gorm:"column:name;type:varchar(50);uniqueIndex;not null"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
}

func (InvitationStatus) TableName() string {
	return "invitation_statuses"
}

func (s *InvitationStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = utils.GenerateNanoIDWithPrefix("status", 12)
	}
	s.CreatedAt = utils.Now()
	return nil
}
