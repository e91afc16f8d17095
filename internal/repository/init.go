package repository

import (
	"gorm.io/gorm"

	"github.com/sponsorengage/mailer/interfaces"
	"github.com/sponsorengage/mailer/internal/enum"
	"github.com/sponsorengage/mailer/internal/models"
)

type Repositories struct {
	InvitationRepository       interfaces.InvitationRepository
	InvitationStatusRepository interfaces.InvitationStatusRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		InvitationRepository:       NewInvitationRepository(db),
		InvitationStatusRepository: NewInvitationStatusRepository(db),
	}
}

func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Invitation{},
		&models.InvitationStatus{},
	)
	if err != nil {
		return err
	}

	return seedInvitationStatuses(db)
}

// seedInvitationStatuses inserts the fixed status vocabulary. Existing rows
// are left untouched so reseeding is safe.
func seedInvitationStatuses(db *gorm.DB) error {
	names := []enum.InvitationStatus{
		enum.InvitationStatusPending,
		enum.InvitationStatusSuccess,
		enum.InvitationStatusFailure,
	}

	for _, name := range names {
		var count int64
		if err := db.Model(&models.InvitationStatus{}).Where("name = ?", name.String()).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&models.InvitationStatus{Name: name.String()}).Error; err != nil {
			return err
		}
	}

	return nil
}
