package daemon

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/acctmgr/acctmgr/internal/config"
	"github.com/acctmgr/acctmgr/internal/db/models"
)

const (
	defaultAdminName     = "admin"
	defaultAdminPassword = "changeme"
)

// seed creates the default administrator when the user table is empty.
func seed(_ *config.Config, db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to count users")
	}

	if count > 0 {
		return nil
	}

	hash, err := models.HashPassword(defaultAdminPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash admin password")
	}

	admin := &models.User{
		Username: defaultAdminName,
		Password: hash,
		Active:   true,
		IsAdmin:  true,
	}

	if err = db.Create(admin).Error; err != nil {
		return errors.Wrap(err, "failed to create admin user")
	}

	log.Warn().Str("username", defaultAdminName).Msg("created default administrator, change its password")

	return nil
}
