// Package account provides CRUD operations for the platform accounts of a user.
// Every operation is scoped to the owning user, so a user can never reach another
// user's account.
package account

import (
	"errors"

	"gorm.io/gorm"

	"github.com/acctmgr/acctmgr/internal/db/models"
)

const (
	ownedQueryPattern = "id = ? AND user_id = ?"
	userQueryPattern  = "user_id = ?"
)

var (
	// ErrAccountNotFound is returned when an account does not exist or belongs to another user.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountNameEmpty is returned when attempting to create/update an account with an empty name.
	ErrAccountNameEmpty = errors.New("account name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Filter narrows List. Name matches as a substring.
type Filter struct {
	Name string
}

// Get retrieves an account owned by userID.
func Get(db *gorm.DB, userID, id uint64) (*models.Account, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var account models.Account

	result := db.Where(ownedQueryPattern, id, userID).First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}

		return nil, result.Error
	}

	return &account, nil
}

// List returns one page of a user's accounts, newest first, and the total count.
func List(db *gorm.DB, userID uint64, f Filter, offset, limit int) ([]models.Account, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	query := db.Model(&models.Account{}).Where(userQueryPattern, userID)
	if f.Name != "" {
		query = query.Where("name LIKE ?", "%"+f.Name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []models.Account
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

// Create creates a new account for account.UserID.
func Create(db *gorm.DB, account *models.Account) error {
	if db == nil {
		return ErrDBNil
	}

	if account.Name == "" {
		return ErrAccountNameEmpty
	}

	return db.Create(account).Error
}

// Update stores the editable fields of account. The owner cannot change.
func Update(db *gorm.DB, account *models.Account) error {
	if db == nil {
		return ErrDBNil
	}

	if account.Name == "" {
		return ErrAccountNameEmpty
	}

	result := db.Model(&models.Account{}).
		Where(ownedQueryPattern, account.ID, account.UserID).
		Updates(map[string]any{
			"name":              account.Name,
			"platform_account":  account.PlatformAccount,
			"platform_password": account.PlatformPassword,
			"description":       account.Description,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// Delete soft deletes an account owned by userID.
func Delete(db *gorm.DB, userID, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where(ownedQueryPattern, id, userID).Delete(&models.Account{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}

	return nil
}
