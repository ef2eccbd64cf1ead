package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/acctmgr/acctmgr/internal/activation"
	"github.com/acctmgr/acctmgr/internal/db/controller/activationcode"
	"github.com/acctmgr/acctmgr/internal/db/models"
)

// LocalProvider handles registration and local database authentication.
type LocalProvider struct {
	db    *gorm.DB
	codes *activation.Service
}

const (
	whereID       = "id = ?"
	whereUsername = "username = ?"
)

// Registration is a sign up request.
type Registration struct {
	Username       string
	Password       string
	ActivationCode string
}

// ProfileUpdate changes the non-empty fields of a user profile.
type ProfileUpdate struct {
	Username *string
	Phone    *string
	Email    *string
}

// NewLocalProvider creates a new local authentication provider. codes redeems the
// activation codes presented at registration.
func NewLocalProvider(db *gorm.DB, codes *activation.Service) *LocalProvider {
	return &LocalProvider{
		db:    db,
		codes: codes,
	}
}

// Authenticate authenticates a user against the local database.
func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Where(whereUsername, username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	if !user.IsAdmin && user.Expired(p.codes.Now()) {
		return nil, ErrMembershipExpired
	}

	return &user, nil
}

// Register creates a user and redeems its activation code in one transaction. When
// the code cannot be redeemed nothing is written.
func (p *LocalProvider) Register(ctx context.Context, in Registration) (*models.User, error) {
	if err := ValidateUsername(in.Username); err != nil {
		return nil, err
	}

	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := models.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user models.User

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := usernameFree(tx, in.Username, 0); err != nil {
			return err
		}

		redeemed, err := p.codes.WithRepository(activationcode.New(tx)).Register(ctx, in.ActivationCode)
		if err != nil {
			return err
		}

		user = models.User{
			Active:         true,
			Username:       in.Username,
			Password:       hashedPassword,
			ActivationCode: redeemed.Code,
			ExpiresAt:      membershipEnd(redeemed),
		}

		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint64("user_id", user.ID).
		Str("username", user.Username).
		Str("activation_code", maskCode(user.ActivationCode)).
		Msg("user registered")

	return &user, nil
}

// membershipEnd is the activation time plus the duration of the code type, nil for
// permanent codes.
func membershipEnd(v *activation.View) *time.Time {
	d, ok := v.Type.Duration()
	if !ok || v.ActivatedAt == nil {
		return nil
	}

	end := v.ActivatedAt.Add(d)

	return &end
}

// maskCode masks an activation code for logging.
func maskCode(c string) string {
	if len(c) <= 4 {
		return "****"
	}

	return c[:4] + strings.Repeat("*", len(c)-4)
}

func usernameFree(tx *gorm.DB, username string, self uint64) error {
	var existing models.User

	err := tx.Where(whereUsername, username).First(&existing).Error
	if err == nil {
		if existing.ID == self {
			return nil
		}

		return ErrUserNameExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing user: %w", err)
	}

	return nil
}

// UpdateProfile applies the set fields of upd.
func (p *LocalProvider) UpdateProfile(ctx context.Context, userID uint64, upd ProfileUpdate) (*models.User, error) {
	updates := map[string]any{}

	if upd.Username != nil {
		if err := ValidateUsername(*upd.Username); err != nil {
			return nil, err
		}

		updates["username"] = *upd.Username
	}

	if upd.Phone != nil {
		if err := ValidatePhone(*upd.Phone); err != nil {
			return nil, err
		}

		updates["phone"] = *upd.Phone
	}

	if upd.Email != nil {
		updates["email"] = *upd.Email
	}

	if len(updates) == 0 {
		return nil, ErrEmptyProfileUpdate
	}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if upd.Username != nil {
			if err := usernameFree(tx, *upd.Username, userID); err != nil {
				return err
			}
		}

		result := tx.Model(&models.User{}).Where(whereID, userID).Updates(updates)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return p.GetUserByID(ctx, userID)
}

// ChangePassword changes a user's password.
func (p *LocalProvider) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	user, err := p.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := models.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return p.db.WithContext(ctx).Model(&models.User{}).
		Where(whereID, userID).
		Update("password", hashedPassword).Error
}

// GetUserByID retrieves a user by ID.
func (p *LocalProvider) GetUserByID(ctx context.Context, userID uint64) (*models.User, error) {
	var user models.User
	if err := p.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return &user, nil
}
