// Package override persists setting overrides with gorm and implements settings.Store.
package override

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acctmgr/acctmgr/internal/db/models"
	"github.com/acctmgr/acctmgr/internal/settings"
)

const (
	scopeQueryPattern = "owner_type = ? AND owner_id = ?"
	keyQueryPattern   = "owner_type = ? AND owner_id = ? AND setting_code = ?"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Store is a settings.Store backed by the setting_overrides table. Writes are checked
// against the catalog the store was built with.
type Store struct {
	db      *gorm.DB
	catalog *settings.Catalog
}

var _ settings.Store = (*Store)(nil)

// New returns a store using db and the default catalog.
func New(db *gorm.DB) (*Store, error) {
	return NewWithCatalog(db, settings.Default())
}

// NewWithCatalog returns a store using db that validates writes against catalog.
func NewWithCatalog(db *gorm.DB, catalog *settings.Catalog) (*Store, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Store{db: db, catalog: catalog}, nil
}

// Get implements settings.Store.
func (s *Store) Get(ctx context.Context, scope settings.Scope, code int) (*settings.Override, error) {
	var row models.SettingOverride

	err := s.db.WithContext(ctx).
		Where(keyQueryPattern, uint8(scope.Kind), scope.ID, code).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	o, err := toOverride(&row)
	if err != nil {
		return nil, err
	}

	return &o, nil
}

// GetAll implements settings.Store.
func (s *Store) GetAll(ctx context.Context, scope settings.Scope) (map[int]settings.Override, error) {
	var rows []models.SettingOverride

	err := s.db.WithContext(ctx).
		Where(scopeQueryPattern, uint8(scope.Kind), scope.ID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int]settings.Override, len(rows))

	for i := range rows {
		o, err := toOverride(&rows[i])
		if err != nil {
			return nil, err
		}

		out[o.Code] = o
	}

	return out, nil
}

// Upsert implements settings.Store with a single INSERT ... ON CONFLICT statement.
// Unknown codes and values whose type differs from the definition are rejected.
func (s *Store) Upsert(ctx context.Context, scope settings.Scope, code int, value settings.Value) (*settings.Override, error) {
	d, err := s.catalog.Lookup(code)
	if err != nil {
		return nil, err
	}

	if value.Type() != d.Type {
		return nil, fmt.Errorf("%w: setting %d is %s, got %s", settings.ErrTypeMismatch, code, d.Type, value.Type())
	}

	now := time.Now()
	row := models.SettingOverride{
		OwnerType:   uint8(scope.Kind),
		OwnerID:     scope.ID,
		SettingCode: code,
		ValueType:   string(value.Type()),
		Value:       value.Encode(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_type"}, {Name: "owner_id"}, {Name: "setting_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"value_type", "value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	return &settings.Override{Scope: scope, Code: code, Value: value, UpdatedAt: now}, nil
}

// Remove implements settings.Store.
func (s *Store) Remove(ctx context.Context, scope settings.Scope, code int) (bool, error) {
	result := s.db.WithContext(ctx).
		Where(keyQueryPattern, uint8(scope.Kind), scope.ID, code).
		Delete(&models.SettingOverride{})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// RemoveAll deletes every override of a scope, used when its owner is deleted.
func (s *Store) RemoveAll(ctx context.Context, scope settings.Scope) (int64, error) {
	result := s.db.WithContext(ctx).
		Where(scopeQueryPattern, uint8(scope.Kind), scope.ID).
		Delete(&models.SettingOverride{})

	return result.RowsAffected, result.Error
}

func toOverride(row *models.SettingOverride) (settings.Override, error) {
	vt, err := settings.ParseValueType(row.ValueType)
	if err != nil {
		return settings.Override{}, fmt.Errorf("override %d: %w", row.ID, err)
	}

	v, err := settings.Decode(vt, row.Value)
	if err != nil {
		return settings.Override{}, fmt.Errorf("override %d: %w", row.ID, err)
	}

	return settings.Override{
		Scope:     settings.Scope{Kind: settings.OwnerKind(row.OwnerType), ID: row.OwnerID},
		Code:      row.SettingCode,
		Value:     v,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
