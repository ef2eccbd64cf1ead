// Package activationcode persists activation codes with gorm and implements
// activation.Repository.
package activationcode

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/acctmgr/acctmgr/internal/activation"
	"github.com/acctmgr/acctmgr/internal/db/models"
)

const (
	codeQueryPattern = "code = ?"
	batchSize        = 200
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Repository is an activation.Repository backed by the activation_codes table.
type Repository struct {
	db *gorm.DB
}

var _ activation.Repository = (*Repository)(nil)

// New returns a repository using db. Passing a transaction handle scopes every call
// to that transaction.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) conn(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, ErrDBNil
	}

	return r.db.WithContext(ctx), nil
}

// ExistingCodes implements activation.Repository.
func (r *Repository) ExistingCodes(ctx context.Context, codes []string) ([]string, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var out []string

	for start := 0; start < len(codes); start += batchSize {
		end := min(start+batchSize, len(codes))

		var found []string
		if err := db.Model(&models.ActivationCode{}).
			Where("code IN ?", codes[start:end]).
			Pluck("code", &found).Error; err != nil {
			return nil, err
		}

		out = append(out, found...)
	}

	return out, nil
}

// CreateBatch implements activation.Repository.
func (r *Repository) CreateBatch(ctx context.Context, rows []models.ActivationCode) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, batchSize).Error
	})
}

// GetByCode implements activation.Repository.
func (r *Repository) GetByCode(ctx context.Context, code string) (*models.ActivationCode, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var row models.ActivationCode
	if err := db.Where(codeQueryPattern, code).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, activation.ErrCodeNotFound
		}

		return nil, err
	}

	return &row, nil
}

// ListUnused implements activation.Repository.
func (r *Repository) ListUnused(ctx context.Context, t activation.Type, limit int) ([]models.ActivationCode, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []models.ActivationCode

	err = db.Where("type = ? AND status = ?", uint8(t), uint8(activation.StatusUnused)).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error

	return rows, err
}

// Transition implements activation.Repository as a compare-and-set on status.
func (r *Repository) Transition(ctx context.Context, id uint64, from activation.Status, change activation.StatusChange) (bool, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return false, err
	}

	updates := map[string]any{"status": uint8(change.To)}
	if change.DistributedAt != nil {
		updates["distributed_at"] = *change.DistributedAt
	}

	if change.ActivatedAt != nil {
		updates["activated_at"] = *change.ActivatedAt
	}

	if change.ExpireTime != nil {
		updates["expire_time"] = *change.ExpireTime
	}

	result := db.Model(&models.ActivationCode{}).
		Where("id = ? AND status = ?", id, uint8(from)).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// List implements activation.Repository.
func (r *Repository) List(ctx context.Context, f activation.Filter, offset, limit int) ([]models.ActivationCode, int64, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, 0, err
	}

	q := applyFilter(db.Model(&models.ActivationCode{}), f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ActivationCode

	err = q.Order("id DESC").Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// CountByStatus returns how many codes of each type are in each status.
func (r *Repository) CountByStatus(ctx context.Context) (map[activation.Type]map[activation.Status]int64, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Type   uint8
		Status uint8
		Total  int64
	}

	err = db.Model(&models.ActivationCode{}).
		Select("type, status, COUNT(*) AS total").
		Group("type, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[activation.Type]map[activation.Status]int64)

	for _, row := range rows {
		t := activation.Type(row.Type)
		if out[t] == nil {
			out[t] = make(map[activation.Status]int64)
		}

		out[t][activation.Status(row.Status)] = row.Total
	}

	return out, nil
}

func applyFilter(q *gorm.DB, f activation.Filter) *gorm.DB {
	if f.Type != nil {
		q = q.Where("type = ?", uint8(*f.Type))
	}

	if f.Status != nil {
		q = q.Where("status = ?", uint8(*f.Status))
	}

	if f.Code != "" {
		q = q.Where(codeQueryPattern, f.Code)
	}

	if f.DistributedFrom != nil {
		q = q.Where("distributed_at >= ?", *f.DistributedFrom)
	}

	if f.DistributedTo != nil {
		q = q.Where("distributed_at <= ?", *f.DistributedTo)
	}

	if f.ActivatedFrom != nil {
		q = q.Where("activated_at >= ?", *f.ActivatedFrom)
	}

	if f.ActivatedTo != nil {
		q = q.Where("activated_at <= ?", *f.ActivatedTo)
	}

	if f.ExpireFrom != nil {
		q = q.Where("expire_time >= ?", *f.ExpireFrom)
	}

	if f.ExpireTo != nil {
		q = q.Where("expire_time <= ?", *f.ExpireTo)
	}

	return q
}
