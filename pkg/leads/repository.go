package leads

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Lead{})
}

func (r *Repository) Create(ctx context.Context, lead *Lead) error {
	lead.CreatedAt = time.Now().UTC()
	lead.UpdatedAt = lead.CreatedAt
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *Repository) Get(ctx context.Context, id string) (*Lead, error) {
	var lead Lead
	result := r.db.WithContext(ctx).First(&lead, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &lead, result.Error
}

func (r *Repository) ListByProject(ctx context.Context, projectID string, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []Lead
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// UpdateDelivery records the final webhook bookkeeping for a lead. It runs
// after the retry loop ends for any reason, so an attempt count is never
// lost.
func (r *Repository) UpdateDelivery(ctx context.Context, id string, sent bool, attempts int) error {
	return r.db.WithContext(ctx).Model(&Lead{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"webhook_sent":     sent,
			"webhook_attempts": attempts,
			"updated_at":       time.Now().UTC(),
		}).Error
}

func (r *Repository) CleanupExpired(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-ttl)
	return r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&Lead{}).Error
}
