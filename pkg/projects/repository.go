package projects

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("project not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Project{})
}

func (r *Repository) Create(ctx context.Context, project *Project) error {
	project.CreatedAt = time.Now().UTC()
	project.UpdatedAt = project.CreatedAt
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *Repository) Get(ctx context.Context, id string) (*Project, error) {
	var project Project
	result := r.db.WithContext(ctx).First(&project, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &project, result.Error
}

func (r *Repository) GetByAPIKey(ctx context.Context, apiKey string) (*Project, error) {
	var project Project
	result := r.db.WithContext(ctx).First(&project, "api_key = ?", apiKey)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &project, result.Error
}
