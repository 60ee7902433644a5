package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leadvalidator/platform/pkg/common/logger"
	"github.com/leadvalidator/platform/pkg/common/models"
	"github.com/leadvalidator/platform/pkg/projects"
	"gorm.io/gorm"
)

// Notification records a qualified-lead alert owed to a project owner.
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id"`
	ProjectID string    `json:"project_id" gorm:"column:project_id;index"`
	LeadID    string    `json:"lead_id" gorm:"column:lead_id"`
	Recipient string    `json:"recipient" gorm:"column:recipient"`
	Subject   string    `json:"subject" gorm:"column:subject"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Notification{})
}

func (r *Repository) Create(ctx context.Context, n *Notification) error {
	n.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(n).Error
}

// ProjectSource looks up the notification settings for a project.
type ProjectSource interface {
	Get(ctx context.Context, id string) (*projects.Project, error)
}

// Store persists owner notifications.
type Store interface {
	Create(ctx context.Context, n *Notification) error
}

type Service struct {
	projects ProjectSource
	store    Store
}

func NewService(projectSource ProjectSource, store Store) *Service {
	return &Service{projects: projectSource, store: store}
}

// HandleEvent consumes lead lifecycle events and records an owner
// notification for each qualified lead on a project that opted in.
func (s *Service) HandleEvent(ctx context.Context, event models.Event) error {
	if event.Type != models.EventLeadQualified {
		return nil
	}

	projectID, _ := event.Data["project_id"].(string)
	leadID, _ := event.Data["lead_id"].(string)
	if projectID == "" || leadID == "" {
		logger.Log.WithField("event_id", event.ID).Warn("Lead event missing identifiers")
		return nil
	}

	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			logger.Log.WithField("project_id", projectID).Warn("Event references unknown project")
			return nil
		}
		return fmt.Errorf("resolving project %s: %w", projectID, err)
	}

	if !project.EmailNotifications || project.NotificationEmail == "" {
		return nil
	}

	notification := &Notification{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		LeadID:    leadID,
		Recipient: project.NotificationEmail,
		Subject:   fmt.Sprintf("New qualified lead for %s", project.Name),
	}

	if err := s.store.Create(ctx, notification); err != nil {
		return fmt.Errorf("persisting notification: %w", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"project_id": projectID,
		"lead_id":    leadID,
		"recipient":  project.NotificationEmail,
	}).Info("Lead notification recorded")

	return nil
}
