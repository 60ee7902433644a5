package projects

import (
	"time"
)

// Project is the per-site configuration a submitted API key resolves to.
type Project struct {
	ID                 string    `json:"id" gorm:"primaryKey;column:id"`
	Name               string    `json:"name" gorm:"column:name"`
	Description        string    `json:"description,omitempty" gorm:"column:description"`
	APIKey             string    `json:"api_key" gorm:"column:api_key;uniqueIndex"`
	WebhookURL         string    `json:"webhook_url,omitempty" gorm:"column:webhook_url"`
	MinScore           int       `json:"min_score" gorm:"column:min_score"`
	ForwardAll         bool      `json:"forward_all" gorm:"column:forward_all"`
	EmailNotifications bool      `json:"email_notifications" gorm:"column:email_notifications"`
	NotificationEmail  string    `json:"notification_email,omitempty" gorm:"column:notification_email"`
	CreatedAt          time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

type CreateProjectRequest struct {
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	WebhookURL         string `json:"webhook_url,omitempty"`
	MinScore           int    `json:"min_score,omitempty"`
	ForwardAll         bool   `json:"forward_all,omitempty"`
	EmailNotifications bool   `json:"email_notifications,omitempty"`
	NotificationEmail  string `json:"notification_email,omitempty"`
}
