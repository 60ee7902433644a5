package leads

import (
	"time"

	"gorm.io/datatypes"
)

// Lead is the persisted record of a scored submission, including the webhook
// delivery bookkeeping the project owner sees.
type Lead struct {
	ID              string                      `json:"id" gorm:"primaryKey;column:id"`
	ProjectID       string                      `json:"project_id" gorm:"column:project_id;index"`
	Email           string                      `json:"email" gorm:"column:email"`
	Phone           string                      `json:"phone,omitempty" gorm:"column:phone"`
	FirstName       string                      `json:"first_name,omitempty" gorm:"column:first_name"`
	LastName        string                      `json:"last_name,omitempty" gorm:"column:last_name"`
	Company         string                      `json:"company,omitempty" gorm:"column:company"`
	Message         string                      `json:"message,omitempty" gorm:"column:message"`
	FormData        datatypes.JSONMap           `json:"form_data,omitempty" gorm:"column:form_data"`
	ValidationScore int                         `json:"validation_score" gorm:"column:validation_score"`
	EmailValid      bool                        `json:"email_valid" gorm:"column:email_valid"`
	PhoneValid      *bool                       `json:"phone_valid" gorm:"column:phone_valid"`
	Reasons         datatypes.JSONSlice[string] `json:"reasons" gorm:"column:reasons"`
	IPAddress       string                      `json:"ip_address,omitempty" gorm:"column:ip_address"`
	UserAgent       string                      `json:"user_agent,omitempty" gorm:"column:user_agent"`
	Referrer        string                      `json:"referrer,omitempty" gorm:"column:referrer"`
	IsSpam          bool                        `json:"is_spam" gorm:"column:is_spam"`
	IsQualified     bool                        `json:"is_qualified" gorm:"column:is_qualified"`
	WebhookSent     bool                        `json:"webhook_sent" gorm:"column:webhook_sent"`
	WebhookAttempts int                         `json:"webhook_attempts" gorm:"column:webhook_attempts"`
	CreatedAt       time.Time                   `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time                   `json:"updated_at" gorm:"column:updated_at"`
}

func (Lead) TableName() string {
	return "leads"
}
