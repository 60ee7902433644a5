package models

import (
	"time"
)

// SubmissionRecord is the canonical form submission produced by the field
// normalizer and consumed by the scoring engine. Email may be empty; every
// other field is optional.
type SubmissionRecord struct {
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	Company     string    `json:"company,omitempty"`
	Message     string    `json:"message,omitempty"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
	SubmittedAt time.Time `json:"timestamp"`
}

// ValidationResult is the outcome of scoring a submission. PhoneValid is nil
// when no phone number was supplied.
type ValidationResult struct {
	Score      int      `json:"score"`
	EmailValid bool     `json:"emailValid"`
	PhoneValid *bool    `json:"phoneValid"`
	IsSpam     bool     `json:"isSpam"`
	Reasons    []string `json:"reasons"`
}

// Qualified applies the project's minimum-score threshold to the result.
func (r ValidationResult) Qualified(minScore int) bool {
	return r.Score >= minScore && !r.IsSpam
}

// Inbound validation API
type ValidateRequest struct {
	Fields    map[string]string `json:"fields"`
	IPAddress string            `json:"ipAddress,omitempty"`
	UserAgent string            `json:"userAgent,omitempty"`
	Referrer  string            `json:"referrer,omitempty"`
	Timestamp time.Time         `json:"timestamp,omitempty"`
}

type ValidateResponse struct {
	LeadID     string           `json:"leadId"`
	ProjectID  string           `json:"projectId"`
	Validation ValidationResult `json:"validation"`
	Qualified  bool             `json:"qualified"`
}

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // lead.qualified, lead.rejected, lead.delivery_failed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

const (
	EventLeadQualified      = "lead.qualified"
	EventLeadRejected       = "lead.rejected"
	EventLeadDeliveryFailed = "lead.delivery_failed"
)
