package normalizer

import (
	"sort"
	"strings"
	"time"

	"github.com/leadvalidator/platform/pkg/common/models"
)

// FieldMap maps a canonical field name to the alias substring matched against
// submitted field names. Projects may override individual aliases.
type FieldMap map[string]string

func DefaultFieldMap() FieldMap {
	return FieldMap{
		"email":     "email",
		"firstName": "first_name",
		"lastName":  "last_name",
		"phone":     "phone",
		"company":   "company",
		"message":   "message",
	}
}

// canonicalOrder fixes the precedence when a field name matches several
// canonical aliases.
var canonicalOrder = []string{"email", "firstName", "lastName", "phone", "company", "message"}

// Metadata carries the client context captured alongside the form fields.
type Metadata struct {
	IPAddress   string
	UserAgent   string
	Referrer    string
	SubmittedAt time.Time
}

type Normalizer struct {
	fieldMap FieldMap
}

func New(fieldMap FieldMap) *Normalizer {
	merged := DefaultFieldMap()
	for canonical, alias := range fieldMap {
		if trimmed := strings.TrimSpace(strings.ToLower(alias)); trimmed != "" {
			merged[canonical] = trimmed
		}
	}
	return &Normalizer{fieldMap: merged}
}

// Normalize maps raw submitted field names onto the canonical submission
// schema. Field names are visited in sorted order so the mapping is
// deterministic; the first field that resolves to a canonical slot wins and
// later matches for the same slot are ignored. Fields matching no rule are
// dropped.
func (n *Normalizer) Normalize(fields map[string]string, meta Metadata) models.SubmissionRecord {
	record := models.SubmissionRecord{
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		Referrer:    meta.Referrer,
		SubmittedAt: meta.SubmittedAt,
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	claimed := make(map[string]struct{}, len(canonicalOrder))
	for _, name := range names {
		canonical := n.resolve(strings.ToLower(name))
		if canonical == "" {
			continue
		}
		if _, taken := claimed[canonical]; taken {
			continue
		}
		claimed[canonical] = struct{}{}
		setField(&record, canonical, fields[name])
	}

	return record
}

func (n *Normalizer) resolve(name string) string {
	// Configured aliases first, in fixed canonical precedence
	for _, canonical := range canonicalOrder {
		alias := n.fieldMap[canonical]
		if alias != "" && strings.Contains(name, alias) {
			return canonical
		}
		if strings.Contains(name, strings.ToLower(canonical)) {
			return canonical
		}
	}

	// Built-in fallbacks for common field naming patterns
	switch {
	case strings.Contains(name, "email"):
		return "email"
	case strings.Contains(name, "first") && strings.Contains(name, "name"):
		return "firstName"
	case strings.Contains(name, "last") && strings.Contains(name, "name"):
		return "lastName"
	case strings.Contains(name, "phone") || strings.Contains(name, "tel"):
		return "phone"
	case strings.Contains(name, "company") || strings.Contains(name, "organization"):
		return "company"
	case strings.Contains(name, "message") || strings.Contains(name, "comment"):
		return "message"
	}

	return ""
}

func setField(record *models.SubmissionRecord, canonical, value string) {
	value = strings.TrimSpace(value)
	switch canonical {
	case "email":
		record.Email = value
	case "firstName":
		record.FirstName = value
	case "lastName":
		record.LastName = value
	case "phone":
		record.Phone = value
	case "company":
		record.Company = value
	case "message":
		record.Message = value
	}
}
