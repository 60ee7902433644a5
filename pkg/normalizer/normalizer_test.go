package normalizer

import (
	"reflect"
	"testing"
	"time"
)

func TestNormalizeMapsCommonFieldNames(t *testing.T) {
	n := New(nil)

	fields := map[string]string{
		"Email_Address":  "a@b.com",
		"your-firstName": "John",
		"last_name":      "Doe",
		"telephone":      "+16502530000",
		"company":        "Acme",
		"comments":       "hello there",
	}
	meta := Metadata{UserAgent: "Mozilla/5.0", SubmittedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	record := n.Normalize(fields, meta)

	if record.Email != "a@b.com" {
		t.Errorf("email: got %q", record.Email)
	}
	if record.FirstName != "John" {
		t.Errorf("firstName: got %q", record.FirstName)
	}
	if record.LastName != "Doe" {
		t.Errorf("lastName: got %q", record.LastName)
	}
	if record.Phone != "+16502530000" {
		t.Errorf("phone: got %q", record.Phone)
	}
	if record.Company != "Acme" {
		t.Errorf("company: got %q", record.Company)
	}
	if record.Message != "hello there" {
		t.Errorf("message: got %q", record.Message)
	}
	if record.UserAgent != "Mozilla/5.0" {
		t.Errorf("userAgent: got %q", record.UserAgent)
	}
	if !record.SubmittedAt.Equal(meta.SubmittedAt) {
		t.Errorf("submittedAt: got %v", record.SubmittedAt)
	}
}

func TestNormalizeFallbackHeuristics(t *testing.T) {
	n := New(nil)

	record := n.Normalize(map[string]string{
		"contact-first-name": "Jane",
		"contact-last-name":  "Roe",
		"organization":       "Initech",
		"tel-number":         "555-0100",
	}, Metadata{})

	if record.FirstName != "Jane" || record.LastName != "Roe" {
		t.Errorf("name heuristics failed: %q %q", record.FirstName, record.LastName)
	}
	if record.Company != "Initech" {
		t.Errorf("organization heuristic failed: %q", record.Company)
	}
	if record.Phone != "555-0100" {
		t.Errorf("tel heuristic failed: %q", record.Phone)
	}
}

func TestNormalizeTieBreakIsDeterministic(t *testing.T) {
	n := New(nil)

	fields := map[string]string{
		"email":        "first@x.com",
		"email_backup": "second@x.com",
	}

	for i := 0; i < 20; i++ {
		record := n.Normalize(fields, Metadata{})
		if record.Email != "first@x.com" {
			t.Fatalf("iteration %d: expected first field in sorted order to win, got %q", i, record.Email)
		}
	}
}

func TestNormalizeDropsUnmatchedFields(t *testing.T) {
	n := New(nil)

	record := n.Normalize(map[string]string{
		"favorite_color": "blue",
		"csrf_token":     "abc123",
	}, Metadata{})

	if record.Email != "" || record.FirstName != "" || record.Message != "" {
		t.Errorf("expected unmatched fields to be dropped, got %+v", record)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := New(FieldMap{"email": "mail_to"})

	fields := map[string]string{
		"mail_to":    "a@b.com",
		"first_name": "Jane",
		"message":    "hi",
	}
	meta := Metadata{IPAddress: "203.0.113.7", SubmittedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	first := n.Normalize(fields, meta)
	second := n.Normalize(fields, meta)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalization not idempotent: %+v vs %+v", first, second)
	}
	if first.Email != "a@b.com" {
		t.Errorf("configured alias not applied: %q", first.Email)
	}
}
