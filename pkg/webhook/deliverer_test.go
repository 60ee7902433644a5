package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leadvalidator/platform/pkg/common/logger"
	"github.com/leadvalidator/platform/pkg/common/models"
)

func init() {
	logger.Init()
}

func testPayload() Payload {
	valid := true
	return Payload{
		LeadID:    "lead-1",
		ProjectID: "project-1",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data: models.SubmissionRecord{
			Email:     "jane@company.com",
			FirstName: "Jane",
			LastName:  "Roe",
		},
		Validation: models.ValidationResult{
			Score:      100,
			EmailValid: true,
			PhoneValid: &valid,
			Reasons:    []string{},
		},
		Qualified: true,
	}
}

func TestDeliverSucceedsOnThirdAttempt(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)

		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if ua := r.Header.Get("User-Agent"); ua != "LeadValidator-Webhook/1.0" {
			t.Errorf("unexpected user agent %q", ua)
		}
		var payload Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		if payload.LeadID != "lead-1" {
			t.Errorf("unexpected lead id %q", payload.LeadID)
		}

		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	deliverer := NewDeliverer(server.Client(), 3, time.Millisecond)
	var waits []time.Duration
	deliverer.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	outcome := deliverer.Deliver(context.Background(), server.URL, testPayload())

	if !outcome.Success {
		t.Error("expected delivery to succeed on third attempt")
	}
	if outcome.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", outcome.Attempts)
	}
	if len(waits) != 2 || waits[0] != 2*time.Millisecond || waits[1] != 4*time.Millisecond {
		t.Errorf("expected backoff of 2 and 4 base units, got %v", waits)
	}
}

func TestDeliverExhaustsAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	deliverer := NewDeliverer(server.Client(), 3, time.Millisecond)
	var waits int
	deliverer.sleep = func(ctx context.Context, d time.Duration) error {
		waits++
		return nil
	}

	outcome := deliverer.Deliver(context.Background(), server.URL, testPayload())

	if outcome.Success {
		t.Error("expected delivery to fail")
	}
	if outcome.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", outcome.Attempts)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 POSTs, got %d", got)
	}
	if waits != 2 {
		t.Errorf("expected no wait after the final attempt, got %d waits", waits)
	}
}

func TestDeliverTransportFailure(t *testing.T) {
	deliverer := NewDeliverer(nil, 2, time.Millisecond)
	deliverer.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	// Closed server: every attempt is a connection error, not a panic
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	outcome := deliverer.Deliver(context.Background(), url, testPayload())

	if outcome.Success {
		t.Error("expected transport failures to yield failure")
	}
	if outcome.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", outcome.Attempts)
	}
}

func TestDeliverAbandonedOnCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	deliverer := NewDeliverer(server.Client(), 3, time.Millisecond)
	deliverer.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	outcome := deliverer.Deliver(ctx, server.URL, testPayload())

	if outcome.Success {
		t.Error("expected cancelled delivery to report failure")
	}
	if outcome.Attempts != 1 {
		t.Errorf("expected the attempt made before cancellation to be counted, got %d", outcome.Attempts)
	}
}
