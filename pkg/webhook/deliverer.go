package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leadvalidator/platform/pkg/common/httpclient"
	"github.com/leadvalidator/platform/pkg/common/logger"
	"github.com/leadvalidator/platform/pkg/common/models"
)

const webhookUserAgent = "LeadValidator-Webhook/1.0"

// Payload is the snapshot delivered to a project's webhook endpoint. It owns
// copies of the submission and result, so later mutation of the source lead
// never changes what is retried.
type Payload struct {
	LeadID     string                  `json:"leadId"`
	ProjectID  string                  `json:"projectId"`
	Timestamp  string                  `json:"timestamp"`
	Data       models.SubmissionRecord `json:"data"`
	Validation models.ValidationResult `json:"validation"`
	Qualified  bool                    `json:"qualified"`
}

// Outcome reports how a delivery ended. Attempts is the number of POSTs
// actually performed, including on cancellation mid-retry.
type Outcome struct {
	Success  bool
	Attempts int
}

type Deliverer struct {
	client      *http.Client
	maxAttempts int
	backoffBase time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewDeliverer(client *http.Client, maxAttempts int, backoffBase time.Duration) *Deliverer {
	if client == nil {
		client = httpclient.New(10 * time.Second)
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoffBase <= 0 {
		backoffBase = time.Second
	}
	return &Deliverer{
		client:      client,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		sleep:       sleepContext,
	}
}

// Deliver POSTs the payload to url, retrying failed attempts with exponential
// backoff (2^attempt base units between attempt N and N+1, no wait after the
// last). Only a 2xx response counts as success; non-2xx statuses and
// transport failures are logged and retried. The same payload is never
// re-sent outside this bounded loop.
func (d *Deliverer) Deliver(ctx context.Context, url string, payload Payload) Outcome {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Log.WithError(err).WithField("lead_id", payload.LeadID).Error("Failed to serialize webhook payload")
		return Outcome{}
	}

	var outcome Outcome
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		outcome.Attempts = attempt

		postErr := d.post(ctx, url, body)
		if postErr == nil {
			outcome.Success = true
			logger.Log.WithFields(map[string]interface{}{
				"lead_id": payload.LeadID,
				"attempt": attempt,
			}).Info("Webhook delivered")
			return outcome
		}

		logger.Log.WithError(postErr).WithFields(map[string]interface{}{
			"lead_id": payload.LeadID,
			"attempt": attempt,
		}).Warn("Webhook attempt failed")

		if attempt == d.maxAttempts {
			break
		}

		// 2, 4, 8, ... base units
		wait := d.backoffBase * time.Duration(1<<uint(attempt))
		if err := d.sleep(ctx, wait); err != nil {
			// Shutting down mid-retry; the attempts made so far still count
			logger.Log.WithField("lead_id", payload.LeadID).Warn("Webhook delivery abandoned")
			return outcome
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"lead_id":  payload.LeadID,
		"attempts": outcome.Attempts,
	}).Error("Webhook delivery exhausted")
	return outcome
}

func (d *Deliverer) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", webhookUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
