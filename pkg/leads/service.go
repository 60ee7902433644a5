package leads

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leadvalidator/platform/pkg/common/logger"
	"github.com/leadvalidator/platform/pkg/common/models"
	"github.com/leadvalidator/platform/pkg/normalizer"
	"github.com/leadvalidator/platform/pkg/projects"
	"github.com/leadvalidator/platform/pkg/scoring"
	"github.com/leadvalidator/platform/pkg/webhook"
	"gorm.io/datatypes"
)

var errMissingEmail = errors.New("email is required")

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Store is the slice of the repository the pipeline needs.
type Store interface {
	Create(ctx context.Context, lead *Lead) error
	UpdateDelivery(ctx context.Context, id string, sent bool, attempts int) error
}

type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type Deliverer interface {
	Deliver(ctx context.Context, url string, payload webhook.Payload) webhook.Outcome
}

// Service runs the qualification pipeline for one submission: normalize,
// score, decide, persist, then deliver the webhook off the request path.
type Service struct {
	normalizer      *normalizer.Normalizer
	scorer          *scoring.Scorer
	store           Store
	deliverer       Deliverer
	producer        Publisher
	defaultMinScore int

	wg      sync.WaitGroup
	baseCtx context.Context
	cancel  context.CancelFunc
}

func NewService(n *normalizer.Normalizer, scorer *scoring.Scorer, store Store, deliverer Deliverer, producer Publisher, defaultMinScore int) *Service {
	if defaultMinScore <= 0 {
		defaultMinScore = 70
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		normalizer:      n,
		scorer:          scorer,
		store:           store,
		deliverer:       deliverer,
		producer:        producer,
		defaultMinScore: defaultMinScore,
		baseCtx:         ctx,
		cancel:          cancel,
	}
}

// Process takes a raw submission through the full pipeline. The caller gets
// the qualification outcome synchronously; webhook delivery runs in the
// background so retry latency never blocks the submitting site.
func (s *Service) Process(ctx context.Context, project *projects.Project, req models.ValidateRequest) (*models.ValidateResponse, error) {
	submittedAt := req.Timestamp
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	record := s.normalizer.Normalize(req.Fields, normalizer.Metadata{
		IPAddress:   req.IPAddress,
		UserAgent:   req.UserAgent,
		Referrer:    req.Referrer,
		SubmittedAt: submittedAt,
	})

	// Fail-fast precondition: nothing is scored or persisted without an
	// email address.
	if record.Email == "" {
		return nil, ValidationError{reason: errMissingEmail}
	}

	result := s.scorer.Score(record)

	minScore := project.MinScore
	if minScore <= 0 {
		minScore = s.defaultMinScore
	}
	qualified := result.Qualified(minScore)

	lead := &Lead{
		ID:              uuid.New().String(),
		ProjectID:       project.ID,
		Email:           record.Email,
		Phone:           record.Phone,
		FirstName:       record.FirstName,
		LastName:        record.LastName,
		Company:         record.Company,
		Message:         record.Message,
		FormData:        formData(req.Fields),
		ValidationScore: result.Score,
		EmailValid:      result.EmailValid,
		PhoneValid:      result.PhoneValid,
		Reasons:         datatypes.JSONSlice[string](result.Reasons),
		IPAddress:       record.IPAddress,
		UserAgent:       record.UserAgent,
		Referrer:        record.Referrer,
		IsSpam:          result.IsSpam,
		IsQualified:     qualified,
	}

	if err := s.store.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("persisting lead: %w", err)
	}

	s.publishOutcome(ctx, project, lead, qualified)

	if project.WebhookURL != "" && (qualified || project.ForwardAll) {
		payload := webhook.Payload{
			LeadID:     lead.ID,
			ProjectID:  project.ID,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Data:       record,
			Validation: result,
			Qualified:  qualified,
		}
		s.wg.Add(1)
		go s.deliver(project, lead.ID, payload)
	}

	return &models.ValidateResponse{
		LeadID:     lead.ID,
		ProjectID:  project.ID,
		Validation: result,
		Qualified:  qualified,
	}, nil
}

func (s *Service) deliver(project *projects.Project, leadID string, payload webhook.Payload) {
	defer s.wg.Done()

	outcome := s.deliverer.Deliver(s.baseCtx, project.WebhookURL, payload)

	// Bookkeeping is written with a fresh context: a cancelled delivery
	// must still reach the store with whatever attempt count it made.
	recordCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.UpdateDelivery(recordCtx, leadID, outcome.Success, outcome.Attempts); err != nil {
		logger.Log.WithError(err).WithField("lead_id", leadID).Error("Failed to record webhook outcome")
	}

	if !outcome.Success && s.producer != nil {
		err := s.producer.PublishEvent(recordCtx, models.EventLeadDeliveryFailed, project.ID, map[string]interface{}{
			"lead_id":    leadID,
			"project_id": project.ID,
			"attempts":   outcome.Attempts,
		})
		if err != nil {
			logger.Log.WithError(err).WithField("lead_id", leadID).Warn("Failed to publish delivery failure event")
		}
	}
}

func (s *Service) publishOutcome(ctx context.Context, project *projects.Project, lead *Lead, qualified bool) {
	if s.producer == nil {
		return
	}

	eventType := models.EventLeadRejected
	if qualified {
		eventType = models.EventLeadQualified
	}

	err := s.producer.PublishEvent(ctx, eventType, project.ID, map[string]interface{}{
		"lead_id":    lead.ID,
		"project_id": project.ID,
		"email":      lead.Email,
		"score":      lead.ValidationScore,
		"is_spam":    lead.IsSpam,
	})
	if err != nil {
		logger.Log.WithError(err).WithField("lead_id", lead.ID).Warn("Failed to publish lead event")
	}
}

// Close waits for in-flight webhook deliveries. If ctx expires first the
// remaining deliveries are abandoned after their current attempt; their
// attempt counts are still recorded.
func (s *Service) Close(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.cancel()
		<-done
	}
}

func formData(fields map[string]string) datatypes.JSONMap {
	if len(fields) == 0 {
		return nil
	}
	data := make(datatypes.JSONMap, len(fields))
	for k, v := range fields {
		data[k] = v
	}
	return data
}
