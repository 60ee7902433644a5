package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leadvalidator/platform/pkg/common/logger"
	"github.com/redis/go-redis/v9"
)

type Service struct {
	repo            *Repository
	cache           *redis.Client
	cacheTTL        time.Duration
	defaultMinScore int
}

func NewService(repo *Repository, cache *redis.Client, cacheTTL time.Duration, defaultMinScore int) *Service {
	if defaultMinScore <= 0 {
		defaultMinScore = 70
	}
	return &Service{
		repo:            repo,
		cache:           cache,
		cacheTTL:        cacheTTL,
		defaultMinScore: defaultMinScore,
	}
}

func (s *Service) Create(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	apiKey, err := GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generating api key: %w", err)
	}

	minScore := req.MinScore
	if minScore <= 0 {
		minScore = s.defaultMinScore
	}

	project := &Project{
		ID:                 uuid.New().String(),
		Name:               req.Name,
		Description:        req.Description,
		APIKey:             apiKey,
		WebhookURL:         req.WebhookURL,
		MinScore:           minScore,
		ForwardAll:         req.ForwardAll,
		EmailNotifications: req.EmailNotifications,
		NotificationEmail:  req.NotificationEmail,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("persisting project: %w", err)
	}

	return project, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.repo.Get(ctx, id)
}

// Resolve maps a submitted API key to its project configuration, consulting
// the Redis cache first. Cache failures fall through to the store.
func (s *Service) Resolve(ctx context.Context, apiKey string) (*Project, error) {
	key := cacheKey(apiKey)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var project Project
			if err := json.Unmarshal(cached, &project); err == nil {
				return &project, nil
			}
		} else if err != redis.Nil {
			logger.Log.WithError(err).Warn("Project cache lookup failed")
		}
	}

	project, err := s.repo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if data, err := json.Marshal(project); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
				logger.Log.WithError(err).Warn("Project cache write failed")
			}
		}
	}

	return project, nil
}

func cacheKey(apiKey string) string {
	return fmt.Sprintf("project:apikey:%s", apiKey)
}
