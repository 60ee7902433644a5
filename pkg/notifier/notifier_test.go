package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/leadvalidator/platform/pkg/common/logger"
	"github.com/leadvalidator/platform/pkg/common/models"
	"github.com/leadvalidator/platform/pkg/projects"
)

func init() {
	logger.Init()
}

type stubProjects struct {
	project *projects.Project
}

func (s *stubProjects) Get(ctx context.Context, id string) (*projects.Project, error) {
	if s.project != nil && s.project.ID == id {
		return s.project, nil
	}
	return nil, projects.ErrNotFound
}

type memNotifications struct {
	created []*Notification
}

func (m *memNotifications) Create(ctx context.Context, n *Notification) error {
	m.created = append(m.created, n)
	return nil
}

func qualifiedEvent(projectID string) models.Event {
	return models.Event{
		ID:        "ev-1",
		Type:      models.EventLeadQualified,
		Source:    projectID,
		Data:      map[string]interface{}{"project_id": projectID, "lead_id": "lead-1"},
		Timestamp: time.Now(),
	}
}

func TestHandleEventRecordsNotification(t *testing.T) {
	store := &memNotifications{}
	svc := NewService(&stubProjects{project: &projects.Project{
		ID:                 "p1",
		Name:               "Acme Landing",
		EmailNotifications: true,
		NotificationEmail:  "owner@acme.com",
	}}, store)

	if err := svc.HandleEvent(context.Background(), qualifiedEvent("p1")); err != nil {
		t.Fatalf("handle event failed: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("expected one notification, got %d", len(store.created))
	}
	n := store.created[0]
	if n.Recipient != "owner@acme.com" || n.LeadID != "lead-1" {
		t.Errorf("unexpected notification %+v", n)
	}
}

func TestHandleEventSkipsOptedOutProjects(t *testing.T) {
	store := &memNotifications{}
	svc := NewService(&stubProjects{project: &projects.Project{ID: "p1"}}, store)

	if err := svc.HandleEvent(context.Background(), qualifiedEvent("p1")); err != nil {
		t.Fatalf("handle event failed: %v", err)
	}
	if len(store.created) != 0 {
		t.Errorf("expected no notification for opted-out project, got %d", len(store.created))
	}
}

func TestHandleEventIgnoresOtherEventTypes(t *testing.T) {
	store := &memNotifications{}
	svc := NewService(&stubProjects{}, store)

	err := svc.HandleEvent(context.Background(), models.Event{
		ID:   "ev-2",
		Type: models.EventLeadRejected,
		Data: map[string]interface{}{"project_id": "p1", "lead_id": "lead-2"},
	})
	if err != nil {
		t.Fatalf("handle event failed: %v", err)
	}
	if len(store.created) != 0 {
		t.Errorf("expected rejected events to be ignored, got %d notifications", len(store.created))
	}
}

func TestHandleEventToleratesUnknownProject(t *testing.T) {
	svc := NewService(&stubProjects{}, &memNotifications{})

	if err := svc.HandleEvent(context.Background(), qualifiedEvent("missing")); err != nil {
		t.Fatalf("unknown project must not poison the consumer: %v", err)
	}
}
