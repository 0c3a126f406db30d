package service

import (
	"context"
	"hackboard/internal/domain/model"
	"hackboard/internal/platform/metrics"
	"log"
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotifyApplicationReceived NotificationKind = "application_received"
	NotifyPhaseAccepted       NotificationKind = "phase_accepted"
	NotifyPhaseRejected       NotificationKind = "phase_rejected"
	NotifyReuploadRequested   NotificationKind = "reupload_requested"
	NotifyApplicationRejected NotificationKind = "application_rejected"
)

// Notification is the job pushed onto the notification queue.
type Notification struct {
	ID             string           `json:"id"`
	Kind           NotificationKind `json:"kind"`
	To             string           `json:"to"`
	Name           string           `json:"name,omitempty"`
	HackathonID    string           `json:"hackathon_id"`
	HackathonTitle string           `json:"hackathon_title"`
	ApplicationID  string           `json:"application_id"`
	PhaseID        model.PhaseID    `json:"phase_id,omitempty"`
	PhaseName      string           `json:"phase_name,omitempty"`
	Message        string           `json:"message,omitempty"`
	Attempts       int              `json:"attempts"`
	CreatedAt      time.Time        `json:"created_at"`
}

type ReviewOutcome struct {
	Kind    NotificationKind
	PhaseID model.PhaseID
	Message string
}

// Notifier is fire-and-forget: implementations never report failure to the
// caller, whose state change is already persisted.
type Notifier interface {
	ApplicationReceived(ctx context.Context, h *model.Hackathon, app *model.Application)
	ReviewOutcome(ctx context.Context, h *model.Hackathon, app *model.Application, outcome ReviewOutcome)
}

type Enqueuer interface {
	Push(ctx context.Context, msg any) error
}

// NotificationService turns lifecycle events into queued notification jobs
// for the notification worker.
type NotificationService struct {
	queue Enqueuer
	now   func() time.Time
}

func NewNotificationService(queue Enqueuer, now func() time.Time) *NotificationService {
	return &NotificationService{queue: queue, now: now}
}

func (s *NotificationService) ApplicationReceived(ctx context.Context, h *model.Hackathon, app *model.Application) {
	s.enqueue(ctx, s.build(NotifyApplicationReceived, h, app))
}

func (s *NotificationService) ReviewOutcome(ctx context.Context, h *model.Hackathon, app *model.Application, outcome ReviewOutcome) {
	n := s.build(outcome.Kind, h, app)
	n.Message = outcome.Message
	if outcome.PhaseID != "" {
		n.PhaseID = outcome.PhaseID
		if p, ok := h.Phase(outcome.PhaseID); ok {
			n.PhaseName = p.Name
		}
	}
	s.enqueue(ctx, n)
}

func (s *NotificationService) build(kind NotificationKind, h *model.Hackathon, app *model.Application) Notification {
	return Notification{
		ID:             uuid.NewString(),
		Kind:           kind,
		To:             app.ContactEmail(),
		Name:           app.DisplayName(),
		HackathonID:    h.ID,
		HackathonTitle: h.Title,
		ApplicationID:  app.ID,
		CreatedAt:      s.now(),
	}
}

func (s *NotificationService) enqueue(ctx context.Context, n Notification) {
	if n.To == "" {
		log.Printf("WARN: No recipient for %s notification on application %s; skipping.", n.Kind, n.ApplicationID)
		return
	}
	// Detached from the request so a client disconnect does not drop the job.
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.queue.Push(pushCtx, n); err != nil {
		metrics.NotificationsFailed.Inc()
		log.Printf("ERROR: Failed to enqueue %s notification for application %s: %v", n.Kind, n.ApplicationID, err)
		return
	}
	log.Printf("INFO: Enqueued %s notification %s for application %s.", n.Kind, n.ID, n.ApplicationID)
}
