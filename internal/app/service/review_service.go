package service

import (
	"context"
	"hackboard/internal/domain/lifecycle"
	"hackboard/internal/domain/model"
	"hackboard/internal/domain/repository"
	"hackboard/internal/platform/lock"
	"hackboard/internal/platform/metrics"
	"log"
)

// ReviewService holds the organizer's actions on applications.
type ReviewService struct {
	appRepo       repository.ApplicationRepository
	hackathonRepo repository.HackathonRepository
	locker        lock.Locker
	notifier      Notifier
	now           lifecycle.Clock
}

func NewReviewService(
	appRepo repository.ApplicationRepository,
	hackathonRepo repository.HackathonRepository,
	locker lock.Locker,
	notifier Notifier,
	now lifecycle.Clock,
) *ReviewService {
	return &ReviewService{
		appRepo:       appRepo,
		hackathonRepo: hackathonRepo,
		locker:        locker,
		notifier:      notifier,
		now:           now,
	}
}

type ReuploadRequest struct {
	Message string `json:"message"`
}

type RejectRequest struct {
	RejectionMessage string `json:"rejection_message"`
}

func (s *ReviewService) ReviewPhase(ctx context.Context, caller model.Caller, applicationID string, phaseID model.PhaseID, d lifecycle.ReviewDecision) (*model.Application, error) {
	app, h, err := s.mutate(ctx, caller, applicationID, func(app *model.Application) error {
		_, err := lifecycle.ReviewPhase(s.now(), app, phaseID, d)
		return err
	})
	if err != nil {
		return nil, err
	}

	outcome := ReviewOutcome{Kind: NotifyPhaseAccepted, PhaseID: phaseID}
	if d.Status == model.SubmissionRejected {
		outcome.Kind = NotifyPhaseRejected
		outcome.Message = app.RejectionMessage
	}
	metrics.Reviews.WithLabelValues(string(d.Status)).Inc()
	log.Printf("INFO: Phase %s of application %s reviewed as %s by %s.", phaseID, app.ID, d.Status, caller.UserID)
	s.notifier.ReviewOutcome(ctx, h, app, outcome)
	return app, nil
}

// RequestReupload consumes one of the submission's reupload requests.
func (s *ReviewService) RequestReupload(ctx context.Context, caller model.Caller, applicationID string, phaseID model.PhaseID, req ReuploadRequest) (*model.Application, error) {
	app, h, err := s.mutate(ctx, caller, applicationID, func(app *model.Application) error {
		_, err := lifecycle.RequestReupload(s.now(), app, phaseID, req.Message)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.Reviews.WithLabelValues(string(model.SubmissionReuploadRequested)).Inc()
	log.Printf("INFO: Reupload %d/%d requested for phase %s of application %s.",
		app.PhaseSubmissions[phaseID].ReuploadCount, model.MaxReuploads, phaseID, app.ID)
	s.notifier.ReviewOutcome(ctx, h, app, ReviewOutcome{Kind: NotifyReuploadRequested, PhaseID: phaseID, Message: req.Message})
	return app, nil
}

func (s *ReviewService) RejectApplication(ctx context.Context, caller model.Caller, applicationID string, req RejectRequest) (*model.Application, error) {
	app, h, err := s.mutate(ctx, caller, applicationID, func(app *model.Application) error {
		lifecycle.RejectApplication(s.now(), app, req.RejectionMessage)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Reviews.WithLabelValues("APPLICATION_REJECTED").Inc()
	log.Printf("INFO: Application %s rejected by %s.", app.ID, caller.UserID)
	s.notifier.ReviewOutcome(ctx, h, app, ReviewOutcome{Kind: NotifyApplicationRejected, Message: req.RejectionMessage})
	return app, nil
}

func (s *ReviewService) mutate(ctx context.Context, caller model.Caller, applicationID string, fn func(app *model.Application) error) (*model.Application, *model.Hackathon, error) {
	return mutateApplication(ctx, s.locker, s.appRepo, s.hackathonRepo, applicationID,
		func(app *model.Application, h *model.Hackathon) error {
			if err := lifecycle.Authorize(caller, lifecycle.ActionReview, h, app); err != nil {
				return err
			}
			return fn(app)
		})
}
