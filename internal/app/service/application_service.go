package service

import (
	"context"
	"errors"
	"hackboard/internal/common"
	"hackboard/internal/domain/lifecycle"
	"hackboard/internal/domain/model"
	"hackboard/internal/domain/repository"
	"hackboard/internal/platform/lock"
	"hackboard/internal/platform/metrics"
	"log"

	"github.com/google/uuid"
)

type ApplicationService struct {
	appRepo       repository.ApplicationRepository
	hackathonRepo repository.HackathonRepository
	locker        lock.Locker
	notifier      Notifier
	now           lifecycle.Clock
}

func NewApplicationService(
	appRepo repository.ApplicationRepository,
	hackathonRepo repository.HackathonRepository,
	locker lock.Locker,
	notifier Notifier,
	now lifecycle.Clock,
) *ApplicationService {
	return &ApplicationService{
		appRepo:       appRepo,
		hackathonRepo: hackathonRepo,
		locker:        locker,
		notifier:      notifier,
		now:           now,
	}
}

// Apply registers the caller for a hackathon after the eligibility gate.
func (s *ApplicationService) Apply(ctx context.Context, caller model.Caller, hackathonID string, entry lifecycle.Entry) (*model.Application, error) {
	if err := lifecycle.Authorize(caller, lifecycle.ActionApply, nil, nil); err != nil {
		return nil, err
	}

	h, err := findHackathon(ctx, s.hackathonRepo, hackathonID)
	if err != nil {
		return nil, err
	}
	// The gate must see the real results flag, not a stale stored one.
	all, err := s.appRepo.FindByHackathon(ctx, h.ID)
	if err != nil {
		return nil, common.Errorf("failed to load applications for hackathon %s: %w", h.ID, err)
	}
	reconcile(ctx, s.hackathonRepo, h, all, s.now())

	// Serializes concurrent applies by the same participant.
	release, err := acquire(ctx, s.locker, "apply:"+h.ID+":"+caller.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	prior, err := s.appRepo.FindByHackathonAndApplicant(ctx, h.ID, caller.UserID)
	if err != nil {
		return nil, common.Errorf("failed to load prior applications: %w", err)
	}

	now := s.now()
	if err := lifecycle.CanApply(now, h, entry, prior); err != nil {
		metrics.ApplicationsDenied.WithLabelValues(string(common.CodeFromError(err))).Inc()
		return nil, err
	}

	app := lifecycle.NewApplication(uuid.NewString(), h, caller, entry, now)
	if err := s.appRepo.Create(ctx, app); err != nil {
		if errors.Is(err, common.ErrAlreadyApplied) {
			return nil, err
		}
		return nil, common.Errorf("failed to create application: %w", err)
	}
	metrics.ApplicationsCreated.Inc()
	log.Printf("INFO: Application %s created for hackathon %s by user %s.", app.ID, h.ID, caller.UserID)

	s.notifier.ApplicationReceived(ctx, h, app)
	return app, nil
}

// SubmitPhase stores the caller's content for one phase of their application
// and returns the phase's submission.
func (s *ApplicationService) SubmitPhase(ctx context.Context, caller model.Caller, applicationID string, phaseID model.PhaseID, req lifecycle.SubmissionRequest) (*model.PhaseSubmission, error) {
	var (
		sub  *model.PhaseSubmission
		kind lifecycle.SubmitKind
	)
	app, _, err := mutateApplication(ctx, s.locker, s.appRepo, s.hackathonRepo, applicationID,
		func(app *model.Application, h *model.Hackathon) error {
			if err := lifecycle.Authorize(caller, lifecycle.ActionSubmitPhase, h, app); err != nil {
				return err
			}
			phase, ok := h.Phase(phaseID)
			if !ok {
				return common.NotFoundf("phase %s not found in hackathon %s", phaseID, h.ID)
			}
			var err error
			sub, kind, err = lifecycle.SubmitPhase(s.now(), app, phase, req)
			return err
		})
	if err != nil {
		return nil, err
	}
	metrics.PhaseSubmissions.WithLabelValues(string(kind)).Inc()
	log.Printf("INFO: Phase %s of application %s submitted (%s).", phaseID, app.ID, kind)
	return sub, nil
}

func (s *ApplicationService) Get(ctx context.Context, caller model.Caller, applicationID string) (*model.Application, error) {
	app, err := findApplication(ctx, s.appRepo, applicationID)
	if err != nil {
		return nil, err
	}
	h, err := findHackathon(ctx, s.hackathonRepo, app.HackathonID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Authorize(caller, lifecycle.ActionViewApplication, h, app); err != nil {
		return nil, err
	}
	return app, nil
}

// ListByHackathon returns every application to a hackathon, for its organizer.
func (s *ApplicationService) ListByHackathon(ctx context.Context, caller model.Caller, hackathonID string) ([]model.Application, error) {
	h, err := findHackathon(ctx, s.hackathonRepo, hackathonID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Authorize(caller, lifecycle.ActionReview, h, nil); err != nil {
		return nil, err
	}
	apps, err := s.appRepo.FindByHackathon(ctx, h.ID)
	if err != nil {
		return nil, common.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// ListMine returns the caller's own applications.
func (s *ApplicationService) ListMine(ctx context.Context, caller model.Caller) ([]model.Application, error) {
	apps, err := s.appRepo.FindByApplicant(ctx, caller.UserID)
	if err != nil {
		return nil, common.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

func findHackathon(ctx context.Context, repo repository.HackathonRepository, id string) (*model.Hackathon, error) {
	h, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundf("hackathon %s not found", id)
		}
		return nil, common.Errorf("failed to load hackathon %s: %w", id, err)
	}
	return h, nil
}

func findApplication(ctx context.Context, repo repository.ApplicationRepository, id string) (*model.Application, error) {
	app, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundf("application %s not found", id)
		}
		return nil, common.Errorf("failed to load application %s: %w", id, err)
	}
	return app, nil
}

func acquire(ctx context.Context, locker lock.Locker, key string) (lock.Release, error) {
	release, err := locker.Acquire(ctx, key)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, common.Errorf("%s is busy, retry shortly: %w", key, common.ErrLockFailed)
		}
		return nil, common.Errorf("failed to lock %s: %w: %w", key, common.ErrServiceUnavailable, err)
	}
	return release, nil
}

// mutateApplication runs fn on a freshly loaded application and its hackathon
// while holding the application's lock, then saves the application. Nothing is
// saved when fn fails.
func mutateApplication(
	ctx context.Context,
	locker lock.Locker,
	appRepo repository.ApplicationRepository,
	hackathonRepo repository.HackathonRepository,
	applicationID string,
	fn func(app *model.Application, h *model.Hackathon) error,
) (*model.Application, *model.Hackathon, error) {
	release, err := acquire(ctx, locker, applicationID)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	app, err := findApplication(ctx, appRepo, applicationID)
	if err != nil {
		return nil, nil, err
	}
	h, err := findHackathon(ctx, hackathonRepo, app.HackathonID)
	if err != nil {
		return nil, nil, err
	}
	if err := fn(app, h); err != nil {
		return nil, nil, err
	}
	if err := appRepo.Save(ctx, app); err != nil {
		if errors.Is(err, common.ErrStaleWrite) {
			return nil, nil, err
		}
		return nil, nil, common.Errorf("failed to save application %s: %w", app.ID, err)
	}
	return app, h, nil
}
