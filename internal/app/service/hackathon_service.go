package service

import (
	"context"
	"errors"
	"hackboard/internal/common"
	"hackboard/internal/domain/lifecycle"
	"hackboard/internal/domain/model"
	"hackboard/internal/domain/repository"
	"hackboard/internal/platform/metrics"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type HackathonService struct {
	hackathonRepo repository.HackathonRepository
	appRepo       repository.ApplicationRepository
	now           lifecycle.Clock
}

func NewHackathonService(hackathonRepo repository.HackathonRepository, appRepo repository.ApplicationRepository, now lifecycle.Clock) *HackathonService {
	return &HackathonService{hackathonRepo: hackathonRepo, appRepo: appRepo, now: now}
}

type PhaseRequest struct {
	ID          model.PhaseID `json:"id,omitempty"` // Generated when empty
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Deadline    string        `json:"deadline"`
}

type CreateHackathonRequest struct {
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	AllowIndividual *bool          `json:"allow_individual,omitempty"` // Defaults to true
	MinTeamSize     int            `json:"min_team_size"`
	TeamSize        int            `json:"team_size"`
	StartDate       string         `json:"start_date"`
	EndDate         string         `json:"end_date"`
	Phases          []PhaseRequest `json:"phases"`
}

func (s *HackathonService) Create(ctx context.Context, caller model.Caller, req CreateHackathonRequest) (*model.Hackathon, error) {
	if err := lifecycle.Authorize(caller, lifecycle.ActionCreateHackathon, nil, nil); err != nil {
		return nil, err
	}
	h, err := s.buildHackathon(caller, req)
	if err != nil {
		return nil, err
	}

	err = s.hackathonRepo.Create(ctx, h)
	if errors.Is(err, common.ErrConflict) {
		// Same title as an existing hackathon; disambiguate the slug once.
		h.Slug = h.Slug + "-" + h.ID[:8]
		err = s.hackathonRepo.Create(ctx, h)
	}
	if err != nil {
		return nil, common.Errorf("failed to create hackathon: %w", err)
	}
	log.Printf("INFO: Hackathon %s (%s) created by %s.", h.ID, h.Slug, caller.UserID)
	return h, nil
}

func (s *HackathonService) buildHackathon(caller model.Caller, req CreateHackathonRequest) (*model.Hackathon, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, common.Errorf("title is required: %w", common.ErrBadRequest)
	}
	if len(req.Phases) == 0 {
		return nil, common.Errorf("at least one phase is required: %w", common.ErrBadRequest)
	}
	if req.MinTeamSize < 0 || req.TeamSize < 0 {
		return nil, common.Errorf("team sizes cannot be negative: %w", common.ErrBadRequest)
	}
	if req.TeamSize > 0 && req.MinTeamSize > req.TeamSize {
		return nil, common.Errorf("min_team_size %d exceeds team_size %d: %w", req.MinTeamSize, req.TeamSize, common.ErrBadRequest)
	}

	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, common.Errorf("end_date must be after start_date: %w", common.ErrBadRequest)
	}

	phases := make([]model.Phase, 0, len(req.Phases))
	seen := make(map[model.PhaseID]bool, len(req.Phases))
	for i, p := range req.Phases {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, common.Errorf("phases[%d].name is required: %w", i, common.ErrBadRequest)
		}
		deadline, err := parseDate("phases["+name+"].deadline", p.Deadline)
		if err != nil {
			return nil, err
		}
		id := p.ID
		if id == "" {
			id = model.PhaseID(uuid.NewString())
		}
		if seen[id] {
			return nil, common.Errorf("duplicate phase id %s: %w", id, common.ErrBadRequest)
		}
		seen[id] = true
		phases = append(phases, model.Phase{ID: id, Name: name, Description: p.Description, Deadline: deadline})
	}

	allowIndividual := true
	if req.AllowIndividual != nil {
		allowIndividual = *req.AllowIndividual
	}

	now := s.now()
	id := uuid.NewString()
	return &model.Hackathon{
		ID:              id,
		Slug:            slug.Make(title),
		Title:           title,
		Description:     req.Description,
		OrganizerID:     caller.UserID,
		AllowIndividual: allowIndividual,
		MinTeamSize:     req.MinTeamSize,
		TeamSize:        req.TeamSize,
		Phases:          phases,
		StartDate:       start,
		EndDate:         end,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := lifecycle.ParseTimestamp(value)
	if err != nil {
		return time.Time{}, common.Errorf("%s: %v: %w", field, err, common.ErrBadRequest)
	}
	return t, nil
}

// Get looks a hackathon up by id or slug. Reading reconciles and may persist
// the results flag.
func (s *HackathonService) Get(ctx context.Context, ref string) (*model.Hackathon, error) {
	h, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.reconcile(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Leaderboard returns the published ranking of a hackathon, looked up by id or slug.
func (s *HackathonService) Leaderboard(ctx context.Context, ref string) (*model.Leaderboard, error) {
	h, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}
	apps, err := s.appRepo.FindByHackathon(ctx, h.ID)
	if err != nil {
		return nil, common.Errorf("failed to load applications for hackathon %s: %w", h.ID, err)
	}
	reconcile(ctx, s.hackathonRepo, h, apps, s.now())

	board := lifecycle.BuildLeaderboard(h, apps)
	return &board, nil
}

func (s *HackathonService) find(ctx context.Context, ref string) (*model.Hackathon, error) {
	var (
		h   *model.Hackathon
		err error
	)
	if _, perr := uuid.Parse(ref); perr == nil {
		h, err = s.hackathonRepo.FindByID(ctx, ref)
	} else {
		h, err = s.hackathonRepo.FindBySlug(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundf("hackathon %s not found", ref)
		}
		return nil, common.Errorf("failed to load hackathon %s: %w", ref, err)
	}
	return h, nil
}

func (s *HackathonService) List(ctx context.Context) ([]model.Hackathon, error) {
	hackathons, err := s.hackathonRepo.List(ctx)
	if err != nil {
		return nil, common.Errorf("failed to list hackathons: %w", err)
	}
	return s.reconcileAll(ctx, hackathons)
}

// ListMine returns the hackathons organized by the caller.
func (s *HackathonService) ListMine(ctx context.Context, caller model.Caller) ([]model.Hackathon, error) {
	if caller.Role != model.RoleIndustry {
		return nil, common.Forbiddenf("only industry accounts organize hackathons")
	}
	hackathons, err := s.hackathonRepo.ListByOrganizer(ctx, caller.UserID)
	if err != nil {
		return nil, common.Errorf("failed to list hackathons: %w", err)
	}
	return s.reconcileAll(ctx, hackathons)
}

func (s *HackathonService) reconcileAll(ctx context.Context, hackathons []model.Hackathon) ([]model.Hackathon, error) {
	for i := range hackathons {
		if err := s.reconcile(ctx, &hackathons[i]); err != nil {
			return nil, err
		}
	}
	return hackathons, nil
}

func (s *HackathonService) reconcile(ctx context.Context, h *model.Hackathon) error {
	apps, err := s.appRepo.FindByHackathon(ctx, h.ID)
	if err != nil {
		return common.Errorf("failed to load applications for hackathon %s: %w", h.ID, err)
	}
	reconcile(ctx, s.hackathonRepo, h, apps, s.now())
	return nil
}

// reconcile corrects h.ResultsPublished from apps and persists the change.
// A failed write is logged; the corrected value is still returned to the reader.
func reconcile(ctx context.Context, repo repository.HackathonRepository, h *model.Hackathon, apps []model.Application, now time.Time) {
	if !lifecycle.ReconcileResults(h, apps) {
		return
	}
	metrics.ResultsReconciled.Inc()
	h.UpdatedAt = now
	if err := repo.Save(ctx, h); err != nil {
		log.Printf("ERROR: Failed to persist results flag for hackathon %s: %v", h.ID, err)
		return
	}
	log.Printf("INFO: Hackathon %s results_published reconciled to %t.", h.ID, h.ResultsPublished)
}
