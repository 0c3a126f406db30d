package service

import (
	"context"
	"errors"
	"hackboard/internal/common"
	"hackboard/internal/domain/lifecycle"
	"hackboard/internal/domain/model"
	"hackboard/internal/domain/repository"
	"hackboard/internal/platform/lock"
	"log"
)

// RankingService applies final rankings posted by the external judging process.
type RankingService struct {
	appRepo       repository.ApplicationRepository
	hackathonRepo repository.HackathonRepository
	locker        lock.Locker
	now           lifecycle.Clock
}

func NewRankingService(appRepo repository.ApplicationRepository, hackathonRepo repository.HackathonRepository, locker lock.Locker, now lifecycle.Clock) *RankingService {
	return &RankingService{appRepo: appRepo, hackathonRepo: hackathonRepo, locker: locker, now: now}
}

// This is the payload expected from the external ranking process
type RankingPayload struct {
	HackathonID string        `json:"hackathon_id"`
	Rankings    []RankingItem `json:"rankings"`
}

type RankingItem struct {
	ApplicationID string `json:"application_id"`
	Rank          int    `json:"rank"`
}

type RankingResult struct {
	HackathonID      string   `json:"hackathon_id"`
	Updated          int      `json:"updated"`
	Skipped          []string `json:"skipped,omitempty"` // Application ids not in this hackathon
	ResultsPublished bool     `json:"results_published"`
}

func (s *RankingService) HandleRankings(ctx context.Context, payload RankingPayload) (*RankingResult, error) {
	if payload.HackathonID == "" || len(payload.Rankings) == 0 {
		return nil, common.Errorf("hackathon_id and rankings are required: %w", common.ErrBadRequest)
	}
	for _, r := range payload.Rankings {
		if r.ApplicationID == "" || r.Rank < 1 {
			return nil, common.Errorf("invalid ranking entry %+v: %w", r, common.ErrBadRequest)
		}
	}
	log.Printf("Ranking webhook received for hackathon %s with %d entries", payload.HackathonID, len(payload.Rankings))

	h, err := findHackathon(ctx, s.hackathonRepo, payload.HackathonID)
	if err != nil {
		return nil, err
	}

	result := &RankingResult{HackathonID: h.ID}
	for _, r := range payload.Rankings {
		_, _, err := mutateApplication(ctx, s.locker, s.appRepo, s.hackathonRepo, r.ApplicationID,
			func(app *model.Application, _ *model.Hackathon) error {
				if app.HackathonID != h.ID {
					return errSkipRanking
				}
				return lifecycle.AssignRank(s.now(), app, r.Rank)
			})
		switch {
		case err == nil:
			result.Updated++
		case errors.Is(err, errSkipRanking), errors.Is(err, common.ErrNotFound):
			log.Printf("WARN: Skipping rank for application %s: not part of hackathon %s.", r.ApplicationID, h.ID)
			result.Skipped = append(result.Skipped, r.ApplicationID)
		default:
			return nil, common.Errorf("failed to rank application %s: %w", r.ApplicationID, err)
		}
	}

	apps, err := s.appRepo.FindByHackathon(ctx, h.ID)
	if err != nil {
		return nil, common.Errorf("failed to load applications for hackathon %s: %w", h.ID, err)
	}
	reconcile(ctx, s.hackathonRepo, h, apps, s.now())
	result.ResultsPublished = h.ResultsPublished
	return result, nil
}

var errSkipRanking = errors.New("application belongs to another hackathon")
