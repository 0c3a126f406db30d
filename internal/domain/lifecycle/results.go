package lifecycle

import (
	"hackboard/internal/common"
	"hackboard/internal/domain/model"
	"sort"
	"time"
)

// ResultsPublished is true once any application carries a positive final rank.
func ResultsPublished(apps []model.Application) bool {
	for _, app := range apps {
		if app.FinalRank != nil && *app.FinalRank >= 1 {
			return true
		}
	}
	return false
}

// ReconcileResults overwrites h.ResultsPublished with the value derived from
// apps and reports whether it changed. The caller persists h when it did.
func ReconcileResults(h *model.Hackathon, apps []model.Application) bool {
	published := ResultsPublished(apps)
	if h.ResultsPublished == published {
		return false
	}
	h.ResultsPublished = published
	return true
}

// AssignRank records the final placement decided outside this service.
func AssignRank(now time.Time, app *model.Application, rank int) error {
	if rank < 1 {
		return common.Errorf("rank for application %s must be positive, got %d: %w", app.ID, rank, common.ErrBadRequest)
	}
	app.FinalRank = &rank
	app.UpdatedAt = now
	return nil
}

// BuildLeaderboard lists the ranked applications of h, best rank first. Entries
// are withheld until results are published. Ties keep application order.
func BuildLeaderboard(h *model.Hackathon, apps []model.Application) model.Leaderboard {
	board := model.Leaderboard{HackathonID: h.ID, ResultsPublished: h.ResultsPublished, Entries: []model.LeaderboardEntry{}}
	if !h.ResultsPublished {
		return board
	}
	for _, app := range apps {
		if app.FinalRank == nil || *app.FinalRank < 1 {
			continue
		}
		board.Entries = append(board.Entries, model.LeaderboardEntry{
			Rank:          *app.FinalRank,
			ApplicationID: app.ID,
			ApplicantID:   app.ApplicantID,
			DisplayName:   app.DisplayName(),
			AsTeam:        app.AsTeam,
		})
	}
	sort.SliceStable(board.Entries, func(i, j int) bool {
		return board.Entries[i].Rank < board.Entries[j].Rank
	})
	return board
}
