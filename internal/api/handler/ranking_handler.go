package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"hackboard/internal/app/service"
	"hackboard/internal/common"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type RankingService interface {
	HandleRankings(ctx context.Context, payload service.RankingPayload) (*service.RankingResult, error)
}

type RankingHandler struct {
	rankingService RankingService
	secret         string
}

// NewRankingHandler secures the webhook with a shared secret. An empty secret
// disables the endpoint.
func NewRankingHandler(rs RankingService, secret string) *RankingHandler {
	return &RankingHandler{rankingService: rs, secret: secret}
}

func (h *RankingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/rankings", h.handleRankings)
}

func (h *RankingHandler) handleRankings(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		common.RespondWithError(w, http.StatusServiceUnavailable, "Ranking webhook is not configured")
		return
	}
	got := r.Header.Get("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		common.RespondWithError(w, http.StatusUnauthorized, "Invalid webhook secret")
		return
	}

	var payload service.RankingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("ERROR: Webhook: Invalid payload: %v", err)
		common.RespondWithError(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}
	defer r.Body.Close()

	result, err := h.rankingService.HandleRankings(r.Context(), payload)
	if err != nil {
		log.Printf("ERROR: Webhook: Error applying rankings for hackathon %s: %v", payload.HackathonID, err)
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
