package handler

import (
	"context"
	"encoding/json"
	"hackboard/internal/api/middleware"
	"hackboard/internal/app/service"
	"hackboard/internal/common"
	"hackboard/internal/domain/lifecycle"
	"hackboard/internal/domain/model"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type HackathonService interface {
	Create(ctx context.Context, caller model.Caller, req service.CreateHackathonRequest) (*model.Hackathon, error)
	Get(ctx context.Context, ref string) (*model.Hackathon, error)
	List(ctx context.Context) ([]model.Hackathon, error)
	ListMine(ctx context.Context, caller model.Caller) ([]model.Hackathon, error)
	Leaderboard(ctx context.Context, ref string) (*model.Leaderboard, error)
}

type HackathonHandler struct {
	hackathonService   HackathonService
	applicationService ApplicationService
}

func NewHackathonHandler(hs HackathonService, as ApplicationService) *HackathonHandler {
	return &HackathonHandler{hackathonService: hs, applicationService: as}
}

func (h *HackathonHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listHackathons)
	r.Get("/{hackathonID}", h.getHackathon) // id or slug
	r.Get("/{hackathonID}/leaderboard", h.getLeaderboard)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.With(middleware.RequireRole(model.RoleIndustry)).Get("/mine", h.myHackathons)
		authed.With(middleware.RequireRole(model.RoleIndustry)).Post("/", h.createHackathon)
		authed.Post("/{hackathonID}/applications", h.apply)
		authed.Get("/{hackathonID}/applications", h.listApplications)
	})
}

func (h *HackathonHandler) listHackathons(w http.ResponseWriter, r *http.Request) {
	hackathons, err := h.hackathonService.List(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hackathons)
}

func (h *HackathonHandler) getHackathon(w http.ResponseWriter, r *http.Request) {
	hackathon, err := h.hackathonService.Get(r.Context(), chi.URLParam(r, "hackathonID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hackathon)
}

func (h *HackathonHandler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.hackathonService.Leaderboard(r.Context(), chi.URLParam(r, "hackathonID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, board)
}

func (h *HackathonHandler) myHackathons(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	hackathons, err := h.hackathonService.ListMine(r.Context(), caller)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hackathons)
}

func (h *HackathonHandler) createHackathon(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var req service.CreateHackathonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	hackathon, err := h.hackathonService.Create(r.Context(), caller, req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, hackathon)
}

func (h *HackathonHandler) apply(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var entry lifecycle.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	app, err := h.applicationService.Apply(r.Context(), caller, chi.URLParam(r, "hackathonID"), entry)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, app)
}

func (h *HackathonHandler) listApplications(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	apps, err := h.applicationService.ListByHackathon(r.Context(), caller, chi.URLParam(r, "hackathonID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, apps)
}
