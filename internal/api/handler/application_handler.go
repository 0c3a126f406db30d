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

type ApplicationService interface {
	Apply(ctx context.Context, caller model.Caller, hackathonID string, entry lifecycle.Entry) (*model.Application, error)
	SubmitPhase(ctx context.Context, caller model.Caller, applicationID string, phaseID model.PhaseID, req lifecycle.SubmissionRequest) (*model.PhaseSubmission, error)
	Get(ctx context.Context, caller model.Caller, applicationID string) (*model.Application, error)
	ListByHackathon(ctx context.Context, caller model.Caller, hackathonID string) ([]model.Application, error)
	ListMine(ctx context.Context, caller model.Caller) ([]model.Application, error)
}

type ReviewService interface {
	ReviewPhase(ctx context.Context, caller model.Caller, applicationID string, phaseID model.PhaseID, d lifecycle.ReviewDecision) (*model.Application, error)
	RequestReupload(ctx context.Context, caller model.Caller, applicationID string, phaseID model.PhaseID, req service.ReuploadRequest) (*model.Application, error)
	RejectApplication(ctx context.Context, caller model.Caller, applicationID string, req service.RejectRequest) (*model.Application, error)
}

// ApplicationHandler serves participant and organizer actions on one application.
type ApplicationHandler struct {
	applicationService ApplicationService
	reviewService      ReviewService
}

func NewApplicationHandler(as ApplicationService, rs ReviewService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: as, reviewService: rs}
}

func (h *ApplicationHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Get("/me", h.myApplications)
	r.Get("/{applicationID}", h.getApplication)
	r.Put("/{applicationID}/phases/{phaseID}", h.submitPhase)

	r.Post("/{applicationID}/phases/{phaseID}/review", h.reviewPhase)
	r.Post("/{applicationID}/phases/{phaseID}/reupload", h.requestReupload)
	r.Post("/{applicationID}/reject", h.rejectApplication)
}

func (h *ApplicationHandler) myApplications(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	apps, err := h.applicationService.ListMine(r.Context(), caller)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, apps)
}

func (h *ApplicationHandler) getApplication(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	app, err := h.applicationService.Get(r.Context(), caller, chi.URLParam(r, "applicationID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) submitPhase(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var req lifecycle.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	sub, err := h.applicationService.SubmitPhase(r.Context(), caller,
		chi.URLParam(r, "applicationID"), model.PhaseID(chi.URLParam(r, "phaseID")), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sub)
}

func (h *ApplicationHandler) reviewPhase(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var d lifecycle.ReviewDecision
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	app, err := h.reviewService.ReviewPhase(r.Context(), caller,
		chi.URLParam(r, "applicationID"), model.PhaseID(chi.URLParam(r, "phaseID")), d)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) requestReupload(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var req service.ReuploadRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
			return
		}
	}

	app, err := h.reviewService.RequestReupload(r.Context(), caller,
		chi.URLParam(r, "applicationID"), model.PhaseID(chi.URLParam(r, "phaseID")), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) rejectApplication(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var req service.RejectRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
			return
		}
	}

	app, err := h.reviewService.RejectApplication(r.Context(), caller, chi.URLParam(r, "applicationID"), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, app)
}
