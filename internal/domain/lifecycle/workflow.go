package lifecycle

import (
	"hackboard/internal/common"
	"hackboard/internal/domain/model"
	"strings"
	"time"
)

// SubmitKind tells what a successful submission did to the phase.
type SubmitKind string

const (
	SubmitFirst    SubmitKind = "first"    // NONE -> PENDING
	SubmitReplace  SubmitKind = "replace"  // PENDING -> PENDING
	SubmitReupload SubmitKind = "reupload" // REUPLOAD_REQUESTED -> PENDING
)

type SubmissionRequest struct {
	model.SubmissionContent
	// Participants may only submit for review; empty means PENDING.
	Status model.SubmissionStatus `json:"status,omitempty"`
}

// SubmitPhase records content for one phase of app. The caller's ownership of
// app must already be authorized.
func SubmitPhase(now time.Time, app *model.Application, phase model.Phase, req SubmissionRequest) (*model.PhaseSubmission, SubmitKind, error) {
	if app.Status == model.ApplicationRejected {
		return nil, "", common.ErrApplicationRejected
	}
	if DeadlinePassed(now, phase.Deadline) {
		return nil, "", common.Wrapf(common.ErrDeadlinePassed, "the deadline for phase %q has passed", phase.Name)
	}

	if req.Status == "" {
		req.Status = model.SubmissionPending
	}
	if req.Status != model.SubmissionPending {
		return nil, "", common.Wrapf(common.ErrInvalidStatus, "participants can only submit with status %s", model.SubmissionPending)
	}
	if !hasContent(req.SubmissionContent) {
		return nil, "", common.Wrapf(common.ErrMissingRequiredField, "a solution statement, file or link is required")
	}

	if app.PhaseSubmissions == nil {
		app.PhaseSubmissions = model.PhaseSubmissions{}
	}

	var kind SubmitKind
	sub, ok := app.PhaseSubmissions[phase.ID]
	switch {
	case !ok:
		sub = &model.PhaseSubmission{ReuploadCount: 0}
		app.PhaseSubmissions[phase.ID] = sub
		kind = SubmitFirst
	case sub.Status == model.SubmissionReuploadRequested:
		// reuploadCount was already incremented when the reupload was requested.
		kind = SubmitReupload
	case sub.Status.Terminal():
		return nil, "", common.Wrapf(common.ErrInvalidState, "phase %q has already been reviewed", phase.Name)
	default:
		kind = SubmitReplace
	}

	sub.SubmissionContent = trimContent(req.SubmissionContent)
	sub.Status = model.SubmissionPending
	sub.SubmittedAt = now
	app.UpdatedAt = now
	return sub, kind, nil
}

func hasContent(c model.SubmissionContent) bool {
	return !blank(c.SolutionStatement) || !blank(c.FileURL) || !blank(c.SubmissionLink)
}

func trimContent(c model.SubmissionContent) model.SubmissionContent {
	return model.SubmissionContent{
		SolutionStatement: c.SolutionStatement,
		FileURL:           strings.TrimSpace(c.FileURL),
		FileName:          strings.TrimSpace(c.FileName),
		SubmissionLink:    strings.TrimSpace(c.SubmissionLink),
	}
}
