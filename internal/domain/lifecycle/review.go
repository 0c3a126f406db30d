package lifecycle

import (
	"hackboard/internal/common"
	"hackboard/internal/domain/model"
	"time"
)

// DefaultRejectionMessage is stored when a phase is rejected without a message.
const DefaultRejectionMessage = "Your submission for this phase was not accepted."

type ReviewDecision struct {
	Status           model.SubmissionStatus `json:"status"`
	Score            *float64               `json:"score,omitempty"`
	Remarks          string                 `json:"remarks,omitempty"`
	RejectionMessage string                 `json:"rejection_message,omitempty"`
}

func submissionFor(app *model.Application, phaseID model.PhaseID) (*model.PhaseSubmission, error) {
	sub, ok := app.PhaseSubmissions[phaseID]
	if !ok || sub == nil {
		return nil, common.NotFoundf("no submission for phase %s", phaseID)
	}
	return sub, nil
}

// ReviewPhase accepts or rejects one pending phase submission. Rejecting any
// phase rejects the whole application, keeping an earlier rejection message.
func ReviewPhase(now time.Time, app *model.Application, phaseID model.PhaseID, d ReviewDecision) (*model.PhaseSubmission, error) {
	sub, err := submissionFor(app, phaseID)
	if err != nil {
		return nil, err
	}
	if d.Status != model.SubmissionAccepted && d.Status != model.SubmissionRejected {
		return nil, common.Wrapf(common.ErrInvalidStatus, "review status must be %s or %s", model.SubmissionAccepted, model.SubmissionRejected)
	}
	// Only a pending submission is up for review; decisions are final.
	if sub.Status != model.SubmissionPending {
		return nil, common.Wrapf(common.ErrInvalidState, "cannot review a %s submission", sub.Status)
	}

	sub.Status = d.Status
	sub.Score = d.Score
	sub.Remarks = d.Remarks
	sub.ReviewedAt = &now
	app.UpdatedAt = now

	if d.Status == model.SubmissionRejected {
		msg := d.RejectionMessage
		if blank(msg) {
			msg = DefaultRejectionMessage
			if app.Status == model.ApplicationRejected && !blank(app.RejectionMessage) {
				msg = app.RejectionMessage
			}
		}
		app.Status = model.ApplicationRejected
		app.RejectionMessage = msg
	}
	return sub, nil
}

// RequestReupload asks the participant to resubmit a phase. Each call consumes
// one of MaxReuploads requests, so it must not be retried blindly.
func RequestReupload(now time.Time, app *model.Application, phaseID model.PhaseID, message string) (*model.PhaseSubmission, error) {
	sub, err := submissionFor(app, phaseID)
	if err != nil {
		return nil, err
	}
	if sub.ReuploadCount >= model.MaxReuploads {
		return nil, common.ErrMaxReuploadsReached
	}
	if sub.Status.Terminal() {
		return nil, common.Wrapf(common.ErrInvalidState, "cannot request a reupload for a %s submission", sub.Status)
	}
	if app.Status == model.ApplicationRejected {
		return nil, common.ErrApplicationRejected
	}

	sub.ReuploadCount++
	sub.Status = model.SubmissionReuploadRequested
	sub.ReuploadMessage = message
	app.UpdatedAt = now
	return sub, nil
}

// RejectApplication disqualifies the application regardless of phase state.
// The message may be empty.
func RejectApplication(now time.Time, app *model.Application, message string) {
	app.Status = model.ApplicationRejected
	app.RejectionMessage = message
	app.UpdatedAt = now
}
