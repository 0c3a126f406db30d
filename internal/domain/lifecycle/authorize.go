package lifecycle

import (
	"hackboard/internal/common"
	"hackboard/internal/domain/model"
)

type Action string

const (
	ActionApply           Action = "apply"
	ActionSubmitPhase     Action = "submit_phase"
	ActionReview          Action = "review" // review, reupload, reject, list a hackathon's applications
	ActionViewApplication Action = "view_application"
	ActionCreateHackathon Action = "create_hackathon"
)

// Authorize is the single ownership and role check run before every operation.
// h and app may be nil when the action does not involve them.
func Authorize(caller model.Caller, action Action, h *model.Hackathon, app *model.Application) error {
	switch action {
	case ActionApply:
		if caller.Role != model.RoleApplicant {
			return common.Forbiddenf("only applicants can apply to hackathons")
		}
		return nil

	case ActionSubmitPhase:
		if caller.Role != model.RoleApplicant || app == nil || app.ApplicantID != caller.UserID {
			return common.Forbiddenf("only the applicant who owns this application can submit")
		}
		return nil

	case ActionReview:
		if !organizes(caller, h) {
			return common.Forbiddenf("only the organizer of this hackathon can do this")
		}
		return nil

	case ActionViewApplication:
		if app != nil && caller.Role == model.RoleApplicant && app.ApplicantID == caller.UserID {
			return nil
		}
		if organizes(caller, h) {
			return nil
		}
		return common.Forbiddenf("you cannot view this application")

	case ActionCreateHackathon:
		if caller.Role != model.RoleIndustry {
			return common.Forbiddenf("only industry accounts can create hackathons")
		}
		return nil
	}
	return common.Forbiddenf("unknown action %s", action)
}

func organizes(caller model.Caller, h *model.Hackathon) bool {
	return caller.Role == model.RoleIndustry && h != nil && h.OrganizerID == caller.UserID
}
