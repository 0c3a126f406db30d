package lifecycle

import (
	"hackboard/internal/common"
	"hackboard/internal/domain/model"
	"strings"
	"time"
)

// Entry is what a participant submits when applying, individually or as a team.
type Entry struct {
	AsTeam      bool               `json:"as_team"`
	TeamName    string             `json:"team_name,omitempty"`
	TeamSize    int                `json:"team_size,omitempty"`
	TeamMembers []model.TeamMember `json:"team_members,omitempty"`

	IndividualName           string `json:"individual_name,omitempty"`
	IndividualEmail          string `json:"individual_email,omitempty"`
	IndividualPhone          string `json:"individual_phone,omitempty"`
	IndividualQualifications string `json:"individual_qualifications,omitempty"`
}

// EffectiveTeamSize is the declared size, or the member count when none was declared.
func (e Entry) EffectiveTeamSize() int {
	if e.TeamSize > 0 {
		return e.TeamSize
	}
	return len(e.TeamMembers)
}

// CanApply runs the eligibility checks in order; the first failure wins.
// prior holds the applicant's earlier applications to the same hackathon.
func CanApply(now time.Time, h *model.Hackathon, entry Entry, prior []model.Application) error {
	if h.ResultsPublished {
		return common.ErrResultsPublished
	}

	if DeadlinePassed(now, h.EndDate) {
		return common.ErrRegistrationClosed
	}
	if first, ok := h.FirstPhase(); ok && DeadlinePassed(now, first.Deadline) {
		return common.ErrRegistrationClosed
	}

	for _, app := range prior {
		if app.Status == model.ApplicationRejected {
			return common.ErrPreviouslyRejected
		}
	}
	if len(prior) > 0 {
		return common.ErrAlreadyApplied
	}

	if !entry.AsTeam && !h.AllowIndividual {
		return common.ErrIndividualNotAllowed
	}

	if entry.AsTeam {
		if entry.TeamSize > 0 && len(entry.TeamMembers) > 0 && entry.TeamSize != len(entry.TeamMembers) {
			return common.Wrapf(common.ErrTeamSizeInvalid, "team_size %d does not match %d team members", entry.TeamSize, len(entry.TeamMembers))
		}
		size := entry.EffectiveTeamSize()
		if size < 2 {
			return common.ErrTeamSizeInvalid
		}
		if h.MinTeamSize > 0 && size < h.MinTeamSize {
			return common.ErrTeamSizeInvalid
		}
		if h.TeamSize > 0 && size > h.TeamSize {
			return common.ErrTeamSizeInvalid
		}
	}

	return checkRequiredFields(entry)
}

func checkRequiredFields(entry Entry) error {
	if !entry.AsTeam {
		if blank(entry.IndividualName) {
			return common.Wrapf(common.ErrMissingRequiredField, "individual_name is required")
		}
		return nil
	}
	if blank(entry.TeamName) {
		return common.Wrapf(common.ErrMissingRequiredField, "team_name is required")
	}
	for i, m := range entry.TeamMembers {
		if blank(m.Name) {
			return common.Wrapf(common.ErrMissingRequiredField, "team_members[%d].name is required", i)
		}
	}
	return nil
}

// NewApplication builds the ACTIVE application for an entry that passed CanApply.
func NewApplication(id string, h *model.Hackathon, caller model.Caller, entry Entry, now time.Time) *model.Application {
	app := &model.Application{
		ID:               id,
		HackathonID:      h.ID,
		ApplicantID:      caller.UserID,
		ApplicantEmail:   caller.Email,
		AsTeam:           entry.AsTeam,
		Status:           model.ApplicationActive,
		PhaseSubmissions: model.PhaseSubmissions{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if entry.AsTeam {
		app.TeamName = strings.TrimSpace(entry.TeamName)
		app.TeamSize = entry.EffectiveTeamSize()
		app.TeamMembers = entry.TeamMembers
	} else {
		app.IndividualName = strings.TrimSpace(entry.IndividualName)
		app.IndividualEmail = strings.TrimSpace(entry.IndividualEmail)
		app.IndividualPhone = strings.TrimSpace(entry.IndividualPhone)
		app.IndividualQualifications = entry.IndividualQualifications
	}
	return app
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
