package model

import "time"

type ApplicationStatus string

const (
	ApplicationActive   ApplicationStatus = "ACTIVE"
	ApplicationRejected ApplicationStatus = "REJECTED" // Terminal
)

type SubmissionStatus string

const (
	SubmissionPending           SubmissionStatus = "PENDING"
	SubmissionAccepted          SubmissionStatus = "ACCEPTED"
	SubmissionRejected          SubmissionStatus = "REJECTED"
	SubmissionReuploadRequested SubmissionStatus = "REUPLOAD_REQUESTED"
)

// Terminal reports whether the phase has been decided by the organizer.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionAccepted || s == SubmissionRejected
}

// MaxReuploads bounds reupload requests per phase submission.
const MaxReuploads = 2

type TeamMember struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

type SubmissionContent struct {
	SolutionStatement string `json:"solution_statement,omitempty"`
	FileURL           string `json:"file_url,omitempty"`
	FileName          string `json:"file_name,omitempty"`
	SubmissionLink    string `json:"submission_link,omitempty"`
}

type PhaseSubmission struct {
	SubmissionContent
	Status          SubmissionStatus `json:"status"`
	Score           *float64         `json:"score,omitempty"`
	Remarks         string           `json:"remarks,omitempty"`
	ReuploadCount   int              `json:"reupload_count"`
	ReuploadMessage string           `json:"reupload_message,omitempty"`
	SubmittedAt     time.Time        `json:"submitted_at"`
	ReviewedAt      *time.Time       `json:"reviewed_at,omitempty"`
}

// PhaseSubmissions holds at most one submission per phase. Entries are created
// on the first submission for that phase.
type PhaseSubmissions map[PhaseID]*PhaseSubmission

type Application struct {
	ID             string `json:"id"`
	HackathonID    string `json:"hackathon_id"`
	ApplicantID    string `json:"applicant_id"`
	ApplicantEmail string `json:"applicant_email,omitempty"`

	AsTeam      bool         `json:"as_team"`
	TeamName    string       `json:"team_name,omitempty"`
	TeamSize    int          `json:"team_size,omitempty"`
	TeamMembers []TeamMember `json:"team_members,omitempty"`

	IndividualName           string `json:"individual_name,omitempty"`
	IndividualEmail          string `json:"individual_email,omitempty"`
	IndividualPhone          string `json:"individual_phone,omitempty"`
	IndividualQualifications string `json:"individual_qualifications,omitempty"`

	Status           ApplicationStatus `json:"status"`
	RejectionMessage string            `json:"rejection_message,omitempty"`
	PhaseSubmissions PhaseSubmissions  `json:"phase_submissions"`
	FinalRank        *int              `json:"final_rank,omitempty"` // Set by the ranking webhook

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactEmail is where notifications about this application are sent.
func (a *Application) ContactEmail() string {
	if !a.AsTeam && a.IndividualEmail != "" {
		return a.IndividualEmail
	}
	if a.ApplicantEmail != "" {
		return a.ApplicantEmail
	}
	for _, m := range a.TeamMembers {
		if m.Email != "" {
			return m.Email
		}
	}
	return ""
}

// DisplayName is the team name or the individual's name.
func (a *Application) DisplayName() string {
	if a.AsTeam {
		return a.TeamName
	}
	return a.IndividualName
}
