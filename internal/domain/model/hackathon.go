package model

import "time"

type PhaseID string

type Phase struct {
	ID          PhaseID   `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Deadline    time.Time `json:"deadline"`
}

type Hackathon struct {
	ID               string    `json:"id"`
	Slug             string    `json:"slug"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	OrganizerID      string    `json:"organizer_id"`
	AllowIndividual  bool      `json:"allow_individual"`
	MinTeamSize      int       `json:"min_team_size"`
	TeamSize         int       `json:"team_size"` // Max team size, 0 means unbounded
	Phases           []Phase   `json:"phases"`    // In execution order
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	ResultsPublished bool      `json:"results_published"` // Derived on read, see lifecycle.ReconcileResults
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Phase returns the phase with the given id.
func (h *Hackathon) Phase(id PhaseID) (Phase, bool) {
	for _, p := range h.Phases {
		if p.ID == id {
			return p, true
		}
	}
	return Phase{}, false
}

// FirstPhase returns the earliest phase, which also closes registration.
func (h *Hackathon) FirstPhase() (Phase, bool) {
	if len(h.Phases) == 0 {
		return Phase{}, false
	}
	return h.Phases[0], true
}
