package model

// LeaderboardEntry is one ranked application in a hackathon's published results.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	ApplicationID string `json:"application_id"`
	ApplicantID   string `json:"applicant_id"`
	DisplayName   string `json:"display_name"` // Team name, or the individual's name
	AsTeam        bool   `json:"as_team"`
}

type Leaderboard struct {
	HackathonID      string             `json:"hackathon_id"`
	ResultsPublished bool               `json:"results_published"`
	Entries          []LeaderboardEntry `json:"entries"`
}
