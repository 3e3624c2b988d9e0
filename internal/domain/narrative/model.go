package narrative

// Owner is a club owner whose public approval is soft state.
type Owner struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	TeamID         string `json:"team_id"`
	Role           string `json:"role"`
	PublicApproval int    `json:"public_approval"`
	Patience       int    `json:"patience"`
}

func (o *Owner) SetPublicApproval(v int) {
	o.PublicApproval = clampInt(v, 0, 100)
}

// StaffMember is non-playing personnel. Rapport with the squad is soft state.
type StaffMember struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TeamID      string `json:"team_id"`
	Role        string `json:"role"`
	TeamRapport int    `json:"team_rapport"`
}

func (s *StaffMember) SetTeamRapport(v int) {
	s.TeamRapport = clampInt(v, 0, 100)
}

// MediaOutlet publishes stories about matches and clubs.
type MediaOutlet struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	OutletType    string   `json:"outlet_type"`
	Credibility   int      `json:"credibility"`
	ActiveStories []string `json:"active_stories,omitempty"`
}

// PushStory keeps the most recent stories, newest last, capped at five.
func (m *MediaOutlet) PushStory(headline string) {
	m.ActiveStories = append(m.ActiveStories, headline)
	if len(m.ActiveStories) > 5 {
		m.ActiveStories = m.ActiveStories[len(m.ActiveStories)-5:]
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
