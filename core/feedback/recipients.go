package feedback

type (
	// Giver is the participant answering the questions.
	Giver struct {
		Email        string
		Name         string
		Team         string
		IsInstructor bool
	}

	RosterStudent struct {
		Email    string
		Name     string
		Team     string
		GoogleID string
		RegKey   string
	}

	RosterInstructor struct {
		Email string
		Name  string
	}

	// Roster lists a course's participants, in display order.
	Roster struct {
		Students    []RosterStudent
		Instructors []RosterInstructor
	}
)

// Teams returns the distinct team names of the roster, in order of first appearance.
func (r Roster) Teams() []string {
	seen := make(map[string]bool)
	teams := make([]string, 0)
	for _, s := range r.Students {
		if s.Team == "" || seen[s.Team] {
			continue
		}
		seen[s.Team] = true
		teams = append(teams, s.Team)
	}
	return teams
}

func (r Roster) StudentByEmail(email string) (RosterStudent, bool) {
	for _, s := range r.Students {
		if s.Email == email {
			return s, true
		}
	}
	return RosterStudent{}, false
}

func (r Roster) StudentByRegKey(regKey string) (RosterStudent, bool) {
	if regKey == "" {
		return RosterStudent{}, false
	}
	for _, s := range r.Students {
		if s.RegKey == regKey {
			return s, true
		}
	}
	return RosterStudent{}, false
}

func (r Roster) InstructorByEmail(email string) (RosterInstructor, bool) {
	for _, i := range r.Instructors {
		if i.Email == email {
			return i, true
		}
	}
	return RosterInstructor{}, false
}

// EligibleRecipients returns the recipients `giver` may give feedback to for `q`, in roster order.
// The giver never appears among their own peers, and their own team is not among TEAMS.
func EligibleRecipients(q Question, giver Giver, roster Roster) []RecipientCandidate {
	candidates := make([]RecipientCandidate, 0)

	switch q.RecipientType {
	case ParticipantSelf:
		if q.GiverType == ParticipantTeams {
			candidates = append(candidates, RecipientCandidate{Identifier: giver.Team, Name: giver.Team})
		} else {
			candidates = append(candidates, RecipientCandidate{Identifier: giver.Email, Name: giver.Name})
		}
	case ParticipantStudents:
		for _, s := range roster.Students {
			if s.Email != giver.Email {
				candidates = append(candidates, RecipientCandidate{Identifier: s.Email, Name: s.Name})
			}
		}
	case ParticipantInstructors:
		for _, i := range roster.Instructors {
			if i.Email != giver.Email {
				candidates = append(candidates, RecipientCandidate{Identifier: i.Email, Name: i.Name})
			}
		}
	case ParticipantTeams:
		for _, team := range roster.Teams() {
			if team != giver.Team {
				candidates = append(candidates, RecipientCandidate{Identifier: team, Name: team})
			}
		}
	case ParticipantOwnTeam:
		if giver.Team != "" {
			candidates = append(candidates, RecipientCandidate{Identifier: giver.Team, Name: giver.Team})
		}
	case ParticipantOwnTeamMembers, ParticipantOwnTeamMembersIncludingSelf:
		inclSelf := q.RecipientType == ParticipantOwnTeamMembersIncludingSelf
		for _, s := range roster.Students {
			if giver.Team == "" || s.Team != giver.Team {
				continue
			}
			if s.Email == giver.Email && !inclSelf {
				continue
			}
			candidates = append(candidates, RecipientCandidate{Identifier: s.Email, Name: s.Name})
		}
	case ParticipantNone:
		candidates = append(candidates, RecipientCandidate{Identifier: GeneralRecipient, Name: GeneralRecipient})
	}
	return candidates
}
