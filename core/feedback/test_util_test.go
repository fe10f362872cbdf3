package feedback

import (
	"fmt"
	"html/template"
)

// stubDetails renders forms as plain descriptions so tests can assert what the engine passed in.
type stubDetails struct{}

func (stubDetails) QuestionType() string { return "STUB" }

func (stubDetails) ExistingResponseForm(p FormParams, answer string) template.HTML {
	return template.HTML(fmt.Sprintf("filled q%d s%d/%d open=%t compulsory=%t: %s",
		p.QuestionNumber, p.SlotIndex, p.SlotCount, p.IsSessionOpen, p.IsCompulsory, answer))
}

func (stubDetails) EmptyResponseForm(p FormParams) template.HTML {
	return template.HTML(fmt.Sprintf("empty q%d s%d/%d open=%t compulsory=%t",
		p.QuestionNumber, p.SlotIndex, p.SlotCount, p.IsSessionOpen, p.IsCompulsory))
}

func newQuestion(id string, number, entities int) Question {
	return Question{
		ID:                               id,
		CourseID:                         "CS101",
		SessionName:                      "Mid-term",
		Number:                           number,
		GiverType:                        ParticipantStudents,
		RecipientType:                    ParticipantStudents,
		NumberOfEntitiesToGiveFeedbackTo: entities,
		Details:                          stubDetails{},
	}
}

func newCandidates(n int) []RecipientCandidate {
	candidates := make([]RecipientCandidate, 0, n)
	for i := 1; i <= n; i++ {
		candidates = append(candidates, RecipientCandidate{
			Identifier: fmt.Sprintf("student%d@example.com", i),
			Name:       fmt.Sprintf("Student %d", i),
		})
	}
	return candidates
}

func strPtr(s string) *string { return &s }

func selectedValues(opts []RecipientOption) []string {
	values := make([]string, 0)
	for _, opt := range opts {
		if opt.Selected {
			values = append(values, opt.Value)
		}
	}
	return values
}
