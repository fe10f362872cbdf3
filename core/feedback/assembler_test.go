package feedback

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble_visibilityAndNumbering(t *testing.T) {
	q1 := newQuestion("q1", 1, 2)
	q2 := newQuestion("q2", 2, 2) // no candidates
	q3 := newQuestion("q3", 3, MaxPossibleRecipients)

	data := SessionData{
		Session:   Session{CourseID: "CS101", Name: "Mid-term"},
		Questions: []Question{q2, q1, q3},
		Candidates: map[string][]RecipientCandidate{
			"q1": newCandidates(3),
			"q3": newCandidates(1),
		},
	}

	bundle := Assemble(data, BundleOptions{IsSessionOpenForSubmission: true})

	require.Len(t, bundle.Questions, 2)
	assert.Equal(t, "q1", bundle.Questions[0].Question.ID)
	assert.Equal(t, 1, bundle.Questions[0].DisplayNumber)
	assert.Equal(t, 2, bundle.Questions[0].SlotCount)
	assert.Equal(t, 3, bundle.Questions[0].MaxResponsesPossible)
	assert.Len(t, bundle.Questions[0].Slots, 2)

	assert.Equal(t, "q3", bundle.Questions[1].Question.ID)
	assert.Equal(t, 2, bundle.Questions[1].DisplayNumber)
	assert.Equal(t, 1, bundle.Questions[1].SlotCount)

	// forms are numbered with the display number
	assert.Equal(t, "empty q2 s0/1 open=true compulsory=false", string(bundle.Questions[1].Slots[0].FormHTML))
}

func TestAssemble_firstVisibleQuestionIsNumberOne(t *testing.T) {
	data := SessionData{
		Questions: []Question{newQuestion("q1", 1, 2), newQuestion("q2", 2, 1)},
		Candidates: map[string][]RecipientCandidate{
			"q2": newCandidates(2),
		},
	}

	bundle := Assemble(data, BundleOptions{})

	require.Len(t, bundle.Questions, 1)
	assert.Equal(t, "q2", bundle.Questions[0].Question.ID)
	assert.Equal(t, 1, bundle.Questions[0].DisplayNumber)
}

func TestAssemble_moderation(t *testing.T) {
	data := SessionData{Candidates: make(map[string][]RecipientCandidate)}
	for i := 1; i <= 10; i++ {
		id := fmt.Sprintf("Q%d", i)
		data.Questions = append(data.Questions, newQuestion(id, i, MaxPossibleRecipients))
		if i%5 != 0 && i != 3 && i != 8 { // 6 visible: Q1 Q2 Q4 Q6 Q7 Q9
			data.Candidates[id] = newCandidates(2)
		}
	}

	tests := []struct {
		name          string
		moderatedID   string
		wantModerated []string
	}{
		{name: "visible question", moderatedID: "Q7", wantModerated: []string{"Q7"}},
		{name: "hidden question", moderatedID: "Q5", wantModerated: []string{}},
		{name: "unknown question", moderatedID: "Q42", wantModerated: []string{}},
		{name: "none", moderatedID: "", wantModerated: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := Assemble(data, BundleOptions{IsModeration: tt.moderatedID != "", ModeratedQuestionID: tt.moderatedID})

			require.Len(t, bundle.Questions, 6)
			moderated := make([]string, 0)
			for i, qb := range bundle.Questions {
				assert.Equal(t, i+1, qb.DisplayNumber)
				if qb.IsModerated {
					moderated = append(moderated, qb.Question.ID)
				}
			}
			assert.Equal(t, tt.wantModerated, moderated)
		})
	}
}

func TestAssemble_idempotent(t *testing.T) {
	data := SessionData{
		Session:   Session{CourseID: "CS101", Name: "Mid-term"},
		Questions: []Question{newQuestion("q1", 1, MaxPossibleRecipients), newQuestion("q2", 2, 2)},
		Candidates: map[string][]RecipientCandidate{
			"q1": newCandidates(3),
			"q2": newCandidates(3),
		},
		Responses: map[string][]Response{
			"q1": {{ID: "r1", QuestionID: "q1", Recipient: "student2@example.com", Answer: "a"}},
			"q2": {{ID: "r2", QuestionID: "q2", Recipient: "student3@example.com", Answer: "b"}},
		},
	}
	opts := BundleOptions{IsSessionOpenForSubmission: true, ModeratedQuestionID: "q2"}

	first := Assemble(data, opts)
	second := Assemble(data, opts)

	assert.Equal(t, first, second)

	// bundles do not share slot storage
	first.Questions[0].Slots[0].ResponseID = "changed"
	assert.Equal(t, "r1", second.Questions[0].Slots[0].ResponseID)
}

func TestAssemble_emptySession(t *testing.T) {
	bundle := Assemble(SessionData{}, BundleOptions{RegisterMessage: "join"})
	assert.NotNil(t, bundle.Questions)
	assert.Empty(t, bundle.Questions)
	assert.Equal(t, "join", bundle.RegisterMessage)
}

func TestAssemble_slotCountBound(t *testing.T) {
	data := SessionData{Candidates: make(map[string][]RecipientCandidate), Responses: make(map[string][]Response)}
	for i, tc := range []struct{ entities, candidates, responses int }{
		{MaxPossibleRecipients, 3, 0}, {2, 5, 4}, {7, 2, 1}, {1, 1, 3},
	} {
		id := fmt.Sprintf("q%d", i)
		data.Questions = append(data.Questions, newQuestion(id, i+1, tc.entities))
		data.Candidates[id] = newCandidates(tc.candidates)
		for r := 0; r < tc.responses; r++ {
			data.Responses[id] = append(data.Responses[id], Response{ID: fmt.Sprintf("%s-r%d", id, r)})
		}
	}

	bundle := Assemble(data, BundleOptions{})

	require.Len(t, bundle.Questions, 4)
	for _, qb := range bundle.Questions {
		id := qb.Question.ID
		nCandidates, nResponses := len(data.Candidates[id]), len(data.Responses[id])
		max := nCandidates
		if nResponses > max {
			max = nResponses
		}
		assert.LessOrEqual(t, len(qb.Slots), max, id)
		assert.GreaterOrEqual(t, len(qb.Slots), nResponses, id)
	}
}

func TestSubmissionBundle_helpers(t *testing.T) {
	qb := QuestionBundle{Question: Question{Number: 7}, DisplayNumber: 3}

	tests := []struct {
		name           string
		bundle         SubmissionBundle
		wantSubmit     bool
		wantTarget     string
		wantQuestionNo int
	}{
		{name: "closed", bundle: SubmissionBundle{}, wantSubmit: false, wantTarget: SubmitActionSave, wantQuestionNo: 3},
		{name: "open", bundle: SubmissionBundle{IsSessionOpenForSubmission: true}, wantSubmit: true, wantTarget: SubmitActionSave, wantQuestionNo: 3},
		{name: "moderation", bundle: SubmissionBundle{IsModeration: true}, wantSubmit: true, wantTarget: SubmitActionModeration, wantQuestionNo: 3},
		{name: "real numbers", bundle: SubmissionBundle{IsShowRealQuestionNumber: true}, wantSubmit: false, wantTarget: SubmitActionSave, wantQuestionNo: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantSubmit, tt.bundle.IsSubmittable())
			assert.Equal(t, tt.wantTarget, tt.bundle.SubmitTarget())
			assert.Equal(t, tt.wantQuestionNo, tt.bundle.QuestionNumber(qb))
		})
	}
}
