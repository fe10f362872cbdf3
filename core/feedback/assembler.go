package feedback

type (
	// SessionData is a consistent snapshot of everything needed to assemble a session's submission form.
	// Candidates and Responses are keyed by question ID.
	SessionData struct {
		Session    Session
		Questions  []Question // display order
		Candidates map[string][]RecipientCandidate
		Responses  map[string][]Response
	}

	BundleOptions struct {
		IsSessionOpenForSubmission bool
		IsPreview                  bool
		IsModeration               bool
		IsHeaderHidden             bool
		IsShowRealQuestionNumber   bool
		ModeratedQuestionID        string // empty: no moderated question
		RegisterMessage            string
	}
)

// Assemble builds the submission bundle of a session. Questions resolving to zero slots are left out and do not
// consume a display number. Assemble never fails and always returns a new bundle.
func Assemble(data SessionData, opts BundleOptions) SubmissionBundle {
	bundle := SubmissionBundle{
		Session:                    data.Session,
		Questions:                  make([]QuestionBundle, 0, len(data.Questions)),
		IsSessionOpenForSubmission: opts.IsSessionOpenForSubmission,
		IsPreview:                  opts.IsPreview,
		IsModeration:               opts.IsModeration,
		IsHeaderHidden:             opts.IsHeaderHidden,
		IsShowRealQuestionNumber:   opts.IsShowRealQuestionNumber,
		ModeratedQuestionID:        opts.ModeratedQuestionID,
		RegisterMessage:            opts.RegisterMessage,
	}

	for _, q := range data.Questions {
		candidates := data.Candidates[q.ID]
		slotCount := ResolveSlotCount(q, candidates)
		if slotCount == 0 {
			continue
		}

		displayNumber := len(bundle.Questions) + 1
		bundle.Questions = append(bundle.Questions, QuestionBundle{
			Question:             q,
			DisplayNumber:        displayNumber,
			IsModerated:          opts.ModeratedQuestionID != "" && q.ID == opts.ModeratedQuestionID,
			Slots:                ReconcileSlots(q, displayNumber, slotCount, candidates, data.Responses[q.ID], opts.IsSessionOpenForSubmission),
			SlotCount:            slotCount,
			MaxResponsesPossible: countDistinct(candidates),
		})
	}
	return bundle
}
