package feedback

// ResolveSlotCount applies the slot-count rule: the "all recipients" sentinel, or a request larger than the
// number of distinct candidates, resolves to the candidate count. A smaller explicit request is kept as-is.
func ResolveSlotCount(q Question, candidates []RecipientCandidate) int {
	available := countDistinct(candidates)
	requested := q.NumberOfEntitiesToGiveFeedbackTo
	switch {
	case requested == MaxPossibleRecipients, requested > available:
		return available
	case requested < 0:
		return 0
	default:
		return requested
	}
}

func countDistinct(candidates []RecipientCandidate) int {
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		seen[c.Identifier] = struct{}{}
	}
	return len(seen)
}

// ReconcileSlots builds the response slots of a question: one slot per existing response, in retrieval order,
// then empty slots until `slotCount` is reached. Existing responses are never dropped, even past `slotCount`.
func ReconcileSlots(
	q Question,
	questionNumber, slotCount int,
	candidates []RecipientCandidate,
	responses []Response,
	isSessionOpen bool,
) []ResponseSlot {
	total := slotCount
	if len(responses) > total {
		total = len(responses)
	}
	slots := make([]ResponseSlot, 0, total)

	params := func(idx int) FormParams {
		return FormParams{
			IsSessionOpen:  isSessionOpen,
			QuestionNumber: questionNumber,
			SlotIndex:      idx,
			CourseID:       q.CourseID,
			SlotCount:      slotCount,
			IsCompulsory:   q.IsCompulsory,
		}
	}

	for idx, resp := range responses {
		recipient := resp.Recipient
		slot := ResponseSlot{
			Index:               idx,
			HasExistingResponse: true,
			RecipientOptions:    BuildRecipientOptions(candidates, &recipient),
			ResponseID:          resp.ID,
		}
		if q.Details != nil {
			slot.FormHTML = q.Details.ExistingResponseForm(params(idx), resp.Answer)
		}
		slots = append(slots, slot)
	}

	for idx := len(responses); idx < total; idx++ {
		slot := ResponseSlot{
			Index:            idx,
			RecipientOptions: BuildRecipientOptions(candidates, nil),
		}
		if q.Details != nil {
			slot.FormHTML = q.Details.EmptyResponseForm(params(idx))
		}
		slots = append(slots, slot)
	}
	return slots
}
