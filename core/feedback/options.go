package feedback

import (
	"sort"

	"github.com/trezcool/masomo-feedback/core/sanitize"
)

// BuildRecipientOptions returns the recipient drop-down of a response slot: an empty option followed by one
// option per candidate, sorted by name then identifier.
// The empty option is selected iff `selected` is nil; otherwise the first candidate whose decoded identifier
// equals the decoded `selected` value is. At most one option is ever selected.
func BuildRecipientOptions(candidates []RecipientCandidate, selected *string) []RecipientOption {
	sorted := make([]RecipientCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Identifier < sorted[j].Identifier
	})

	options := make([]RecipientOption, 0, len(sorted)+1)
	options = append(options, RecipientOption{Selected: selected == nil})

	var want string
	matched := selected == nil
	if selected != nil {
		want = sanitize.Recover(*selected)
	}
	for _, c := range sorted {
		opt := RecipientOption{
			Value: sanitize.ForHTML(c.Identifier),
			Label: sanitize.ForHTML(c.Name),
		}
		if !matched && sanitize.Recover(c.Identifier) == want {
			opt.Selected = true
			matched = true
		}
		options = append(options, opt)
	}
	return options
}
