package student

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/feedback"
)

var (
	notReservedTag  = "notreserved"
	notReservedText = "this value is reserved"

	sectionSizeText = fmt.Sprintf("a section cannot contain more than %d students", SectionSizeLimit)
	teamSplitText   = "team %q is already in section %q; a team can only be in one section"
)

// InitValidators registers the student validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(notReservedTag, notReservedValidation)
	core.RegisterCustomTranslation(validate, translator, notReservedTag, notReservedText)
}

// notReservedValidation rejects identifiers that collide with the general feedback recipient.
func notReservedValidation(fl validator.FieldLevel) bool {
	return fl.Field().String() != feedback.GeneralRecipient
}

// validateSectionsAndTeams checks `updated` against the rest of the course's roster:
// its team must not already be in another section, and a section it moves into must not exceed SectionSizeLimit.
func validateSectionsAndTeams(roster []Student, orig, updated Student) error {
	var fieldErrs []core.FieldError
	sectionSize := 1

	for _, s := range roster {
		if s.Email == orig.Email {
			continue
		}
		if s.Section == updated.Section {
			sectionSize++
		}
		if s.Team == updated.Team && s.Section != updated.Section && len(fieldErrs) == 0 {
			fieldErrs = append(fieldErrs, core.FieldError{
				Field: "team",
				Error: fmt.Sprintf(teamSplitText, s.Team, s.Section),
			})
		}
	}
	if updated.Section != orig.Section && sectionSize > SectionSizeLimit {
		fieldErrs = append(fieldErrs, core.FieldError{Field: "section", Error: sectionSizeText})
	}

	if len(fieldErrs) > 0 {
		return core.NewValidationError(nil, fieldErrs...)
	}
	return nil
}
