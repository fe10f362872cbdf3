package feedback

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/trezcool/masomo-feedback/core/sanitize"
)

// MaxPossibleRecipients is the NumberOfEntitiesToGiveFeedbackTo value meaning "every eligible recipient".
const MaxPossibleRecipients = -100

// Participant types, used as both giver and recipient types.
const (
	ParticipantSelf                        = "SELF"
	ParticipantStudents                    = "STUDENTS"
	ParticipantInstructors                 = "INSTRUCTORS"
	ParticipantTeams                       = "TEAMS"
	ParticipantOwnTeam                     = "OWN_TEAM"
	ParticipantOwnTeamMembers              = "OWN_TEAM_MEMBERS"
	ParticipantOwnTeamMembersIncludingSelf = "OWN_TEAM_MEMBERS_INCLUDING_SELF"
	ParticipantNone                        = "NONE"

	// GeneralRecipient is the recipient identifier of questions about nobody in particular.
	GeneralRecipient = "%GENERAL%"
)

// Submit targets.
const (
	SubmitActionSave       = "/submission/save"
	SubmitActionModeration = "/moderation/save"
)

type (
	Session struct {
		CourseID         string        `json:"course_id"`
		Name             string        `json:"name"`
		Instructions     string        `json:"instructions"`
		StartTime        time.Time     `json:"start_time"` // UTC
		EndTime          time.Time     `json:"end_time"`   // UTC
		GracePeriod      time.Duration `json:"grace_period"`
		IsPublished      bool          `json:"is_published"`
		IsClosingEmailed bool          `json:"-"`
	}

	Question struct {
		ID                               string          `json:"id"`
		CourseID                         string          `json:"course_id"`
		SessionName                      string          `json:"session_name"`
		Number                           int             `json:"number"`
		Text                             string          `json:"text"`
		GiverType                        string          `json:"giver_type"`
		RecipientType                    string          `json:"recipient_type"`
		NumberOfEntitiesToGiveFeedbackTo int             `json:"number_of_entities"`
		IsCompulsory                     bool            `json:"is_compulsory"`
		Details                          QuestionDetails `json:"-"`
	}

	// QuestionDetails renders the answer form of a question type. Implementations must return
	// markup that is safe to embed as-is.
	QuestionDetails interface {
		QuestionType() string
		ExistingResponseForm(params FormParams, answer string) template.HTML
		EmptyResponseForm(params FormParams) template.HTML
	}

	FormParams struct {
		IsSessionOpen  bool
		QuestionNumber int
		SlotIndex      int
		CourseID       string
		SlotCount      int
		IsCompulsory   bool
	}

	RecipientCandidate struct {
		Identifier string `json:"identifier"`
		Name       string `json:"name"`
	}

	Response struct {
		ID         string `json:"id"` // empty when not persisted yet
		QuestionID string `json:"question_id"`
		Giver      string `json:"giver"`
		Recipient  string `json:"recipient"`
		Answer     string `json:"answer"`
	}

	RecipientOption struct {
		Value    string `json:"value"` // HTML-encoded
		Label    string `json:"label"` // HTML-encoded
		Selected bool   `json:"selected"`
	}

	ResponseSlot struct {
		Index               int               `json:"index"`
		HasExistingResponse bool              `json:"has_existing_response"`
		RecipientOptions    []RecipientOption `json:"recipient_options"`
		FormHTML            template.HTML     `json:"form_html"`
		ResponseID          string            `json:"response_id,omitempty"`
	}

	QuestionBundle struct {
		Question             Question       `json:"question"`
		DisplayNumber        int            `json:"display_number"`
		IsModerated          bool           `json:"is_moderated"`
		Slots                []ResponseSlot `json:"slots"`
		SlotCount            int            `json:"slot_count"`
		MaxResponsesPossible int            `json:"max_responses_possible"`
	}

	SubmissionBundle struct {
		Session                    Session          `json:"session"`
		Questions                  []QuestionBundle `json:"questions"`
		IsSessionOpenForSubmission bool             `json:"is_session_open_for_submission"`
		IsPreview                  bool             `json:"is_preview"`
		IsModeration               bool             `json:"is_moderation"`
		IsHeaderHidden             bool             `json:"is_header_hidden"`
		IsShowRealQuestionNumber   bool             `json:"is_show_real_question_number"`
		ModeratedQuestionID        string           `json:"moderated_question_id,omitempty"`
		RegisterMessage            string           `json:"register_message,omitempty"`
	}
)

// IsOpenAt reports whether responses can be submitted at `t`, grace period included.
func (s Session) IsOpenAt(t time.Time) bool {
	if s.StartTime.IsZero() || t.Before(s.StartTime) {
		return false
	}
	return s.EndTime.IsZero() || !t.After(s.EndTime.Add(s.GracePeriod))
}

func (q Question) IsGeneral() bool {
	return q.RecipientType == ParticipantNone
}

// HTML renders the option as an `<option>` element.
func (o RecipientOption) HTML() template.HTML {
	var b strings.Builder
	b.WriteString(`<option value="` + o.Value + `"`)
	if o.Selected {
		b.WriteString(" selected")
	}
	b.WriteString(">" + o.Label + "</option>")
	return template.HTML(b.String()) // nolint:gosec // value & label are encoded
}

func (s ResponseSlot) SelectedRecipient() (string, bool) {
	for _, opt := range s.RecipientOptions {
		if opt.Selected {
			return sanitize.Recover(opt.Value), opt.Value != ""
		}
	}
	return "", false
}

// IsSubmittable reports whether the form accepts submissions: the session is open, or an instructor moderates.
func (b SubmissionBundle) IsSubmittable() bool {
	return b.IsSessionOpenForSubmission || b.IsModeration
}

func (b SubmissionBundle) SubmitTarget() string {
	if b.IsModeration {
		return SubmitActionModeration
	}
	return SubmitActionSave
}

// QuestionNumber returns the number shown to the viewer for `qb`.
func (b SubmissionBundle) QuestionNumber(qb QuestionBundle) int {
	if b.IsShowRealQuestionNumber {
		return qb.Question.Number
	}
	return qb.DisplayNumber
}

func (b SubmissionBundle) String() string {
	return fmt.Sprintf("%s/%s (%d questions)", b.Session.CourseID, b.Session.Name, len(b.Questions))
}
