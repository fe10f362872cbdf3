package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/sanitize"
)

// SectionSizeLimit is the maximum number of students in a section.
const SectionSizeLimit = 100

type Student struct {
	Email     string    `json:"email"`
	CourseID  string    `json:"course_id"`
	Name      string    `json:"name"`
	Team      string    `json:"team"`
	Section   string    `json:"section"`
	Comments  string    `json:"comments"`
	GoogleID  string    `json:"-"`
	RegKey    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// IsRegistered reports whether the student has joined the course with an account.
func (s Student) IsRegistered() bool {
	return s.GoogleID != ""
}

// UpdateStudent contains the roster fields an instructor can edit.
type UpdateStudent struct {
	Name      string `json:"name" validate:"required,notblank,max=100,notreserved"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Team      string `json:"team" validate:"required,notblank,max=60,notreserved"`
	Section   string `json:"section" validate:"omitempty,max=60"`
	Comments  string `json:"comments" validate:"omitempty,max=500"`
	SendEmail bool   `json:"send_email"`
}

// Clean sanitizes the editable fields in place.
func (us *UpdateStudent) Clean() {
	us.Name = sanitize.Name(us.Name)
	us.Email = core.CleanString(sanitize.Email(us.Email), true /* lower */)
	us.Team = sanitize.Name(us.Team)
	us.Section = sanitize.Name(us.Section)
	us.Comments = sanitize.TextField(us.Comments)
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Clean()
	return validate.Struct(us)
}

// UpdateResult describes a successful roster edit.
type UpdateResult struct {
	Student      Student `json:"student"`
	EmailChanged bool    `json:"email_changed"`
	EmailSent    bool    `json:"email_sent"`
}
