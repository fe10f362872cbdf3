package student

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	pkgerrors "github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/feedback"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrEmailExists = errors.New("a student with this email already exists in the course")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		GetStudentByEmail(ctx context.Context, courseID, email string) (Student, error)
		GetStudentByRegKey(ctx context.Context, regKey string) (Student, error)
		// QueryStudents returns the students of a course ordered by section, team then name.
		QueryStudents(ctx context.Context, courseID string) ([]Student, error)
		// UpdateStudent replaces the student identified by `origEmail`.
		// A changed email is cascaded to the student's responses; ErrEmailExists is returned on collision.
		UpdateStudent(ctx context.Context, origEmail string, st Student) (Student, error)
	}

	Service interface {
		GetByEmail(ctx context.Context, courseID, email string) (Student, error)
		GetByRegKey(ctx context.Context, regKey string) (Student, error)
		Query(ctx context.Context, courseID string) ([]Student, error)
		UpdateDetails(ctx context.Context, courseID, email string, us UpdateStudent) (UpdateResult, error)
	}

	service struct {
		repo     Repository
		mailSvc  core.EmailService
		validate *validator.Validate
		composer feedback.RegisterMessageComposer
		logger   core.Logger
	}

	courseLinksData struct {
		StudentName string
		CourseID    string
		JoinURL     string
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	mailSvc core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
	logger core.Logger,
) Service {
	return &service{
		repo:     repo,
		mailSvc:  mailSvc,
		validate: validate,
		composer: feedback.NewRegisterMessageComposer(conf.FrontendBaseURL),
		logger:   logger,
	}
}

func (svc *service) GetByEmail(ctx context.Context, courseID, email string) (Student, error) {
	return svc.repo.GetStudentByEmail(ctx, courseID, core.CleanString(email, true /* lower */))
}

func (svc *service) GetByRegKey(ctx context.Context, regKey string) (Student, error) {
	return svc.repo.GetStudentByRegKey(ctx, core.CleanString(regKey))
}

func (svc *service) Query(ctx context.Context, courseID string) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, courseID)
}

// UpdateDetails edits the roster entry of student `email` in course `courseID`.
// When the email changes and us.SendEmail is set, the course links are sent to the new address.
func (svc *service) UpdateDetails(ctx context.Context, courseID, email string, us UpdateStudent) (UpdateResult, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(courseID, "courseID"),
		vala.StringNotEmpty(email, "email"),
	).Check(); err != nil {
		return UpdateResult{}, core.NewValidationError(err)
	}

	orig, err := svc.GetByEmail(ctx, courseID, email)
	if err != nil {
		return UpdateResult{}, pkgerrors.Wrap(err, "finding student")
	}

	if err = us.Validate(svc.validate); err != nil {
		return UpdateResult{}, err
	}

	updated := orig
	updated.Name = us.Name
	updated.Email = us.Email
	updated.Team = us.Team
	updated.Section = us.Section
	updated.Comments = us.Comments
	updated.UpdatedAt = nowFunc().UTC()

	emailChanged := updated.Email != orig.Email
	if updated.Team != orig.Team || updated.Section != orig.Section {
		roster, err := svc.repo.QueryStudents(ctx, courseID)
		if err != nil {
			return UpdateResult{}, pkgerrors.Wrap(err, "querying students")
		}
		if err = validateSectionsAndTeams(roster, orig, updated); err != nil {
			return UpdateResult{}, err
		}
	}

	updated, err = svc.repo.UpdateStudent(ctx, orig.Email, updated)
	if err != nil {
		if pkgerrors.Cause(err) == ErrEmailExists {
			return UpdateResult{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return UpdateResult{}, pkgerrors.Wrap(err, "updating student")
	}

	res := UpdateResult{Student: updated, EmailChanged: emailChanged}
	if emailChanged && us.SendEmail {
		svc.sendCourseLinks(updated)
		res.EmailSent = true
	}

	svc.logger.Info(
		fmt.Sprintf("student %s updated in course [%s]", updated.Email, courseID),
		rosterDiff(orig, updated),
	)
	return res, nil
}

func (svc *service) sendCourseLinks(st Student) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: st.Name, Address: st.Email}},
		Subject:      fmt.Sprintf("Your course links for [%s]", st.CourseID),
		TemplateName: "course_links",
		TemplateData: courseLinksData{
			StudentName: st.Name,
			CourseID:    st.CourseID,
			JoinURL:     svc.composer.JoinURL(st.RegKey, st.Email, st.CourseID),
		},
	})
}

// rosterDiff returns a unified diff of the editable roster fields, for audit logs.
func rosterDiff(orig, updated Student) string {
	lines := func(s Student) []string {
		return difflib.SplitLines(strings.Join([]string{
			"name: " + s.Name,
			"email: " + s.Email,
			"team: " + s.Team,
			"section: " + s.Section,
			"comments: " + strings.ReplaceAll(s.Comments, "\n", `\n`),
		}, "\n") + "\n")
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        lines(orig),
		B:        lines(updated),
		FromFile: "original",
		ToFile:   "updated",
		Context:  0,
	})
	return diff
}
