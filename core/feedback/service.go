package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/masomo-feedback/core"
)

var (
	// errors
	ErrSessionNotFound = errors.New("feedback session not found")
	ErrGiverNotFound   = errors.New("feedback giver not found in course")
	ErrNotInstructor   = errors.New("only instructors of the course can preview or moderate submissions")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		GetSession(ctx context.Context, courseID, sessionName string) (Session, error)
		// QueryQuestions returns the questions of a session ordered by number.
		QueryQuestions(ctx context.Context, courseID, sessionName string) ([]Question, error)
		GetRoster(ctx context.Context, courseID string) (Roster, error)
		// QueryResponsesByGivers returns the responses given by any of `givers`, in submission order.
		QueryResponsesByGivers(ctx context.Context, courseID, sessionName string, givers ...string) ([]Response, error)
	}

	// SubmissionRequest identifies whose submission form is loaded and how.
	SubmissionRequest struct {
		CourseID    string
		SessionName string

		ViewerEmail  string
		IsInstructor bool
		RegKey       string // unregistered student access

		PreviewAs           string // instructor previewing the form of another participant
		ModeratedStudent    string // instructor editing a student's responses
		ModeratedQuestionID string

		IsHeaderHidden           bool
		IsShowRealQuestionNumber bool
	}

	Service interface {
		LoadSubmission(ctx context.Context, req SubmissionRequest) (SubmissionBundle, error)
	}

	service struct {
		repo     Repository
		composer RegisterMessageComposer
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, conf *core.Config, logger core.Logger) Service {
	return &service{
		repo:     repo,
		composer: NewRegisterMessageComposer(conf.FrontendBaseURL),
		logger:   logger,
	}
}

func (req SubmissionRequest) IsPreview() bool    { return req.PreviewAs != "" }
func (req SubmissionRequest) IsModeration() bool { return req.ModeratedStudent != "" }

// LoadSubmission assembles the submission form of the request's giver from a fresh snapshot of the session.
func (svc *service) LoadSubmission(ctx context.Context, req SubmissionRequest) (SubmissionBundle, error) {
	sess, err := svc.repo.GetSession(ctx, req.CourseID, req.SessionName)
	if err != nil {
		return SubmissionBundle{}, pkgerrors.Wrap(err, "getting session")
	}
	roster, err := svc.repo.GetRoster(ctx, req.CourseID)
	if err != nil {
		return SubmissionBundle{}, pkgerrors.Wrap(err, "getting roster")
	}

	giver, student, err := resolveGiver(roster, req)
	if err != nil {
		return SubmissionBundle{}, err
	}

	allQuestions, err := svc.repo.QueryQuestions(ctx, req.CourseID, req.SessionName)
	if err != nil {
		return SubmissionBundle{}, pkgerrors.Wrap(err, "querying questions")
	}
	questions := make([]Question, 0, len(allQuestions))
	for _, q := range allQuestions {
		if isGiverOf(q, giver) {
			questions = append(questions, q)
		}
	}

	givers := []string{giver.Email}
	if giver.Team != "" {
		givers = append(givers, giver.Team)
	}
	responses, err := svc.repo.QueryResponsesByGivers(ctx, req.CourseID, req.SessionName, givers...)
	if err != nil {
		return SubmissionBundle{}, pkgerrors.Wrap(err, "querying responses")
	}

	data := SessionData{
		Session:    sess,
		Questions:  questions,
		Candidates: make(map[string][]RecipientCandidate, len(questions)),
		Responses:  make(map[string][]Response, len(questions)),
	}
	for _, q := range questions {
		data.Candidates[q.ID] = EligibleRecipients(q, giver, roster)
	}
	for _, resp := range responses {
		if q, ok := findQuestion(questions, resp.QuestionID); ok && resp.Giver == giverIdentifier(q, giver) {
			data.Responses[q.ID] = append(data.Responses[q.ID], resp)
		}
	}

	opts := BundleOptions{
		IsPreview:                req.IsPreview(),
		IsModeration:             req.IsModeration(),
		IsHeaderHidden:           req.IsHeaderHidden,
		IsShowRealQuestionNumber: req.IsShowRealQuestionNumber,
		ModeratedQuestionID:      req.ModeratedQuestionID,
	}
	switch {
	case opts.IsModeration:
		opts.IsSessionOpenForSubmission = true
	case opts.IsPreview:
		opts.IsSessionOpenForSubmission = false
	default:
		opts.IsSessionOpenForSubmission = sess.IsOpenAt(nowFunc().UTC())
		if student != nil && student.GoogleID == "" {
			opts.RegisterMessage = svc.composer.Compose(student.RegKey, student.Email, req.CourseID, student.Name)
		}
	}

	bundle := Assemble(data, opts)
	svc.logger.Debug(fmt.Sprintf("submission assembled for %s: %s", giver.Email, bundle))
	return bundle, nil
}

// resolveGiver finds whose responses are edited. `student` is nil when the giver is an instructor.
func resolveGiver(roster Roster, req SubmissionRequest) (giver Giver, student *RosterStudent, err error) {
	fromStudent := func(s RosterStudent) (Giver, *RosterStudent, error) {
		return Giver{Email: s.Email, Name: s.Name, Team: s.Team}, &s, nil
	}
	fromInstructor := func(i RosterInstructor) (Giver, *RosterStudent, error) {
		return Giver{Email: i.Email, Name: i.Name, IsInstructor: true}, nil, nil
	}
	notFound := func(who string) (Giver, *RosterStudent, error) {
		return Giver{}, nil, pkgerrors.Wrap(ErrGiverNotFound, who)
	}

	if req.IsModeration() || req.IsPreview() {
		if _, ok := roster.InstructorByEmail(req.ViewerEmail); !req.IsInstructor || !ok {
			return Giver{}, nil, ErrNotInstructor
		}
	}

	switch {
	case req.IsModeration():
		if s, ok := roster.StudentByEmail(req.ModeratedStudent); ok {
			return fromStudent(s)
		}
		return notFound(req.ModeratedStudent)
	case req.IsPreview():
		if s, ok := roster.StudentByEmail(req.PreviewAs); ok {
			return fromStudent(s)
		}
		if i, ok := roster.InstructorByEmail(req.PreviewAs); ok {
			return fromInstructor(i)
		}
		return notFound(req.PreviewAs)
	case req.RegKey != "":
		if s, ok := roster.StudentByRegKey(req.RegKey); ok {
			return fromStudent(s)
		}
		return notFound("registration key")
	case req.IsInstructor:
		if i, ok := roster.InstructorByEmail(req.ViewerEmail); ok {
			return fromInstructor(i)
		}
		return notFound(req.ViewerEmail)
	default:
		if s, ok := roster.StudentByEmail(req.ViewerEmail); ok {
			return fromStudent(s)
		}
		return notFound(req.ViewerEmail)
	}
}

func isGiverOf(q Question, giver Giver) bool {
	switch q.GiverType {
	case ParticipantStudents, ParticipantTeams:
		return !giver.IsInstructor
	case ParticipantInstructors, ParticipantSelf:
		return giver.IsInstructor
	default:
		return false
	}
}

func giverIdentifier(q Question, giver Giver) string {
	if q.GiverType == ParticipantTeams {
		return giver.Team
	}
	return giver.Email
}

func findQuestion(questions []Question, id string) (Question, bool) {
	for _, q := range questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
