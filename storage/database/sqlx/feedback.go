package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/feedback"
	"github.com/trezcool/masomo-feedback/core/feedback/questions"
)

var questionsOrdering = []core.DBOrdering{{Field: "number", Ascending: true}, {Field: "id", Ascending: true}}

type (
	sessionRow struct {
		CourseID        string    `db:"course_id"`
		Name            string    `db:"name"`
		Instructions    string    `db:"instructions"`
		StartTime       null.Time `db:"start_time"`
		EndTime         null.Time `db:"end_time"`
		GracePeriodSecs int       `db:"grace_period_secs"`
		IsPublished     bool      `db:"is_published"`
	}

	questionRow struct {
		ID               string    `db:"id"`
		CourseID         string    `db:"course_id"`
		SessionName      string    `db:"session_name"`
		Number           int       `db:"number"`
		Text             string    `db:"text"`
		GiverType        string    `db:"giver_type"`
		RecipientType    string    `db:"recipient_type"`
		NumberOfEntities int       `db:"number_of_entities"`
		IsCompulsory     bool      `db:"is_compulsory"`
		QuestionType     string    `db:"question_type"`
		Details          null.JSON `db:"details"`
	}

	rosterStudentRow struct {
		Email    string      `db:"email"`
		Name     string      `db:"name"`
		Team     string      `db:"team"`
		GoogleID null.String `db:"google_id"`
		RegKey   string      `db:"reg_key"`
	}

	instructorRow struct {
		Email string `db:"email"`
		Name  string `db:"name"`
	}

	responseRow struct {
		ID         string `db:"id"`
		QuestionID string `db:"question_id"`
		Giver      string `db:"giver"`
		Recipient  string `db:"recipient"`
		Answer     string `db:"answer"`
	}
)

func (r sessionRow) toSession() feedback.Session {
	return feedback.Session{
		CourseID:     r.CourseID,
		Name:         r.Name,
		Instructions: r.Instructions,
		StartTime:    r.StartTime.Time.UTC(),
		EndTime:      r.EndTime.Time.UTC(),
		GracePeriod:  time.Duration(r.GracePeriodSecs) * time.Second,
		IsPublished:  r.IsPublished,
	}
}

func (r questionRow) toQuestion() (feedback.Question, error) {
	var raw json.RawMessage
	if r.Details.Valid {
		raw = json.RawMessage(r.Details.JSON)
	}
	details, err := questions.Parse(r.QuestionType, raw)
	if err != nil {
		return feedback.Question{}, errors.Wrapf(err, "parsing details of question %s", r.ID)
	}
	return feedback.Question{
		ID:                               r.ID,
		CourseID:                         r.CourseID,
		SessionName:                      r.SessionName,
		Number:                           r.Number,
		Text:                             r.Text,
		GiverType:                        r.GiverType,
		RecipientType:                    r.RecipientType,
		NumberOfEntitiesToGiveFeedbackTo: r.NumberOfEntities,
		IsCompulsory:                     r.IsCompulsory,
		Details:                          details,
	}, nil
}

type feedbackRepository struct {
	db core.DB
}

var _ feedback.Repository = (*feedbackRepository)(nil)

func NewFeedbackRepository(db core.DB) *feedbackRepository {
	return &feedbackRepository{db: db}
}

func (repo *feedbackRepository) GetSession(ctx context.Context, courseID, sessionName string) (feedback.Session, error) {
	var row sessionRow
	err := repo.db.GetContext(ctx, &row, `
		SELECT course_id, name, instructions, start_time, end_time, grace_period_secs, is_published
		FROM sessions WHERE course_id = $1 AND name = $2`,
		courseID, sessionName,
	)
	if err != nil {
		return feedback.Session{}, trapNoRowsErr(err, feedback.ErrSessionNotFound)
	}
	return row.toSession(), nil
}

func (repo *feedbackRepository) QueryQuestions(ctx context.Context, courseID, sessionName string) ([]feedback.Question, error) {
	rows := make([]questionRow, 0)
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT id, course_id, session_name, number, text, giver_type, recipient_type,
		       number_of_entities, is_compulsory, question_type, details
		FROM questions WHERE course_id = $1 AND session_name = $2
		ORDER BY `+orderBy(questionsOrdering),
		courseID, sessionName,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting questions")
	}

	qs := make([]feedback.Question, 0, len(rows))
	for _, row := range rows {
		q, err := row.toQuestion()
		if err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	return qs, nil
}

func (repo *feedbackRepository) GetRoster(ctx context.Context, courseID string) (feedback.Roster, error) {
	studentRows := make([]rosterStudentRow, 0)
	err := repo.db.SelectContext(ctx, &studentRows, `
		SELECT email, name, team, google_id, reg_key FROM students
		WHERE course_id = $1 ORDER BY `+orderBy(studentsOrdering),
		courseID,
	)
	if err != nil {
		return feedback.Roster{}, errors.Wrap(err, "selecting students")
	}

	instructorRows := make([]instructorRow, 0)
	err = repo.db.SelectContext(ctx, &instructorRows,
		`SELECT email, name FROM instructors WHERE course_id = $1 ORDER BY name, email`,
		courseID,
	)
	if err != nil {
		return feedback.Roster{}, errors.Wrap(err, "selecting instructors")
	}

	roster := feedback.Roster{
		Students:    make([]feedback.RosterStudent, 0, len(studentRows)),
		Instructors: make([]feedback.RosterInstructor, 0, len(instructorRows)),
	}
	for _, r := range studentRows {
		roster.Students = append(roster.Students, feedback.RosterStudent{
			Email: r.Email, Name: r.Name, Team: r.Team, GoogleID: r.GoogleID.String, RegKey: r.RegKey,
		})
	}
	for _, r := range instructorRows {
		roster.Instructors = append(roster.Instructors, feedback.RosterInstructor{Email: r.Email, Name: r.Name})
	}
	return roster, nil
}

func (repo *feedbackRepository) QueryResponsesByGivers(
	ctx context.Context,
	courseID, sessionName string,
	givers ...string,
) ([]feedback.Response, error) {
	if len(givers) == 0 {
		return []feedback.Response{}, nil
	}
	query, args, err := sqlx.In(`
		SELECT id, question_id, giver, recipient, answer FROM responses
		WHERE course_id = ? AND session_name = ? AND giver IN (?)
		ORDER BY created_at, id`,
		courseID, sessionName, givers,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building responses query")
	}

	rows := make([]responseRow, 0)
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "selecting responses")
	}

	resps := make([]feedback.Response, 0, len(rows))
	for _, r := range rows {
		resps = append(resps, feedback.Response{
			ID: r.ID, QuestionID: r.QuestionID, Giver: r.Giver, Recipient: r.Recipient, Answer: r.Answer,
		})
	}
	return resps, nil
}

func trapNoRowsErr(err, notFoundErr error) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFoundErr
	}
	return err
}
