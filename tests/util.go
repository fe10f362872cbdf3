package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/feedback"
	"github.com/trezcool/masomo-feedback/core/feedback/questions"
	"github.com/trezcool/masomo-feedback/core/student"
	"github.com/trezcool/masomo-feedback/storage/database"
	inmemdb "github.com/trezcool/masomo-feedback/storage/database/inmem"
)

// CreateOpenSession creates a published session that opened an hour ago and closes in a day.
func CreateOpenSession(db *inmemdb.DB, courseID, name string) feedback.Session {
	now := time.Now().UTC()
	return db.CreateSession(feedback.Session{
		CourseID:     courseID,
		Name:         name,
		Instructions: "Please answer all questions.",
		StartTime:    now.Add(-time.Hour),
		EndTime:      now.Add(24 * time.Hour),
		IsPublished:  true,
	})
}

// CreateTextQuestion creates a free text question in the session `sess`.
func CreateTextQuestion(
	t *testing.T,
	db *inmemdb.DB,
	sess feedback.Session,
	number int,
	giverType, recipientType string,
	numEntities int,
) feedback.Question {
	details, err := questions.Parse(questions.TypeText, nil)
	if err != nil {
		t.Fatalf("createTextQuestion() failed: %v", err)
	}
	return db.CreateQuestion(feedback.Question{
		CourseID:                         sess.CourseID,
		SessionName:                      sess.Name,
		Number:                           number,
		Text:                             fmt.Sprintf("Question %d", number),
		GiverType:                        giverType,
		RecipientType:                    recipientType,
		NumberOfEntitiesToGiveFeedbackTo: numEntities,
		Details:                          details,
	})
}

func CreateStudent(db *inmemdb.DB, courseID, email, name, team, section string, registered bool) student.Student {
	st := student.Student{
		Email:    email,
		CourseID: courseID,
		Name:     name,
		Team:     team,
		Section:  section,
	}
	if registered {
		st.GoogleID = "google-" + email
	}
	return db.CreateStudent(st)
}

func CreateInstructor(db *inmemdb.DB, courseID, email, name string) {
	db.CreateInstructor(courseID, email, name)
}

func CreateResponse(db *inmemdb.DB, q feedback.Question, giver, recipient, answer string) feedback.Response {
	return db.CreateResponse(q, feedback.Response{Giver: giver, Recipient: recipient, Answer: answer})
}

// OpenTestDB connects to the test database and applies all migrations.
// The test is skipped when TEST_DATABASE_HOST is not set or the database cannot be reached.
func OpenTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if os.Getenv("TEST_DATABASE_HOST") == "" {
		t.Skip("TEST_DATABASE_HOST not set")
	}
	if err := os.Setenv("ENV", "TEST"); err != nil {
		t.Fatalf("openTestDB() failed: %v", err)
	}
	conf, err := core.NewConfig()
	if err != nil {
		t.Fatalf("openTestDB() failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := database.Open(ctx, conf)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	if err = database.Migrate(db.DB); err != nil {
		t.Fatalf("openTestDB() failed: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.Exec(`TRUNCATE responses, questions, sessions, students, instructors`)
		_ = db.Close()
	})
	return db
}
