package inmemdb

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/masomo-feedback/core/feedback"
	"github.com/trezcool/masomo-feedback/core/student"
)

type (
	DB struct {
		mutex       sync.RWMutex
		sessions    map[string]*feedback.Session // {courseID/name: Session}
		questions   []*feedback.Question
		students    []*student.Student
		instructors []*instructor
		responses   []*response
	}

	instructor struct {
		CourseID string
		feedback.RosterInstructor
	}

	response struct {
		CourseID    string
		SessionName string
		CreatedAt   time.Time
		feedback.Response
	}
)

func Open() *DB {
	return &DB{sessions: make(map[string]*feedback.Session)}
}

func sessionKey(courseID, name string) string {
	return courseID + "/" + name
}

// CreateSession stores a session, replacing any session with the same course and name.
func (db *DB) CreateSession(sess feedback.Session) feedback.Session {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.sessions[sessionKey(sess.CourseID, sess.Name)] = &sess
	return sess
}

// CreateQuestion stores a question, generating its ID if missing.
func (db *DB) CreateQuestion(q feedback.Question) feedback.Question {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	db.questions = append(db.questions, &q)
	return q
}

// CreateStudent stores a student, generating its registration key if missing.
func (db *DB) CreateStudent(st student.Student) student.Student {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if st.RegKey == "" {
		st.RegKey = uuid.New().String()
	}
	now := time.Now().UTC()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = now
	}
	db.students = append(db.students, &st)
	return st
}

func (db *DB) CreateInstructor(courseID, email, name string) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.instructors = append(db.instructors, &instructor{
		CourseID:         courseID,
		RosterInstructor: feedback.RosterInstructor{Email: email, Name: name},
	})
}

// CreateResponse stores a response to question `q`, generating its ID if missing.
func (db *DB) CreateResponse(q feedback.Question, resp feedback.Response) feedback.Response {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if resp.ID == "" {
		resp.ID = uuid.New().String()
	}
	resp.QuestionID = q.ID
	db.responses = append(db.responses, &response{
		CourseID:    q.CourseID,
		SessionName: q.SessionName,
		CreatedAt:   time.Now().UTC(),
		Response:    resp,
	})
	return resp
}
