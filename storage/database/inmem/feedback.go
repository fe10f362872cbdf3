package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/masomo-feedback/core/feedback"
)

type feedbackRepository struct {
	db *DB
}

var _ feedback.Repository = (*feedbackRepository)(nil)

func NewFeedbackRepository(db *DB) *feedbackRepository {
	return &feedbackRepository{db: db}
}

func (repo *feedbackRepository) GetSession(_ context.Context, courseID, sessionName string) (feedback.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sess, ok := repo.db.sessions[sessionKey(courseID, sessionName)]; ok {
		return *sess, nil
	}
	return feedback.Session{}, feedback.ErrSessionNotFound
}

func (repo *feedbackRepository) QueryQuestions(_ context.Context, courseID, sessionName string) ([]feedback.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	qs := make([]feedback.Question, 0)
	for _, q := range repo.db.questions {
		if q.CourseID == courseID && q.SessionName == sessionName {
			qs = append(qs, *q)
		}
	}
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].Number < qs[j].Number })
	return qs, nil
}

func (repo *feedbackRepository) GetRoster(_ context.Context, courseID string) (feedback.Roster, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	roster := feedback.Roster{
		Students:    make([]feedback.RosterStudent, 0),
		Instructors: make([]feedback.RosterInstructor, 0),
	}
	for _, st := range sortedStudents(repo.db.students, courseID) {
		roster.Students = append(roster.Students, feedback.RosterStudent{
			Email: st.Email, Name: st.Name, Team: st.Team, GoogleID: st.GoogleID, RegKey: st.RegKey,
		})
	}
	for _, i := range repo.db.instructors {
		if i.CourseID == courseID {
			roster.Instructors = append(roster.Instructors, i.RosterInstructor)
		}
	}
	sort.SliceStable(roster.Instructors, func(i, j int) bool {
		a, b := roster.Instructors[i], roster.Instructors[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Email < b.Email
	})
	return roster, nil
}

func (repo *feedbackRepository) QueryResponsesByGivers(
	_ context.Context,
	courseID, sessionName string,
	givers ...string,
) ([]feedback.Response, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	isGiver := make(map[string]bool, len(givers))
	for _, g := range givers {
		isGiver[g] = true
	}
	resps := make([]feedback.Response, 0)
	for _, r := range repo.db.responses {
		if r.CourseID == courseID && r.SessionName == sessionName && isGiver[r.Giver] {
			resps = append(resps, r.Response)
		}
	}
	return resps, nil
}
