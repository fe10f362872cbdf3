package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/masomo-feedback/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) find(courseID, email string) (int, bool) {
	for i, st := range repo.db.students {
		if st.CourseID == courseID && st.Email == email {
			return i, true
		}
	}
	return -1, false
}

func (repo *studentRepository) GetStudentByEmail(_ context.Context, courseID, email string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if i, ok := repo.find(courseID, email); ok {
		return *repo.db.students[i], nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByRegKey(_ context.Context, regKey string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, st := range repo.db.students {
		if st.RegKey == regKey {
			return *st, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(_ context.Context, courseID string) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return sortedStudents(repo.db.students, courseID), nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, origEmail string, st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	idx, ok := repo.find(st.CourseID, origEmail)
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if st.Email != origEmail {
		if _, taken := repo.find(st.CourseID, st.Email); taken {
			return student.Student{}, student.ErrEmailExists
		}
		for _, r := range repo.db.responses {
			if r.CourseID != st.CourseID {
				continue
			}
			if r.Giver == origEmail {
				r.Giver = st.Email
			}
			if r.Recipient == origEmail {
				r.Recipient = st.Email
			}
		}
	}

	// only editable fields are saved
	orig := repo.db.students[idx]
	orig.Email = st.Email
	orig.Name = st.Name
	orig.Team = st.Team
	orig.Section = st.Section
	orig.Comments = st.Comments
	orig.UpdatedAt = st.UpdatedAt
	return *orig, nil
}

// sortedStudents returns the students of a course ordered by section, team, name then email.
func sortedStudents(students []*student.Student, courseID string) []student.Student {
	res := make([]student.Student, 0)
	for _, st := range students {
		if st.CourseID == courseID {
			res = append(res, *st)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		a, b := res[i], res[j]
		switch {
		case a.Section != b.Section:
			return a.Section < b.Section
		case a.Team != b.Team:
			return a.Team < b.Team
		case a.Name != b.Name:
			return a.Name < b.Name
		default:
			return a.Email < b.Email
		}
	})
	return res
}
