package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/student"
)

const uniqueViolation = "23505"

var studentsOrdering = []core.DBOrdering{
	{Field: "section", Ascending: true},
	{Field: "team", Ascending: true},
	{Field: "name", Ascending: true},
	{Field: "email", Ascending: true},
}

type studentRow struct {
	CourseID  string      `db:"course_id"`
	Email     string      `db:"email"`
	Name      string      `db:"name"`
	Team      string      `db:"team"`
	Section   string      `db:"section"`
	Comments  string      `db:"comments"`
	GoogleID  null.String `db:"google_id"`
	RegKey    string      `db:"reg_key"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

const studentColumns = `course_id, email, name, team, section, comments, google_id, reg_key, created_at, updated_at`

func (r studentRow) toStudent() student.Student {
	return student.Student{
		Email:     r.Email,
		CourseID:  r.CourseID,
		Name:      r.Name,
		Team:      r.Team,
		Section:   r.Section,
		Comments:  r.Comments,
		GoogleID:  r.GoogleID.String,
		RegKey:    r.RegKey,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db core.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db core.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) GetStudentByEmail(ctx context.Context, courseID, email string) (student.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT `+studentColumns+` FROM students WHERE course_id = $1 AND email = $2`,
		courseID, email,
	)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound)
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) GetStudentByRegKey(ctx context.Context, regKey string) (student.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+studentColumns+` FROM students WHERE reg_key = $1`, regKey)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound)
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, courseID string) ([]student.Student, error) {
	rows := make([]studentRow, 0)
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+studentColumns+` FROM students WHERE course_id = $1 ORDER BY `+orderBy(studentsOrdering),
		courseID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toStudent())
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, origEmail string, st student.Student) (student.Student, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "beginning transaction")
	}
	updated, err := updateStudent(ctx, tx, origEmail, st)
	if err != nil {
		_ = tx.Rollback()
		return student.Student{}, err
	}
	if err = tx.Commit(); err != nil {
		return student.Student{}, errors.Wrap(err, "committing transaction")
	}
	return updated, nil
}

func updateStudent(ctx context.Context, tx core.DBTransactor, origEmail string, st student.Student) (student.Student, error) {
	var row studentRow
	err := tx.GetContext(ctx, &row, `
		UPDATE students SET email = $3, name = $4, team = $5, section = $6, comments = $7, updated_at = $8
		WHERE course_id = $1 AND email = $2
		RETURNING `+studentColumns,
		st.CourseID, origEmail, st.Email, st.Name, st.Team, st.Section, st.Comments, st.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return student.Student{}, student.ErrEmailExists
		}
		return student.Student{}, errors.Wrap(trapNoRowsErr(err, student.ErrNotFound), "updating student")
	}

	if st.Email != origEmail {
		// responses reference participants by email
		for _, col := range []string{"giver", "recipient"} {
			_, err = tx.ExecContext(ctx,
				`UPDATE responses SET `+col+` = $1 WHERE course_id = $2 AND `+col+` = $3`,
				st.Email, st.CourseID, origEmail,
			)
			if err != nil {
				return student.Student{}, errors.Wrapf(err, "updating responses %s", col)
			}
		}
	}
	return row.toStudent(), nil
}

func orderBy(orderings []core.DBOrdering) string {
	clauses := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		clauses = append(clauses, ord.String())
	}
	return strings.Join(clauses, ", ")
}
