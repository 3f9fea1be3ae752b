package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) school.Repository {
	return &schoolRepository{db: db}
}

// classRow maps the LEFT JOIN on the teacher, whose columns are null once the teacher is gone.
type classRow struct {
	ID               int         `db:"id"`
	Name             string      `db:"name"`
	TeacherID        null.Int    `db:"teacher_id"`
	TeacherFirstName null.String `db:"teacher_first_name"`
	TeacherLastName  null.String `db:"teacher_last_name"`
	StudentCount     int         `db:"student_count"`
}

func (r classRow) toClass() school.Class {
	return school.Class{
		ID:               r.ID,
		Name:             r.Name,
		TeacherID:        r.TeacherID.Int,
		TeacherFirstName: r.TeacherFirstName.String,
		TeacherLastName:  r.TeacherLastName.String,
		StudentCount:     r.StudentCount,
	}
}

const selectClass = `
	SELECT c.id, c.name, c.teacher_id,
		u.first_name AS teacher_first_name,
		u.last_name AS teacher_last_name,
		(SELECT COUNT(*) FROM class_students cs WHERE cs.class_id = c.id) AS student_count
	FROM classes c
	LEFT JOIN users u ON c.teacher_id = u.id`

func (repo *schoolRepository) QueryClasses(ctx context.Context, teacherID null.Int) ([]school.Class, error) {
	var rows []classRow
	var err error
	if teacherID.Valid {
		err = repo.db.SelectContext(ctx, &rows, selectClass+" WHERE c.teacher_id = $1 ORDER BY c.id", teacherID.Int)
	} else {
		err = repo.db.SelectContext(ctx, &rows, selectClass+" ORDER BY c.id")
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting classes")
	}

	classes := make([]school.Class, len(rows))
	for i, r := range rows {
		classes[i] = r.toClass()
	}
	return classes, nil
}

func (repo *schoolRepository) GetClass(ctx context.Context, id int) (school.Class, error) {
	var row classRow
	if err := repo.db.GetContext(ctx, &row, selectClass+" WHERE c.id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return school.Class{}, school.ErrClassNotFound
		}
		return school.Class{}, errors.Wrap(err, "selecting class")
	}
	return row.toClass(), nil
}

func (repo *schoolRepository) CreateClass(ctx context.Context, nc school.NewClass) (int, error) {
	var id int
	err := repo.db.GetContext(ctx, &id, `INSERT INTO classes (name, teacher_id) VALUES ($1, $2) RETURNING id`, nc.Name, nc.TeacherID)
	if err != nil {
		return 0, errors.Wrap(err, "inserting class")
	}
	return id, nil
}

// DeleteClass is idempotent: deleting a missing class is not an error.
func (repo *schoolRepository) DeleteClass(ctx context.Context, id int) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return nil
}

func (repo *schoolRepository) GetSubject(ctx context.Context, id int) (school.Subject, error) {
	var subject school.Subject
	if err := repo.db.GetContext(ctx, &subject, `SELECT id, name FROM subjects WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return school.Subject{}, school.ErrSubjectNotFound
		}
		return school.Subject{}, errors.Wrap(err, "selecting subject")
	}
	return subject, nil
}

func (repo *schoolRepository) StudentExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND role = $2)`, id, user.RoleStudent)
	if err != nil {
		return false, errors.Wrap(err, "selecting student")
	}
	return exists, nil
}

func (repo *schoolRepository) QueryGrades(ctx context.Context, studentID int) ([]school.Grade, error) {
	grades := make([]school.Grade, 0)
	err := repo.db.SelectContext(ctx, &grades, `
		SELECT g.id, g.grade, to_char(g.date, 'YYYY-MM-DD') AS date, g.comment, s.name AS subject_name
		FROM grades g
		JOIN subjects s ON g.subject_id = s.id
		WHERE g.student_id = $1
		ORDER BY g.date DESC, g.id DESC`,
		studentID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting grades")
	}
	return grades, nil
}

func (repo *schoolRepository) CreateGrade(ctx context.Context, ng school.NewGrade) (int, error) {
	var id int
	err := repo.db.GetContext(ctx, &id, `
		INSERT INTO grades (student_id, subject_id, grade, date, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		ng.StudentID, ng.SubjectID, ng.Grade, ng.Date, ng.Comment,
	)
	if err != nil {
		return 0, errors.Wrap(err, "inserting grade")
	}
	return id, nil
}

func (repo *schoolRepository) QuerySchedule(ctx context.Context, classID int) ([]school.ScheduleItem, error) {
	items := make([]school.ScheduleItem, 0)
	err := repo.db.SelectContext(ctx, &items, `
		SELECT sc.id, sc.day_of_week,
			to_char(sc.time_start, 'HH24:MI:SS') AS time_start,
			to_char(sc.time_end, 'HH24:MI:SS') AS time_end,
			sc.room, s.name AS subject_name
		FROM schedule sc
		JOIN subjects s ON sc.subject_id = s.id
		WHERE sc.class_id = $1
		ORDER BY sc.day_of_week, sc.time_start, sc.id`,
		classID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting schedule")
	}
	return items, nil
}

func (repo *schoolRepository) CreateScheduleItem(ctx context.Context, ns school.NewScheduleItem) (int, error) {
	var id int
	err := repo.db.GetContext(ctx, &id, `
		INSERT INTO schedule (class_id, subject_id, day_of_week, time_start, time_end, room)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		ns.ClassID, ns.SubjectID, ns.DayOfWeek, ns.TimeStart, ns.TimeEnd, ns.Room,
	)
	if err != nil {
		return 0, errors.Wrap(err, "inserting schedule item")
	}
	return id, nil
}
