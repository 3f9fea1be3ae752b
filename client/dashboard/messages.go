package dashboard

import (
	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/pkg/errors"
)

// Message keys
const (
	MsgLoginSuccess         = "login.success"
	MsgLoginWelcome         = "login.welcome" // {0}: first name
	MsgLoginFailed          = "login.failed"
	MsgLoginUnreachable     = "login.unreachable"
	MsgError                = "error"
	MsgClassCreated         = "class.created"
	MsgClassCreatedDesc     = "class.created.desc"
	MsgClassCreateFailed    = "class.create.failed"
	MsgClassDeleted         = "class.deleted"
	MsgClassDeletedDesc     = "class.deleted.desc"
	MsgClassDeleteFailed    = "class.delete.failed"
	MsgStudentCreated       = "student.created"
	MsgStudentCreatedDesc   = "student.created.desc"
	MsgStudentCreateFailed  = "student.create.failed"
	MsgStudentDeleted       = "student.deleted"
	MsgStudentDeletedDesc   = "student.deleted.desc"
	MsgStudentDeleteFailed  = "student.delete.failed"
	MsgGradeCreated         = "grade.created"
	MsgGradeCreatedDesc     = "grade.created.desc"
	MsgGradeCreateFailed    = "grade.create.failed"
	MsgScheduleCreated      = "schedule.created"
	MsgScheduleCreatedDesc  = "schedule.created.desc"
	MsgScheduleCreateFailed = "schedule.create.failed"
)

var catalog = map[string]map[string]string{
	"ru": {
		MsgLoginSuccess:         "Успешный вход",
		MsgLoginWelcome:         "Добро пожаловать, {0}!",
		MsgLoginFailed:          "Ошибка входа",
		MsgLoginUnreachable:     "Не удалось войти",
		MsgError:                "Ошибка",
		MsgClassCreated:         "Класс создан",
		MsgClassCreatedDesc:     "Новый класс успешно добавлен",
		MsgClassCreateFailed:    "Не удалось создать класс",
		MsgClassDeleted:         "Класс удален",
		MsgClassDeletedDesc:     "Класс успешно удален",
		MsgClassDeleteFailed:    "Не удалось удалить класс",
		MsgStudentCreated:       "Ученик добавлен",
		MsgStudentCreatedDesc:   "Новый ученик успешно создан",
		MsgStudentCreateFailed:  "Не удалось добавить ученика",
		MsgStudentDeleted:       "Ученик удален",
		MsgStudentDeletedDesc:   "Ученик успешно удален",
		MsgStudentDeleteFailed:  "Не удалось удалить ученика",
		MsgGradeCreated:         "Оценка добавлена",
		MsgGradeCreatedDesc:     "Оценка успешно выставлена",
		MsgGradeCreateFailed:    "Не удалось добавить оценку",
		MsgScheduleCreated:      "Расписание добавлено",
		MsgScheduleCreatedDesc:  "Урок успешно добавлен в расписание",
		MsgScheduleCreateFailed: "Не удалось добавить расписание",
	},
	"en": {
		MsgLoginSuccess:         "Signed in",
		MsgLoginWelcome:         "Welcome, {0}!",
		MsgLoginFailed:          "Sign-in error",
		MsgLoginUnreachable:     "Could not sign in",
		MsgError:                "Error",
		MsgClassCreated:         "Class created",
		MsgClassCreatedDesc:     "The new class was added",
		MsgClassCreateFailed:    "Could not create the class",
		MsgClassDeleted:         "Class deleted",
		MsgClassDeletedDesc:     "The class was deleted",
		MsgClassDeleteFailed:    "Could not delete the class",
		MsgStudentCreated:       "Student added",
		MsgStudentCreatedDesc:   "The new student was created",
		MsgStudentCreateFailed:  "Could not add the student",
		MsgStudentDeleted:       "Student deleted",
		MsgStudentDeletedDesc:   "The student was deleted",
		MsgStudentDeleteFailed:  "Could not delete the student",
		MsgGradeCreated:         "Grade added",
		MsgGradeCreatedDesc:     "The grade was recorded",
		MsgGradeCreateFailed:    "Could not add the grade",
		MsgScheduleCreated:      "Schedule updated",
		MsgScheduleCreatedDesc:  "The lesson was added to the schedule",
		MsgScheduleCreateFailed: "Could not add the lesson",
	},
}

// Messages renders user-facing notices in one locale.
type Messages struct {
	trans ut.Translator
}

// NewMessages returns the messages of locale ("ru" or "en"); unknown locales fall back to Russian.
func NewMessages(locale string) (*Messages, error) {
	_ru := ru.New()
	uni := ut.New(_ru, _ru, en.New())

	for _, l := range []locales.Translator{_ru, en.New()} {
		trans, _ := uni.GetTranslator(l.Locale())
		for key, text := range catalog[l.Locale()] {
			if err := trans.Add(key, text, false); err != nil {
				return nil, errors.Wrapf(err, "adding %s translation %q", l.Locale(), key)
			}
		}
	}

	trans, _ := uni.GetTranslator(locale) // falls back to ru
	return &Messages{trans: trans}, nil
}

func (m *Messages) Locale() string {
	return m.trans.Locale()
}

// Text returns the message of key, or the key itself when it is unknown.
func (m *Messages) Text(key string, params ...string) string {
	s, err := m.trans.T(key, params...)
	if err != nil {
		return key
	}
	return s
}
