package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/client/dashboard"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func renderClasses(w io.Writer, classes []school.Class) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tКЛАСС\tУЧЕНИКОВ\tКЛАССНЫЙ РУКОВОДИТЕЛЬ")
	for _, c := range classes {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s %s\n", c.ID, c.Name, c.StudentCount, c.TeacherFirstName, c.TeacherLastName)
	}
	return tw.Flush()
}

func renderStudents(w io.Writer, students []user.Student) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tИМЯ\tEMAIL")
	for _, s := range students {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", s.ID, s.FullName(), s.Email)
	}
	return tw.Flush()
}

func renderGrades(w io.Writer, grades []school.Grade, avg float64, withStudent bool) error {
	tw := newTable(w)
	if withStudent {
		fmt.Fprint(tw, "УЧЕНИК\t")
	}
	fmt.Fprintln(tw, "ДАТА\tПРЕДМЕТ\tОЦЕНКА\tКОММЕНТАРИЙ")
	for _, g := range grades {
		if withStudent {
			fmt.Fprintf(tw, "%s\t", g.StudentName)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d (%s)\t%s\n", g.Date, g.SubjectName, g.Grade, dashboard.GradeTier(g.Grade), g.Comment)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Средний балл: %s\n", dashboard.FormatAverage(avg))
	return err
}

func renderSchedule(w io.Writer, days []dashboard.DaySchedule) error {
	if len(days) == 0 {
		_, err := fmt.Fprintln(w, "Расписание пусто")
		return err
	}
	tw := newTable(w)
	for _, day := range days {
		fmt.Fprintf(tw, "%s\n", day.Name)
		for _, it := range day.Items {
			fmt.Fprintf(tw, "\t%s-%s\t%s\t%s\n", dashboard.ClockHM(it.TimeStart), dashboard.ClockHM(it.TimeEnd), it.SubjectName, it.Room)
		}
	}
	return tw.Flush()
}
