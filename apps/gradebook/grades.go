package main

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/client/dashboard"
)

// studentRecentGrades is how many grades the student view lists.
const studentRecentGrades = 10

func newGradesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grades [STUDENT_ID]",
		Short: "Show a student's grades; students see their own",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			usr, err := a.resume(false)
			if err != nil {
				return err
			}

			if !usr.IsTeacher() {
				if err = a.dash.LoadStudentData(usr.ID); err != nil {
					return err
				}
				state := a.dash.Snapshot()
				return renderGrades(cmd.OutOrStdout(), dashboard.RecentGrades(state.Grades, studentRecentGrades), state.AverageGrade, false)
			}

			if len(args) == 0 {
				return errors.New("a teacher must name the student: gradebook grades STUDENT_ID")
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err = a.dash.SelectStudent(id); err != nil {
				return err
			}
			state := a.dash.Snapshot()
			return renderGrades(cmd.OutOrStdout(), state.Grades, state.AverageGrade, false)
		},
	}
	cmd.AddCommand(newAddGradeCmd(a), newAllGradesCmd(a))
	return cmd
}

func newAddGradeCmd(a *app) *cobra.Command {
	var in dashboard.NewGradeInput
	cmd := &cobra.Command{
		Use:   "add STUDENT_ID GRADE",
		Short: "Grade a student today",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if in.Grade, err = strconv.Atoi(args[1]); err != nil {
				return errors.Errorf("invalid grade %q", args[1])
			}
			if _, err = a.resume(true); err != nil {
				return err
			}
			if err = a.dash.SelectStudent(id); err != nil {
				return err
			}
			if err = a.dash.AddGrade(in); err != nil {
				return err
			}
			state := a.dash.Snapshot()
			return renderGrades(cmd.OutOrStdout(), state.Grades, state.AverageGrade, false)
		},
	}
	cmd.Flags().StringVar(&in.Comment, "comment", "", "comment shown with the grade")
	cmd.Flags().StringVar(&in.Subject, "subject", "", "subject name (informational)")
	return cmd
}

func newAllGradesCmd(a *app) *cobra.Command {
	var xlsxPath string
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Show the grades of every student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.resume(true); err != nil {
				return err
			}
			if err := a.dash.LoadStudents(); err != nil {
				return err
			}
			if err := a.dash.LoadAllGrades(); err != nil {
				return err
			}
			state := a.dash.Snapshot()

			if xlsxPath != "" {
				return exportGrades(xlsxPath, state)
			}
			return renderGrades(cmd.OutOrStdout(), state.Grades, state.AverageGrade, true)
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the grades to this spreadsheet instead of printing them")
	return cmd
}

func exportGrades(path string, state dashboard.State) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating spreadsheet")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return dashboard.ExportGradesXLSX(f, state.Grades)
}
