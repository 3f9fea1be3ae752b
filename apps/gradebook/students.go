package main

import (
	"github.com/spf13/cobra"
	"github.com/volatiletech/null/v8"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

func newStudentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students",
		Short: "List every student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.resume(true); err != nil {
				return err
			}
			if err := a.dash.LoadStudents(); err != nil {
				return err
			}
			return renderStudents(cmd.OutOrStdout(), a.dash.Snapshot().Students)
		},
	}

	cmd.AddCommand(newAddStudentCmd(a), &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err = a.resume(true); err != nil {
				return err
			}
			if err = a.dash.DeleteStudent(id); err != nil {
				return err
			}
			return renderStudents(cmd.OutOrStdout(), a.dash.Snapshot().Students)
		},
	})
	return cmd
}

func newAddStudentCmd(a *app) *cobra.Command {
	var (
		ns      user.NewStudent
		classID int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.resume(true); err != nil {
				return err
			}
			if classID > 0 {
				ns.ClassID = null.IntFrom(classID)
			}
			if err := a.dash.AddStudent(ns); err != nil {
				return err
			}
			return renderStudents(cmd.OutOrStdout(), a.dash.Snapshot().Students)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&ns.FirstName, "first", "", "first name")
	flags.StringVar(&ns.LastName, "last", "", "last name")
	flags.StringVar(&ns.Email, "email", "", "email, used to log in")
	flags.StringVar(&ns.Password, "password", "", "password (default \""+user.DefaultStudentPassword+"\")")
	flags.IntVar(&classID, "class", 0, "enroll into this class")
	_ = cmd.MarkFlagRequired("first")
	_ = cmd.MarkFlagRequired("last")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
