package main

import (
	"github.com/spf13/cobra"
)

func newClassesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List your classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.resume(true); err != nil {
				return err
			}
			if err := a.dash.LoadClasses(); err != nil {
				return err
			}
			return renderClasses(cmd.OutOrStdout(), a.dash.Snapshot().Classes)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add NAME",
			Short: "Create a class",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := a.resume(true); err != nil {
					return err
				}
				if err := a.dash.AddClass(args[0]); err != nil {
					return err
				}
				return renderClasses(cmd.OutOrStdout(), a.dash.Snapshot().Classes)
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a class with its schedule",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if _, err = a.resume(true); err != nil {
					return err
				}
				if err = a.dash.DeleteClass(id); err != nil {
					return err
				}
				return renderClasses(cmd.OutOrStdout(), a.dash.Snapshot().Classes)
			},
		},
	)
	return cmd
}
