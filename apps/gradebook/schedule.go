package main

import (
	"github.com/spf13/cobra"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/client/dashboard"
)

func newScheduleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule CLASS_ID",
		Short: "Show the weekly timetable of a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err = a.resume(false); err != nil {
				return err
			}
			if err = a.dash.LoadSchedule(id); err != nil {
				return err
			}
			return renderSchedule(cmd.OutOrStdout(), dashboard.GroupByDay(a.dash.Snapshot().Schedule))
		},
	}
	cmd.AddCommand(newAddScheduleCmd(a))
	return cmd
}

func newAddScheduleCmd(a *app) *cobra.Command {
	in := dashboard.DefaultScheduleInput()
	cmd := &cobra.Command{
		Use:   "add CLASS_ID",
		Short: "Add a lesson to a class's timetable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err = a.resume(true); err != nil {
				return err
			}
			if err = a.dash.SelectClass(id); err != nil {
				return err
			}
			return a.dash.AddScheduleItem(in)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&in.DayOfWeek, "day", in.DayOfWeek, "day of week, 1 (Monday) to 7")
	flags.StringVar(&in.TimeStart, "start", in.TimeStart, "start time, HH:MM")
	flags.StringVar(&in.TimeEnd, "end", in.TimeEnd, "end time, HH:MM")
	flags.StringVar(&in.Room, "room", "", "room")
	flags.StringVar(&in.Subject, "subject", "", "subject name (informational)")
	return cmd
}
