package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/client"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/client/dashboard"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/client/session"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
	logsvc "github.com/pr-poehali-dev/elektronnyy-zhurnal-1/services/logger"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errNotLoggedIn = errors.New("not logged in: run `gradebook login EMAIL` first")
)

// app wires a dashboard to the configured server and session file.
type app struct {
	conf    *core.Config
	out     io.Writer
	errOut  io.Writer
	verbose bool

	dash *dashboard.Dashboard
}

func newApp(conf *core.Config, out, errOut io.Writer) *app {
	return &app{conf: conf, out: out, errOut: errOut}
}

func (a *app) init() error {
	logOut := io.Discard
	if a.verbose || a.conf.Debug {
		logOut = a.errOut
	}
	logger := logsvc.NewRollbarLogger(log.New(logOut, "GRADEBOOK : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), a.conf)

	msgs, err := dashboard.NewMessages(a.conf.Locale)
	if err != nil {
		return err
	}

	a.dash = dashboard.New(dashboard.Deps{
		API:         client.New(a.conf.Client),
		Session:     session.NewManager(session.NewFileStorage(a.conf.Client.SessionFile), logger),
		Notifier:    dashboard.NotifierFunc(a.notify),
		Messages:    msgs,
		Logger:      logger,
		FanOutLimit: a.conf.Client.FanOutLimit,
	})
	return nil
}

func (a *app) notify(n dashboard.Notice) {
	w := a.out
	if n.Destructive {
		w = a.errOut
	}
	fmt.Fprintf(w, "%s: %s\n", n.Title, n.Description)
}

// resume adopts the stored session and checks its role.
func (a *app) resume(teacherOnly bool) (user.User, error) {
	ok, err := a.dash.Resume()
	if err != nil {
		return user.User{}, err
	}
	if !ok {
		return user.User{}, errNotLoggedIn
	}
	usr := a.dash.Snapshot().User
	if teacherOnly && !usr.IsTeacher() {
		return user.User{}, dashboard.ErrTeacherOnly
	}
	return usr, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "gradebook",
		Short:         "Terminal client of the electronic gradebook",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "print logs to stderr")
	flags.StringVar(&a.conf.Client.BaseURL, "base-url", a.conf.Client.BaseURL, "base URL of the gradebook API")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newClassesCmd(a),
		newStudentsCmd(a),
		newGradesCmd(a),
		newScheduleCmd(a),
	)
	return root
}

func promptPassword(w io.Writer) (string, error) {
	fmt.Fprint(w, "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid id %q", s)
	}
	return id, nil
}
