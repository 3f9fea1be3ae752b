// Command gradebook is the terminal client of the electronic gradebook.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := newApp(core.NewConfig(), os.Stdout, os.Stderr)
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
