package main

import (
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/storage/database"
)

var gooseRunFunc = database.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	return gooseRunFunc(args[0], cli.db, args[1:]...)
}
