package main

import (
	"context"
	"fmt"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

// addUser registers a teacher (or student) account.
func (cli *commandLine) addUser(nu user.NewUser) error {
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Printf("created %s %q (id %d)\n", usr.Role, usr.Email, usr.ID)
	return nil
}
