package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/storage/database"
	sqlxrepos "github.com/pr-poehali-dev/elektronnyy-zhurnal-1/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)

	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	// start CLI
	cli := commandLine{
		db:       db.DB,
		usrSvc:   user.NewService(sqlxrepos.NewUserRepository(db)),
		validate: validate,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
