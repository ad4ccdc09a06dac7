package main

import (
	"log"
	"os"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/validation"
	"github.com/tupad/organizador/storage/database"
	"github.com/tupad/organizador/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	errAndDie(database.SetupGoose(conf.Database.Engine))

	validate, _ := validation.New()

	// start CLI
	cli := commandLine{
		db:       db.DB,
		engine:   conf.Database.Engine,
		usrRepo:  sqlxrepos.NewUsuarioRepository(db, conf.Database.Engine),
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
