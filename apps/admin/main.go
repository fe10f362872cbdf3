package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/feedback"
	"github.com/trezcool/masomo-feedback/core/student"
	emailsvc "github.com/trezcool/masomo-feedback/services/email"
	logsvc "github.com/trezcool/masomo-feedback/services/logger"
	"github.com/trezcool/masomo-feedback/storage/database"
	sqlxrepos "github.com/trezcool/masomo-feedback/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	logger = logsvc.NewStdLogger("ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile, conf)
	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(context.Background(), conf)
	errAndDie(err)
	defer db.Close()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:          db.DB,
		conf:        conf,
		feedbackSvc: feedback.NewService(sqlxrepos.NewFeedbackRepository(db), conf, appLogger),
		studentSvc: student.NewService(
			sqlxrepos.NewStudentRepository(db),
			emailsvc.NewConsoleService(conf, appLogger),
			validate,
			conf,
			appLogger,
		),
		out: os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
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
