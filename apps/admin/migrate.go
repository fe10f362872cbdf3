package main

import (
	"github.com/pressly/goose/v3"

	"github.com/trezcool/masomo-feedback/storage/database"
)

var gooseRunFunc = goose.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	return database.RunMigrations(gooseRunFunc, args[0], cli.db, args[1:]...)
}
