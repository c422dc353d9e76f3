package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mitchellh/cli"
	"go.uber.org/zap"

	"github.com/revampbot/revampbot/internal/dbviewer"
	"github.com/revampbot/revampbot/internal/storage"
)

func open(path string) (*storage.Storage, error) {
	s := storage.NewStorage(zap.NewNop())
	if err := s.ConnectReadOnly(path); err != nil {
		return nil, err
	}
	return s, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Println("Error: ", err)
	}
	path := os.Getenv("DATABASE_PATH")
	if path == "" {
		path = "revampbot.db"
	}

	v := &dbviewer.Viewer{Out: os.Stdout, Path: path, Open: open}
	app := cli.NewCLI("dbviewer", "1.0")
	app.Args = os.Args[1:]
	if len(app.Args) == 0 {
		app.Args = []string{"tables"}
	}
	app.Commands = v.Commands()

	exitStatus, err := app.Run()
	if err != nil {
		fmt.Println("Error: ", err)
	}

	os.Exit(exitStatus)
}
