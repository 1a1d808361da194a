package main

import (
	"errors"
	"os"

	appLog "schedrecur/internal/log"
	"schedrecur/internal/model"
)

const version = "0.3.0"

func main() {
	a := &app{log: appLog.NewStderr(false)}
	err := a.rootCmd().Execute()
	switch {
	case err == nil:
	case errors.Is(err, model.ErrInputNotFound):
		// Nothing to analyze is not a failure.
		a.log.Warn("no schedule files found", "err", err.Error())
	default:
		a.log.Error("schedrecur failed", err)
		os.Exit(1)
	}
}
