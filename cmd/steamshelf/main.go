package main

import (
	"log/slog"
	"os"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := Execute(logger); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
