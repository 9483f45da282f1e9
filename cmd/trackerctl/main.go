package main

import (
	"fmt"
	"os"

	"github.com/fastygo/tracker/internal/commands"
	"github.com/fastygo/tracker/internal/config"
	"github.com/fastygo/tracker/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: "console",
		Service:  "trackerctl",
		Output:   os.Stderr,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	if err := commands.Execute(cfg, zapLogger); err != nil {
		os.Exit(1)
	}
}
