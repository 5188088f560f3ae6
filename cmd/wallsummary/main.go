// Command wallsummary prints per-player incident counts from stored
// wallscan detections.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/OCAP2/wallscan/internal/config"
	"github.com/OCAP2/wallscan/internal/logging"
	"github.com/OCAP2/wallscan/internal/roster"
	"github.com/OCAP2/wallscan/internal/storage"
	"github.com/OCAP2/wallscan/internal/storage/factory"
	"github.com/OCAP2/wallscan/internal/summary"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

const name = "wallsummary"

var flagKeys = map[string]string{
	"storage.type":            "storage",
	"storage.json.outputPath": "in",
	"storage.sqlite.path":     "db",
	"logLevel":                "log-level",
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "config file (default ./"+config.DefaultConfigName+")")
	flags.String("storage", "", "storage backend: json, sqlite or postgres")
	flags.StringP("in", "i", "", "results file of the json storage backend")
	flags.String("db", "", "database file of the sqlite storage backend")
	flags.String("log-level", "", "TRACE, DEBUG, INFO, WARN or ERROR")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := config.Load(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := config.BindFlags(flags, flagKeys); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// stdout carries the report, so logs go to stderr only
	logs, err := logging.Setup(logging.Options{
		Level:   config.GetString("logLevel"),
		Name:    name,
		Console: os.Stderr,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logs.Close()
	log := logs.Logger

	if err := summarize(log); err != nil {
		if errors.Is(err, storage.ErrNoData) {
			log.Error().Err(err).Msg("Nothing to summarize")
		} else {
			log.Error().Err(err).Msg("Summary failed")
		}
		return 1
	}
	return 0
}

func summarize(log zerolog.Logger) error {
	rosterCfg := config.GetRosterConfig()
	r, err := roster.New(rosterCfg.TeamOne, rosterCfg.TeamTwo)
	if err != nil {
		return fmt.Errorf("invalid roster: %w", err)
	}

	backend, err := factory.NewBackend(config.GetStorageConfig(), log)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer backend.Close()

	set, err := backend.Load()
	if err != nil {
		return err
	}
	return summary.Summarize(set, r).Write(os.Stdout)
}
