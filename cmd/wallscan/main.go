// Command wallscan scans a Counter-Strike demo for players aiming at
// opponents they cannot see and stores every such tick.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/OCAP2/wallscan/internal/config"
	"github.com/OCAP2/wallscan/internal/detector"
	"github.com/OCAP2/wallscan/internal/geo"
	"github.com/OCAP2/wallscan/internal/influx"
	"github.com/OCAP2/wallscan/internal/logging"
	"github.com/OCAP2/wallscan/internal/replay"
	"github.com/OCAP2/wallscan/internal/roster"
	"github.com/OCAP2/wallscan/internal/storage/factory"
	"github.com/OCAP2/wallscan/pkg/core"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// BuildDate can be set at build time via ldflags
var (
	Version   = "0.0.1"
	BuildDate = "unknown"
)

const name = "wallscan"

// flag name per config key
var flagKeys = map[string]string{
	"storage.type":            "storage",
	"storage.json.outputPath": "out",
	"logLevel":                "log-level",
	"detector.bearingMode":    "bearing",
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	sessionStart := time.Now()

	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "config file (default ./"+config.DefaultConfigName+")")
	flags.String("storage", "", "storage backend: json, memory, sqlite or postgres")
	flags.StringP("out", "o", "", "output file of the json storage backend")
	flags.String("log-level", "", "TRACE, DEBUG, INFO, WARN or ERROR")
	flags.String("bearing", "", "bearing formula: atan2 or legacy")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <demo.dem>\n\n", name)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 2
	}
	demoPath := flags.Arg(0)

	if err := config.Load(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := config.BindFlags(flags, flagKeys); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logs, err := logging.Setup(logging.Options{
		Level:          config.GetString("logLevel"),
		LogsDir:        config.GetString("logsDir"),
		Name:           name,
		SessionStart:   sessionStart,
		GraylogEnabled: config.GetBool("graylog.enabled"),
		GraylogAddress: config.GetString("graylog.address"),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logs.Close()

	log := logs.Logger.With().Str("service", config.GetString("otel.serviceName")).Logger()
	log.Debug().Str("version", Version).Str("buildDate", BuildDate).Str("logFile", logs.FilePath).Msg("Starting")

	if err := scan(log, demoPath, sessionStart); err != nil {
		log.Error().Err(err).Str("demo", demoPath).Msg("Scan failed")
		return 1
	}
	return 0
}

func scan(log zerolog.Logger, demoPath string, sessionStart time.Time) error {
	rosterCfg := config.GetRosterConfig()
	r, err := roster.New(rosterCfg.TeamOne, rosterCfg.TeamTwo)
	if err != nil {
		return fmt.Errorf("invalid roster: %w", err)
	}

	detectorCfg := config.GetDetectorConfig()
	mode, err := geo.ParseBearingMode(detectorCfg.BearingMode)
	if err != nil {
		return err
	}
	scanCfg := detector.Config{
		Gate: detector.Gate{
			PitchTolerance: detectorCfg.PitchTolerance,
			YawTolerance:   detectorCfg.YawTolerance,
			Mode:           mode,
		},
		RoundObjective: detectorCfg.RoundObjective,
	}

	rep, err := replay.Open(demoPath)
	if err != nil {
		return fmt.Errorf("failed to read demo: %w", err)
	}

	backend, err := factory.NewBackend(config.GetStorageConfig(), log)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close storage")
		}
	}()

	match := core.NewMatch(filepath.Base(demoPath), sessionStart)
	match.TeamOne = r.TeamOne()
	match.TeamTwo = r.TeamTwo()
	rep.Describe(match)
	if err := backend.StartMatch(match); err != nil {
		return fmt.Errorf("failed to register match: %w", err)
	}

	var opts []detector.Option
	if reporter := connectInflux(log, sessionStart); reporter != nil {
		defer func() {
			if err := reporter.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close InfluxDB client")
			}
		}()
		opts = append(opts, detector.WithRoundReporter(reporter))
	}

	scanner, err := detector.NewScanner(scanCfg, r, backend, log, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = rep.Run(ctx, match, scanner)
	if errors.Is(err, context.Canceled) {
		log.Warn().Msg("Interrupted, writing detections gathered so far")
		scanner.Finished()
		return nil
	}
	return err
}

// connectInflux returns nil when InfluxDB is disabled or unusable.
// Round statistics are optional and never stop a scan.
func connectInflux(log zerolog.Logger, sessionStart time.Time) *influx.Manager {
	backupPath := filepath.Join(
		config.GetString("logsDir"),
		fmt.Sprintf("%s.influx.%s.gz", name, sessionStart.Format("20060102_150405")),
	)
	m := influx.NewManager(log, backupPath)
	if err := m.Connect(); err != nil {
		if errors.Is(err, influx.ErrDisabled) {
			log.Debug().Msg("InfluxDB disabled")
		} else {
			log.Warn().Err(err).Msg("InfluxDB unavailable, round statistics are not reported")
		}
		_ = m.Close()
		return nil
	}
	return m
}
