package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/afroash/roomsim/internal/config"
	"github.com/afroash/roomsim/internal/export"
	"github.com/afroash/roomsim/internal/logging"
	"github.com/afroash/roomsim/internal/notify"
	"github.com/afroash/roomsim/internal/report"
	"github.com/afroash/roomsim/internal/sensor"
	"github.com/afroash/roomsim/internal/simulation"
	"github.com/afroash/roomsim/internal/stats"
	"github.com/afroash/roomsim/internal/storage"
)

const version = "v0.1.0"

var errRunNotFound = errors.New("run not found")

// options are the command line flags. Set flags override the config file.
type options struct {
	configPath string
	seed       *uint64
	exportPath string
	dbPath     string
	noColor    bool
	verbose    bool
	listRuns   bool
	deleteRun  string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("roomsim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "path to config file (defaults are used when empty)")
	seed := fs.Uint64("seed", 0, "random seed for a reproducible run")
	fs.StringVar(&opts.exportPath, "export", "", "write the JSON export to this path")
	fs.StringVar(&opts.dbPath, "db", "", "also write readings to this SQLite database")
	fs.BoolVar(&opts.noColor, "no-color", false, "disable coloured report headings")
	fs.BoolVar(&opts.verbose, "v", false, "log every sensor reading")
	fs.BoolVar(&opts.listRuns, "list-runs", false, "list the runs stored in the database and exit")
	fs.StringVar(&opts.deleteRun, "delete-run", "", "delete a stored run by ID and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.seed = seed
		}
	})
	return opts, nil
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(opts.configPath); err != nil {
			return nil, err
		}
	}

	if opts.seed != nil {
		cfg.Simulation.Seed = opts.seed
	}
	if opts.exportPath != "" {
		cfg.Export.Enabled = true
		cfg.Export.Path = opts.exportPath
	}
	if opts.dbPath != "" {
		cfg.Database.Enabled = true
		cfg.Database.Path = opts.dbPath
	}
	if opts.noColor {
		cfg.Report.Color = false
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(exitCode(err))
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if opts.listRuns || opts.deleteRun != "" {
		if err := manageRuns(cfg.Database.Path, opts, os.Stdout, logger); err != nil {
			logger.Error().Err(err).Str("path", cfg.Database.Path).Msg("Run management failed")
			os.Exit(1)
		}
		return
	}

	logger.Info().
		Str("version", version).
		Str("config", cfg.String()).
		Msg("Starting room simulation")

	if err := run(cfg, os.Stdout, logger); err != nil {
		logger.Error().Err(err).Msg("Simulation failed")
		os.Exit(1)
	}
}

// run executes one simulated day and writes the configured outputs
func run(cfg *config.Config, out io.Writer, logger zerolog.Logger) error {
	var rng sensor.Rand
	if cfg.Simulation.Seed != nil {
		rng = sensor.NewRand(*cfg.Simulation.Seed)
	}

	sim := simulation.New(rng, logger)
	if logger.GetLevel() <= zerolog.DebugLevel {
		sim.RegisterListener(notify.NewLogListener(logger))
	}

	var store *storage.SQLiteStore
	var writer *storage.BatchWriter
	if cfg.Database.Enabled {
		if err := ensureDir(cfg.Database.Path); err != nil {
			return err
		}
		var err error
		store, err = storage.NewSQLiteStore(cfg.Database.Path, logger)
		if err != nil {
			return fmt.Errorf("failed to create SQLite store: %w", err)
		}
		defer store.Close()

		runID := uuid.NewString()
		writer = storage.NewBatchWriter(store, runID, storage.BatchWriterConfig{
			BatchSize: cfg.Database.BatchSize,
		}, logger)
		sim.RegisterListener(writer)
	}

	result, err := sim.Run()
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	if writer != nil {
		if err := writer.Flush(); err != nil {
			return fmt.Errorf("failed to write readings to database: %w", err)
		}
		ws := writer.Stats()
		stored, err := store.CountReadings(ws.RunID)
		if err != nil {
			return err
		}
		if stored != int64(result.Metadata.TotalReadings) {
			return fmt.Errorf("database holds %d readings for run %s, want %d", stored, ws.RunID, result.Metadata.TotalReadings)
		}
		if err := store.VerifyRun(ws.RunID, result.Statistics); err != nil {
			return err
		}
		logger.Info().
			Str("run_id", ws.RunID).
			Int64("readings", stored).
			Int64("batches", ws.TotalBatches).
			Str("path", cfg.Database.Path).
			Msg("Readings written to database")
	}

	if cfg.Export.Enabled {
		if err := ensureDir(cfg.Export.Path); err != nil {
			return err
		}
		doc := export.NewDocument(result.Metadata, result.Events)
		if err := export.WriteFile(cfg.Export.Path, doc); err != nil {
			return err
		}
		logger.Info().
			Str("path", cfg.Export.Path).
			Int("readings", len(doc.Readings)).
			Msg("Export written")
	}

	light := stats.DayNightLight(result.Events)
	logger.Debug().
		Float64("day_mean", light.DayMean).
		Float64("night_mean", light.NightMean).
		Msg("Light profile")

	return report.Write(out, result.Metadata, result.Statistics, cfg.Report.Color)
}

// exitCode maps a flag parsing error to the process exit status
func exitCode(err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 1
}

// manageRuns lists or deletes stored runs in an existing database
func manageRuns(path string, opts *options, out io.Writer, logger zerolog.Logger) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("database %s: %w", path, err)
	}

	store, err := storage.NewSQLiteStore(path, logger)
	if err != nil {
		return fmt.Errorf("failed to open SQLite store: %w", err)
	}
	defer store.Close()

	if opts.deleteRun != "" {
		deleted, err := store.DeleteRun(opts.deleteRun)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return fmt.Errorf("%w: %s", errRunNotFound, opts.deleteRun)
		}
		fmt.Fprintf(out, "Deleted run %s (%d readings)\n", opts.deleteRun, deleted)
	}

	if !opts.listRuns {
		return nil
	}

	st, err := store.GetStorageStats()
	if err != nil {
		return err
	}
	ids, err := store.GetRunIDs()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d runs, %d readings, %.2f MB\n", path, st.Runs, st.TotalReadings, st.DatabaseSizeMB)
	for _, id := range ids {
		n, err := store.CountReadings(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s  %d readings\n", id, n)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
