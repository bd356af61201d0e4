// Shopkeep runs a text shop counter for a tabletop party.
// Usage: shopkeep [--tui] [--script <file>] [--trace] [--catalog <dir>]
//
//	shopkeep telegram
//	shopkeep catalog <dir> [--yaml]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nathoo/shopkeep/config"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	verbose    bool
	dotenv     string
	catalogDir string
	dbPath     string
	character  string
	seed       int64
	useTUI     bool
	trace      bool
	scriptFile string
	logFile    string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:     "shopkeep",
	Short:   "Talk to a shopkeeper: buy, sell, haggle and stash party loot",
	Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	Long: `shopkeep runs a shop counter driven by a Lua catalog.

Without a subcommand it opens a console conversation on stdin/stdout.
Use --tui for the full-screen interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(dotenv)
		if err != nil {
			return err
		}
		applyFlags(cmd)

		logger, err = newLogger(cmd)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runConsole,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dotenv, "env-file", ".env", "Read settings from this .env file if it exists")
	rootCmd.PersistentFlags().StringVar(&catalogDir, "catalog", "", "Catalog directory (default $SHOPKEEP_CATALOG)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default $SHOPKEEP_DB)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Dice seed (default $SHOPKEEP_SEED)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.Flags().StringVarP(&character, "character", "c", "", "Character id (default $SHOPKEEP_CHARACTER)")
	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "Use the full-screen terminal interface")
	rootCmd.Flags().BoolVar(&trace, "trace", false, "Print intent traces after every turn")
	rootCmd.Flags().StringVar(&scriptFile, "script", "", "Read input lines from a file and echo them")

	rootCmd.AddCommand(telegramCmd)
	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.CatalogDir = catalogDir
	}
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("character") {
		cfg.Character = character
	}
	if verbose {
		cfg.Debug = true
	}
}

// newLogger builds a production logger. The TUI owns the terminal, so
// without --log-file its logs are discarded.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	console := !cmd.HasParent()
	if console && useTUI && logFile == "" {
		return zap.NewNop(), nil
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if console {
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	if cfg.Debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if logFile != "" {
		zc.OutputPaths = []string{logFile}
		zc.ErrorOutputPaths = []string{logFile}
	}
	return zc.Build()
}
