package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/entdb"
	"github.com/hupe1980/entdb/codec"
	"github.com/hupe1980/entdb/sqlite"
)

var (
	cfgPath string
	dbPath  string
	verbose bool

	cfg Config
)

var rootCmd = &cobra.Command{
	Use:   "entdb",
	Short: "Typed graph-entity store with fields, edges, and queries",
	Long: `entdb stores typed entities ("ents") with named fields and edges in an
embedded database file, and lets you query and snapshot them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		explicit := cmd.Flags().Changed("config")
		var err error
		cfg, err = loadConfig(cfgPath, explicit)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("db") {
			cfg.DB = dbPath
		}
		return nil
	},
}

// Execute runs the root command; called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".entdb.yaml", "Path of the YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "entdb.sqlite", "Path of the database file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// openDB opens the configured sqlite database.
func openDB() (*sqlite.Database, error) {
	opts := []sqlite.Option{sqlite.WithLogger(cliLogger())}
	if cfg.Codec != "" {
		c, ok := codec.ByName(cfg.Codec)
		if !ok {
			return nil, fmt.Errorf("unknown codec %q", cfg.Codec)
		}
		opts = append(opts, sqlite.WithCodec(c))
	}
	return sqlite.Open(cfg.DB, opts...)
}

func cliLogger() *entdb.Logger {
	if verbose {
		return entdb.NewTextLogger(slog.LevelDebug)
	}
	return entdb.NoopLogger()
}
