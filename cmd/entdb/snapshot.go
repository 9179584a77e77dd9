package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/entdb/blobstore"
	"github.com/hupe1980/entdb/snapshot"
)

var snapshotDir string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save, restore, list, and delete database snapshots",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save [name]",
	Short: "Write a snapshot of the whole database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := snapshotStore()
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		opts, err := snapshotOptions()
		if err != nil {
			return err
		}
		m, err := snapshot.Save(cmd.Context(), db, store, args[0], opts...)
		if err != nil {
			return err
		}
		fmt.Printf("saved %s (%d ents, %s/%s)\n", args[0], m.Count, m.Codec, m.Compression)
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore [name]",
	Short: "Insert every ent of a snapshot into the database",
	Long: `Insert every ent of a snapshot into the database.

Ids and timestamps are preserved. Restoring into a non-empty database
replaces any ent whose id collides with a restored one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := snapshotStore()
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := snapshot.Restore(cmd.Context(), db, store, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("restored %d ents from %s\n", n, args[0])
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List complete snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := snapshotStore()
		if err != nil {
			return err
		}

		names, err := snapshot.List(cmd.Context(), store)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := snapshotStore()
		if err != nil {
			return err
		}
		return snapshot.Delete(cmd.Context(), store, args[0])
	},
}

func snapshotStore() (blobstore.Store, error) {
	dir := cfg.Snapshots.Dir
	if snapshotDir != "" {
		dir = snapshotDir
	}
	return blobstore.NewLocalStore(dir)
}

func snapshotOptions() ([]snapshot.Option, error) {
	var opts []snapshot.Option
	if cfg.Snapshots.Compression != "" {
		comp, ok := snapshot.ByName(cfg.Snapshots.Compression)
		if !ok {
			return nil, fmt.Errorf("unknown compression %q", cfg.Snapshots.Compression)
		}
		opts = append(opts, snapshot.WithCompression(comp))
	}
	if cfg.Snapshots.RateLimitBytesPerSec > 0 {
		opts = append(opts, snapshot.WithRateLimit(cfg.Snapshots.RateLimitBytesPerSec))
	}
	return opts, nil
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotRestoreCmd, snapshotListCmd, snapshotDeleteCmd)
	snapshotCmd.PersistentFlags().StringVar(&snapshotDir, "dir", "", "Snapshot directory (overrides config)")
}
