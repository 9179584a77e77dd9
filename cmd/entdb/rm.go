package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Remove an ent and excise all edges pointing at it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		removed, err := db.Remove(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("no ent with id %d", uint64(id))
		}
		fmt.Printf("removed %d\n", uint64(id))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
