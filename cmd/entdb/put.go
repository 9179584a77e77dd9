package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/entdb/core"
	"github.com/hupe1980/entdb/ent"
)

var (
	putType            string
	putID              uint64
	putFields          []string
	putImmutableFields []string
	putEdges           []string
	putImmutableEdges  []string
)

var putCmd = &cobra.Command{
	Use:   "put",
	Short: "Insert or replace an ent",
	Long: `Insert a new ent, or replace an existing one when --id is given.
Fields take typed literals ("count=int:3", "name=alice"); edges take
comma-separated target ids ("author=1", "tags=2,3,4").`,
	RunE: func(cmd *cobra.Command, args []string) error {
		b := ent.NewBuilder(putType)
		for _, raw := range putFields {
			name, v, err := parseFieldFlag(raw)
			if err != nil {
				return err
			}
			b.Field(name, v)
		}
		for _, raw := range putImmutableFields {
			name, v, err := parseFieldFlag(raw)
			if err != nil {
				return err
			}
			b.ImmutableField(name, v)
		}
		for _, raw := range putEdges {
			name, ev, err := parseEdgeFlag(raw)
			if err != nil {
				return err
			}
			b.Edge(name, ev)
		}
		for _, raw := range putImmutableEdges {
			name, ev, err := parseEdgeFlag(raw)
			if err != nil {
				return err
			}
			b.ImmutableEdge(name, ev)
		}

		e, err := b.Build()
		if err != nil {
			return err
		}
		if putID != 0 {
			e.SetID(core.ID(putID))
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := db.Insert(cmd.Context(), e)
		if err != nil {
			return err
		}
		fmt.Println(uint64(id))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
	putCmd.Flags().StringVar(&putType, "type", "", "Ent type name")
	putCmd.Flags().Uint64Var(&putID, "id", 0, "Replace the ent at this id instead of allocating one")
	putCmd.Flags().StringArrayVar(&putFields, "field", nil, "Field as name=value (repeatable)")
	putCmd.Flags().StringArrayVar(&putImmutableFields, "immutable-field", nil, "Immutable field as name=value (repeatable)")
	putCmd.Flags().StringArrayVar(&putEdges, "edge", nil, "Edge as name=id[,id...] (repeatable)")
	putCmd.Flags().StringArrayVar(&putImmutableEdges, "immutable-edge", nil, "Immutable edge as name=id[,id...] (repeatable)")
	_ = putCmd.MarkFlagRequired("type")
}
