package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/entdb/query"
)

var (
	queryType   string
	queryWhere  []string
	queryOrder  string
	queryDesc   bool
	queryOffset int
	queryLimit  int
	queryJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Find ents matching field conditions",
	Long: `Find ents by type and field conditions. Conditions look like
"field:op:value" with op one of eq, ne, gt, gte, lt, lte, contains,
has_prefix, has_suffix, matches. All conditions must hold.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := query.New()
		if queryType != "" {
			q.HasType(queryType)
		}
		for _, raw := range queryWhere {
			cond, err := parseWhereFlag(raw)
			if err != nil {
				return err
			}
			q.Conds = append(q.Conds, cond)
		}
		if queryOrder != "" {
			q.OrderBy(queryOrder)
		}
		if queryDesc {
			q.Descending()
		}
		q.WithOffset(queryOffset).WithLimit(queryLimit)

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		results, err := db.FindAll(cmd.Context(), q)
		if err != nil {
			return err
		}

		if queryJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		for _, e := range results {
			fmt.Println(e.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&queryType, "type", "", "Restrict to ents of this type")
	queryCmd.Flags().StringArrayVar(&queryWhere, "where", nil, "Condition as field:op:value (repeatable)")
	queryCmd.Flags().StringVar(&queryOrder, "order", "", "Order results by this field")
	queryCmd.Flags().BoolVar(&queryDesc, "desc", false, "Reverse the order")
	queryCmd.Flags().IntVar(&queryOffset, "offset", 0, "Skip this many results")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Return at most this many results (0 = all)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Output in JSON format")
}
