package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guileen/oqlpager/oql"
	"github.com/guileen/oqlpager/region"
)

func newDeriveCommand() *cobra.Command {
	var (
		regionArg string
		keys      []string
	)

	cmd := &cobra.Command{
		Use:   "derive [flags] <query>",
		Short: "Derive the keys and values queries for one OQL statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(cmd, args[0], regionArg, keys)
		},
	}

	cmd.Flags().StringVar(&regionArg, "region", "", "target region name or path (required)")
	cmd.Flags().StringSliceVar(&keys, "keys", nil, "keys to bind into the values query")
	cmd.MarkFlagRequired("region")

	return cmd
}

func runDerive(cmd *cobra.Command, query, regionArg string, keys []string) error {
	target := region.FromPath(strings.TrimSpace(regionArg))

	pq, err := oql.NewPagedQuery(oql.PagedQueryConfig{Query: query, Region: target})
	if err != nil {
		return err
	}

	keysQuery, err := pq.KeysQuery(nil)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "keys query:   %s\n", keysQuery)

	if len(keys) == 0 {
		return nil
	}

	boundKeys := make([]interface{}, len(keys))
	for i, key := range keys {
		boundKeys[i] = key
	}

	valuesQuery, err := pq.ValuesQuery(nil, boundKeys...)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "values query: %s\n", valuesQuery)

	return nil
}
