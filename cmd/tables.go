package cmd

import (
	"fmt"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"

	"synth-pump/internal/catalog"
)

var tablesCmd = &cobra.Command{
	Use:   "tables <region> <database>",
	Short: "List catalog tables and their storage locations",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		region, database := args[0], args[1]
		ctx := cmd.Context()

		cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}

		resolver := catalog.NewResolverFromConfig(cfg)
		tables, err := resolver.ListTables(ctx, database)
		if err != nil {
			return err
		}
		if len(tables) == 0 {
			return fmt.Errorf("no tables found in database %s", database)
		}

		for i, t := range tables {
			fmt.Printf("[%02d] %-28s %s\n", i+1, t.Name, t.Location)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(tablesCmd)
}
