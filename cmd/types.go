package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/dtm-tools/internal/classify"
	"github.com/sells-group/dtm-tools/internal/model"
	"github.com/sells-group/dtm-tools/internal/report"
	"github.com/sells-group/dtm-tools/internal/table"
)

var typesCmd = &cobra.Command{
	Use:   "types <table>...",
	Short: "Print the schema variant of each component table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newComparer(cfg, false)
		if err != nil {
			return err
		}

		variants := make([]model.SchemaVariant, len(args))
		for i, src := range args {
			t, err := table.Load(cmd.Context(), src, c.load)
			if err != nil {
				return err
			}
			variants[i] = classify.DetectSchema(t, c.diff.TagColumn)
		}

		return report.Schemas(cmd.OutOrStdout(), args, variants)
	},
}

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Print the rationale code lookup table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return report.Codes(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(codesCmd)
}
