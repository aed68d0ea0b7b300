package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dtm-tools/internal/config"
)

var cfg *config.Config

var (
	flagVerbose         bool
	flagPolicy          string
	flagFormat          string
	flagTagColumn       string
	flagVarexColumn     string
	flagRationaleColumn string
	flagDelimiter       string
	flagEncoding        string
	flagSheet           string
	flagLogLevel        string
)

var rootCmd = &cobra.Command{
	Use:   "dtm-tools <left> <right>",
	Short: "Compare component classifications between two component tables",
	Long: `Prints the number of component classification changes between two
component tables, grouped by transition (e.g. "A -> R"), with the summed
variance explained of the changed components.

Tables may be local paths, http(s):// or ftp:// URLs, members of a ZIP archive
(results.zip#desc-tedana_metrics.tsv), or XLSX workbooks.

Examples:
  dtm-tools old/desc-tedana_metrics.tsv new/desc-tedana_metrics.tsv
  dtm-tools -v --policy two-way left.tsv right.tsv
  dtm-tools --format json left.csv right.csv > changes.json`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlagOverrides(cmd, c)
		if err := c.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newComparer(cfg, flagVerbose)
		if err != nil {
			return err
		}
		return c.run(cmd.Context(), args[0], args[1], cmd.OutOrStdout())
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "verbose mode; prints component indices per change and per-component rationale")
	pf.StringVar(&flagPolicy, "policy", "", "labeling policy: three-way (A/I/R) or two-way (A/R)")
	pf.StringVar(&flagFormat, "format", "", "output format: text, json or yaml")
	pf.StringVar(&flagTagColumn, "tag-column", "", "name of the classification tag column")
	pf.StringVar(&flagVarexColumn, "varex-column", "", "name of the variance explained column")
	pf.StringVar(&flagRationaleColumn, "rationale-column", "", "name of the rationale column read for kundu-main tables")
	pf.StringVar(&flagDelimiter, "delimiter", "", `field delimiter ("tab", "comma" or one character); default detects`)
	pf.StringVar(&flagEncoding, "encoding", "", "character encoding of text tables (default utf-8)")
	pf.StringVar(&flagSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// applyFlagOverrides copies explicitly set flags over the loaded configuration.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("policy", &c.Compare.Policy, flagPolicy)
	set("format", &c.Compare.Format, flagFormat)
	set("tag-column", &c.Compare.TagColumn, flagTagColumn)
	set("varex-column", &c.Compare.VarexColumn, flagVarexColumn)
	set("rationale-column", &c.Compare.RationaleColumn, flagRationaleColumn)
	set("delimiter", &c.Load.Delimiter, flagDelimiter)
	set("encoding", &c.Load.Encoding, flagEncoding)
	set("sheet", &c.Load.Sheet, flagSheet)
	set("log-level", &c.Log.Level, flagLogLevel)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
