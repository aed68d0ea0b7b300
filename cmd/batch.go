package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var (
	batchManifest    string
	batchConcurrency int
)

// Manifest lists the table pairs compared by the batch command.
type Manifest struct {
	Pairs []Pair `yaml:"pairs"`
}

// Pair is one comparison in a manifest.
type Pair struct {
	Name  string `yaml:"name"`
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

// Label names the pair in output headers.
func (p Pair) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Left + " vs " + p.Right
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Compare every table pair listed in a YAML manifest",
	Long: `Runs one comparison per manifest entry, several at a time, and prints the
reports in manifest order.

Relative table paths are resolved against the manifest's directory.

Manifest format:
  pairs:
    - name: sub-01
      left: v23/sub-01/desc-tedana_metrics.tsv
      right: v24/sub-01/desc-tedana_metrics.tsv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := loadManifest(batchManifest)
		if err != nil {
			return err
		}

		concurrency := cfg.Batch.Concurrency
		if cmd.Flags().Changed("concurrency") {
			concurrency = batchConcurrency
		}

		c, err := newComparer(cfg, flagVerbose)
		if err != nil {
			return err
		}
		return processBatch(cmd.Context(), m.Pairs, concurrency, c, cmd.OutOrStdout())
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchManifest, "manifest", "", "path to YAML manifest (required)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "max comparisons to run concurrently")
	_ = batchCmd.MarkFlagRequired("manifest")
	rootCmd.AddCommand(batchCmd)
}

// loadManifest reads a manifest and resolves relative local paths against its
// directory.
func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: read manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrap(err, "batch: parse manifest")
	}
	if len(m.Pairs) == 0 {
		return nil, eris.Errorf("batch: manifest %s lists no pairs", path)
	}

	base := filepath.Dir(path)
	for i, p := range m.Pairs {
		if p.Left == "" || p.Right == "" {
			return nil, eris.Errorf("batch: manifest pair %d needs both left and right", i)
		}
		m.Pairs[i].Left = resolveRelative(base, p.Left)
		m.Pairs[i].Right = resolveRelative(base, p.Right)
	}
	return &m, nil
}

func resolveRelative(base, source string) string {
	if strings.Contains(source, "://") || filepath.IsAbs(source) {
		return source
	}
	return filepath.Join(base, source)
}

// processBatch runs the comparisons concurrently and writes each report in
// manifest order. A failing pair does not stop the others.
func processBatch(ctx context.Context, pairs []Pair, concurrency int, c *comparer, out io.Writer) error {
	zap.L().Info("processing batch",
		zap.Int("pairs", len(pairs)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	outputs := make([]bytes.Buffer, len(pairs))
	errs := make([]error, len(pairs))
	var succeeded, failed atomic.Int64

	for i, p := range pairs {
		g.Go(func() error {
			log := zap.L().With(zap.String("pair", p.Label()))

			if err := c.run(gctx, p.Left, p.Right, &outputs[i]); err != nil {
				failed.Add(1)
				errs[i] = err
				log.Error("comparison failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Debug("comparison complete")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	for i, p := range pairs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "== %s ==\n", p.Label())
		if errs[i] != nil {
			fmt.Fprintf(out, "error: %v\n", errs[i])
			continue
		}
		if _, err := outputs[i].WriteTo(out); err != nil {
			return eris.Wrap(err, "batch: write report")
		}
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)

	if n := failed.Load(); n > 0 {
		return eris.Errorf("batch: %d of %d comparisons failed", n, len(pairs))
	}
	return nil
}
