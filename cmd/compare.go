package main

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dtm-tools/internal/config"
	"github.com/sells-group/dtm-tools/internal/diff"
	"github.com/sells-group/dtm-tools/internal/fetcher"
	"github.com/sells-group/dtm-tools/internal/model"
	"github.com/sells-group/dtm-tools/internal/report"
	"github.com/sells-group/dtm-tools/internal/table"
)

// comparer holds everything derived from config that one comparison needs.
type comparer struct {
	load     table.LoadOptions
	diff     diff.Options
	format   report.Format
	verbose  bool
	ratioCol string
}

func newComparer(c *config.Config, verbose bool) (*comparer, error) {
	policy, err := model.ParseLabelPolicy(c.Compare.Policy)
	if err != nil {
		return nil, err
	}
	format, err := report.ParseFormat(c.Compare.Format)
	if err != nil {
		return nil, err
	}
	delim, err := c.Load.DelimiterRune()
	if err != nil {
		return nil, err
	}

	return &comparer{
		load: table.LoadOptions{
			Delimiter: delim,
			Encoding:  c.Load.Encoding,
			Sheet:     c.Load.Sheet,
			Resolver:  fetcher.NewResolver(c.Fetch.FetcherOptions()),
		},
		diff: diff.Options{
			Policy:      policy,
			TagColumn:   c.Compare.TagColumn,
			VarexColumn: c.Compare.VarexColumn,
		},
		format:   format,
		verbose:  verbose,
		ratioCol: c.Compare.RationaleColumn,
	}, nil
}

// compare loads both tables and computes their differences. Nothing is
// written until both tables pass validation.
func (c *comparer) compare(ctx context.Context, left, right string) (*diff.Result, error) {
	log := zap.L().With(zap.String("run_id", uuid.New().String()))
	log.Debug("compare: loading tables", zap.String("left", left), zap.String("right", right))

	lt, err := table.Load(ctx, left, c.load)
	if err != nil {
		return nil, err
	}
	rt, err := table.Load(ctx, right, c.load)
	if err != nil {
		return nil, err
	}

	res, err := diff.Compare(lt, rt, c.diff)
	if err != nil {
		return nil, eris.Wrap(err, "compare")
	}

	log.Info("compare: complete",
		zap.String("left", left),
		zap.String("left_type", string(res.Left.Schema)),
		zap.String("right", right),
		zap.String("right_type", string(res.Right.Schema)),
		zap.Int("components", lt.Len()),
		zap.Int("changes", res.Total()),
		zap.String("policy", string(c.diff.Policy)),
	)
	return res, nil
}

// run compares left and right and writes the report to out.
func (c *comparer) run(ctx context.Context, left, right string, out io.Writer) error {
	res, err := c.compare(ctx, left, right)
	if err != nil {
		return err
	}
	return c.reporter(out).Write(res)
}

func (c *comparer) reporter(out io.Writer) *report.Reporter {
	return &report.Reporter{
		Out:             out,
		Format:          c.format,
		Verbose:         c.verbose,
		RationaleColumn: c.ratioCol,
	}
}
