// Package diff pairs two component tables by position and aggregates the
// classification changes between them.
package diff

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dtm-tools/internal/classify"
	"github.com/sells-group/dtm-tools/internal/model"
	"github.com/sells-group/dtm-tools/internal/table"
)

// ErrRowCountMismatch is returned when the tables have different lengths.
var ErrRowCountMismatch = eris.New("row count mismatch")

// Options configures a comparison.
type Options struct {
	Policy      model.LabelPolicy
	TagColumn   string // default table.ColTags
	VarexColumn string // default table.ColVarex
}

func (o Options) withDefaults() Options {
	if o.Policy == "" {
		o.Policy = model.PolicyThreeWay
	}
	if o.TagColumn == "" {
		o.TagColumn = table.ColTags
	}
	if o.VarexColumn == "" {
		o.VarexColumn = table.ColVarex
	}
	return o
}

// Side describes one of the compared tables.
type Side struct {
	Table  *table.Table
	Schema model.SchemaVariant
}

// RowChange is one component whose label differs between the tables.
type RowChange struct {
	Index      int
	Transition model.Transition
}

// Result is the outcome of a comparison.
type Result struct {
	Left    Side
	Right   Side
	Options Options
	// Buckets in the order their transition was first seen.
	Buckets []*model.ChangeBucket
	Changes []RowChange
}

// Total returns the number of changed components.
func (r *Result) Total() int {
	return len(r.Changes)
}

// Bucket returns the bucket for a transition, or nil.
func (r *Result) Bucket(tr model.Transition) *model.ChangeBucket {
	for _, b := range r.Buckets {
		if b.Transition == tr {
			return b
		}
	}
	return nil
}

// Validate checks that both tables carry the columns a comparison needs.
func Validate(left, right *table.Table, opts Options) error {
	opts = opts.withDefaults()
	for _, t := range []*table.Table{left, right} {
		if err := t.Require(table.ColClassification, opts.VarexColumn); err != nil {
			return err
		}
	}
	if left.Len() != right.Len() {
		return eris.Wrapf(ErrRowCountMismatch, "%s has %d components, but %s has %d components.",
			left.Source, left.Len(), right.Source, right.Len())
	}
	return nil
}

// Compare labels every row of both tables and buckets the differences.
func Compare(left, right *table.Table, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if err := Validate(left, right, opts); err != nil {
		return nil, err
	}

	res := &Result{
		Left:    Side{Table: left, Schema: classify.DetectSchema(left, opts.TagColumn)},
		Right:   Side{Table: right, Schema: classify.DetectSchema(right, opts.TagColumn)},
		Options: opts,
	}

	norm := classify.NewNormalizer(opts.Policy, opts.TagColumn)
	byTransition := make(map[model.Transition]*model.ChangeBucket)

	for i := range left.Len() {
		lrow, rrow := left.Row(i), right.Row(i)

		from, err := norm.Label(lrow)
		if err != nil {
			return nil, eris.Wrapf(err, "diff: %s", left.Source)
		}
		to, err := norm.Label(rrow)
		if err != nil {
			return nil, eris.Wrapf(err, "diff: %s", right.Source)
		}

		tr := model.Transition{From: from, To: to}
		if !tr.Changed() {
			continue
		}

		varex, ok, err := lrow.Float(opts.VarexColumn)
		if err != nil {
			return nil, eris.Wrapf(err, "diff: %s", left.Source)
		}
		if !ok {
			zap.L().Warn("diff: missing variance explained, counting as 0",
				zap.String("source", left.Source),
				zap.Int("component", i),
			)
		}

		b, seen := byTransition[tr]
		if !seen {
			b = &model.ChangeBucket{Transition: tr}
			byTransition[tr] = b
			res.Buckets = append(res.Buckets, b)
		}
		b.Add(i, varex)
		res.Changes = append(res.Changes, RowChange{Index: i, Transition: tr})
	}

	return res, nil
}
