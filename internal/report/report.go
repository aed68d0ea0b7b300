// Package report renders comparison results as text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/dtm-tools/internal/diff"
	"github.com/sells-group/dtm-tools/internal/model"
	"github.com/sells-group/dtm-tools/internal/rationale"
	"github.com/sells-group/dtm-tools/internal/table"
)

// Format selects the output rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// NoDifferences is printed when both tables agree on every component.
const NoDifferences = "No differences in classification"

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", eris.Errorf("report: unknown format %q (want text, json or yaml)", s)
	}
}

// Reporter writes comparison results.
type Reporter struct {
	Out     io.Writer
	Format  Format
	Verbose bool
	// RationaleColumn is read for kundu-main tables. Default table.ColRationale.
	RationaleColumn string
}

// Write renders one result.
func (r *Reporter) Write(res *diff.Result) error {
	switch r.Format {
	case FormatJSON:
		enc := json.NewEncoder(r.Out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(r.Document(res)), "report: encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(r.Out)
		enc.SetIndent(2)
		if err := enc.Encode(r.Document(res)); err != nil {
			return eris.Wrap(err, "report: encode yaml")
		}
		return eris.Wrap(enc.Close(), "report: close yaml encoder")
	default:
		return r.writeText(res)
	}
}

func (r *Reporter) writeText(res *diff.Result) error {
	w := &errWriter{w: r.Out}

	w.printf("%s is of type %s\n", res.Left.Table.Source, res.Left.Schema)
	w.printf("%s is of type %s\n", res.Right.Table.Source, res.Right.Schema)

	if len(res.Buckets) == 0 {
		w.printf("%s\n", NoDifferences)
		return w.err
	}

	if r.Verbose {
		w.printf("CHANGE\tNC\tVAREX\tCOMPS\n")
	} else {
		w.printf("CHANGE\tNC\tVAREX\n")
	}
	for _, b := range res.Buckets {
		line := fmt.Sprintf("%s\t%03d\t%.4f", b.Transition, b.Count, b.Varex)
		if r.Verbose {
			line += "\t" + formatIndices(b.Components)
		}
		w.printf("%s\n", line)
	}

	if r.Verbose {
		w.printf("\nCOMP\tCHANGE\tLEFT\tRIGHT\n")
		for _, d := range r.rowDetails(res) {
			w.printf("%03d\t%s\t%s\t%s\n", d.Component, d.Change, d.Left, d.Right)
		}
	}

	return w.err
}

// Document is the structured form of a result.
type Document struct {
	Left         TableInfo     `json:"left" yaml:"left"`
	Right        TableInfo     `json:"right" yaml:"right"`
	Policy       string        `json:"policy" yaml:"policy"`
	TotalChanges int           `json:"total_changes" yaml:"total_changes"`
	Buckets      []BucketEntry `json:"buckets" yaml:"buckets"`
	Rows         []RowDetail   `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// TableInfo describes one input table.
type TableInfo struct {
	Source string `json:"source" yaml:"source"`
	Type   string `json:"type" yaml:"type"`
	Rows   int    `json:"rows" yaml:"rows"`
}

// BucketEntry is one transition summary.
type BucketEntry struct {
	Change     string  `json:"change" yaml:"change"`
	Count      int     `json:"count" yaml:"count"`
	Varex      float64 `json:"varex" yaml:"varex"`
	Components []int   `json:"components" yaml:"components"`
}

// RowDetail is the per-component rationale comparison.
type RowDetail struct {
	Component int    `json:"component" yaml:"component"`
	Change    string `json:"change" yaml:"change"`
	Left      string `json:"left" yaml:"left"`
	Right     string `json:"right" yaml:"right"`
}

// Document builds the structured form of res.
func (r *Reporter) Document(res *diff.Result) Document {
	doc := Document{
		Left:         tableInfo(res.Left),
		Right:        tableInfo(res.Right),
		Policy:       string(res.Options.Policy),
		TotalChanges: res.Total(),
		Buckets:      make([]BucketEntry, 0, len(res.Buckets)),
	}
	for _, b := range res.Buckets {
		doc.Buckets = append(doc.Buckets, BucketEntry{
			Change:     b.Transition.String(),
			Count:      b.Count,
			Varex:      b.Varex,
			Components: sortedCopy(b.Components),
		})
	}
	if r.Verbose {
		doc.Rows = r.rowDetails(res)
	}
	return doc
}

func tableInfo(s diff.Side) TableInfo {
	return TableInfo{Source: s.Table.Source, Type: string(s.Schema), Rows: s.Table.Len()}
}

func (r *Reporter) rowDetails(res *diff.Result) []RowDetail {
	details := make([]RowDetail, 0, len(res.Changes))
	for _, c := range res.Changes {
		details = append(details, RowDetail{
			Component: c.Index,
			Change:    c.Transition.String(),
			Left:      r.Rationale(res.Left, c.Index, res.Options.TagColumn),
			Right:     r.Rationale(res.Right, c.Index, res.Options.TagColumn),
		})
	}
	return details
}

// Rationale resolves the displayed rationale of one component. DTM tables
// explain themselves through tags; kundu-main tables through rationale codes.
func (r *Reporter) Rationale(side diff.Side, index int, tagColumn string) string {
	row := side.Table.Row(index)
	if side.Schema.IsDTM() {
		return rationale.ExpandTags(row.Tags(tagColumn))
	}

	col := r.RationaleColumn
	if col == "" {
		col = table.ColRationale
	}
	v, ok := row.Value(col)
	if !ok {
		return rationale.NotAvailable
	}
	return rationale.Expand(v)
}

// Schemas renders "<source> is of type <variant>" lines for standalone use.
func Schemas(w io.Writer, sources []string, variants []model.SchemaVariant) error {
	ew := &errWriter{w: w}
	for i, src := range sources {
		ew.printf("%s is of type %s\n", src, variants[i])
	}
	return ew.err
}

// Codes renders the rationale lookup table.
func Codes(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("CODE\tDESCRIPTION\n")
	for _, e := range rationale.All() {
		ew.printf("%s\t%s\n", e.Code, e.Description)
	}
	return ew.err
}

func formatIndices(idx []int) string {
	parts := make([]string, len(idx))
	for i, v := range sortedCopy(idx) {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func sortedCopy(idx []int) []int {
	out := slices.Clone(idx)
	slices.Sort(out)
	if out == nil {
		out = []int{}
	}
	return out
}

// errWriter remembers the first write error so callers check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
	if e.err != nil {
		e.err = eris.Wrap(e.err, "report: write")
	}
}
