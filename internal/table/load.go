package table

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dtm-tools/internal/fetcher"
)

// LoadOptions configures how a source is read.
type LoadOptions struct {
	Delimiter rune   // 0 = from extension, else sniffed
	Encoding  string // WHATWG charset label, empty = utf-8
	Sheet     string // XLSX sheet name, empty = first sheet
	Resolver  *fetcher.Resolver
}

// Load resolves source and parses it into a Table.
func Load(ctx context.Context, source string, opts LoadOptions) (*Table, error) {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = fetcher.NewResolver(fetcher.Options{})
	}

	res, err := resolver.Read(ctx, source)
	if err != nil {
		return nil, eris.Wrapf(err, "table: load %s", source)
	}

	records, err := parse(res, opts)
	if err != nil {
		return nil, eris.Wrapf(err, "table: parse %s", source)
	}

	t, err := FromRecords(source, records)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("table: loaded",
		zap.String("source", source),
		zap.Int("columns", len(t.Columns)),
		zap.Int("rows", t.Len()),
	)
	return t, nil
}

func parse(res *fetcher.Resource, opts LoadOptions) ([][]string, error) {
	if res.Ext() == ".xlsx" {
		return fetcher.ReadXLSX(res.Data, fetcher.XLSXOptions{SheetName: opts.Sheet})
	}

	r, err := fetcher.DecodeReader(res.Data, opts.Encoding)
	if err != nil {
		return nil, err
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = fetcher.DelimiterForExt(res.Ext())
	}

	return fetcher.ReadCSV(r, fetcher.CSVOptions{
		Delimiter:  delim,
		LazyQuotes: true,
	})
}
