// Package fetcher resolves table sources (local files, HTTP, FTP, ZIP members)
// and parses delimited text and XLSX workbooks into raw rows.
package fetcher

import (
	"context"
	"io"
	"os"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Options configures the remote fetchers used by a Resolver.
type Options struct {
	HTTP HTTPOptions
	FTP  FTPOptions
}

// Resource is the raw content of a resolved source.
// Name is the file name the content came from (the archive member for ZIP
// sources) and is used for format detection.
type Resource struct {
	Source string
	Name   string
	Data   []byte
}

// Ext returns the lowercased extension of the resource name.
func (r *Resource) Ext() string {
	return strings.ToLower(path.Ext(r.Name))
}

// Resolver reads a source string into memory. Component tables are small, so
// everything is buffered; XLSX and ZIP parsing need random access anyway.
type Resolver struct {
	http Fetcher
	ftp  Fetcher
}

// NewResolver creates a Resolver with HTTP and FTP fetchers.
func NewResolver(opts Options) *Resolver {
	return &Resolver{
		http: NewHTTPFetcher(opts.HTTP),
		ftp:  NewFTPFetcher(opts.FTP),
	}
}

// NewResolverWith creates a Resolver with the given fetchers. Either may be nil,
// in which case sources of that scheme are rejected.
func NewResolverWith(httpFetcher, ftpFetcher Fetcher) *Resolver {
	return &Resolver{http: httpFetcher, ftp: ftpFetcher}
}

// Read resolves the source and returns its content.
//
// Accepted forms:
//
//	path/to/table.tsv
//	https://host/path/table.csv
//	ftp://host/path/table.tsv
//	results.zip#desc-tedana_metrics.tsv
//	results.zip                (archive holding exactly one file)
func (r *Resolver) Read(ctx context.Context, source string) (*Resource, error) {
	location, member := SplitSource(source)

	data, err := r.readLocation(ctx, location)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read %s", location)
	}

	res := &Resource{Source: source, Name: path.Base(location), Data: data}
	if strings.HasSuffix(strings.ToLower(location), ".zip") {
		name, content, err := ReadZIPMember(data, member)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: open archive %s", location)
		}
		res.Name = path.Base(name)
		res.Data = content
	}

	zap.L().Debug("fetcher: resolved source",
		zap.String("source", source),
		zap.String("name", res.Name),
		zap.Int("bytes", len(res.Data)),
	)
	return res, nil
}

func (r *Resolver) readLocation(ctx context.Context, location string) ([]byte, error) {
	var f Fetcher
	switch scheme(location) {
	case "http", "https":
		f = r.http
	case "ftp":
		f = r.ftp
	default:
		return os.ReadFile(strings.TrimPrefix(location, "file://"))
	}
	if f == nil {
		return nil, eris.Errorf("no fetcher configured for %q", location)
	}

	body, err := f.Download(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}
	return data, nil
}

// SplitSource separates an archive member selector from the source location.
// Only sources whose location ends in .zip carry a member.
func SplitSource(source string) (location, member string) {
	idx := strings.LastIndex(source, "#")
	if idx < 0 {
		return source, ""
	}
	loc := source[:idx]
	if !strings.HasSuffix(strings.ToLower(loc), ".zip") {
		return source, ""
	}
	return loc, source[idx+1:]
}

func scheme(location string) string {
	idx := strings.Index(location, "://")
	if idx <= 0 {
		return ""
	}
	return strings.ToLower(location[:idx])
}
