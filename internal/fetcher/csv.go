package fetcher

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the delimited text parser.
type CSVOptions struct {
	Delimiter  rune // 0 = sniff from the header line
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// ReadCSV reads every record of a delimited text stream. Records may have a
// varying number of fields.
func ReadCSV(r io.Reader, opts CSVOptions) ([][]string, error) {
	br := bufio.NewReader(r)

	delim := opts.Delimiter
	if delim == 0 {
		head, _ := br.Peek(4096)
		delim = SniffDelimiter(head)
	}

	reader := csv.NewReader(br)
	reader.Comma = delim
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}

		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}
		records = append(records, record)
	}

	return records, nil
}

// DelimiterForExt returns the delimiter implied by a file extension, or 0 when
// the extension says nothing.
func DelimiterForExt(ext string) rune {
	switch strings.ToLower(ext) {
	case ".tsv", ".tab":
		return '\t'
	case ".csv":
		return ','
	default:
		return 0
	}
}

// SniffDelimiter picks tab or comma by counting them in the first line.
// Ties go to comma.
func SniffDelimiter(head []byte) rune {
	line := head
	if idx := bytes.IndexByte(head, '\n'); idx >= 0 {
		line = head[:idx]
	}
	if bytes.Count(line, []byte{'\t'}) > bytes.Count(line, []byte{','}) {
		return '\t'
	}
	return ','
}
