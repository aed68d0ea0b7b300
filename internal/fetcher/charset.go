package fetcher

import (
	"bytes"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeReader returns a reader over data that yields UTF-8 text. The charset name is any
// WHATWG label ("utf-8", "latin1", "windows-1252", "utf-16le", ...). An empty
// name means UTF-8. A leading UTF-8 byte order mark is dropped.
func DecodeReader(data []byte, charset string) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(charset))
	if name == "" || name == "utf-8" || name == "utf8" {
		return bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, eris.Wrapf(err, "charset: unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(bytes.NewReader(data)), nil
}
