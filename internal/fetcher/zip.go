package fetcher

import (
	"archive/zip"
	"bytes"
	"io"
	"path"

	"github.com/rotisserie/eris"
)

// ReadZIPMember returns the content of one file inside an in-memory ZIP archive.
// With an empty member name the archive must contain exactly one file. A member
// name without a directory matches any entry with that base name.
func ReadZIPMember(data []byte, member string) (string, []byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, eris.Wrap(err, "zip: open archive")
	}

	var files []*zip.File
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			files = append(files, f)
		}
	}

	var target *zip.File
	switch {
	case member == "":
		if len(files) != 1 {
			return "", nil, eris.Errorf("zip: expected exactly 1 file, got %d (select one with archive.zip#member)", len(files))
		}
		target = files[0]
	default:
		for _, f := range files {
			if f.Name == member {
				target = f
				break
			}
		}
		if target == nil {
			for _, f := range files {
				if path.Base(f.Name) == member {
					target = f
					break
				}
			}
		}
		if target == nil {
			return "", nil, eris.Errorf("zip: file %q not found in archive", member)
		}
	}

	rc, err := target.Open()
	if err != nil {
		return "", nil, eris.Wrap(err, "zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	content, err := io.ReadAll(rc)
	if err != nil {
		return "", nil, eris.Wrap(err, "zip: read entry")
	}
	return target.Name, content, nil
}
