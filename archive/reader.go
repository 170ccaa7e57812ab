package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/tsawler/linkscrape/model"
)

// reader provides access to the entries of an in-memory zip archive.
type reader struct {
	entries map[string]*zip.File
	names   []string
}

func newReader(data []byte) (*reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, model.NewParseError(0, "opening zip archive", err)
	}

	r := &reader{entries: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if _, dup := r.entries[f.Name]; dup {
			continue
		}
		r.entries[f.Name] = f
		r.names = append(r.names, f.Name)
	}
	return r, nil
}

// has reports whether an entry exists without decompressing it.
func (r *reader) has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// content reads and decompresses one entry.
func (r *reader) content(name string) ([]byte, error) {
	f, ok := r.entries[name]
	if !ok {
		return nil, &model.MissingEntryError{Entry: name}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening entry %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading entry %s: %w", name, err)
	}
	return data, nil
}
