package tableio

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ajitpratap0/tabprep/pkg/compression"
	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
)

// Format is a table file format
type Format string

const (
	// CSV is comma separated values with a header row
	CSV Format = "csv"
	// JSON is an array of row objects
	JSON Format = "json"
)

// FormatFromPath returns the format implied by path, ignoring any
// compression extension. Unknown extensions are a validation error.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(compression.StripExt(path))); ext {
	case ".csv", ".tsv":
		return CSV, nil
	case ".json":
		return JSON, nil
	default:
		return "", errors.Newf(errors.ErrorTypeValidation, "unsupported table file extension %q", ext).
			WithDetail("path", path)
	}
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenFile opens path for reading, decompressing by extension
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open "+path)
	}
	zr, err := compression.NewReader(f, compression.FromPath(path))
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, errors.TypeOf(err), "failed to open "+path)
	}
	return &readCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
}

type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (w *writeCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CreateFile creates path for writing, compressing by extension. Close
// flushes the compressor before closing the file.
func CreateFile(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create "+path)
	}
	zw, err := compression.NewWriter(f, compression.FromPath(path), compression.Default)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &writeCloser{Writer: zw, closers: []io.Closer{zw, f}}, nil
}

// ReadFile loads the table at path in the format implied by its extension.
// A ".tsv" file is read with a tab delimiter.
func ReadFile(path string, opts CSVOptions) (*dataset.Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	rc, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if format == JSON {
		return ReadJSON(rc)
	}
	if isTSV(path) && opts.Delimiter == 0 {
		opts.Delimiter = '\t'
	}
	return ReadCSV(rc, opts)
}

// WriteFile writes ds to path in the format implied by its extension
func WriteFile(path string, ds *dataset.Dataset, opts CSVOptions) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	wc, err := CreateFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, errors.ErrorTypeFile, "failed to close "+path)
		}
	}()

	if format == JSON {
		return WriteJSON(wc, ds)
	}
	if isTSV(path) && opts.Delimiter == 0 {
		opts.Delimiter = '\t'
	}
	return WriteCSV(wc, ds, opts)
}

func isTSV(path string) bool {
	return strings.EqualFold(filepath.Ext(compression.StripExt(path)), ".tsv")
}
