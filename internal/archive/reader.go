// Package archive reads and writes the compressed inputs and outputs of the
// command line: plain files, gzip or xz streams, and tar bundles of Markdown
// pages.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

// Compression is a stream compression format.
type Compression int

const (
	None Compression = iota
	Gzip
	XZ
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case XZ:
		return "xz"
	default:
		return "none"
	}
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// Detect identifies the compression of data from its magic bytes.
func Detect(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, xzMagic):
		return XZ
	case bytes.HasPrefix(data, gzipMagic):
		return Gzip
	default:
		return None
	}
}

// FromPath identifies the compression of a path from its extension.
func FromPath(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".xz"):
		return XZ
	case strings.HasSuffix(path, ".gz"), strings.HasSuffix(path, ".tgz"):
		return Gzip
	default:
		return None
	}
}

// IsTar reports whether path names a tar bundle, compressed or not.
func IsTar(path string) bool {
	for _, ext := range []string{".tar", ".tar.gz", ".tgz", ".tar.xz"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// NewDecompressor wraps r in the decompressor for c. The returned closer
// releases the decompressor, not r.
func NewDecompressor(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case XZ:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		return io.NopCloser(xzr), nil
	case Gzip:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return gzr, nil
	default:
		return io.NopCloser(r), nil
	}
}

// Decompress returns data decompressed according to its magic bytes.
// Uncompressed data is returned as is.
func Decompress(data []byte) ([]byte, error) {
	c := Detect(data)
	if c == None {
		return data, nil
	}
	r, err := NewDecompressor(bytes.NewReader(data), c)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c, err)
	}
	return out, nil
}

// ReadAll reads r fully and decompresses the result.
func ReadAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decompress(data)
}

// ReadFile reads a file and decompresses it.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decompress(data)
}

// Reader wraps a tar.Reader with automatic decompression handling.
type Reader struct {
	*tar.Reader
	file         *os.File
	decompressor io.Closer
}

// NewReader opens the tar bundle at path, decompressing by extension.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	dr, err := NewDecompressor(f, FromPath(path))
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Reader{
		Reader:       tar.NewReader(dr),
		file:         f,
		decompressor: dr,
	}, nil
}

// Close closes the archive reader and any underlying decompressors.
func (r *Reader) Close() error {
	var errs []error
	if err := r.decompressor.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := r.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Visitor is a callback function for iterating archive entries.
// Return true to stop iteration, false to continue.
type Visitor func(header *tar.Header, content io.Reader) (stop bool, err error)

// Iterate walks through all regular files in the archive, calling the
// visitor for each.
func (r *Reader) Iterate(visitor Visitor) error {
	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		stop, err := visitor(header, r)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// Iterate opens a bundle and iterates through its files.
func Iterate(path string, visitor Visitor) error {
	r, err := NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return r.Iterate(visitor)
}
