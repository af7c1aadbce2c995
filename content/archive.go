package content

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// Maximum size of content loaded into memory
const maxContentSize = 512 * 1024 * 1024

// formatType represents the detected file format
type formatType int

const (
	formatRaw formatType = iota
	formatZIP
	format7z
	formatGzip
	formatRAR
)

func (f formatType) String() string {
	switch f {
	case formatZIP:
		return "zip"
	case format7z:
		return "7z"
	case formatGzip:
		return "gzip"
	case formatRAR:
		return "rar"
	default:
		return "raw"
	}
}

// entryFunc receives the selected archive entry. name is the entry path
// inside the archive.
type entryFunc func(name string, r io.Reader) error

// entryMatch selects which archive entry is loaded.
type entryMatch func(name string) bool

// detectFormat determines the container format from magic bytes, then from
// the file extension. Anything unrecognised is raw content.
func detectFormat(header []byte, path string) formatType {
	if len(header) >= 4 {
		if bytes.HasPrefix(header, magicZIP) || bytes.HasPrefix(header, magicZIPEnd) {
			return formatZIP
		}
		if bytes.HasPrefix(header, magicRAR) {
			return formatRAR
		}
	}
	if len(header) >= 6 && bytes.HasPrefix(header, magic7z) {
		return format7z
	}
	if len(header) >= 2 && bytes.HasPrefix(header, magicGzip) {
		return formatGzip
	}

	lower := strings.ToLower(path)
	switch filepath.Ext(lower) {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	}
	return formatRaw
}

// sniff reads the header of path and detects its format.
func sniff(fs afero.Fs, path string) (formatType, error) {
	f, err := fs.Open(path)
	if err != nil {
		return formatRaw, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return formatRaw, fmt.Errorf("failed to read file header: %w", err)
	}
	return detectFormat(header[:n], path), nil
}

// extract runs the extractor for format, handing the first matching entry
// to fn.
func extract(fs afero.Fs, format formatType, path string, match entryMatch, fn entryFunc) error {
	switch format {
	case formatZIP:
		return extractFromZIP(fs, path, match, fn)
	case format7z:
		return extractFrom7z(fs, path, match, fn)
	case formatGzip:
		return extractFromGzip(fs, path, match, fn)
	case formatRAR:
		return extractFromRAR(fs, path, match, fn)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// extractFromZIP hands the first matching file of a ZIP archive to fn
func extractFromZIP(fs afero.Fs, path string, match entryMatch, fn entryFunc) error {
	f, size, err := openSized(fs, path)
	if err != nil {
		return fmt.Errorf("failed to open zip: %w", err)
	}
	defer f.Close()

	r, err := zip.NewReader(f, size)
	if err != nil {
		return fmt.Errorf("failed to open zip: %w", err)
	}

	for _, zf := range r.File {
		if zf.FileInfo().IsDir() || !match(zf.Name) {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s in archive: %w", zf.Name, err)
		}
		defer rc.Close()
		return fn(zf.Name, rc)
	}
	return ErrNoContentFile
}

// extractFromGzip handles both plain .gz files, whose payload is the
// content, and tar.gz archives.
func extractFromGzip(fs afero.Fs, path string, match entryMatch, fn entryFunc) error {
	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open gzip: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	lowerPath := strings.ToLower(path)
	if strings.HasSuffix(lowerPath, ".tar.gz") || strings.HasSuffix(lowerPath, ".tgz") {
		return extractFromTar(gr, match, fn)
	}

	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-3]
	}
	return fn(name, gr)
}

// extractFromTar hands the first matching regular file of a tar stream to fn
func extractFromTar(r io.Reader, match entryMatch, fn entryFunc) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !match(header.Name) {
			continue
		}
		return fn(header.Name, tr)
	}
	return ErrNoContentFile
}

// openSized opens path for random access and reports its size.
func openSized(fs afero.Fs, path string) (afero.File, int64, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, st.Size(), nil
}

// limitedRead reads from r up to maxContentSize bytes, returning an error if exceeded
func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, maxContentSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > maxContentSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
