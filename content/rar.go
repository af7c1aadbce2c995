package content

import (
	"fmt"
	"io"

	"github.com/nwaples/rardecode/v2"
	"github.com/spf13/afero"
)

// extractFromRAR hands the first matching file of a RAR archive to fn.
// Multi-volume archives are not supported from a virtual filesystem.
func extractFromRAR(fs afero.Fs, path string, match entryMatch, fn entryFunc) error {
	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open rar: %w", err)
	}
	defer f.Close()

	r, err := rardecode.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to open rar: %w", err)
	}

	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read rar entry: %w", err)
		}
		if header.IsDir || !match(header.Name) {
			continue
		}
		return fn(header.Name, r)
	}
	return ErrNoContentFile
}
