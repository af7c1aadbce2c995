package content

import (
	"fmt"

	"github.com/bodgit/sevenzip"
	"github.com/spf13/afero"
)

// extractFrom7z hands the first matching file of a 7z archive to fn
func extractFrom7z(fs afero.Fs, path string, match entryMatch, fn entryFunc) error {
	f, size, err := openSized(fs, path)
	if err != nil {
		return fmt.Errorf("failed to open 7z: %w", err)
	}
	defer f.Close()

	r, err := sevenzip.NewReader(f, size)
	if err != nil {
		return fmt.Errorf("failed to open 7z: %w", err)
	}

	for _, sf := range r.File {
		if sf.FileInfo().IsDir() || !match(sf.Name) {
			continue
		}
		rc, err := sf.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s in archive: %w", sf.Name, err)
		}
		defer rc.Close()
		return fn(sf.Name, rc)
	}
	return ErrNoContentFile
}
