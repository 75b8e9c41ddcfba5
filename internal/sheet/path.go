package sheet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxVersions bounds the search for a free versioned file name.
const maxVersions = 10000

// NextVersionedPath returns dir/file when it does not exist yet, otherwise
// the first free dir/<base>N<ext> for N = 2, 3, ... (backup_all.xlsx,
// backup_all2.xlsx, backup_all3.xlsx).
func NextVersionedPath(dir, file string) (string, error) {
	ext := filepath.Ext(file)
	base := strings.TrimSuffix(file, ext)

	for n := 1; n <= maxVersions; n++ {
		name := file
		if n > 1 {
			name = fmt.Sprintf("%s%d%s", base, n, ext)
		}
		candidate := filepath.Join(dir, name)

		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("no free file name for %s in %s", file, dir)
}
