package fsops

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// AvailableName finds a collision-free name for placing an entry into dir.
//
// If the original name is free it is returned unchanged; otherwise a counter
// is inserted before the extension: "a.txt" becomes "a (1).txt", then
// "a (2).txt", and so on. Restore relies on this so it never overwrites an
// entry recreated since deletion.
func AvailableName(fsys afero.Fs, dir, name string) (string, error) {
	candidate := name
	for i := 1; ; i++ {
		exists, err := afero.Exists(fsys, filepath.Join(dir, candidate))
		if err != nil {
			return "", fmt.Errorf("failed to probe %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = numberedName(name, i)
	}
}

func numberedName(name string, i int) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s (%d)%s", base, i, ext)
}
