package backfill

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/brightsciences/lessonpress/internal/errors"
)

// Discover walks the content root and returns every record file, sorted so
// runs process records in a stable order. Hidden and underscore-prefixed
// files and directories are skipped.
func Discover(root string) ([]string, error) {
	var records []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".json") {
			records = append(records, path)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.DiscoveryError(err)
	}
	sort.Strings(records)
	return records, nil
}
