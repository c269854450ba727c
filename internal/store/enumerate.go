package store

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/util"
)

// DefaultInclude matches every supported asset encoding.
var DefaultInclude = []string{"**/*.{json,yaml,yml,hcl}"}

// Enumerate lists the asset files under dir (relative to the store root),
// keeping paths that match any include pattern and no exclude pattern.
// Patterns are doublestar globs matched against the store-relative path.
// The result is sorted.
func (s *Store) Enumerate(dir string, include, exclude []string) ([]string, error) {
	if dir == "" || dir == "/" {
		dir = "."
	}
	dir = strings.TrimPrefix(filepath.ToSlash(dir), "/")
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}

	info, err := s.fs.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoDirectory, dir)
	}

	var files []string
	err = util.Walk(s.fs, dir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		rel := path.Clean(strings.TrimPrefix(filepath.ToSlash(p), "/"))
		if matchAny(include, rel) && !matchAny(exclude, rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoAssets, dir)
	}
	sort.Strings(files)
	return files, nil
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// IsEnumerationError reports whether err aborted a run before traversal.
func IsEnumerationError(err error) bool {
	return errors.Is(err, ErrNoAssets) || errors.Is(err, ErrNoDirectory)
}
