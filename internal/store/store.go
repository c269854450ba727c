package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/agentic-research/assetwalk/internal/asset"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

var (
	ErrNotExist    = errors.New("asset does not exist")
	ErrDecode      = errors.New("asset cannot be decoded")
	ErrNoType      = errors.New("asset has no type")
	ErrNoAssets    = errors.New("no assets found")
	ErrNoDirectory = errors.New("directory does not exist")
	ErrAmbiguous   = errors.New("asset has several files")
)

// Extensions lists the supported asset encodings, in lookup order.
var Extensions = []string{".json", ".yaml", ".yml", ".hcl"}

// Typer extracts the runtime type name from a decoded document.
type Typer interface {
	TypeOf(doc map[string]any) string
}

// Store resolves identifiers to asset files on a billy filesystem rooted at
// the content directory and decodes them into objects.
type Store struct {
	fs    billy.Filesystem
	mount string
	typer Typer
}

// New wraps fs. Identifiers under mount map to paths relative to the root of fs.
func New(fs billy.Filesystem, mount string, typer Typer) *Store {
	if mount == "" {
		mount = asset.DefaultMount
	}
	return &Store{fs: fs, mount: mount, typer: typer}
}

// Open returns a Store over the content directory at root on the host filesystem.
func Open(root, mount string, typer Typer) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDirectory, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoDirectory, root)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	return New(chroot.New(osfs.New("/"), abs), mount, typer), nil
}

// Mount returns the identifier prefix of this store.
func (s *Store) Mount() string { return s.mount }

// Identify returns the identifier of a file path relative to the store root.
func (s *Store) Identify(file string) asset.Identifier {
	return asset.FromFile(s.mount, file)
}

// Exists reports whether id denotes an asset file in the store.
func (s *Store) Exists(id asset.Identifier) bool {
	names, _ := s.candidates(id)
	return len(names) > 0
}

// candidates lists the files that could back id, one per supported extension.
func (s *Store) candidates(id asset.Identifier) ([]string, error) {
	rel, ok := id.Relative(s.mount)
	if !ok || rel == "" {
		return nil, fmt.Errorf("%w: %s is outside mount %s", ErrNotExist, id, s.mount)
	}
	var names []string
	for _, ext := range Extensions {
		name := rel + ext
		info, err := s.fs.Stat(name)
		if err == nil && !info.IsDir() {
			names = append(names, name)
		}
	}
	return names, nil
}

// locate finds the single file backing id. Two files differing only in
// extension make id ambiguous.
func (s *Store) locate(id asset.Identifier) (string, error) {
	names, err := s.candidates(id)
	if err != nil {
		return "", err
	}
	switch len(names) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotExist, id)
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("%w: %s is backed by %s", ErrAmbiguous, id, strings.Join(names, ", "))
	}
}

// Load reads and decodes the asset named by id.
func (s *Store) Load(ctx context.Context, id asset.Identifier) (*asset.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := s.locate(id)
	if err != nil {
		return nil, err
	}
	data, err := util.ReadFile(s.fs, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	doc, err := decode(name, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
	}

	typ := s.typer.TypeOf(doc)
	if typ == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoType, name)
	}
	return &asset.Object{ID: id, Type: typ, Values: doc}, nil
}

func decode(name string, data []byte) (map[string]any, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return decodeJSON(data)
	case ".yaml", ".yml":
		return decodeYAML(data)
	case ".hcl":
		return decodeHCL(name, data)
	default:
		return nil, fmt.Errorf("unsupported extension %q", path.Ext(name))
	}
}
