package asset

import (
	"path"
	"path/filepath"
	"strings"
)

// DefaultMount is the logical prefix of identifiers for the content root.
const DefaultMount = "/Game/"

// Identifier is a normalized logical path naming one loadable asset,
// e.g. "/Game/Characters/Hero". The zero value is the null reference.
type Identifier string

func (id Identifier) String() string { return string(id) }

// IsZero reports whether id is the null reference.
func (id Identifier) IsZero() bool { return id == "" }

// Normalize turns a stored reference into an Identifier.
// Soft object paths carry an object suffix ("/Game/Hero.Hero"); only the
// package part names the asset, so the suffix is dropped.
func Normalize(ref string) Identifier {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	ref = filepath.ToSlash(ref)
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	ref = path.Clean(ref)

	dir, base := path.Split(ref)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	if i := strings.Index(base, ":"); i > 0 {
		base = base[:i]
	}
	return Identifier(dir + base)
}

// FromFile builds the identifier for a file path relative to the content
// root: the extension is stripped and the mount prefix added.
func FromFile(mount, rel string) Identifier {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	return Normalize(path.Join(normalizeMount(mount), rel))
}

// Relative strips the mount prefix, yielding the extension-less file path
// under the content root. ok is false when id lives under another mount.
func (id Identifier) Relative(mount string) (rel string, ok bool) {
	m := normalizeMount(mount)
	s := string(id)
	if !strings.HasPrefix(s, m) {
		return "", false
	}
	return strings.TrimPrefix(s, m), true
}

func normalizeMount(mount string) string {
	if mount == "" {
		mount = DefaultMount
	}
	mount = "/" + strings.Trim(filepath.ToSlash(mount), "/") + "/"
	if mount == "//" {
		return "/"
	}
	return mount
}
