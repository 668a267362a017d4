// Loads SVG icons from directories and keeps them
// in sync with the file system.
package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/benoitkugler/icondup/batch"
	"github.com/benoitkugler/icondup/svgnorm"
	"github.com/benoitkugler/icondup/svgraster"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

const defaultDebounce = 400 * time.Millisecond

type entry struct {
	path   string
	root   int // index of the root directory, lower wins
	markup string
}

// Library is a set of named icons read from root directories.
// Names are the paths relative to their root, without extension,
// using forward slashes and NFC normalized.
// When two roots provide the same name, the first root wins.
type Library struct {
	roots      []string
	extensions []string
	recursive  bool
	debounce   time.Duration
	logger     *zap.Logger

	mu    sync.RWMutex
	icons map[string]entry
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets a logger for debug output (skipped files, file events, etc.).
func WithLogger(l *zap.Logger) Option {
	return func(lib *Library) {
		if l != nil {
			lib.logger = l
		}
	}
}

// WithExtensions restricts the files loaded. The default is ".svg".
func WithExtensions(extensions ...string) Option {
	return func(lib *Library) { lib.extensions = extensions }
}

// WithRecursive sets whether sub directories are scanned. The default is true.
func WithRecursive(recursive bool) Option {
	return func(lib *Library) { lib.recursive = recursive }
}

// WithDebounce sets the delay waited after a file change before reloading it.
func WithDebounce(d time.Duration) Option {
	return func(lib *Library) { lib.debounce = d }
}

// New returns an empty library over `roots`. Use Load to read the icons.
func New(roots []string, opts ...Option) *Library {
	lib := &Library{
		extensions: []string{".svg"},
		recursive:  true,
		debounce:   defaultDebounce,
		logger:     zap.NewNop(),
		icons:      make(map[string]entry),
	}
	for _, root := range roots {
		lib.roots = append(lib.roots, filepath.Clean(root))
	}
	for _, opt := range opts {
		opt(lib)
	}
	return lib
}

// Roots returns a copy of the root directories.
func (lib *Library) Roots() []string { return slices.Clone(lib.roots) }

// Load scans every root directory, replacing the current icons.
// Files which are not SVG documents are skipped.
func (lib *Library) Load() error {
	icons := make(map[string]entry)
	for i, root := range lib.roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && !lib.recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if !matchExtension(path, lib.extensions) {
				return nil
			}
			e, name, ok := lib.read(i, path)
			if !ok {
				return nil
			}
			if _, has := icons[name]; has {
				lib.logger.Debug("duplicate icon name", zap.String("name", name), zap.String("path", path))
				return nil
			}
			icons[name] = e
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", root, err)
		}
	}

	lib.mu.Lock()
	lib.icons = icons
	lib.mu.Unlock()
	lib.logger.Info("icon library loaded", zap.Int("icons", len(icons)), zap.Strings("roots", lib.roots))
	return nil
}

// read loads one file, returning false if it is not a usable icon.
func (lib *Library) read(root int, path string) (entry, string, bool) {
	name, err := iconName(lib.roots[root], path)
	if err != nil {
		lib.logger.Debug("invalid icon path", zap.String("path", path), zap.Error(err))
		return entry{}, "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		lib.logger.Debug("failed to read icon", zap.String("path", path), zap.Error(err))
		return entry{}, "", false
	}
	if !svgnorm.HasRoot(data) {
		lib.logger.Debug("skipping non svg file", zap.String("path", path))
		return entry{}, "", false
	}
	return entry{path: path, root: root, markup: string(data)}, name, true
}

func iconName(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return norm.NFC.String(filepath.ToSlash(rel)), nil
}

func matchExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	if len(extensions) == 0 {
		return true
	}
	for _, e := range extensions {
		eNorm := strings.TrimPrefix(strings.ToLower(e), ".")
		extNorm := strings.TrimPrefix(strings.ToLower(ext), ".")
		if eNorm == extNorm {
			return true
		}
	}
	return false
}

// Len returns the number of icons.
func (lib *Library) Len() int {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return len(lib.icons)
}

// Names returns the sorted icon names.
func (lib *Library) Names() []string {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	names := make([]string, 0, len(lib.icons))
	for name := range lib.icons {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get returns the raw markup of the icon `name`.
func (lib *Library) Get(name string) (string, bool) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	e, ok := lib.icons[norm.NFC.String(name)]
	return e.markup, ok
}

// Candidates returns the icons, sorted by name, ready to be compared.
func (lib *Library) Candidates() []batch.Candidate {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	out := make([]batch.Candidate, 0, len(lib.icons))
	for name, e := range lib.icons {
		out = append(out, batch.Candidate{Name: name, Source: svgraster.Markup(e.markup)})
	}
	slices.SortFunc(out, func(a, b batch.Candidate) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// rootOf returns the index of the first root containing path.
func (lib *Library) rootOf(path string) (int, bool) {
	clean := filepath.Clean(path)
	for i, root := range lib.roots {
		if inDir(root, clean) {
			return i, true
		}
	}
	return 0, false
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// update reloads the file at path, removing its icon if the file is gone or invalid.
func (lib *Library) update(path string) {
	root, ok := lib.rootOf(path)
	if !ok {
		return
	}
	if !lib.recursive && filepath.Dir(filepath.Clean(path)) != lib.roots[root] {
		return
	}
	e, name, ok := lib.read(root, path)
	if !ok {
		lib.remove(path)
		return
	}

	lib.mu.Lock()
	defer lib.mu.Unlock()
	if current, has := lib.icons[name]; has && current.root < root {
		return
	}
	lib.icons[name] = e
	lib.logger.Debug("icon updated", zap.String("name", name), zap.String("path", path))
}

// remove drops the icon loaded from path, if any.
func (lib *Library) remove(path string) {
	root, ok := lib.rootOf(path)
	if !ok {
		return
	}
	name, err := iconName(lib.roots[root], path)
	if err != nil {
		return
	}
	lib.mu.Lock()
	defer lib.mu.Unlock()
	if current, has := lib.icons[name]; has && current.path == filepath.Clean(path) {
		delete(lib.icons, name)
		lib.logger.Debug("icon removed", zap.String("name", name), zap.String("path", path))
	}
}
