package dotconf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ygrebnov/dotconf/streams"
)

const (
	defaultExtension = extYML
	keySeparator     = "."
	envConfigPath    = "_CONFIG_PATH"
)

// Exported error categories returned by this package. They are wrapped with
// context, so use errors.Is to classify a failure.
//   - ErrFileNotFound: no search root holds {id}{ext}.
//   - ErrParse: the file exists but is unreadable, malformed, or not a mapping.
//   - ErrInvalidKey: a lookup key has fewer than two dot-separated segments.
//   - ErrInvalidFileID: a file identifier is empty or escapes its search root.
//   - ErrUnsupportedConfigFileType: the extension is not .yml, .yaml or .json.
var (
	ErrFileNotFound              = errors.New("config file not found")
	ErrParse                     = errors.New("parse config file")
	ErrInvalidKey                = errors.New("invalid config key")
	ErrInvalidFileID             = errors.New("invalid config file identifier")
	ErrUnsupportedConfigFileType = errors.New("unsupported config file type")
)

// Registry caches configuration files found on an ordered search path and
// resolves dotted keys against them.
//
// A file is read at most once: the first Load (or Get touching it) parses the
// file and merges it into the cache, later calls are served from memory even
// if the file changes on disk. A failed load leaves nothing behind, so the
// next call retries. Invalidate and Reset drop cached files explicitly.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	paths   []string
	ext     string
	loaded  map[string]struct{}
	store   map[string]Tree
	streams streams.Streams
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// New returns a Registry searching the current directory for .yml files,
// then applies opts in order.
func New(opts ...Option) *Registry {
	r := &Registry{
		paths:  []string{"."},
		ext:    defaultExtension,
		loaded: make(map[string]struct{}),
		store:  make(map[string]Tree),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithSearchPaths appends search roots after the current directory.
func WithSearchPaths(paths ...string) Option {
	return func(r *Registry) {
		r.paths = append(r.paths, paths...)
	}
}

// WithExtension sets the file suffix used to build candidate paths.
// Panics if ext is not one of .yml, .yaml or .json.
func WithExtension(ext string) Option {
	return func(r *Registry) {
		e, err := normalizeExt(ext)
		if err != nil {
			panic("dotconf: WithExtension: " + err.Error())
		}
		r.ext = e
	}
}

// WithStreams routes "loaded" notices to s.Out() and load failures to
// s.ErrOut(). Failures are still returned to the caller.
func WithStreams(s streams.Streams) Option {
	return func(r *Registry) {
		r.streams = s
	}
}

// WithUserConfigDir appends <user config dir>/<dirName> as a search root.
// XDG_CONFIG_HOME is preferred when set, then os.UserConfigDir. If neither
// yields a directory the option does nothing. Panics if dirName is empty.
func WithUserConfigDir(dirName string) Option {
	if dirName == "" {
		panic("dotconf: WithUserConfigDir: dirName cannot be empty")
	}
	return func(r *Registry) {
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			var err error
			if base, err = os.UserConfigDir(); err != nil {
				return
			}
		}
		r.paths = append(r.paths, filepath.Join(base, dirName))
	}
}

// WithEnvPrefix appends the directories listed in ${prefix}_CONFIG_PATH,
// separated by os.PathListSeparator, as search roots. Panics if prefix is empty.
func WithEnvPrefix(prefix string) Option {
	if prefix == "" {
		panic("dotconf: WithEnvPrefix: prefix cannot be empty")
	}
	return func(r *Registry) {
		for _, p := range filepath.SplitList(os.Getenv(prefix + envConfigPath)) {
			if p != "" {
				r.paths = append(r.paths, p)
			}
		}
	}
}

// SetSearchPaths appends search roots. Existing roots are never removed or
// reordered, and roots added earlier take priority.
func (r *Registry) SetSearchPaths(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, paths...)
}

// SearchPaths returns a copy of the search roots in resolution order.
func (r *Registry) SearchPaths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// SetExtension changes the suffix used for files loaded from now on. A
// missing leading dot is added. Files already loaded are not affected.
func (r *Registry) SetExtension(ext string) error {
	e, err := normalizeExt(ext)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.ext = e
	r.mu.Unlock()
	return nil
}

// Extension returns the current file suffix.
func (r *Registry) Extension() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ext
}

// Load reads the file identified by id from the first search root that has
// it and caches its content. Loading an already loaded id is a no-op.
func (r *Registry) Load(id string) error {
	if err := validateFileID(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(id)
}

func (r *Registry) loadLocked(id string) error {
	if _, ok := r.loaded[id]; ok {
		return nil
	}

	l := loader{paths: r.paths, ext: r.ext}
	path, err := l.resolve(id)
	if err != nil {
		r.notify(r.errOut(), "dotconf: load %s: %v\n", id, err)
		return err
	}
	tree, err := l.parse(path)
	if err != nil {
		r.notify(r.errOut(), "dotconf: load %s: %v\n", id, err)
		return err
	}

	dst, ok := r.store[id]
	if !ok {
		dst = make(Tree, len(tree))
		r.store[id] = dst
	}
	for k, v := range tree {
		mergeInto(dst, k, v)
	}
	r.loaded[id] = struct{}{}

	r.notify(r.out(), "dotconf: loaded %s from %s\n", id, path)
	return nil
}

// Get resolves a dotted key of the form "file.key[.key...]". The first
// segment names the file, which is loaded on first use; the rest is walked
// through the file's content. A numeric segment indexes into a sequence.
//
// When a segment is missing, or leads to a null value, Get returns def[0]
// (nil when no default is given) and no error. Errors are reserved for
// malformed keys (ErrInvalidKey) and failed loads (ErrFileNotFound, ErrParse).
//
// Mappings and sequences are returned as copies.
func (r *Registry) Get(key string, def ...any) (any, error) {
	v, ok, err := r.Lookup(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		if len(def) > 0 {
			return def[0], nil
		}
		return nil, nil
	}
	return v, nil
}

// MustGet is like Get but panics on error.
func (r *Registry) MustGet(key string, def ...any) any {
	v, err := r.Get(key, def...)
	if err != nil {
		panic(err)
	}
	return v
}

// Lookup is like Get but reports whether the key resolved instead of taking
// a default.
func (r *Registry) Lookup(key string) (any, bool, error) {
	id, rest, err := splitKey(key)
	if err != nil {
		return nil, false, err
	}
	if err := r.Load(id); err != nil {
		return nil, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	tree, ok := r.store[id]
	if !ok {
		// invalidated between Load and RLock
		return nil, false, nil
	}
	v, ok := walk(tree, rest)
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

// IsLoaded reports whether id has been loaded and is served from the cache.
func (r *Registry) IsLoaded(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loaded[id]
	return ok
}

// Loaded returns the loaded file identifiers in lexical order.
func (r *Registry) Loaded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.loaded))
	for id := range r.loaded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Invalidate forgets id so the next Load or Get reads it from disk again.
func (r *Registry) Invalidate(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loaded, id)
	delete(r.store, id)
}

// Reset forgets every loaded file. Search roots and extension are kept.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = make(map[string]struct{})
	r.store = make(map[string]Tree)
}

func (r *Registry) out() io.Writer {
	if r.streams == nil {
		return nil
	}
	return r.streams.Out()
}

func (r *Registry) errOut() io.Writer {
	if r.streams == nil {
		return nil
	}
	return r.streams.ErrOut()
}

func (r *Registry) notify(w io.Writer, format string, args ...any) {
	if w != nil {
		fmt.Fprintf(w, format, args...)
	}
}

func splitKey(key string) (id string, rest []string, err error) {
	parts := strings.Split(key, keySeparator)
	if len(parts) < 2 {
		return "", nil, fmt.Errorf("%w: %q needs at least two segments (file.key)", ErrInvalidKey, key)
	}
	if err := validateFileID(parts[0]); err != nil {
		return "", nil, fmt.Errorf("%w: %q: %w", ErrInvalidKey, key, err)
	}
	return parts[0], parts[1:], nil
}

func validateFileID(id string) error {
	if id == "" || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidFileID, id)
	}
	return nil
}
