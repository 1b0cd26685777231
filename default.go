package dotconf

import "sync"

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide Registry used by the package-level
// functions. It is created on first use with New().
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New()
	})
	return defaultRegistry
}

// Load calls Default().Load.
func Load(id string) error { return Default().Load(id) }

// Get calls Default().Get.
func Get(key string, def ...any) (any, error) { return Default().Get(key, def...) }

// MustGet calls Default().MustGet.
func MustGet(key string, def ...any) any { return Default().MustGet(key, def...) }

// SetSearchPaths calls Default().SetSearchPaths.
func SetSearchPaths(paths ...string) { Default().SetSearchPaths(paths...) }

// SetExtension calls Default().SetExtension.
func SetExtension(ext string) error { return Default().SetExtension(ext) }
