package dotconf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	extYML  = ".yml"
	extYAML = ".yaml"
	extJSON = ".json"
)

// normalizeExt returns ext with a leading dot, or ErrUnsupportedConfigFileType
// when no decoder is registered for it.
func normalizeExt(ext string) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	switch strings.ToLower(ext) {
	case extYML, extYAML, extJSON:
		return ext, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedConfigFileType, ext)
}

// loader turns a file identifier into a Tree. It owns no state beyond the
// snapshot of search roots and extension it was built with, and never caches.
type loader struct {
	paths []string
	ext   string
}

// resolve returns the first existing {root}/{id}{ext} in search path order.
func (l loader) resolve(id string) (string, error) {
	for _, root := range l.paths {
		candidate := filepath.Join(root, id+l.ext)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q (ext %s, searched %s)",
		ErrFileNotFound, id, l.ext, strings.Join(l.paths, string(filepath.ListSeparator)))
}

// parse reads path and decodes it into a Tree.
func (l loader) parse(path string) (Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w %s: %w", ErrParse, path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w %s: empty document", ErrParse, path)
	}

	var raw any
	switch strings.ToLower(filepath.Ext(path)) {
	case extJSON:
		err = json.Unmarshal(data, &raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrParse, path, err)
	}

	tree, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w %s: top-level value is %T, want a mapping", ErrParse, path, raw)
	}
	return tree, nil
}

// normalize rewrites decoder output so every mapping is a map[string]any.
// yaml.v3 yields map[interface{}]interface{} when a mapping has a non-string key.
func normalize(v any) any {
	switch n := v.(type) {
	case map[string]any:
		for k, sv := range n {
			n[k] = normalize(sv)
		}
		return n
	case map[any]any:
		out := make(map[string]any, len(n))
		for k, sv := range n {
			out[fmt.Sprint(k)] = normalize(sv)
		}
		return out
	case []any:
		for i, sv := range n {
			n[i] = normalize(sv)
		}
		return n
	default:
		return v
	}
}
