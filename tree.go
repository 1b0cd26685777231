package dotconf

import (
	"strconv"
)

// Tree is the parsed content of one configuration file: string keys mapped to
// scalars (string, number, bool, nil), sequences ([]any) or nested Trees.
//
// Mappings inside a Tree are always of type map[string]any; the loader
// normalizes decoder output before anything is merged into the cache.
type Tree = map[string]any

// mergeInto combines value into target under key.
//
// A mapping value is merged key by key into target[key], creating it when
// absent. If target[key] currently holds a scalar or a sequence, the mapping
// replaces it (overwrite wins). Any other value overwrites target[key].
func mergeInto(target Tree, key string, value any) {
	m, ok := value.(map[string]any)
	if !ok {
		target[key] = clone(value)
		return
	}

	sub, ok := target[key].(map[string]any)
	if !ok {
		sub = make(Tree, len(m))
		target[key] = sub
	}
	for k, v := range m {
		mergeInto(sub, k, v)
	}
}

// walk descends node along segments. It reports false as soon as a segment
// cannot be followed: the node is not a container, the key is missing, the
// index is out of range, or the value found is nil.
func walk(node any, segments []string) (any, bool) {
	for _, seg := range segments {
		switch n := node.(type) {
		case map[string]any:
			v, ok := n[seg]
			if !ok {
				return nil, false
			}
			node = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(n) {
				return nil, false
			}
			node = n[i]
		default:
			return nil, false
		}
		if node == nil {
			return nil, false
		}
	}
	return node, true
}

// clone returns a deep copy of mappings and sequences. Scalars are returned as is.
func clone(v any) any {
	switch n := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, sv := range n {
			out[k] = clone(sv)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, sv := range n {
			out[i] = clone(sv)
		}
		return out
	default:
		return v
	}
}
