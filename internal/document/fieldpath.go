package document

import "strings"

// Lookup walks a dot-separated field path through nested maps. It returns the
// value and whether the full path existed. Array elements are not addressable
// through paths; callers iterate embedded collections explicitly.
func Lookup(tree map[string]any, path string) (any, bool) {
	if tree == nil || path == "" {
		return nil, false
	}
	segments := strings.Split(path, ".")
	current := any(tree)
	for _, segment := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// StringAt returns the string value at path, if the path exists and holds a
// non-empty string.
func StringAt(tree map[string]any, path string) (string, bool) {
	value, ok := Lookup(tree, path)
	if !ok {
		return "", false
	}
	str, ok := value.(string)
	if !ok || str == "" {
		return "", false
	}
	return str, true
}

// SliceAt returns the slice value at path, if present.
func SliceAt(tree map[string]any, path string) ([]any, bool) {
	value, ok := Lookup(tree, path)
	if !ok {
		return nil, false
	}
	slice, ok := value.([]any)
	return slice, ok
}

// SetPath writes value at the dot-separated path, creating intermediate maps
// as needed. Non-map intermediates are overwritten.
func SetPath(tree map[string]any, path string, value any) {
	if tree == nil || path == "" {
		return
	}
	segments := strings.Split(path, ".")
	current := tree
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// DeletePath removes the value at the dot-separated path if present.
// Intermediate maps emptied by the removal are pruned, so a tree that
// once held the value serializes identically to one that never did.
func DeletePath(tree map[string]any, path string) {
	if tree == nil || path == "" {
		return
	}
	deleteSegments(tree, strings.Split(path, "."))
}

func deleteSegments(node map[string]any, segments []string) {
	if len(segments) == 1 {
		delete(node, segments[0])
		return
	}
	next, ok := node[segments[0]].(map[string]any)
	if !ok {
		return
	}
	deleteSegments(next, segments[1:])
	if len(next) == 0 {
		delete(node, segments[0])
	}
}
