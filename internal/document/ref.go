package document

import "strings"

const compendiumPrefix = "Compendium"

// Ref is a parsed document reference: either a local Kind.id identity or a
// Compendium.namespace.pack.id coordinate, optionally with an in-page anchor.
type Ref struct {
	Kind      Kind
	ID        string
	Namespace string
	Pack      string
	Anchor    string
}

// IsCompendium reports whether the reference names a compendium coordinate
// rather than a local document.
func (r Ref) IsCompendium() bool {
	return r.Namespace != ""
}

// String renders the canonical reference string, without anchor.
func (r Ref) String() string {
	if r.IsCompendium() {
		return compendiumPrefix + "." + r.Namespace + "." + r.Pack + "." + r.ID
	}
	return string(r.Kind) + "." + r.ID
}

// Coordinate renders the bracket-tag body: `ns.pack.id` for compendium
// references, plain `id` otherwise.
func (r Ref) Coordinate() string {
	if r.IsCompendium() {
		return r.Namespace + "." + r.Pack + "." + r.ID
	}
	return r.ID
}

// ParseRef parses a reference string of the form `Kind.id` or
// `Compendium.namespace.pack.id`, tolerating an `#anchor` suffix on the id
// segment. Malformed references return ok=false; callers drop them silently
// per the extraction contract.
func ParseRef(raw string) (Ref, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ref{}, false
	}

	var ref Ref
	if id, anchor, found := strings.Cut(raw, "#"); found {
		raw = id
		ref.Anchor = anchor
	}

	segments := strings.Split(raw, ".")
	switch {
	case len(segments) == 4 && segments[0] == compendiumPrefix:
		ref.Namespace, ref.Pack, ref.ID = segments[1], segments[2], segments[3]
		if ref.Namespace == "" || ref.Pack == "" || ref.ID == "" {
			return Ref{}, false
		}
		return ref, true
	case len(segments) == 2:
		kind, ok := ParseKind(segments[0])
		if !ok || segments[1] == "" {
			return Ref{}, false
		}
		ref.Kind, ref.ID = kind, segments[1]
		return ref, true
	default:
		return Ref{}, false
	}
}

// ParseTagTarget parses the inside of an `@Kind[target]` bracket tag. The
// target is either a plain local id (kind taken from the tag name) or a full
// `ns.pack.id` compendium coordinate when the tag kind is Compendium.
func ParseTagTarget(tagKind, target string) (Ref, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Ref{}, false
	}

	var anchor string
	if id, a, found := strings.Cut(target, "#"); found {
		target, anchor = id, a
	}

	if tagKind == compendiumPrefix {
		segments := strings.Split(target, ".")
		if len(segments) != 3 || segments[0] == "" || segments[1] == "" || segments[2] == "" {
			return Ref{}, false
		}
		return Ref{Namespace: segments[0], Pack: segments[1], ID: segments[2], Anchor: anchor}, true
	}

	kind, ok := ParseKind(tagKind)
	if !ok || strings.Contains(target, ".") {
		return Ref{}, false
	}
	return Ref{Kind: kind, ID: target, Anchor: anchor}, true
}
