package relations

import (
	"encoding/json"
	"sort"

	"scenepack/internal/document"
)

// RelatedData aggregates extracted relations into a multi-map keyed by source
// document UUID. It is the authority for what must be imported alongside a
// document: the closure it yields is one level deep by design — documents
// referenced by a scene are related, documents referenced by those documents
// are not transitively pulled in.
type RelatedData struct {
	relations map[string][]Relation
}

// NewRelatedData returns an empty relation graph.
func NewRelatedData() *RelatedData {
	return &RelatedData{relations: map[string][]Relation{}}
}

// AddRelations records relations found in the given source document,
// deduplicating by value.
func (r *RelatedData) AddRelations(sourceUUID string, rels []Relation) {
	if len(rels) == 0 {
		return
	}
	existing := r.relations[sourceUUID]
	seen := make(map[Relation]bool, len(existing)+len(rels))
	for _, rel := range existing {
		seen[rel] = true
	}
	for _, rel := range rels {
		if seen[rel] {
			continue
		}
		seen[rel] = true
		existing = append(existing, rel)
	}
	r.relations[sourceUUID] = existing
}

// Get returns the relations recorded for a source document.
func (r *RelatedData) Get(sourceUUID string) []Relation {
	return r.relations[sourceUUID]
}

// All returns every relation across all sources, deduplicated by value.
func (r *RelatedData) All() []Relation {
	seen := map[Relation]bool{}
	var out []Relation
	for _, source := range r.Sources() {
		for _, rel := range r.relations[source] {
			if seen[rel] {
				continue
			}
			seen[rel] = true
			out = append(out, rel)
		}
	}
	return out
}

// Sources returns the recorded source UUIDs in deterministic order.
func (r *RelatedData) Sources() []string {
	sources := make([]string, 0, len(r.relations))
	for source := range r.relations {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}

// TargetUUIDs returns the distinct target reference strings recorded for a
// source document.
func (r *RelatedData) TargetUUIDs(sourceUUID string) []string {
	set := map[string]bool{}
	for _, rel := range r.relations[sourceUUID] {
		set[rel.UUID] = true
	}
	targets := make([]string, 0, len(set))
	for target := range set {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return targets
}

// MarshalJSON serializes the graph as a plain map of source UUID to relation
// array.
func (r *RelatedData) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.relations)
}

// UnmarshalJSON restores the graph from its archive form.
func (r *RelatedData) UnmarshalJSON(raw []byte) error {
	r.relations = map[string][]Relation{}
	return json.Unmarshal(raw, &r.relations)
}

// Summary is a minimal document handle used for import-time opt-in prompts.
type Summary struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// UnrelatedData is the complement of RelatedData: documents in an export
// selection that no scene actually depends on, grouped by kind.
type UnrelatedData struct {
	byKind map[document.Kind][]Summary
}

// NewUnrelatedData returns an empty unrelated set.
func NewUnrelatedData() *UnrelatedData {
	return &UnrelatedData{byKind: map[document.Kind][]Summary{}}
}

// Add records a document as currently unrelated.
func (u *UnrelatedData) Add(kind document.Kind, summary Summary) {
	for _, existing := range u.byKind[kind] {
		if existing.UUID == summary.UUID {
			return
		}
	}
	u.byKind[kind] = append(u.byKind[kind], summary)
}

// Remove drops a document from the unrelated set; used when a scene's
// relation closure claims it.
func (u *UnrelatedData) Remove(uuid string) {
	for kind, summaries := range u.byKind {
		filtered := summaries[:0]
		for _, summary := range summaries {
			if summary.UUID != uuid {
				filtered = append(filtered, summary)
			}
		}
		if len(filtered) == 0 {
			delete(u.byKind, kind)
			continue
		}
		u.byKind[kind] = filtered
	}
}

// Contains reports whether a document is still in the unrelated set.
func (u *UnrelatedData) Contains(uuid string) bool {
	for _, summaries := range u.byKind {
		for _, summary := range summaries {
			if summary.UUID == uuid {
				return true
			}
		}
	}
	return false
}

// Get returns the unrelated summaries for one kind.
func (u *UnrelatedData) Get(kind document.Kind) []Summary {
	return u.byKind[kind]
}

// MarshalJSON serializes as a map of kind to summary array.
func (u *UnrelatedData) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.byKind)
}

// UnmarshalJSON restores the unrelated set from its archive form.
func (u *UnrelatedData) UnmarshalJSON(raw []byte) error {
	u.byKind = map[document.Kind][]Summary{}
	return json.Unmarshal(raw, &u.byKind)
}
