package document

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies one of the supported document collections.
type Kind string

const (
	KindScene        Kind = "Scene"
	KindActor        Kind = "Actor"
	KindItem         Kind = "Item"
	KindJournalEntry Kind = "JournalEntry"
	KindRollTable    Kind = "RollTable"
	KindPlaylist     Kind = "Playlist"
	KindMacro        Kind = "Macro"
	KindCards        Kind = "Cards"
)

// ProcessingOrder is the fixed order both export and import walk document
// kinds. Kinds with fewer outbound references come first; Scenes, which
// reference almost everything else, come last. The ordering is a UX/progress
// concern, not a correctness one: the resolver reconciles references
// regardless of creation order.
func ProcessingOrder() []Kind {
	return []Kind{
		KindPlaylist,
		KindMacro,
		KindItem,
		KindCards,
		KindActor,
		KindRollTable,
		KindJournalEntry,
		KindScene,
	}
}

// ParseKind converts a string into a Kind if it names a supported collection.
func ParseKind(value string) (Kind, bool) {
	switch Kind(strings.TrimSpace(value)) {
	case KindScene, KindActor, KindItem, KindJournalEntry, KindRollTable, KindPlaylist, KindMacro, KindCards:
		return Kind(strings.TrimSpace(value)), true
	}
	return "", false
}

var collectionKinds = map[string]Kind{
	"scenes":     KindScene,
	"actors":     KindActor,
	"items":      KindItem,
	"journals":   KindJournalEntry,
	"journal":    KindJournalEntry,
	"rolltables": KindRollTable,
	"tables":     KindRollTable,
	"playlists":  KindPlaylist,
	"macros":     KindMacro,
	"cards":      KindCards,
}

// KindFromCollection maps a compendium pack's collection path segment to a
// document kind, when the segment maps unambiguously to one.
func KindFromCollection(segment string) (Kind, bool) {
	kind, ok := collectionKinds[strings.ToLower(strings.TrimSpace(segment))]
	return kind, ok
}

// Document is an opaque record of a fixed kind with a mutable field tree.
// The tree always carries the host's serialized shape, including `_id`,
// `name`, `folder`, and `flags`.
type Document struct {
	Kind Kind
	Data map[string]any
}

// New wraps a raw field tree as a Document of the given kind.
func New(kind Kind, data map[string]any) *Document {
	if data == nil {
		data = map[string]any{}
	}
	return &Document{Kind: kind, Data: data}
}

// FromJSON parses serialized document data.
func FromJSON(kind Kind, raw []byte) (*Document, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s document: %w", kind, err)
	}
	return New(kind, data), nil
}

// ID returns the document's local identifier.
func (d *Document) ID() string {
	id, _ := StringAt(d.Data, "_id")
	return id
}

// SetID replaces the document's local identifier.
func (d *Document) SetID(id string) {
	d.Data["_id"] = id
}

// Name returns the document's display name.
func (d *Document) Name() string {
	name, _ := StringAt(d.Data, "name")
	return name
}

// FolderID returns the ID of the folder the document lives in, if any.
func (d *Document) FolderID() string {
	folder, _ := StringAt(d.Data, "folder")
	return folder
}

// SetFolderID repoints the document at a folder.
func (d *Document) SetFolderID(id string) {
	d.Data["folder"] = id
}

// UUID returns the document's globally-unique identity of the form Kind.id.
func (d *Document) UUID() string {
	return string(d.Kind) + "." + d.ID()
}

// JSON serializes the field tree.
func (d *Document) JSON() ([]byte, error) {
	return json.Marshal(d.Data)
}

// Clone returns a deep copy; mutations on the copy never leak back.
func (d *Document) Clone() *Document {
	return &Document{Kind: d.Kind, Data: cloneTree(d.Data)}
}

func cloneTree(tree map[string]any) map[string]any {
	out := make(map[string]any, len(tree))
	for key, value := range tree {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneTree(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return typed
	}
}
