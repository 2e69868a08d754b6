package relations

import "scenepack/internal/document"

// richTextFields holds document-level fields scanned for bracket tags and
// reference-bearing anchors.
var richTextFields = map[document.Kind][]string{
	document.KindJournalEntry: {"content"},
	document.KindActor:        {"system.details.biography.value"},
	document.KindItem:         {"system.description.value"},
	document.KindMacro:        {"command"},
	document.KindCards:        {"description"},
}

// embeddedRichText names rich-text sub-fields inside embedded collections.
type embeddedRichText struct {
	collection string
	path       string
}

var embeddedRichTextFields = map[document.Kind][]embeddedRichText{
	document.KindJournalEntry: {
		{collection: "pages", path: "text.content"},
	},
	document.KindRollTable: {
		{collection: "results", path: "description"},
	},
	document.KindCards: {
		{collection: "cards", path: "description"},
	},
}

// directRefField is a document-level field holding a bare local id of a known
// kind (no tag syntax).
type directRefField struct {
	path string
	kind document.Kind
}

var directRefFields = map[document.Kind][]directRefField{
	document.KindScene: {
		{path: "playlist", kind: document.KindPlaylist},
		{path: "journal", kind: document.KindJournalEntry},
	},
}

// structuredRefField is an embedded-collection field holding a bare local id.
type structuredRefField struct {
	collection string
	idField    string
	kind       document.Kind
}

var structuredRefFields = map[document.Kind][]structuredRefField{
	document.KindScene: {
		{collection: "notes", idField: "entryId", kind: document.KindJournalEntry},
		{collection: "tokens", idField: "actorId", kind: document.KindActor},
	},
}
