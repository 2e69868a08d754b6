package assets

import "scenepack/internal/document"

// The locator walks fixed, versioned field tables per document kind. Static
// tables beat runtime type inspection: one lookup, no reflection, and the
// supported surface is readable in one place.

// directAssetFields holds document-level fields that carry a single media
// reference.
var directAssetFields = map[document.Kind][]string{
	document.KindScene:        {"img", "background.src", "foreground", "thumb"},
	document.KindActor:        {"img", "prototypeToken.texture.src"},
	document.KindItem:         {"img"},
	document.KindJournalEntry: {"img"},
	document.KindRollTable:    {"img"},
	document.KindMacro:        {"img"},
	document.KindCards:        {"img", "back.img"},
}

// embeddedAssetField names a media-bearing sub-field inside an embedded
// child collection (one collection entry per child record).
type embeddedAssetField struct {
	collection string
	path       string
}

var embeddedAssetFields = map[document.Kind][]embeddedAssetField{
	document.KindScene: {
		{collection: "tokens", path: "texture.src"},
		{collection: "tiles", path: "texture.src"},
		{collection: "notes", path: "texture.src"},
		{collection: "sounds", path: "path"},
	},
	document.KindActor: {
		{collection: "items", path: "img"},
		{collection: "effects", path: "img"},
	},
	document.KindItem: {
		{collection: "effects", path: "img"},
	},
	document.KindRollTable: {
		{collection: "results", path: "img"},
	},
	document.KindPlaylist: {
		{collection: "sounds", path: "path"},
	},
	document.KindJournalEntry: {
		{collection: "pages", path: "src"},
	},
}

// htmlAssetFields holds rich-text fields whose embedded <img>/<audio> tags
// carry asset references. Journal pages are covered via embeddedHTMLFields.
var htmlAssetFields = map[document.Kind][]string{
	document.KindJournalEntry: {"content"},
	document.KindActor:        {"system.details.biography.value"},
	document.KindItem:         {"system.description.value"},
}

var embeddedHTMLFields = map[document.Kind][]embeddedAssetField{
	document.KindJournalEntry: {
		{collection: "pages", path: "text.content"},
	},
	document.KindRollTable: {
		{collection: "results", path: "description"},
	},
}

// pluginBlobFlags names third-party module flags whose values are JSON blobs
// (or pre-parsed trees) containing their own asset references. The blob is
// mined for the listed keys wherever they occur.
type pluginBlob struct {
	flagPath string
	keys     []string
}

var pluginBlobs = map[document.Kind][]pluginBlob{
	document.KindJournalEntry: {
		{flagPath: "flags.quick-encounters.quickEncounter", keys: []string{"img", "src", "tokenImg"}},
		{flagPath: "flags.monks-enhanced-journal.pages", keys: []string{"img", "src"}},
	},
	document.KindScene: {
		{flagPath: "flags.monks-active-tiles", keys: []string{"img", "src", "audiofile"}},
	},
}
