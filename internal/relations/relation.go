package relations

// Relation records that a document contains a reference to another document.
// UUID is the target reference string (`Kind.id` or `Compendium.ns.pack.id`);
// Path is the field the reference was found in. EmbeddedID and EmbeddedPath
// disambiguate references nested inside a child record (a specific roll-table
// result row, a tile action) so the resolver can target the right child.
type Relation struct {
	UUID         string `json:"uuid"`
	Path         string `json:"path"`
	EmbeddedID   string `json:"embeddedId,omitempty"`
	EmbeddedPath string `json:"embeddedPath,omitempty"`
}
