package document

// FlagScope is the namespace under `flags` where this engine stamps its
// bookkeeping data on exported and imported documents.
const FlagScope = "scenepack"

const (
	flagSourceUUID     = "flags." + FlagScope + ".sourceUUID"
	flagHash           = "flags." + FlagScope + ".hash"
	flagPackageName    = "flags." + FlagScope + ".packageName"
	flagPackageVersion = "flags." + FlagScope + ".packageVersion"
)

// SourceUUID returns the document's original identity as recorded at export
// time. This flag is the resolver's match key: a relation still pointing at an
// old coordinate resolves to the document whose SourceUUID equals it.
func (d *Document) SourceUUID() string {
	value, _ := StringAt(d.Data, flagSourceUUID)
	return value
}

// StampedHash returns the advisory content hash recorded at export time.
func (d *Document) StampedHash() string {
	value, _ := StringAt(d.Data, flagHash)
	return value
}

// PackageName returns the name of the adventure package that exported the
// document, if stamped.
func (d *Document) PackageName() string {
	value, _ := StringAt(d.Data, flagPackageName)
	return value
}

// StampExport records the document's source identity, content hash, and
// package metadata under the engine's flag scope. The source identity is the
// compendium coordinate when the document belongs to a pack, otherwise its
// world identity.
func (d *Document) StampExport(packageName, packageVersion, hash string) {
	SetPath(d.Data, flagSourceUUID, d.sourceIdentity())
	SetPath(d.Data, flagHash, hash)
	SetPath(d.Data, flagPackageName, packageName)
	SetPath(d.Data, flagPackageVersion, packageVersion)
}

func (d *Document) sourceIdentity() string {
	if existing := d.SourceUUID(); existing != "" {
		// Re-exporting an imported document keeps the original coordinate so
		// chains of imports still resolve back to one source.
		return existing
	}
	if pack, ok := StringAt(d.Data, "pack"); ok {
		return compendiumPrefix + "." + pack + "." + d.ID()
	}
	return d.UUID()
}
