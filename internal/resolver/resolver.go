// Package resolver rewrites references inside freshly created
// documents that still point at their source compendium coordinates,
// repointing them at the local copies created by the importer.
package resolver

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"scenepack/internal/document"
	"scenepack/internal/logging"
	"scenepack/internal/registry"
	"scenepack/internal/relations"
)

// Resolver performs the post-creation reference reconciliation pass.
type Resolver struct {
	extractor *relations.Extractor
	logger    *slog.Logger
}

// New builds a resolver for the named package registered in reg.
func New(reg *registry.Registry, packageName string) (*Resolver, error) {
	instance, err := reg.Get(packageName)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		extractor: relations.NewExtractor(instance.Logger),
		logger:    instance.Logger.With(slog.String(logging.FieldComponent, "resolver")),
	}, nil
}

// Resolve re-extracts relations from each created document and rewrites
// every relation still expressed as a compendium coordinate to point at
// the matching document in available. A relation matches exactly when
// one available document's recorded source identity equals the
// coordinate; zero or multiple candidates leave the reference as-is.
// The returned slice holds only the documents that changed, so running
// Resolve twice on resolved content returns an empty update list.
func (r *Resolver) Resolve(kind document.Kind, created, available []*document.Document) []*document.Document {
	bySource := indexBySource(available)

	var updates []*document.Document
	for _, doc := range created {
		changed := false
		for _, rel := range r.extractor.Extract(doc) {
			ref, ok := document.ParseRef(rel.UUID)
			if !ok || !ref.IsCompendium() {
				continue
			}
			match, ok := r.match(bySource, ref, rel)
			if !ok {
				continue
			}
			if r.rewrite(doc, rel, ref, match) {
				changed = true
			}
		}
		if changed {
			updates = append(updates, doc)
		}
	}
	if len(updates) > 0 {
		r.logger.Info("references resolved",
			slog.String(logging.FieldKind, string(kind)),
			slog.Int("updated", len(updates)))
	}
	return updates
}

func indexBySource(available []*document.Document) map[string][]*document.Document {
	bySource := make(map[string][]*document.Document)
	for _, doc := range available {
		source := doc.SourceUUID()
		if source == "" {
			continue
		}
		bySource[source] = append(bySource[source], doc)
	}
	return bySource
}

// match returns the single available document whose source identity is
// the relation's coordinate. The resolver never guesses: ambiguity is
// logged and skipped.
func (r *Resolver) match(bySource map[string][]*document.Document, ref document.Ref, rel relations.Relation) (*document.Document, bool) {
	candidates := bySource[ref.String()]
	if kind, ok := inferKind(ref.Pack); ok {
		scoped := candidates[:0:0]
		for _, candidate := range candidates {
			if candidate.Kind == kind {
				scoped = append(scoped, candidate)
			}
		}
		candidates = scoped
	}
	switch len(candidates) {
	case 1:
		return candidates[0], true
	case 0:
		r.logger.Warn("reference unresolved",
			slog.String("target", rel.UUID),
			slog.String("path", rel.Path))
		return nil, false
	default:
		r.logger.Warn("ambiguous reference left unresolved",
			slog.String("target", rel.UUID),
			slog.Int("candidates", len(candidates)))
		return nil, false
	}
}

// inferKind maps a compendium pack segment to a document kind when the
// segment names a collection unambiguously ("journals", "actors", ...).
func inferKind(pack string) (document.Kind, bool) {
	return document.KindFromCollection(pack)
}

// rewrite repoints one relation inside doc at match. Roll-table results
// and tile actions are rewritten structurally; everything else is a
// textual substitution in the field the relation was extracted from.
func (r *Resolver) rewrite(doc *document.Document, rel relations.Relation, ref document.Ref, match *document.Document) bool {
	switch {
	case doc.Kind == document.KindRollTable && rel.Path == "results":
		return rewriteTableResult(doc, rel, match)
	case rel.Path == "tiles.flags.monks-active-tiles.actions":
		return rewriteTileAction(doc, rel, match)
	case rel.EmbeddedPath != "":
		return rewriteEmbeddedText(doc, rel, ref, match)
	default:
		value, ok := document.StringAt(doc.Data, rel.Path)
		if !ok {
			return false
		}
		rewritten := substitute(value, ref, match)
		if rewritten == value {
			return false
		}
		document.SetPath(doc.Data, rel.Path, rewritten)
		return true
	}
}

// rewriteTableResult updates a result row's collection/id fields in
// place. Table results are structured data, not HTML.
func rewriteTableResult(doc *document.Document, rel relations.Relation, match *document.Document) bool {
	entries, ok := document.SliceAt(doc.Data, "results")
	if !ok {
		return false
	}
	for _, entry := range entries {
		row, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		id, _ := document.StringAt(row, "_id")
		if id != rel.EmbeddedID {
			continue
		}
		if _, legacy := row["collection"]; legacy {
			row["collection"] = string(match.Kind)
			row["resultId"] = match.ID()
		}
		row["documentCollection"] = string(match.Kind)
		row["documentId"] = match.ID()
		return true
	}
	return false
}

// rewriteTileAction repoints a tile action's entity reference.
func rewriteTileAction(doc *document.Document, rel relations.Relation, match *document.Document) bool {
	tiles, ok := document.SliceAt(doc.Data, "tiles")
	if !ok {
		return false
	}
	for _, entry := range tiles {
		tile, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		tileID, _ := document.StringAt(tile, "_id")
		if tileID != rel.EmbeddedID {
			continue
		}
		actions, ok := document.SliceAt(tile, "flags.monks-active-tiles.actions")
		if !ok {
			return false
		}
		changed := false
		for _, actionEntry := range actions {
			action, ok := actionEntry.(map[string]any)
			if !ok {
				continue
			}
			target, ok := document.StringAt(action, "data.entity.id")
			if !ok || target != rel.UUID {
				continue
			}
			document.SetPath(action, "data.entity.id", match.UUID())
			changed = true
		}
		return changed
	}
	return false
}

// rewriteEmbeddedText substitutes inside the child record the relation
// was extracted from.
func rewriteEmbeddedText(doc *document.Document, rel relations.Relation, ref document.Ref, match *document.Document) bool {
	entries, ok := document.SliceAt(doc.Data, rel.EmbeddedPath)
	if !ok {
		return false
	}
	subPath := strings.TrimPrefix(rel.Path, rel.EmbeddedPath+".")
	for _, entry := range entries {
		tree, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		id, _ := document.StringAt(tree, "_id")
		if id != rel.EmbeddedID {
			continue
		}
		value, ok := document.StringAt(tree, subPath)
		if !ok {
			return false
		}
		rewritten := substitute(value, ref, match)
		if rewritten == value {
			return false
		}
		document.SetPath(tree, subPath, rewritten)
		return true
	}
	return false
}

// substitute replaces the compendium bracket tag with a local-kind tag
// and patches anchors whose data attributes carry the old coordinate.
// Anchored tags (`#section`) keep their anchor.
func substitute(value string, ref document.Ref, match *document.Document) string {
	coordinate := ref.Coordinate()
	localTag := "@" + string(match.Kind) + "[" + match.ID()

	value = strings.ReplaceAll(value, "@Compendium["+coordinate+"]", localTag+"]")
	value = strings.ReplaceAll(value, "@Compendium["+coordinate+"#", localTag+"#")

	return patchAnchors(value, ref, match)
}

// patchAnchors repoints HTML anchors whose data-pack/data-id attributes
// carry the old coordinate. The fragment is parsed the same way the
// extractor reads it, so attribute order, spacing, and quoting never
// matter. The value is re-rendered only when an anchor actually matched.
func patchAnchors(value string, ref document.Ref, match *document.Document) string {
	if !strings.Contains(value, "data-") {
		return value
	}
	nodes, err := html.ParseFragment(strings.NewReader(value), &html.Node{
		Type: html.ElementNode, Data: "body", DataAtom: atom.Body,
	})
	if err != nil {
		return value
	}

	pack := ref.Namespace + "." + ref.Pack
	changed := false
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A && anchorTargets(n, pack, ref.ID) {
			repointAnchor(n, match)
			changed = true
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range nodes {
		walk(node)
	}
	if !changed {
		return value
	}

	var rendered strings.Builder
	for _, node := range nodes {
		if err := html.Render(&rendered, node); err != nil {
			return value
		}
	}
	return rendered.String()
}

func anchorTargets(n *html.Node, pack, id string) bool {
	var gotPack, gotID string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "data-pack":
			gotPack = attr.Val
		case "data-id":
			gotID = attr.Val
		}
	}
	return gotPack == pack && gotID == id
}

// repointAnchor swaps the anchor's compendium coordinate for the local
// document's kind and id, keeping every other attribute in place. The
// data-pack attribute becomes data-entity so the anchor reads as a
// local link afterwards.
func repointAnchor(n *html.Node, match *document.Document) {
	attrs := n.Attr[:0]
	entitySet := false
	for _, attr := range n.Attr {
		switch attr.Key {
		case "data-pack", "data-entity", "data-document":
			if entitySet {
				continue
			}
			attr = html.Attribute{Key: "data-entity", Val: string(match.Kind)}
			entitySet = true
		case "data-id":
			attr.Val = match.ID()
		}
		attrs = append(attrs, attr)
	}
	n.Attr = attrs
}
