package relations

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"scenepack/internal/document"
	"scenepack/internal/logging"
)

// bracketTag matches the `@Kind[target]{label}` reference syntax, with the
// label optional. The target may carry an `#anchor` suffix, and Compendium
// tags carry a full `ns.pack.id` coordinate.
var bracketTag = regexp.MustCompile(`@([A-Za-z]+)\[([^\]]+)\](?:\{[^}]*\})?`)

// Extractor scans documents for embedded references to other documents.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor builds an extractor. logger may be nil.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{logger: logger.With(slog.String(logging.FieldComponent, "extractor"))}
}

// Extract returns every document-to-document relation found in the document's
// rich-text fields, structured id fields, and embedded collections.
// References with malformed targets are silently dropped, never raised.
func (e *Extractor) Extract(doc *document.Document) []Relation {
	var rels []Relation

	for _, fieldPath := range richTextFields[doc.Kind] {
		value, ok := document.StringAt(doc.Data, fieldPath)
		if !ok {
			continue
		}
		rels = append(rels, extractFromText(value, fieldPath, "", "")...)
	}

	for _, field := range embeddedRichTextFields[doc.Kind] {
		rels = append(rels, e.extractEmbeddedText(doc, field)...)
	}

	for _, field := range directRefFields[doc.Kind] {
		value, ok := document.StringAt(doc.Data, field.path)
		if !ok {
			continue
		}
		rels = append(rels, Relation{
			UUID: string(field.kind) + "." + value,
			Path: field.path,
		})
	}

	for _, field := range structuredRefFields[doc.Kind] {
		rels = append(rels, extractStructured(doc, field)...)
	}

	if doc.Kind == document.KindRollTable {
		rels = append(rels, extractTableResults(doc)...)
	}
	if doc.Kind == document.KindScene {
		rels = append(rels, extractTileActions(doc)...)
	}

	return dedupeRelations(rels)
}

func (e *Extractor) extractEmbeddedText(doc *document.Document, field embeddedRichText) []Relation {
	entries, ok := document.SliceAt(doc.Data, field.collection)
	if !ok {
		return nil
	}
	var rels []Relation
	for index, entry := range entries {
		tree, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		value, ok := document.StringAt(tree, field.path)
		if !ok {
			continue
		}
		embeddedID, _ := document.StringAt(tree, "_id")
		if embeddedID == "" {
			embeddedID = fmt.Sprintf("%d", index)
		}
		rels = append(rels, extractFromText(value, field.collection+"."+field.path, embeddedID, field.collection)...)
	}
	return rels
}

// extractFromText pulls both reference syntaxes out of one text value:
// bracket tags from the raw text, and data-attribute anchors after HTML
// parsing. Both run on every field regardless of whether it looks like HTML.
func extractFromText(value, fieldPath, embeddedID, embeddedPath string) []Relation {
	var rels []Relation

	for _, match := range bracketTag.FindAllStringSubmatch(value, -1) {
		ref, ok := document.ParseTagTarget(match[1], match[2])
		if !ok {
			continue
		}
		rels = append(rels, Relation{
			UUID:         ref.String(),
			Path:         fieldPath,
			EmbeddedID:   embeddedID,
			EmbeddedPath: embeddedPath,
		})
	}

	for _, ref := range anchorRefs(value) {
		rels = append(rels, Relation{
			UUID:         ref.String(),
			Path:         fieldPath,
			EmbeddedID:   embeddedID,
			EmbeddedPath: embeddedPath,
		})
	}

	return rels
}

// anchorRefs extracts references from anchor tags carrying
// data-entity/data-pack/data-id attributes.
func anchorRefs(fragment string) []document.Ref {
	if !strings.Contains(fragment, "data-") {
		return nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type: html.ElementNode, Data: "body", DataAtom: atom.Body,
	})
	if err != nil {
		return nil
	}

	var refs []document.Ref
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			if ref, ok := anchorRef(n); ok {
				refs = append(refs, ref)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range nodes {
		walk(node)
	}
	return refs
}

func anchorRef(n *html.Node) (document.Ref, bool) {
	var entity, pack, id string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "data-entity", "data-document":
			entity = attr.Val
		case "data-pack":
			pack = attr.Val
		case "data-id":
			id = attr.Val
		}
	}
	if id == "" {
		return document.Ref{}, false
	}
	if pack != "" {
		segments := strings.Split(pack, ".")
		if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
			return document.Ref{}, false
		}
		return document.Ref{Namespace: segments[0], Pack: segments[1], ID: id}, true
	}
	kind, ok := document.ParseKind(entity)
	if !ok {
		return document.Ref{}, false
	}
	return document.Ref{Kind: kind, ID: id}, true
}

func extractStructured(doc *document.Document, field structuredRefField) []Relation {
	entries, ok := document.SliceAt(doc.Data, field.collection)
	if !ok {
		return nil
	}
	var rels []Relation
	for _, entry := range entries {
		tree, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		id, ok := document.StringAt(tree, field.idField)
		if !ok {
			continue
		}
		embeddedID, _ := document.StringAt(tree, "_id")
		rels = append(rels, Relation{
			UUID:         string(field.kind) + "." + id,
			Path:         field.collection + "." + field.idField,
			EmbeddedID:   embeddedID,
			EmbeddedPath: field.collection,
		})
	}
	return rels
}

// extractTableResults reads document-type roll-table result rows. A result's
// documentCollection names either a kind ("Actor") or a compendium pack
// ("ns.pack"); documentId is the target. Rows with neither are plain text.
func extractTableResults(doc *document.Document) []Relation {
	entries, ok := document.SliceAt(doc.Data, "results")
	if !ok {
		return nil
	}
	var rels []Relation
	for _, entry := range entries {
		tree, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		collection, _ := document.StringAt(tree, "documentCollection")
		if collection == "" {
			collection, _ = document.StringAt(tree, "collection")
		}
		targetID, _ := document.StringAt(tree, "documentId")
		if targetID == "" {
			targetID, _ = document.StringAt(tree, "resultId")
		}
		if collection == "" || targetID == "" {
			continue
		}

		embeddedID, _ := document.StringAt(tree, "_id")
		rel := Relation{
			Path:         "results",
			EmbeddedID:   embeddedID,
			EmbeddedPath: "results",
		}
		if strings.Contains(collection, ".") {
			segments := strings.Split(collection, ".")
			if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
				continue
			}
			rel.UUID = document.Ref{Namespace: segments[0], Pack: segments[1], ID: targetID}.String()
		} else {
			kind, ok := document.ParseKind(collection)
			if !ok {
				continue
			}
			rel.UUID = string(kind) + "." + targetID
		}
		rels = append(rels, rel)
	}
	return rels
}

// extractTileActions walks Monks-Active-Tiles actions on a scene's tiles,
// whose action data carries full reference strings.
func extractTileActions(doc *document.Document) []Relation {
	tiles, ok := document.SliceAt(doc.Data, "tiles")
	if !ok {
		return nil
	}
	var rels []Relation
	for _, entry := range tiles {
		tile, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		tileID, _ := document.StringAt(tile, "_id")
		actions, ok := document.SliceAt(tile, "flags.monks-active-tiles.actions")
		if !ok {
			continue
		}
		for _, actionEntry := range actions {
			action, ok := actionEntry.(map[string]any)
			if !ok {
				continue
			}
			target, ok := document.StringAt(action, "data.entity.id")
			if !ok {
				continue
			}
			ref, ok := document.ParseRef(target)
			if !ok {
				continue
			}
			rels = append(rels, Relation{
				UUID:         ref.String(),
				Path:         "tiles.flags.monks-active-tiles.actions",
				EmbeddedID:   tileID,
				EmbeddedPath: "tiles",
			})
		}
	}
	return rels
}

func dedupeRelations(rels []Relation) []Relation {
	if len(rels) < 2 {
		return rels
	}
	seen := make(map[Relation]bool, len(rels))
	out := rels[:0]
	for _, rel := range rels {
		if seen[rel] {
			continue
		}
		seen[rel] = true
		out = append(out, rel)
	}
	return out
}
