package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"scenepack/internal/document"
	"scenepack/internal/logging"
)

// FileLister enumerates stored files so wildcard asset references can be
// expanded into concrete paths. The blob store satisfies this.
type FileLister interface {
	List(ctx context.Context, dir string) ([]string, error)
}

// Locator enumerates every field that can hold a media reference across all
// supported document kinds.
type Locator struct {
	rules  Rules
	lister FileLister
	logger *slog.Logger
}

// NewLocator builds a locator. lister may be nil, in which case wildcard
// references fall back to their literal form.
func NewLocator(rules Rules, lister FileLister, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Locator{rules: rules, lister: lister, logger: logger.With(slog.String(logging.FieldComponent, "locator"))}
}

// Locate returns every asset reference found in the document, walking the
// kind's direct fields, embedded child collections, rich-text HTML fields,
// and known third-party plugin blobs. Expansion failures are logged and fall
// back to the literal value; Locate never fails.
func (l *Locator) Locate(ctx context.Context, doc *document.Document) []Reference {
	var refs []Reference
	uuid := doc.UUID()

	for _, fieldPath := range directAssetFields[doc.Kind] {
		value, ok := document.StringAt(doc.Data, fieldPath)
		if !ok {
			continue
		}
		refs = append(refs, l.expand(ctx, uuid, "", fieldPath, value)...)
	}

	for _, field := range embeddedAssetFields[doc.Kind] {
		refs = append(refs, l.locateEmbedded(ctx, doc, field, false)...)
	}

	for _, fieldPath := range htmlAssetFields[doc.Kind] {
		value, ok := document.StringAt(doc.Data, fieldPath)
		if !ok {
			continue
		}
		for _, src := range htmlAssetSources(value) {
			refs = append(refs, l.reference(uuid, "", fieldPath, src))
		}
	}

	for _, field := range embeddedHTMLFields[doc.Kind] {
		refs = append(refs, l.locateEmbedded(ctx, doc, field, true)...)
	}

	for _, blob := range pluginBlobs[doc.Kind] {
		refs = append(refs, l.locatePluginBlob(doc, blob)...)
	}

	if doc.Kind == document.KindCards {
		refs = append(refs, l.locateCardFaces(doc)...)
	}

	return refs
}

func (l *Locator) locateEmbedded(ctx context.Context, doc *document.Document, field embeddedAssetField, isHTML bool) []Reference {
	entries, ok := document.SliceAt(doc.Data, field.collection)
	if !ok {
		return nil
	}
	uuid := doc.UUID()

	var refs []Reference
	for index, entry := range entries {
		tree, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		value, ok := document.StringAt(tree, field.path)
		if !ok {
			continue
		}
		fieldPath := embeddedFieldPath(field.collection, tree, index, field.path)
		if isHTML {
			for _, src := range htmlAssetSources(value) {
				refs = append(refs, l.reference(uuid, uuid, fieldPath, src))
			}
			continue
		}
		refs = append(refs, l.expandEmbedded(ctx, uuid, fieldPath, value)...)
	}
	return refs
}

// locateCardFaces walks the doubly-nested cards[].faces[].img structure,
// which the flat embedded table cannot express.
func (l *Locator) locateCardFaces(doc *document.Document) []Reference {
	cards, ok := document.SliceAt(doc.Data, "cards")
	if !ok {
		return nil
	}
	uuid := doc.UUID()

	var refs []Reference
	for cardIndex, entry := range cards {
		card, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		faces, ok := document.SliceAt(card, "faces")
		if !ok {
			continue
		}
		cardPath := embeddedFieldPath("cards", card, cardIndex, "faces")
		for faceIndex, faceEntry := range faces {
			face, ok := faceEntry.(map[string]any)
			if !ok {
				continue
			}
			img, ok := document.StringAt(face, "img")
			if !ok {
				continue
			}
			fieldPath := fmt.Sprintf("%s.%d.img", cardPath, faceIndex)
			refs = append(refs, l.reference(uuid, uuid, fieldPath, img))
		}
	}
	return refs
}

func (l *Locator) locatePluginBlob(doc *document.Document, blob pluginBlob) []Reference {
	value, ok := document.Lookup(doc.Data, blob.flagPath)
	if !ok {
		return nil
	}
	// Plugin payloads arrive either as pre-parsed trees or as JSON strings.
	if raw, isString := value.(string); isString {
		var parsed any
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			l.logger.Debug("plugin blob not parseable, skipping",
				slog.String(logging.FieldDocument, doc.UUID()),
				slog.String("flag", blob.flagPath))
			return nil
		}
		value = parsed
	}

	keys := make(map[string]bool, len(blob.keys))
	for _, key := range blob.keys {
		keys[key] = true
	}

	var refs []Reference
	uuid := doc.UUID()
	mineStrings(value, keys, func(found string) {
		refs = append(refs, l.reference(uuid, uuid, blob.flagPath, found))
	})
	return refs
}

// expand resolves one field value into references, expanding wildcard globs
// against the file listing. If expansion fails the literal glob travels as a
// single asset: downstream it will 404 and be flagged instead of silently
// vanishing.
func (l *Locator) expand(ctx context.Context, docID, parentID, fieldPath, value string) []Reference {
	if !strings.ContainsAny(value, "*?[") {
		return []Reference{l.reference(docID, parentID, fieldPath, value)}
	}

	matches, err := l.expandGlob(ctx, value)
	if err != nil || len(matches) == 0 {
		l.logger.Warn("wildcard expansion failed, keeping literal value",
			slog.String(logging.FieldDocument, docID),
			slog.String("pattern", value),
			logError(err))
		return []Reference{l.reference(docID, parentID, fieldPath, value)}
	}

	refs := make([]Reference, 0, len(matches))
	for _, match := range matches {
		refs = append(refs, l.reference(docID, parentID, fieldPath, match))
	}
	return refs
}

func (l *Locator) expandEmbedded(ctx context.Context, uuid, fieldPath, value string) []Reference {
	return l.expand(ctx, uuid, uuid, fieldPath, value)
}

func (l *Locator) expandGlob(ctx context.Context, pattern string) ([]string, error) {
	if l.lister == nil {
		return nil, fmt.Errorf("no file listing available")
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	dir := staticPrefix(pattern)
	files, err := l.lister.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	var matches []string
	for _, file := range files {
		ok, err := doublestar.Match(pattern, file)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, file)
		}
	}
	return matches, nil
}

func (l *Locator) reference(docID, parentID, fieldPath, rawURL string) Reference {
	verdict := Classify(rawURL, l.rules)
	return Reference{
		RawURL:        rawURL,
		AbsoluteURL:   AbsoluteURL(rawURL, l.rules),
		StoragePath:   StoragePath(rawURL, l.rules),
		DocumentID:    docID,
		ParentID:      parentID,
		FieldPath:     fieldPath,
		Location:      verdict.Location,
		HasDependency: verdict.HasDependency,
	}
}

// staticPrefix returns the directory portion of a glob pattern before the
// first metacharacter, used to scope the file listing.
func staticPrefix(pattern string) string {
	idx := strings.IndexAny(pattern, "*?[")
	if idx < 0 {
		return pattern
	}
	prefix := pattern[:idx]
	if slash := strings.LastIndexByte(prefix, '/'); slash >= 0 {
		return prefix[:slash]
	}
	return ""
}

func embeddedFieldPath(collection string, entry map[string]any, index int, path string) string {
	if id, ok := document.StringAt(entry, "_id"); ok {
		return fmt.Sprintf("%s.%s.%s", collection, id, path)
	}
	return fmt.Sprintf("%s.%d.%s", collection, index, path)
}

// htmlAssetSources extracts <img src>, <audio src>, <source src>, and <video
// poster> values from an HTML fragment. Parse errors yield nothing; the
// parser is tolerant enough that this only happens on truly broken input.
func htmlAssetSources(fragment string) []string {
	if !strings.Contains(fragment, "<") {
		return nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), bodyContext())
	if err != nil {
		return nil
	}

	var sources []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Img, atom.Audio, atom.Source, atom.Track:
				if src := attrValue(n, "src"); src != "" {
					sources = append(sources, src)
				}
			case atom.Video:
				if src := attrValue(n, "src"); src != "" {
					sources = append(sources, src)
				}
				if poster := attrValue(n, "poster"); poster != "" {
					sources = append(sources, poster)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range nodes {
		walk(node)
	}
	return sources
}

func bodyContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

func mineStrings(value any, keys map[string]bool, emit func(string)) {
	switch typed := value.(type) {
	case map[string]any:
		for key, nested := range typed {
			if str, ok := nested.(string); ok && keys[key] && str != "" {
				emit(str)
				continue
			}
			mineStrings(nested, keys, emit)
		}
	case []any:
		for _, item := range typed {
			mineStrings(item, keys, emit)
		}
	}
}

func logError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "no matches")
	}
	return slog.Any("error", err)
}
