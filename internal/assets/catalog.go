package assets

import (
	"encoding/json"
	"sort"
)

// Catalog is a deduplicating, two-sided map over asset references: by raw URL
// ("which documents need this asset") and by document ("which assets does
// this document need"). It grows monotonically during an export; removal
// exists only for explicit maintenance flows.
type Catalog struct {
	data    map[string][]Reference
	mapping map[string]map[string]struct{}
}

// AddOptions controls which asset classes a catalog accepts.
type AddOptions struct {
	AllowCore   bool
	AllowSystem bool
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		data:    map[string][]Reference{},
		mapping: map[string]map[string]struct{}{},
	}
}

// Add records a reference. Core-runtime and system-pack assets are skipped
// unless explicitly allowed, since the destination already has them. Returns
// whether the reference was recorded.
func (c *Catalog) Add(ref Reference, opts AddOptions) bool {
	if ref.RawURL == "" {
		return false
	}
	if ref.IsCore() && !opts.AllowCore {
		return false
	}
	if ref.IsSystem() && !opts.AllowSystem {
		return false
	}

	c.data[ref.RawURL] = append(c.data[ref.RawURL], ref)
	if ref.DocumentID != "" {
		set, ok := c.mapping[ref.DocumentID]
		if !ok {
			set = map[string]struct{}{}
			c.mapping[ref.DocumentID] = set
		}
		set[ref.RawURL] = struct{}{}
	}
	return true
}

// Merge folds another catalog into this one as a bag union. Merge is
// associative and commutative so multi-stage exports can accumulate
// incrementally in any order.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil {
		return
	}
	for rawURL, refs := range other.data {
		c.data[rawURL] = append(c.data[rawURL], refs...)
	}
	for docID, urls := range other.mapping {
		set, ok := c.mapping[docID]
		if !ok {
			set = map[string]struct{}{}
			c.mapping[docID] = set
		}
		for rawURL := range urls {
			set[rawURL] = struct{}{}
		}
	}
}

// Remove drops every trace of a raw URL. Used by canonical-casing
// maintenance, not by the export/import pipeline.
func (c *Catalog) Remove(rawURL string) {
	delete(c.data, rawURL)
	for docID, urls := range c.mapping {
		delete(urls, rawURL)
		if len(urls) == 0 {
			delete(c.mapping, docID)
		}
	}
}

// References returns every recorded reference for a raw URL.
func (c *Catalog) References(rawURL string) []Reference {
	return c.data[rawURL]
}

// URLs returns every distinct raw URL in deterministic order.
func (c *Catalog) URLs() []string {
	urls := make([]string, 0, len(c.data))
	for rawURL := range c.data {
		urls = append(urls, rawURL)
	}
	sort.Strings(urls)
	return urls
}

// BundleableURLs returns the distinct raw URLs whose assets must travel in an
// archive, in deterministic order. Each appears once no matter how many
// documents reference it.
func (c *Catalog) BundleableURLs() []string {
	var urls []string
	for rawURL, refs := range c.data {
		for _, ref := range refs {
			if ref.Bundleable() {
				urls = append(urls, rawURL)
				break
			}
		}
	}
	sort.Strings(urls)
	return urls
}

// ForDocument returns the distinct raw URLs a document references, in
// deterministic order. Documents are keyed by their kind-qualified UUID
// ("Scene.abc123"), never the bare _id, so identifiers cannot collide
// across kinds.
func (c *Catalog) ForDocument(uuid string) []string {
	set := c.mapping[uuid]
	urls := make([]string, 0, len(set))
	for rawURL := range set {
		urls = append(urls, rawURL)
	}
	sort.Strings(urls)
	return urls
}

// DocumentCount returns how many documents hold recorded references.
func (c *Catalog) DocumentCount() int { return len(c.mapping) }

// URLCount returns how many distinct raw URLs are recorded.
func (c *Catalog) URLCount() int { return len(c.data) }

// StoragePathFor returns the storage path recorded for a raw URL, if any.
func (c *Catalog) StoragePathFor(rawURL string) string {
	refs := c.data[rawURL]
	if len(refs) == 0 {
		return ""
	}
	return refs[0].StoragePath
}

type catalogWire struct {
	Mapping map[string][]string    `json:"mapping"`
	Data    map[string][]Reference `json:"data"`
}

// MarshalJSON serializes the catalog as `{mapping, data}` with the mapping
// sets rendered as sorted arrays.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	wire := catalogWire{
		Mapping: make(map[string][]string, len(c.mapping)),
		Data:    c.data,
	}
	for docID := range c.mapping {
		wire.Mapping[docID] = c.ForDocument(docID)
	}
	return json.Marshal(wire)
}

// UnmarshalJSON restores a catalog from its archive form.
func (c *Catalog) UnmarshalJSON(raw []byte) error {
	var wire catalogWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	c.data = wire.Data
	if c.data == nil {
		c.data = map[string][]Reference{}
	}
	c.mapping = make(map[string]map[string]struct{}, len(wire.Mapping))
	for docID, urls := range wire.Mapping {
		set := make(map[string]struct{}, len(urls))
		for _, rawURL := range urls {
			set[rawURL] = struct{}{}
		}
		c.mapping[docID] = set
	}
	return nil
}
