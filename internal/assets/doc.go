// Package assets locates, classifies, and catalogs the binary media
// referenced by documents.
//
// The Locator walks fixed per-kind field tables and produces normalized
// references; the Catalog deduplicates them into a two-sided map keyed by raw
// URL and by document. Classification of a URL into core/system/world/
// module/external/custom is a pure function of its path prefix, and the
// derived storage path is what makes cross-run deduplication correct.
package assets
