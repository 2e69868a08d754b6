// Package document defines the opaque document model the pipeline moves
// around: typed kinds, identity and compendium coordinates, field-tree
// access, engine flags, folders, and the advisory content hash.
//
// Documents carry the host's serialized shape as a nested map; nothing in
// this package interprets game semantics.
package document
