// Package relations extracts document-to-document references and aggregates
// them into the relation graph that decides what content must travel
// together.
//
// Two reference syntaxes are recognized everywhere rich text appears: the
// `@Kind[id]{label}` bracket tag (including `@Compendium[ns.pack.id]`
// coordinates) and anchor tags carrying data-entity/data-pack/data-id
// attributes. Structured fields (scene notes, tokens, roll-table results,
// tile actions) are walked explicitly.
package relations
