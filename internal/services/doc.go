// Package services defines shared utilities consumed by the export/import
// pipeline components.
//
// Key responsibilities:
//   - Context helpers that stamp package names, document kinds, and document
//     UUIDs for logging and failure attribution.
//   - Structured error markers plus the Wrap helper that classify failures as
//     fatal (abort the operation) or recoverable (log and continue).
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across components.
package services
