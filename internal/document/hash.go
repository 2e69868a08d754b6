package document

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ContentHash computes a stable digest over the document's serialized field
// tree. The document's own identity and any previously stamped hash are
// excluded so the digest never depends on itself. encoding/json sorts map
// keys, which gives a canonical byte form without extra machinery.
//
// The hash is advisory: a later update-in-place flow compares it to detect
// source changes. It never blocks import.
func ContentHash(d *Document) (string, error) {
	clone := d.Clone()
	DeletePath(clone.Data, "_id")
	DeletePath(clone.Data, flagHash)

	serialized, err := json.Marshal(clone.Data)
	if err != nil {
		return "", fmt.Errorf("serialize %s for hashing: %w", d.UUID(), err)
	}

	digest := sha256.Sum256(serialized)
	return hex.EncodeToString(digest[:]), nil
}
