package document

import (
	"encoding/json"
	"sort"
)

// Folder is a named container for documents of a single kind. Folders form a
// tree via the Parent pointer.
type Folder struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Kind   Kind   `json:"type"`
	Parent string `json:"parent,omitempty"`
}

// folderWire tolerates the legacy field name for the parent pointer. Older
// hosts serialized it as `parentFolder`; the canonical field wins when both
// are present.
type folderWire struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Kind         string `json:"type"`
	Parent       string `json:"parent"`
	ParentFolder string `json:"parentFolder"`
}

// FolderFromJSON parses a serialized folder, normalizing the legacy parent
// field into the canonical one at load time.
func FolderFromJSON(raw []byte) (*Folder, error) {
	var wire folderWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	folder := &Folder{
		ID:     wire.ID,
		Name:   wire.Name,
		Kind:   Kind(wire.Kind),
		Parent: wire.Parent,
	}
	if folder.Parent == "" {
		folder.Parent = wire.ParentFolder
	}
	return folder, nil
}

// FoldersFromJSON parses a serialized folder index. The canonical form
// is a map of folder ID to folder; older archives used a plain array.
// Both get the legacy parent-field normalization. Map results are
// ordered by ID so callers see a stable sequence.
func FoldersFromJSON(raw []byte) ([]*Folder, error) {
	var byID map[string]folderWire
	if err := json.Unmarshal(raw, &byID); err == nil {
		ids := make([]string, 0, len(byID))
		for id := range byID {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		folders := make([]*Folder, 0, len(ids))
		for _, id := range ids {
			wire := byID[id]
			if wire.ID == "" {
				wire.ID = id
			}
			folders = append(folders, wireToFolder(wire))
		}
		return folders, nil
	}
	var wires []folderWire
	if err := json.Unmarshal(raw, &wires); err != nil {
		return nil, err
	}
	folders := make([]*Folder, 0, len(wires))
	for _, wire := range wires {
		folders = append(folders, wireToFolder(wire))
	}
	return folders, nil
}

func wireToFolder(wire folderWire) *Folder {
	folder := &Folder{
		ID:     wire.ID,
		Name:   wire.Name,
		Kind:   Kind(wire.Kind),
		Parent: wire.Parent,
	}
	if folder.Parent == "" {
		folder.Parent = wire.ParentFolder
	}
	return folder
}

// Ancestry returns the chain of ancestor folder IDs for the given folder,
// nearest first, using the provided id-indexed folder set. Cycles terminate
// the walk rather than looping.
func Ancestry(folder *Folder, byID map[string]*Folder) []string {
	seen := map[string]bool{folder.ID: true}
	var chain []string
	current := folder
	for current.Parent != "" && !seen[current.Parent] {
		seen[current.Parent] = true
		chain = append(chain, current.Parent)
		next, ok := byID[current.Parent]
		if !ok {
			break
		}
		current = next
	}
	return chain
}
