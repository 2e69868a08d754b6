package testsupport

import (
	"scenepack/internal/document"
)

// SceneWithNote builds a scene with one background image, and one map
// note pointing at a journal entry.
func SceneWithNote(sceneID, background, journalID string) *document.Document {
	return document.New(document.KindScene, map[string]any{
		"_id":  sceneID,
		"name": "Scene " + sceneID,
		"background": map[string]any{
			"src": background,
		},
		"notes": []any{
			map[string]any{
				"_id":     "note-" + sceneID,
				"entryId": journalID,
			},
		},
	})
}

// Journal builds a journal entry with one page of HTML content.
func Journal(journalID, name, content string) *document.Document {
	return document.New(document.KindJournalEntry, map[string]any{
		"_id":  journalID,
		"name": name,
		"pages": []any{
			map[string]any{
				"_id":  "page-" + journalID,
				"name": name,
				"text": map[string]any{
					"content": content,
				},
			},
		},
	})
}

// Actor builds a minimal actor with a portrait image.
func Actor(actorID, name, img string) *document.Document {
	return document.New(document.KindActor, map[string]any{
		"_id":  actorID,
		"name": name,
		"img":  img,
	})
}
