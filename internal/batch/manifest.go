package batch

import (
	"encoding/json"
	"fmt"
	"os"

	"specs-overlay-engine/internal/frames"
)

// ManifestEntry represents one prerendered frame in the output manifest.
type ManifestEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Source   string `json:"source"`
	Image    string `json:"image"`
}

// WriteManifest writes manifest.json to the output directory.
func WriteManifest(path string, defs []frames.FrameDef) error {
	entries := make([]ManifestEntry, len(defs))
	for i, d := range defs {
		entries[i] = ManifestEntry{
			ID:       d.ID,
			Name:     d.Name,
			Category: d.Category,
			Source:   d.ImageURL,
			Image:    fmt.Sprintf("%s.webp", d.ID),
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
