// Package frames holds the eyewear frame catalog: which overlay images
// exist, their categories and their default placement over a base photo.
package frames

import (
	"encoding/json"
	"fmt"
	"os"

	"specs-overlay-engine/internal/geom"
)

// FrameDef describes one eyewear frame available for try-on.
type FrameDef struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	ImageURL      string `json:"image_url"`
	DefaultWidth  int    `json:"default_width"`
	DefaultHeight int    `json:"default_height"`
	DefaultX      int    `json:"default_x"`
	DefaultY      int    `json:"default_y"`
}

// DefaultPosition returns the frame's default center position.
func (f FrameDef) DefaultPosition() geom.Vec2 {
	return geom.Vec2{X: float64(f.DefaultX), Y: float64(f.DefaultY)}
}

// DefaultCatalog returns the built-in frame set.
func DefaultCatalog() []FrameDef {
	return []FrameDef{
		{
			ID:            "aviator_classic",
			Name:          "Classic Aviator",
			Category:      "classic",
			Description:   "Timeless aviator style with metal frame",
			ImageURL:      "/static/frames/aviator_classic.png",
			DefaultWidth:  300,
			DefaultHeight: 100,
			DefaultX:      400,
			DefaultY:      200,
		},
		{
			ID:            "round_vintage",
			Name:          "Round Vintage",
			Category:      "vintage",
			Description:   "Classic round frame design",
			ImageURL:      "/static/frames/round_vintage.png",
			DefaultWidth:  280,
			DefaultHeight: 120,
			DefaultX:      410,
			DefaultY:      190,
		},
		{
			ID:            "sport_modern",
			Name:          "Sport Modern",
			Category:      "sport",
			Description:   "Modern sport frame with wraparound design",
			ImageURL:      "/static/frames/sport_modern.png",
			DefaultWidth:  320,
			DefaultHeight: 90,
			DefaultX:      390,
			DefaultY:      210,
		},
	}
}

// Load reads a catalog manifest from a JSON file.
func Load(path string) ([]FrameDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("frames: read %s: %w", path, err)
	}
	var defs []FrameDef
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("frames: parse %s: %w", path, err)
	}
	return defs, nil
}

// Write saves the catalog manifest as JSON.
func Write(path string, defs []FrameDef) error {
	data, err := json.MarshalIndent(defs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ByCategory returns the frames in the given category, original order
// preserved. An empty category returns everything.
func ByCategory(defs []FrameDef, category string) []FrameDef {
	if category == "" {
		return defs
	}
	var out []FrameDef
	for _, d := range defs {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// Find returns the frame with the given id.
func Find(defs []FrameDef, id string) (FrameDef, bool) {
	for _, d := range defs {
		if d.ID == id {
			return d, true
		}
	}
	return FrameDef{}, false
}

// Tiers groups frame IDs by category for use as preload priority tiers.
func Tiers(defs []FrameDef) map[string][]string {
	tiers := make(map[string][]string)
	for _, d := range defs {
		tiers[d.Category] = append(tiers[d.Category], d.ID)
	}
	return tiers
}

// URLs returns every frame's image URL in catalog order.
func URLs(defs []FrameDef) []string {
	urls := make([]string, len(defs))
	for i, d := range defs {
		urls[i] = d.ImageURL
	}
	return urls
}
