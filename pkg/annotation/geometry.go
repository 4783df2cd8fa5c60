package annotation

import (
	"encoding/json"
	"fmt"
)

// Keypoint is a single x/y coordinate within an image, in pixel space.
type Keypoint struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// BoundingBox is an axis-aligned box with a top-left origin. Width and
// height are non-negative by convention but the wire format does not
// enforce it.
type BoundingBox struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	W float32 `json:"w"`
	H float32 `json:"h"`
}

// Tag carries no payload; its presence alone marks an annotation as a tag.
type Tag struct{}

// Text is a free-text annotation payload.
type Text struct {
	Text string `json:"text"`
}

// Polygon is a multi-path polygon. Each inner slice is one path; multiple
// paths describe complex (e.g. donut) polygons. A path with fewer than two
// points is degenerate but accepted, since the platform itself accepts it.
type Polygon struct {
	Paths [][]Keypoint
}

// MarshalJSON always emits the darwin-json 2.0 multi-path form.
func (p Polygon) MarshalJSON() ([]byte, error) {
	paths := p.Paths
	if paths == nil {
		paths = [][]Keypoint{}
	}
	return json.Marshal(struct {
		Paths [][]Keypoint `json:"paths"`
	}{Paths: paths})
}

// UnmarshalJSON accepts the three shapes Darwin has used for polygons:
// the 1.0 "path" (one flat path), the 1.0 complex_polygon "path" (a list
// of paths), and the 2.0 "paths".
func (p *Polygon) UnmarshalJSON(data []byte) error {
	var raw struct {
		Path  json.RawMessage `json:"path"`
		Paths [][]Keypoint    `json:"paths"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("polygon: %w", err)
	}

	if raw.Paths != nil {
		p.Paths = raw.Paths
		return nil
	}
	if raw.Path == nil {
		return fmt.Errorf("polygon: missing path or paths field")
	}

	var single []Keypoint
	if err := json.Unmarshal(raw.Path, &single); err == nil {
		p.Paths = [][]Keypoint{single}
		return nil
	}

	var multi [][]Keypoint
	if err := json.Unmarshal(raw.Path, &multi); err != nil {
		return fmt.Errorf("polygon path: %w", err)
	}
	p.Paths = multi
	return nil
}
