package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one of the annotation types Darwin supports.
type Kind string

const (
	KindAttributes        Kind = "attributes"
	KindAutoAnnotate      Kind = "auto_annotate"
	KindBoundingBox       Kind = "bounding_box"
	KindCuboid            Kind = "cuboid"
	KindDirectionalVector Kind = "directional_vector"
	KindEllipse           Kind = "ellipse"
	KindInference         Kind = "inference"
	KindInstanceID        Kind = "instance_id"
	KindKeypoint          Kind = "keypoint"
	KindLine              Kind = "line"
	KindMeasures          Kind = "measures"
	KindPolygon           Kind = "polygon"
	KindRasterLayer       Kind = "raster_layer"
	KindSkeleton          Kind = "skeleton"
	KindTag               Kind = "tag"
	KindText              Kind = "text"
)

var (
	// ErrInvalidKind is returned for strings outside the known type set.
	ErrInvalidKind = errors.New("invalid annotation type")

	// ErrUnassignedCode is returned for kinds whose class-system code is
	// not known. The platform never documented these; guessing a value
	// would corrupt class type-sets server side.
	ErrUnassignedCode = errors.New("no class code assigned for annotation type")
)

var allKinds = map[Kind]bool{
	KindAttributes:        true,
	KindAutoAnnotate:      true,
	KindBoundingBox:       true,
	KindCuboid:            true,
	KindDirectionalVector: true,
	KindEllipse:           true,
	KindInference:         true,
	KindInstanceID:        true,
	KindKeypoint:          true,
	KindLine:              true,
	KindMeasures:          true,
	KindPolygon:           true,
	KindRasterLayer:       true,
	KindSkeleton:          true,
	KindTag:               true,
	KindText:              true,
}

// ParseKind converts a Darwin annotation type string into a Kind,
// case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(s))
	if !allKinds[k] {
		return "", fmt.Errorf("%w: %s", ErrInvalidKind, s)
	}
	return k, nil
}

// kindCodes maps annotation kinds to the numeric codes the platform uses
// when grouping annotation classes by compatible type-sets. Kinds absent
// from this table have no authoritative code; Code surfaces that as an
// error rather than inventing one.
var kindCodes = map[Kind]uint32{
	KindTag:         1,
	KindBoundingBox: 2,
	KindPolygon:     3,
	KindAttributes:  5,
	KindText:        6,
	KindLine:        11,
	KindSkeleton:    12,
}

// Code returns the class-system code for the kind.
func (k Kind) Code() (uint32, error) {
	if code, ok := kindCodes[k]; ok {
		return code, nil
	}
	if !allKinds[k] {
		return 0, fmt.Errorf("%w: %s", ErrInvalidKind, string(k))
	}
	return 0, fmt.Errorf("%w: %s", ErrUnassignedCode, string(k))
}

func (k Kind) String() string { return string(k) }

// Data is one annotation geometry payload: a tagged union over the
// geometry primitives plus the marker kinds that carry no payload.
type Data struct {
	Kind Kind

	BoundingBox *BoundingBox
	Keypoint    *Keypoint
	Polygon     *Polygon
	Tag         *Tag
	Text        *Text
}

// geometryKeys is the fixed probe order for decoding. complex_polygon is
// the 1.0 alias for a multi-path polygon and shares the polygon kind.
var geometryKeys = []struct {
	key  string
	kind Kind
}{
	{"bounding_box", KindBoundingBox},
	{"cuboid", KindCuboid},
	{"skeleton", KindSkeleton},
	{"tag", KindTag},
	{"keypoint", KindKeypoint},
	{"polygon", KindPolygon},
	{"complex_polygon", KindPolygon},
	{"text", KindText},
	{"line", KindLine},
	{"ellipse", KindEllipse},
	{"directional_vector", KindDirectionalVector},
	{"attributes", KindAttributes},
	{"auto_annotate", KindAutoAnnotate},
	{"inference", KindInference},
	{"instance_id", KindInstanceID},
	{"measures", KindMeasures},
	{"raster_layer", KindRasterLayer},
}

// UnmarshalJSON probes the object for known geometry keys in a fixed
// order. Zero known keys yields a zero Data, which is legal: an exported
// annotation may carry no typed payload at all. Two or more known keys is
// an error so that no shape is ever silently dropped on re-encode.
func (d *Data) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("annotation data: %w", err)
	}

	var found []string
	for _, g := range geometryKeys {
		if _, ok := fields[g.key]; ok {
			found = append(found, g.key)
		}
	}
	if len(found) == 0 {
		*d = Data{}
		return nil
	}
	if len(found) > 1 {
		return fmt.Errorf("annotation data: multiple geometry fields present: %s",
			strings.Join(found, ", "))
	}

	key := found[0]
	raw := fields[key]
	decoded := Data{}
	for _, g := range geometryKeys {
		if g.key == key {
			decoded.Kind = g.kind
			break
		}
	}

	var err error
	switch decoded.Kind {
	case KindBoundingBox:
		decoded.BoundingBox = &BoundingBox{}
		err = json.Unmarshal(raw, decoded.BoundingBox)
	case KindKeypoint:
		decoded.Keypoint = &Keypoint{}
		err = json.Unmarshal(raw, decoded.Keypoint)
	case KindPolygon:
		decoded.Polygon = &Polygon{}
		err = json.Unmarshal(raw, decoded.Polygon)
	case KindTag:
		decoded.Tag = &Tag{}
	case KindText:
		decoded.Text = &Text{}
		err = json.Unmarshal(raw, decoded.Text)
	}
	if err != nil {
		return fmt.Errorf("annotation data %q: %w", key, err)
	}

	*d = decoded
	return nil
}

// MarshalJSON writes exactly one field for the active kind; every other
// geometry field is absent from the emitted object.
func (d Data) MarshalJSON() ([]byte, error) {
	if d.Kind == "" {
		return []byte("{}"), nil
	}
	if !allKinds[d.Kind] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKind, string(d.Kind))
	}

	var payload any = struct{}{}
	switch d.Kind {
	case KindBoundingBox:
		if d.BoundingBox != nil {
			payload = d.BoundingBox
		}
	case KindKeypoint:
		if d.Keypoint != nil {
			payload = d.Keypoint
		}
	case KindPolygon:
		if d.Polygon != nil {
			payload = d.Polygon
		}
	case KindText:
		if d.Text != nil {
			payload = d.Text
		}
	}
	return json.Marshal(map[string]any{string(d.Kind): payload})
}
