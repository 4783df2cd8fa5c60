package item

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// ImageLevel is one pyramid tile level of a tiled image: a grid of
// tile_width x tile_height tiles, x_tiles across and y_tiles down, at
// pixel_ratio-times reduced resolution.
type ImageLevel struct {
	Format     string  `json:"format"`
	PixelRatio uint16  `json:"pixel_ratio"`
	TileHeight uint32  `json:"tile_height"`
	TileWidth  uint32  `json:"tile_width"`
	XTiles     float32 `json:"x_tiles"`
	YTiles     float32 `json:"y_tiles"`
}

// Equal compares two levels, treating NaN tile counts as equal to NaN.
// The platform occasionally emits NaN for unknown level dimensions.
func (l ImageLevel) Equal(o ImageLevel) bool {
	return l.Format == o.Format &&
		l.PixelRatio == o.PixelRatio &&
		l.TileHeight == o.TileHeight &&
		l.TileWidth == o.TileWidth &&
		float32Equal(l.XTiles, o.XTiles) &&
		float32Equal(l.YTiles, o.YTiles)
}

func float32Equal(a, b float32) bool {
	if math.IsNaN(float64(a)) && math.IsNaN(float64(b)) {
		return true
	}
	return a == b
}

// Levels is the pyramid of a tiled image. On the wire it is a single flat
// JSON object whose keys are either the decimal string of a level index
// or the literal "base_key":
//
//	{
//	    "0": {
//	        "format": "png",
//	        "pixel_ratio": 1,
//	        "tile_height": 2048,
//	        "tile_width": 2048,
//	        "x_tiles": 82,
//	        "y_tiles": 22
//	    },
//	    "base_key": "some-base-key.jpg"
//	}
//
// The mixed key space needs a hand-rolled codec; the wire format
// genuinely is dynamic, so it is not forced into a plain typed struct.
type Levels struct {
	ImageLevels map[uint32]ImageLevel
	BaseKey     *string
}

// Equal compares two pyramids with NaN-tolerant level comparison.
func (l Levels) Equal(o Levels) bool {
	if len(l.ImageLevels) != len(o.ImageLevels) {
		return false
	}
	for k, v := range l.ImageLevels {
		ov, ok := o.ImageLevels[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	if (l.BaseKey == nil) != (o.BaseKey == nil) {
		return false
	}
	return l.BaseKey == nil || *l.BaseKey == *o.BaseKey
}

// MarshalJSON writes the flat mixed-key object: numeric entries sorted by
// level index for reproducibility, then base_key. A nil BaseKey omits the
// base_key entry entirely.
func (l Levels) MarshalJSON() ([]byte, error) {
	indices := make([]uint32, 0, len(l.ImageLevels))
	for idx := range l.ImageLevels {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, idx := range indices {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", strconv.FormatUint(uint64(idx), 10))
		level, err := json.Marshal(l.ImageLevels[idx])
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", idx, err)
		}
		buf.Write(level)
	}
	if l.BaseKey != nil {
		if len(indices) > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(*l.BaseKey)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"base_key":`)
		buf.Write(key)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON walks the object's key/value pairs: "base_key" is parsed
// as a string, every other key must be a non-negative base-10 integer
// naming a pyramid level. A foreign key fails the whole decode, since it
// signals either a schema change or a corrupt payload.
func (l *Levels) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("levels: %w", err)
	}

	decoded := Levels{ImageLevels: make(map[uint32]ImageLevel, len(fields))}
	for key, raw := range fields {
		if key == "base_key" {
			var base string
			if err := json.Unmarshal(raw, &base); err != nil {
				return fmt.Errorf("levels base_key: %w", err)
			}
			decoded.BaseKey = &base
			continue
		}

		idx, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return fmt.Errorf("levels: invalid key: %s", key)
		}
		var level ImageLevel
		if err := json.Unmarshal(raw, &level); err != nil {
			return fmt.Errorf("levels %q: %w", key, err)
		}
		decoded.ImageLevels[uint32(idx)] = level
	}

	*l = decoded
	return nil
}
