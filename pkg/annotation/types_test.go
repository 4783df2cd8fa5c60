package annotation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("polygon")
	require.NoError(t, err)
	assert.Equal(t, KindPolygon, kind)

	kind, err = ParseKind("Bounding_Box")
	require.NoError(t, err)
	assert.Equal(t, KindBoundingBox, kind)

	_, err = ParseKind("hexagon")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidKind)
	assert.Contains(t, err.Error(), "hexagon")
}

func TestKindCodes(t *testing.T) {
	expected := map[Kind]uint32{
		KindTag:         1,
		KindBoundingBox: 2,
		KindPolygon:     3,
		KindAttributes:  5,
		KindText:        6,
		KindLine:        11,
		KindSkeleton:    12,
	}
	for kind, want := range expected {
		code, err := kind.Code()
		require.NoError(t, err, kind)
		assert.Equal(t, want, code, kind)
	}
}

func TestKindCodeUnassigned(t *testing.T) {
	for _, kind := range []Kind{KindCuboid, KindEllipse, KindKeypoint, KindRasterLayer} {
		_, err := kind.Code()
		require.Error(t, err, kind)
		assert.ErrorIs(t, err, ErrUnassignedCode, kind)
	}

	_, err := Kind("hexagon").Code()
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestDataDecodeBoundingBox(t *testing.T) {
	raw := `{"bounding_box":{"x":1.5,"y":2.5,"w":10,"h":20}}`

	var data Data
	require.NoError(t, json.Unmarshal([]byte(raw), &data))
	assert.Equal(t, KindBoundingBox, data.Kind)
	require.NotNil(t, data.BoundingBox)
	assert.Equal(t, float32(1.5), data.BoundingBox.X)
	assert.Equal(t, float32(20), data.BoundingBox.H)
}

func TestDataDecodeTag(t *testing.T) {
	var data Data
	require.NoError(t, json.Unmarshal([]byte(`{"tag":{}}`), &data))
	assert.Equal(t, KindTag, data.Kind)
	assert.NotNil(t, data.Tag)
}

func TestDataDecodeComplexPolygonAlias(t *testing.T) {
	raw := `{"complex_polygon":{"path":[[{"x":1,"y":2}],[{"x":3,"y":4}]]}}`

	var data Data
	require.NoError(t, json.Unmarshal([]byte(raw), &data))
	assert.Equal(t, KindPolygon, data.Kind)
	require.NotNil(t, data.Polygon)
	require.Len(t, data.Polygon.Paths, 2)
	assert.Equal(t, float32(3), data.Polygon.Paths[1][0].X)
}

func TestDataDecodeNoGeometry(t *testing.T) {
	var data Data
	require.NoError(t, json.Unmarshal([]byte(`{"id":"abc","name":"tissue"}`), &data))
	assert.Equal(t, Data{}, data)
}

func TestDataDecodeMultipleGeometryFields(t *testing.T) {
	raw := `{"bounding_box":{"x":0,"y":0,"w":1,"h":1},"polygon":{"path":[{"x":0,"y":0}]}}`

	var data Data
	err := json.Unmarshal([]byte(raw), &data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple geometry fields")
	assert.Contains(t, err.Error(), "bounding_box")
	assert.Contains(t, err.Error(), "polygon")
}

func TestDataDecodeMalformedPayload(t *testing.T) {
	var data Data
	err := json.Unmarshal([]byte(`{"text":42}`), &data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"text"`)
}

func TestDataMarshalSingleField(t *testing.T) {
	data := Data{Kind: KindText, Text: &Text{Text: "hello"}}

	encoded, err := json.Marshal(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":{"text":"hello"}}`, string(encoded))
}

func TestDataMarshalMarkerKind(t *testing.T) {
	encoded, err := json.Marshal(Data{Kind: KindInstanceID})
	require.NoError(t, err)
	assert.JSONEq(t, `{"instance_id":{}}`, string(encoded))
}

func TestDataMarshalZero(t *testing.T) {
	encoded, err := json.Marshal(Data{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(encoded))
}

func TestDataRoundTrip(t *testing.T) {
	original := Data{
		Kind:    KindPolygon,
		Polygon: &Polygon{Paths: [][]Keypoint{{{X: 1, Y: 2}, {X: 3, Y: 4}}}},
	}

	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Data
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, original, decoded)
}
