// Package export models the Darwin export format, the read-only JSON
// shape the platform returns when bulk-exporting annotated items.
// https://docs.v7labs.com/reference/darwin-json
package export

import (
	"encoding/json"

	"github.com/franklin-ai/darwin-v7/pkg/annotation"
	"github.com/franklin-ai/darwin-v7/pkg/item"
)

// Annotator identifies an annotator or reviewer on Darwin.
type Annotator struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// ImageExport is the image record of a v1 export file.
type ImageExport struct {
	// Internal filename on Darwin.
	Filename         string `json:"filename"`
	Height           uint32 `json:"height"`
	OriginalFilename string `json:"original_filename"`
	// Path of the file within Darwin.
	Path         string `json:"path"`
	ThumbnailURL string `json:"thumbnail_url"`
	URL          string `json:"url"`
	Width        uint32 `json:"width"`
	// The workview URL of the image on Darwin.
	WorkviewURL string `json:"workview_url"`
}

// ImageAnnotation is one annotation attached to one image or item.
//
// At most one of the typed payload fields is populated in the common
// case, but the wire format does not enforce it: the platform regularly
// emits a bounding_box alongside a polygon. Whatever combination arrives
// is preserved as-is rather than collapsed.
type ImageAnnotation struct {
	ID         *string     `json:"id,omitempty"`
	// Name is the annotation class name.
	Name       string      `json:"name"`
	Annotators []Annotator `json:"annotators,omitempty"`
	Reviewers  []Annotator `json:"reviewers,omitempty"`

	BoundingBox *annotation.BoundingBox `json:"bounding_box,omitempty"`
	Tag         *annotation.Tag         `json:"tag,omitempty"`
	Polygon     *annotation.Polygon     `json:"polygon,omitempty"`
	Text        *annotation.Text        `json:"text,omitempty"`

	SlotNames []string `json:"slot_names,omitempty"`
	UpdatedAt *string  `json:"updated_at,omitempty"`
}

// imageAnnotationWire adds the 1.0 complex_polygon alias, folded into
// Polygon after decode.
type imageAnnotationWire struct {
	ID         *string     `json:"id"`
	Name       string      `json:"name"`
	Annotators []Annotator `json:"annotators"`
	Reviewers  []Annotator `json:"reviewers"`

	BoundingBox    *annotation.BoundingBox `json:"bounding_box"`
	Tag            *annotation.Tag         `json:"tag"`
	Polygon        *annotation.Polygon     `json:"polygon"`
	ComplexPolygon *annotation.Polygon     `json:"complex_polygon"`
	Text           *annotation.Text        `json:"text"`

	SlotNames []string `json:"slot_names"`
	UpdatedAt *string  `json:"updated_at"`
}

func (a *ImageAnnotation) UnmarshalJSON(data []byte) error {
	var wire imageAnnotationWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*a = ImageAnnotation{
		ID:          wire.ID,
		Name:        wire.Name,
		Annotators:  wire.Annotators,
		Reviewers:   wire.Reviewers,
		BoundingBox: wire.BoundingBox,
		Tag:         wire.Tag,
		Polygon:     wire.Polygon,
		Text:        wire.Text,
		SlotNames:   wire.SlotNames,
		UpdatedAt:   wire.UpdatedAt,
	}
	if a.Polygon == nil && wire.ComplexPolygon != nil {
		a.Polygon = wire.ComplexPolygon
	}
	return nil
}

// Export is a v1 export file: one annotated image.
type Export struct {
	Annotations []ImageAnnotation `json:"annotations"`
	Dataset     string            `json:"dataset"`
	Image       ImageExport       `json:"image"`
}

// DatasetRef is the dataset summary embedded in a v2 export.
type DatasetRef struct {
	Name                 string `json:"name"`
	Slug                 string `json:"slug"`
	DatasetManagementURL string `json:"dataset_management_url"`
}

// TeamRef is the team summary embedded in a v2 export.
type TeamRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SourceInfo names where a v2 export item came from.
type SourceInfo struct {
	Dataset     DatasetRef `json:"dataset"`
	ItemID      string     `json:"item_id"`
	Team        TeamRef    `json:"team"`
	WorkviewURL string     `json:"workview_url"`
}

// SourceFile is one stored file backing a v2 export slot.
type SourceFile struct {
	FileName   string `json:"file_name"`
	StorageKey string `json:"storage_key"`
	URL        string `json:"url"`
}

// Slot is one slot of a v2 export item.
type Slot struct {
	Type         item.Type    `json:"type"`
	SlotName     string       `json:"slot_name"`
	Width        uint32       `json:"width"`
	Height       uint32       `json:"height"`
	ThumbnailURL string       `json:"thumbnail_url"`
	SourceFiles  []SourceFile `json:"source_files"`
}

// Item is the item block of a v2 export file.
type Item struct {
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	SourceInfo SourceInfo `json:"source_info"`
	Slots      []Slot     `json:"slots"`
}

// ExportV2 is a darwin-json 2.0 export file.
type ExportV2 struct {
	Version     string            `json:"version"`
	SchemaRef   string            `json:"schema_ref"`
	Item        Item              `json:"item"`
	Annotations []ImageAnnotation `json:"annotations"`
}
