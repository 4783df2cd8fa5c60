package annotation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/franklin-ai/darwin-v7/pkg/client"
)

// ErrClassMissingID is returned when an operation needs a class id that
// the platform never assigned (e.g. a class constructed locally).
var ErrClassMissingID = errors.New("annotation class missing id")

// ClassMetadata carries per-type class settings. The platform does not
// document the value shapes; they are kept as loose string maps.
type ClassMetadata struct {
	Color        *string           `json:"_color,omitempty"`
	Polygon      map[string]string `json:"polygon,omitempty"`
	AutoAnnotate map[string]string `json:"auto_annotate,omitempty"`
	Inference    map[string]string `json:"inference,omitempty"`
	Measures     map[string]string `json:"measures,omitempty"`
}

// ClassDataset links a class to one dataset.
type ClassDataset struct {
	ID *uint32 `json:"id,omitempty"`
}

// ClassImage is an example crop attached to an annotation class.
type ClassImage struct {
	ID                *string  `json:"id,omitempty"`
	Index             *uint32  `json:"index,omitempty"`
	Key               *string  `json:"key,omitempty"`
	X                 *float64 `json:"x,omitempty"`
	Y                 *float64 `json:"y,omitempty"`
	Scale             *float64 `json:"scale,omitempty"`
	AnnotationClassID *uint32  `json:"annotation_class_id,omitempty"`
	CropKey           *string  `json:"crop_key,omitempty"`
	ImageHeight       *uint32  `json:"image_height,omitempty"`
	ImageWidth        *uint32  `json:"image_width,omitempty"`
	CropURL           *string  `json:"crop_url,omitempty"`
	OriginalImageURL  *string  `json:"original_image_url,omitempty"`
}

// Class is a platform-side annotation class registry entry. Most fields
// are optional because the platform returns null for them depending on
// the endpoint that produced the record.
type Class struct {
	AnnotationClassImageURL *string        `json:"annotation_class_image_url,omitempty"`
	AnnotationTypes         []string       `json:"annotation_types,omitempty"`
	DatasetID               *uint32        `json:"dataset_id,omitempty"`
	Datasets                []ClassDataset `json:"datasets"`
	ID                      *uint32        `json:"id,omitempty"`
	TeamID                  *uint32        `json:"team_id,omitempty"`
	Description             *string        `json:"description"`
	Images                  []ClassImage   `json:"images"`
	InsertedAt              *string        `json:"inserted_at,omitempty"`
	Metadata                *ClassMetadata `json:"metadata,omitempty"`
	Name                    *string        `json:"name,omitempty"`
	UpdatedAt               *string        `json:"updated_at,omitempty"`
}

// Update pushes the class definition back to the platform.
func (c *Class) Update(ctx context.Context, cl client.Methods) (*Class, error) {
	if c.ID == nil {
		return nil, ErrClassMissingID
	}
	resp, err := cl.Put(ctx, fmt.Sprintf("annotation_classes/%d", *c.ID), c)
	if err != nil {
		return nil, err
	}
	return client.Decode[Class](resp, http.StatusOK)
}

// Delete removes the class from the platform.
func (c *Class) Delete(ctx context.Context, cl client.Methods) error {
	if c.ID == nil {
		return ErrClassMissingID
	}
	resp, err := cl.Delete(ctx, fmt.Sprintf("annotation_classes/%d", *c.ID), nil)
	if err != nil {
		return err
	}
	return client.ExpectStatus(resp, http.StatusNoContent)
}
