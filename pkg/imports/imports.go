// Package imports builds the payloads Darwin accepts when importing
// annotations back into a dataset item, typically round-tripped from an
// export file with the class id re-resolved against the team's class
// registry.
package imports

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/franklin-ai/darwin-v7/pkg/annotation"
	"github.com/franklin-ai/darwin-v7/pkg/export"
)

var (
	// ErrClassNotFound means no candidate class matched the
	// annotation's class name; the caller supplied an incomplete class
	// list.
	ErrClassNotFound = errors.New("no matching annotation class")

	// ErrClassMissingID means the matched class has no platform id and
	// cannot be referenced in an import payload.
	ErrClassMissingID = errors.New("annotation class missing id")
)

// Polygon is the polygon payload of an import annotation. Darwin
// provides no documentation on the keypoint ordering; annotations
// round-tripped from exports retain the order they were exported with.
type Polygon struct {
	Path []annotation.Keypoint `json:"path"`
}

// Data wraps the typed payload of one import annotation.
type Data struct {
	Polygon *Polygon        `json:"polygon,omitempty"`
	Tag     *annotation.Tag `json:"tag,omitempty"`
}

// Context names the slots of the dataset item the annotation attaches
// to. Although the field is called slot names, Darwin actually expects
// slot ids here.
type Context struct {
	SlotNames []string `json:"slot_names"`
}

// Annotation is one annotation of an import payload.
type Annotation struct {
	ID                string  `json:"id"`
	Data              Data    `json:"data"`
	AnnotationClassID uint32  `json:"annotation_class_id"`
	ContextKeys       Context `json:"context_keys"`
}

// Import is a complete annotation import payload for a single dataset
// item.
type Import struct {
	Annotations []Annotation `json:"annotations"`
	Overwrite   bool         `json:"overwrite"`
}

// findClassID resolves a class name against the candidate list: a linear
// scan, first exact name match wins. Ties are undefined by the platform,
// so no best-match heuristics are attempted.
func findClassID(classes []annotation.Class, name string) (uint32, error) {
	for i := range classes {
		if classes[i].Name == nil || *classes[i].Name != name {
			continue
		}
		if classes[i].ID == nil {
			return 0, fmt.Errorf("%w: %s", ErrClassMissingID, name)
		}
		return *classes[i].ID, nil
	}
	return 0, fmt.Errorf("%w for %s", ErrClassNotFound, name)
}

// NewPolygonAnnotation builds an import annotation carrying one polygon
// path, resolving the original annotation's class name against the
// candidate classes. Each call is independent; the generated id is a
// fresh random UUID.
func NewPolygonAnnotation(original *export.ImageAnnotation, path []annotation.Keypoint, classes []annotation.Class, slotName string) (*Annotation, error) {
	classID, err := findClassID(classes, original.Name)
	if err != nil {
		return nil, err
	}
	return &Annotation{
		ID:                uuid.New().String(),
		Data:              Data{Polygon: &Polygon{Path: path}},
		AnnotationClassID: classID,
		ContextKeys:       Context{SlotNames: []string{slotName}},
	}, nil
}

// NewTagAnnotation builds an import annotation carrying the original
// annotation's tag.
func NewTagAnnotation(original *export.ImageAnnotation, classes []annotation.Class, slotName string) (*Annotation, error) {
	classID, err := findClassID(classes, original.Name)
	if err != nil {
		return nil, err
	}
	return &Annotation{
		ID:                uuid.New().String(),
		Data:              Data{Tag: original.Tag},
		AnnotationClassID: classID,
		ContextKeys:       Context{SlotNames: []string{slotName}},
	}, nil
}
