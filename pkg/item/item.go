// Package item models Darwin dataset items: the files registered in a
// dataset, their slots, upload state and tiling pyramids.
//
// Most fields are pointers because the platform returns null for them
// depending on context; there is a high degree of variability as to when
// and why a null appears in the payload.
package item

import (
	"fmt"
	"strings"

	"github.com/franklin-ai/darwin-v7/pkg/workflow"
)

// Type is the media kind of a dataset item or slot.
type Type string

const (
	TypeImage      Type = "image"
	TypeVideo      Type = "video"
	TypePDF        Type = "pdf"
	TypeDicom      Type = "dicom"
	TypeTiledImage Type = "tiled_image"
)

// Status is the lifecycle state of a dataset item.
type Status string

const (
	StatusAnnotate   Status = "annotate"
	StatusArchived   Status = "archived"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
	StatusNew        Status = "new"
	StatusProcessing Status = "processing"
	StatusReview     Status = "review"
	StatusUploading  Status = "uploading"
)

// ParseStatus converts an item status string, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(s)) {
	case StatusAnnotate:
		return StatusAnnotate, nil
	case StatusArchived:
		return StatusArchived, nil
	case StatusComplete:
		return StatusComplete, nil
	case StatusError:
		return StatusError, nil
	case StatusNew:
		return StatusNew, nil
	case StatusProcessing:
		return StatusProcessing, nil
	case StatusReview:
		return StatusReview, nil
	case StatusUploading:
		return StatusUploading, nil
	}
	return "", fmt.Errorf("invalid dataset item status: %s", s)
}

// Image is the stored-image record attached to a v1 dataset item.
type Image struct {
	External         *bool   `json:"external,omitempty"`
	Format           *string `json:"format,omitempty"`
	Height           *uint32 `json:"height,omitempty"`
	Width            *uint32 `json:"width,omitempty"`
	ID               *uint32 `json:"id,omitempty"`
	Key              *string `json:"key,omitempty"`
	Levels           *Levels `json:"levels,omitempty"`
	OriginalFilename *string `json:"original_filename,omitempty"`
	ThumbnailURL     *string `json:"thumbnail_url,omitempty"`
	Uploaded         *bool   `json:"uploaded,omitempty"`
	URL              *string `json:"url,omitempty"`
}

// DatasetImage links an Image into a dataset.
type DatasetImage struct {
	DatasetID      *uint32 `json:"dataset_id,omitempty"`
	DatasetVideoID *uint32 `json:"dataset_video_id,omitempty"`
	ID             *uint32 `json:"id,omitempty"`
	Image          *Image  `json:"image,omitempty"`
	Seq            *uint32 `json:"seq,omitempty"`
	Set            *uint32 `json:"set,omitempty"`
}

// DataPayloadLevel is the nested levels form used when registering
// externally stored tiled images. Unlike Levels it is a plain typed
// struct: registration payloads nest the pyramid under a "levels" key.
type DataPayloadLevel struct {
	Levels  map[uint32]ImageLevel `json:"levels"`
	BaseKey string                `json:"base_key"`
}

// AddDataPayload describes one externally stored file for the legacy
// data-registration endpoint.
type AddDataPayload struct {
	Type         Type             `json:"type"`
	Filename     string           `json:"filename"`
	ThumbnailKey string           `json:"thumbnail_key"`
	Path         string           `json:"path"`
	Key          string           `json:"key"`
	Width        uint32           `json:"width"`
	Height       uint32           `json:"height"`
	Metadata     DataPayloadLevel `json:"metadata"`
}

// NewSimpleItem describes one file for v2 item registration.
type NewSimpleItem struct {
	AsFrames     bool              `json:"as_frames"`
	ExtractViews bool              `json:"extract_views"`
	// FPS is either a positive integer or the string "native".
	FPS      *string           `json:"fps,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Name     string            `json:"name"`
	Path     string            `json:"path"`
	Tags     []string          `json:"tags,omitempty"`
	Type     Type              `json:"type"`
}

// RegisterNewItemOptions tunes v2 item registration.
type RegisterNewItemOptions struct {
	ForceTiling       bool `json:"force_tiling"`
	IgnoreDicomLayout bool `json:"ignore_dicom_layout"`
}

// DefaultRegisterNewItemOptions returns the platform defaults.
func DefaultRegisterNewItemOptions() RegisterNewItemOptions {
	return RegisterNewItemOptions{ForceTiling: false, IgnoreDicomLayout: true}
}

// RegisterNewSimpleItemRequest registers uploaded files into a dataset.
type RegisterNewSimpleItemRequest struct {
	DatasetSlug string                 `json:"dataset_slug"`
	Items       []NewSimpleItem        `json:"items"`
	Options     RegisterNewItemOptions `json:"options"`
}

// ImageSection is one section of a sectioned registration slot.
type ImageSection struct {
	Height       uint32 `json:"height"`
	Width        uint32 `json:"width"`
	SizeBytes    uint32 `json:"size_bytes"`
	SectionIndex uint32 `json:"section_index"`
	StorageHQKey string `json:"storage_hq_key"`
	Type         string `json:"type"`
}

// RegistrationSlot describes one slot of an externally stored item being
// registered read-only.
type RegistrationSlot struct {
	Sections            []ImageSection   `json:"sections"`
	FileName            string           `json:"file_name"`
	SizeBytes           uint32           `json:"size_bytes"`
	SlotName            string           `json:"slot_name"`
	StorageKey          string           `json:"storage_key"`
	StorageThumbnailKey string           `json:"storage_thumbnail_key"`
	Type                Type             `json:"type"`
	Metadata            DataPayloadLevel `json:"metadata"`
}

// ExistingSimpleItem is one externally stored item for read-only
// registration.
type ExistingSimpleItem struct {
	Name  string             `json:"name"`
	Path  string             `json:"path"`
	Slots []RegistrationSlot `json:"slots"`
}

// SlotMetadata is the stored metadata of a v2 item slot.
type SlotMetadata struct {
	Levels  *Levels `json:"levels"`
	BaseKey *string `json:"base_key,omitempty"`
	Height  *uint32 `json:"height,omitempty"`
	Width   *uint32 `json:"width,omitempty"`
}

// Slot is one named sub-unit of a v2 dataset item.
type Slot struct {
	FileName      *string       `json:"file_name"`
	FPS           *float32      `json:"fps"`
	ID            *string       `json:"id"`
	IsExternal    *bool         `json:"is_external"`
	Metadata      *SlotMetadata `json:"metadata"`
	SizeBytes     *uint64       `json:"size_bytes"`
	SlotName      *string       `json:"slot_name"`
	Streamable    *bool         `json:"streamable"`
	TotalSections *uint32       `json:"total_sections"`
	Type          *Type         `json:"type"`
	UploadID      *string       `json:"upload_id"`
	LegacyItemID  *int64        `json:"legacy_item_id,omitempty"`
}

// Layout describes how a v2 item arranges its slots.
type Layout struct {
	Slots   []string `json:"slots"`
	Type    *string  `json:"type"`
	Version *uint32  `json:"version"`
}

// ProcessingError reports why an upload failed platform-side processing.
type ProcessingError struct {
	Message             *string `json:"message,omitempty"`
	ProcessingErrorType *string `json:"processing_error_type,omitempty"`
	HTTPStatusCode      *int32  `json:"http_status_code,omitempty"`
	Stage               *string `json:"stage,omitempty"`
	StorageKey          *string `json:"storage_key,omitempty"`
	RawError            *string `json:"raw_error,omitempty"`
}

// Upload is the upload state of one v2 item slot.
type Upload struct {
	UploadType       *string          `json:"upload_type,omitempty"`
	FileName         *string          `json:"file_name,omitempty"`
	ProcessingStatus *string          `json:"processing_status,omitempty"`
	SlotName         *string          `json:"slot_name,omitempty"`
	UploadID         *string          `json:"upload_id,omitempty"`
	ProcessingError  *ProcessingError `json:"processing_error,omitempty"`
	AsFrames         *bool            `json:"as_frames,omitempty"`
}

// DatasetItemV2 is one dataset item as returned by the v2 item listing.
type DatasetItemV2 struct {
	Archived         *bool               `json:"archived"`
	Cursor           *string             `json:"cursor"`
	DatasetID        *uint32             `json:"dataset_id"`
	ID               *string             `json:"id"`
	InsertedAt       *string             `json:"inserted_at"`
	Layout           *Layout             `json:"layout"`
	Name             *string             `json:"name"`
	Path             *string             `json:"path"`
	Priority         *uint32             `json:"priority"`
	ProcessingStatus *Status             `json:"processing_status"`
	SlotTypes        []Type              `json:"slot_types"`
	Slots            []Slot              `json:"slots"`
	Status           *Status             `json:"status"`
	Tags             []string            `json:"tags"`
	UpdatedAt        *string             `json:"updated_at"`
	Uploads          []Upload            `json:"uploads"`
	WorkflowStatus   *workflow.StageType `json:"workflow_status"`
}

func (d DatasetItemV2) String() string {
	name, status := "", Status("")
	if d.Name != nil {
		name = *d.Name
	}
	if d.Status != nil {
		status = *d.Status
	}
	return fmt.Sprintf("{id-%v}:%s/%s%v", d.ID, name, status, d.SlotTypes)
}

// Page is the cursor block of a v2 item listing.
type Page struct {
	Count    *uint32 `json:"count"`
	Next     *string `json:"next,omitempty"`
	Previous *string `json:"previous"`
}

// Listing is one page of v2 dataset items.
type Listing struct {
	Items []DatasetItemV2 `json:"items"`
	Page  Page            `json:"page"`
}
