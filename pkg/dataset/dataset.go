// Package dataset covers the Darwin dataset lifecycle: creation,
// listing, item registration, bulk item operations, workflow wiring and
// export generation.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/franklin-ai/darwin-v7/pkg/annotation"
	"github.com/franklin-ai/darwin-v7/pkg/client"
	"github.com/franklin-ai/darwin-v7/pkg/imports"
	"github.com/franklin-ai/darwin-v7/pkg/item"
	"github.com/franklin-ai/darwin-v7/pkg/team"
	"github.com/franklin-ai/darwin-v7/pkg/workflow"
)

var (
	// ErrMissingID means the operation needs the dataset's numeric id.
	ErrMissingID = errors.New("dataset is missing id")

	// ErrMissingSlug means the operation needs the dataset's slug.
	ErrMissingSlug = errors.New("dataset is missing slug")

	// ErrMissingTeamSlug means the operation needs the owning team's slug.
	ErrMissingTeamSlug = errors.New("dataset is missing team slug")
)

// Dataset is one Darwin dataset. Everything is optional: which fields
// the platform fills depends on the endpoint the dataset came from.
type Dataset struct {
	Active                            *bool             `json:"active,omitempty"`
	Archived                          *bool             `json:"archived,omitempty"`
	ArchivedAt                        *string           `json:"archived_at,omitempty"`
	AnnotationHotkeys                 map[string]string `json:"annotation_hotkeys,omitempty"`
	AnnotatorsCanCreateTags           *bool             `json:"annotators_can_create_tags,omitempty"`
	AnnotatorsCanInstantiateWorkflows *bool             `json:"annotators_can_instantiate_workflows,omitempty"`
	AnyoneCanDoubleAssign             *bool             `json:"anyone_can_double_assign,omitempty"`

	DefaultWorkflowTemplateID *uint32 `json:"default_workflow_template_id,omitempty"`

	ID           *uint32 `json:"id,omitempty"`
	InsertedAt   *string `json:"inserted_at,omitempty"`
	Instructions *string `json:"instructions,omitempty"`

	Name             *string  `json:"name,omitempty"`
	NumAnnotations   *uint32  `json:"num_annotations,omitempty"`
	NumAnnotators    *uint32  `json:"num_annotators,omitempty"`
	NumClasses       *uint32  `json:"num_classes,omitempty"`
	NumCompleteFiles *uint32  `json:"num_complete_files,omitempty"`
	NumImages        *uint32  `json:"num_images,omitempty"`
	NumItems         *uint32  `json:"num_items,omitempty"`
	NumVideos        *uint32  `json:"num_videos,omitempty"`
	OwnerID          *uint32  `json:"owner_id,omitempty"`
	ParentID         *uint32  `json:"parent_id,omitempty"`
	PDFFitPage       *bool    `json:"pdf_fit_page,omitempty"`
	Progress         *float64 `json:"progress,omitempty"`
	Public           *bool    `json:"public,omitempty"`

	ReviewersCanAnnotate *bool   `json:"reviewers_can_annotate,omitempty"`
	Slug                 *string `json:"slug,omitempty"`
	TeamID               *uint32 `json:"team_id,omitempty"`
	TeamSlug             *string `json:"team_slug,omitempty"`

	UpdatedAt          *string `json:"updated_at,omitempty"`
	Version            *uint32 `json:"version,omitempty"`
	WorkSize           *uint32 `json:"work_size,omitempty"`
	WorkPrioritization *string `json:"work_prioritization,omitempty"`
}

func (d Dataset) String() string {
	name, slug := "", ""
	if d.Name != nil {
		name = *d.Name
	}
	if d.Slug != nil {
		slug = *d.Slug
	}
	return fmt.Sprintf("%v:%s/%s", d.ID, name, slug)
}

// Update is the settings payload of the dataset PUT endpoint. The
// endpoint requires every parameter, not only those being changed, so
// callers start from FromDataset and override what they need.
type Update struct {
	AnnotationHotkeys                 map[string]string `json:"annotation_hotkeys,omitempty"`
	AnnotatorsCanCreateTags           *bool             `json:"annotators_can_create_tags,omitempty"`
	AnnotatorsCanInstantiateWorkflows *bool             `json:"annotators_can_instantiate_workflows,omitempty"`
	AnyoneCanDoubleAssign             *bool             `json:"anyone_can_double_assign,omitempty"`
	Instructions                      *string           `json:"instructions,omitempty"`
	Name                              *string           `json:"name,omitempty"`
	Public                            *bool             `json:"public,omitempty"`
	ReviewersCanAnnotate              *bool             `json:"reviewers_can_annotate,omitempty"`
	WorkSize                          *uint32           `json:"work_size,omitempty"`
	WorkPrioritization                *string           `json:"work_prioritization,omitempty"`
}

// FromDataset copies the dataset's current settings into an Update.
func FromDataset(d *Dataset) Update {
	return Update{
		AnnotationHotkeys:                 d.AnnotationHotkeys,
		AnnotatorsCanCreateTags:           d.AnnotatorsCanCreateTags,
		AnnotatorsCanInstantiateWorkflows: d.AnnotatorsCanInstantiateWorkflows,
		AnyoneCanDoubleAssign:             d.AnyoneCanDoubleAssign,
		Instructions:                      d.Instructions,
		Name:                              d.Name,
		Public:                            d.Public,
		ReviewersCanAnnotate:              d.ReviewersCanAnnotate,
		WorkSize:                          d.WorkSize,
		WorkPrioritization:                d.WorkPrioritization,
	}
}

// ExportFormat selects the file format of a generated export.
type ExportFormat string

const (
	FormatDarwinJSON2  ExportFormat = "darwin_json_2"
	FormatJSON         ExportFormat = "json"
	FormatXML          ExportFormat = "xml"
	FormatCoco         ExportFormat = "coco"
	FormatCvat         ExportFormat = "cvat"
	FormatPascalVoc    ExportFormat = "pascal_voc"
	FormatSemanticMask ExportFormat = "semantic-mask"
	FormatInstanceMask ExportFormat = "instance-mask"
)

// ExportMetadata summarizes the classes covered by a generated export.
type ExportMetadata struct {
	AnnotationClasses []annotation.Class `json:"annotation_classes"`
	AnnotationTypes   []team.TypeCount   `json:"annotation_types"`
}

// ExportRelease is one generated export of a dataset.
type ExportRelease struct {
	Name        *string         `json:"name,omitempty"`
	DownloadURL *string         `json:"download_url,omitempty"`
	Format      *ExportFormat   `json:"format,omitempty"`
	InsertedAt  *string         `json:"inserted_at,omitempty"`
	Latest      *bool           `json:"latest,omitempty"`
	Metadata    *ExportMetadata `json:"metadata,omitempty"`
	Status      *string         `json:"status,omitempty"`
	Version     *uint16         `json:"version,omitempty"`
}

type datasetName struct {
	Name string `json:"name"`
}

type addDataItemsPayload struct {
	Items       []item.AddDataPayload `json:"items"`
	StorageName string                `json:"storage_name"`
}

// RegisterExistingItemPayload registers externally stored files into a
// dataset read-only, the v2 replacement for the data endpoint.
type RegisterExistingItemPayload struct {
	DatasetSlug string                    `json:"dataset_slug"`
	StorageSlug string                    `json:"storage_slug"`
	Items       []item.ExistingSimpleItem `json:"items"`
}

// ResponseItem identifies one item in a registration response.
type ResponseItem struct {
	DatasetItemID *uint64 `json:"dataset_item_id,omitempty"`
	Filename      *string `json:"filename,omitempty"`
}

// ArchiveResponseItems reports how many items an archive call touched.
type ArchiveResponseItems struct {
	AffectedItemCount *int32 `json:"affected_item_count,omitempty"`
}

// AddDataItemsResponse is the response of the legacy data endpoint.
type AddDataItemsResponse struct {
	BlockedItems []ResponseItem `json:"blocked_items"`
	Items        []ResponseItem `json:"items"`
}

// SlotResponse is one slot of a registration response item.
type SlotResponse struct {
	AsFrames     bool                  `json:"as_frames"`
	ExtractViews bool                  `json:"extract_views"`
	FileName     string                `json:"file_name"`
	Reason       *string               `json:"reason,omitempty"`
	Metadata     item.DataPayloadLevel `json:"metadata"`
	SlotName     string                `json:"slot_name"`
	SizeBytes    uint64                `json:"size_bytes"`
	Type         item.Type             `json:"type"`
}

// RegistrationResponseItem is one item of a registration response.
type RegistrationResponseItem struct {
	ID    *string        `json:"id,omitempty"`
	Name  *string        `json:"name,omitempty"`
	Path  *string        `json:"path,omitempty"`
	Slots []SlotResponse `json:"slots"`
}

// RegisterExistingItemResponse reports which items registered and which
// were blocked.
type RegisterExistingItemResponse struct {
	BlockedItems []RegistrationResponseItem `json:"blocked_items"`
	Items        []RegistrationResponseItem `json:"items"`
}

type archiveItemPayload struct {
	Filters Filter `json:"filters"`
}

type assignItemPayload struct {
	AssigneeID uint32 `json:"assignee_id"`
	Filter     Filter `json:"filter"`
}

type generateExportPayload struct {
	Name               string  `json:"name"`
	Format             string  `json:"format"`
	IncludeAuthorship  bool    `json:"include_authorship"`
	IncludeExportToken bool    `json:"include_export_token"`
	Filters            *Filter `json:"filters,omitempty"`
}

type resetToNewPayload struct {
	Filter Filter `json:"filter"`
}

// SetStageFilter scopes a stage move to items of given datasets.
type SetStageFilter struct {
	DatasetIDs       []uint32 `json:"dataset_ids"`
	SelectAll        bool     `json:"select_all"`
	WorkflowStageIDs []string `json:"workflow_stage_ids,omitempty"`
}

// SetStagePayloadV2 moves filtered items to a workflow stage.
type SetStagePayloadV2 struct {
	Filters    SetStageFilter `json:"filters"`
	StageID    string         `json:"stage_id"`
	WorkflowID string         `json:"workflow_id"`
}

// SetStageResponse reports how many stage-move commands were created.
type SetStageResponse struct {
	CreatedCommands *uint32 `json:"created_commands,omitempty"`
}

// Create creates a new dataset with the given name.
func Create(ctx context.Context, c client.Methods, name string) (*Dataset, error) {
	resp, err := c.Post(ctx, "datasets", datasetName{Name: name})
	if err != nil {
		return nil, err
	}
	return client.Decode[Dataset](resp, http.StatusOK)
}

// List returns every dataset visible to the client's team.
func List(ctx context.Context, c client.Methods) ([]Dataset, error) {
	resp, err := c.Get(ctx, "datasets")
	if err != nil {
		return nil, err
	}
	datasets, err := client.Decode[[]Dataset](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return *datasets, nil
}

// Show fetches one dataset by id.
func Show(ctx context.Context, c client.Methods, id uint32) (*Dataset, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("datasets/%d", id))
	if err != nil {
		return nil, err
	}
	return client.Decode[Dataset](resp, http.StatusOK)
}

// Archive archives the whole dataset.
func (d *Dataset) Archive(ctx context.Context, c client.Methods) (*Dataset, error) {
	if d.ID == nil {
		return nil, ErrMissingID
	}
	resp, err := c.Put(ctx, fmt.Sprintf("datasets/%d/archive", *d.ID), nil)
	if err != nil {
		return nil, err
	}
	return client.Decode[Dataset](resp, http.StatusOK)
}

// ArchiveItems archives the items the filter selects. The platform docs
// ask for a reason field, but the call fails when one is provided.
func (d *Dataset) ArchiveItems(ctx context.Context, c client.Methods, filter Filter) (*ArchiveResponseItems, error) {
	if d.TeamSlug == nil {
		return nil, ErrMissingTeamSlug
	}
	endpoint := fmt.Sprintf("v2/teams/%s/items/archive", *d.TeamSlug)
	resp, err := c.Post(ctx, endpoint, archiveItemPayload{Filters: filter})
	if err != nil {
		return nil, err
	}
	return client.Decode[ArchiveResponseItems](resp, http.StatusOK)
}

// AssignItems assigns the filtered items to an annotator.
func (d *Dataset) AssignItems(ctx context.Context, c client.Methods, assigneeID uint32, filter Filter) error {
	if d.ID == nil {
		return ErrMissingID
	}
	resp, err := c.Post(ctx, fmt.Sprintf("datasets/%d/assign_items", *d.ID),
		assignItemPayload{AssigneeID: assigneeID, Filter: filter})
	if err != nil {
		return err
	}
	return client.ExpectStatus(resp, http.StatusNoContent)
}

func (d *Dataset) putUpdate(ctx context.Context, c client.Methods, payload Update) error {
	if d.ID == nil {
		return ErrMissingID
	}
	resp, err := c.Put(ctx, fmt.Sprintf("datasets/%d", *d.ID), payload)
	if err != nil {
		return err
	}
	return client.ExpectStatus(resp, http.StatusOK)
}

// UpdateBatchSize sets the dataset's work batch size, replicating the
// remaining settings unchanged.
func (d *Dataset) UpdateBatchSize(ctx context.Context, c client.Methods, size uint32) error {
	payload := FromDataset(d)
	payload.WorkSize = &size
	return d.putUpdate(ctx, c, payload)
}

// UpdateInstructions replaces the dataset's annotator instructions.
func (d *Dataset) UpdateInstructions(ctx context.Context, c client.Methods, instructions string) error {
	payload := FromDataset(d)
	payload.Instructions = &instructions
	return d.putUpdate(ctx, c, payload)
}

// UpdateAnnotationHotkeys replaces the dataset's annotation hotkeys.
func (d *Dataset) UpdateAnnotationHotkeys(ctx context.Context, c client.Methods, hotkeys map[string]string) error {
	payload := FromDataset(d)
	payload.AnnotationHotkeys = hotkeys
	return d.putUpdate(ctx, c, payload)
}

// AddData uploads externally stored files through the legacy data
// endpoint.
//
// Deprecated: v2 of the platform API requires RegisterItems.
func (d *Dataset) AddData(ctx context.Context, c client.Methods, data []item.AddDataPayload, externalStorage string) (*AddDataItemsResponse, error) {
	if d.TeamSlug == nil {
		return nil, ErrMissingTeamSlug
	}
	if d.Slug == nil {
		return nil, ErrMissingSlug
	}
	endpoint := fmt.Sprintf("teams/%s/datasets/%s/data", *d.TeamSlug, *d.Slug)
	resp, err := c.Put(ctx, endpoint, addDataItemsPayload{Items: data, StorageName: externalStorage})
	if err != nil {
		return nil, err
	}
	return client.Decode[AddDataItemsResponse](resp, http.StatusOK)
}

// RegisterItems registers externally stored files read-only with the v2
// endpoint.
func (d *Dataset) RegisterItems(ctx context.Context, c client.Methods, data []item.ExistingSimpleItem, storageSlug string) (*RegisterExistingItemResponse, error) {
	if d.TeamSlug == nil {
		return nil, ErrMissingTeamSlug
	}
	if d.Slug == nil {
		return nil, ErrMissingSlug
	}
	payload := RegisterExistingItemPayload{
		DatasetSlug: *d.Slug,
		StorageSlug: storageSlug,
		Items:       data,
	}
	endpoint := fmt.Sprintf("v2/teams/%s/items/register_existing_readonly", *d.TeamSlug)
	resp, err := c.Post(ctx, endpoint, payload)
	if err != nil {
		return nil, err
	}
	return client.Decode[RegisterExistingItemResponse](resp, http.StatusOK)
}

// ImportAnnotations imports annotations onto one dataset item.
func (d *Dataset) ImportAnnotations(ctx context.Context, c client.Methods, itemID string, payload *imports.Import) error {
	if d.TeamSlug == nil {
		return ErrMissingTeamSlug
	}
	endpoint := fmt.Sprintf("v2/teams/%s/items/%s/import", *d.TeamSlug, itemID)
	resp, err := c.Post(ctx, endpoint, payload)
	if err != nil {
		return err
	}
	return client.ExpectStatus(resp, http.StatusOK)
}

// GenerateExport kicks off export generation for the filtered items.
func (d *Dataset) GenerateExport(ctx context.Context, c client.Methods, name string, format ExportFormat, includeAuthorship, includeExportToken bool, filter *Filter) error {
	if d.TeamSlug == nil {
		return ErrMissingTeamSlug
	}
	if d.Slug == nil {
		return ErrMissingSlug
	}
	endpoint := fmt.Sprintf("v2/teams/%s/datasets/%s/exports", *d.TeamSlug, *d.Slug)
	payload := generateExportPayload{
		Name:               name,
		Format:             string(format),
		IncludeAuthorship:  includeAuthorship,
		IncludeExportToken: includeExportToken,
		Filters:            filter,
	}
	resp, err := c.Post(ctx, endpoint, payload)
	if err != nil {
		return err
	}
	return client.ExpectStatus(resp, http.StatusOK)
}

// ListExports returns the dataset's generated exports.
func (d *Dataset) ListExports(ctx context.Context, c client.Methods) ([]ExportRelease, error) {
	if d.TeamSlug == nil {
		return nil, ErrMissingTeamSlug
	}
	if d.Slug == nil {
		return nil, ErrMissingSlug
	}
	endpoint := fmt.Sprintf("v2/teams/%s/datasets/%s/exports", *d.TeamSlug, *d.Slug)
	resp, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	exports, err := client.Decode[[]ExportRelease](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return *exports, nil
}

// ListItemsV2 returns one page of the dataset's items.
func (d *Dataset) ListItemsV2(ctx context.Context, c client.Methods) (*item.Listing, error) {
	if d.TeamSlug == nil {
		return nil, ErrMissingTeamSlug
	}
	if d.ID == nil {
		return nil, ErrMissingID
	}
	endpoint := fmt.Sprintf("v2/teams/%s/items?dataset_ids=%d", *d.TeamSlug, *d.ID)
	resp, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return client.Decode[item.Listing](resp, http.StatusOK)
}

// ResetToNew moves the filtered items back to the new state.
func (d *Dataset) ResetToNew(ctx context.Context, c client.Methods, filter Filter) error {
	if d.ID == nil {
		return ErrMissingID
	}
	resp, err := c.Put(ctx, fmt.Sprintf("datasets/%d/items/move_to_new", *d.ID),
		resetToNewPayload{Filter: filter})
	if err != nil {
		return err
	}
	return client.ExpectStatus(resp, http.StatusNoContent)
}

// SetWorkflowV2 creates or replaces the team workflow attached to the
// dataset.
func (d *Dataset) SetWorkflowV2(ctx context.Context, c client.Methods, builder *workflow.Builder) (*workflow.WorkflowV2, error) {
	resp, err := c.Post(ctx, fmt.Sprintf("v2/teams/%s/workflows", c.Team()), builder)
	if err != nil {
		return nil, err
	}
	return client.Decode[workflow.WorkflowV2](resp, http.StatusCreated)
}

// GetWorkflowV2 finds the team workflow whose dataset matches this one
// by name, or nil when no workflow is attached.
func (d *Dataset) GetWorkflowV2(ctx context.Context, c client.Methods) (*workflow.WorkflowV2, error) {
	if d.Name == nil {
		return nil, errors.New("dataset is missing name")
	}
	workflows, err := workflow.ListWorkflows(ctx, c, "")
	if err != nil {
		return nil, err
	}
	for i := range workflows {
		if workflows[i].Dataset != nil && workflows[i].Dataset.Name == *d.Name {
			return &workflows[i], nil
		}
	}
	return nil, nil
}

// SetStageV2 moves filtered items to the given workflow stage. A nil
// filter selects every item of this dataset.
func (d *Dataset) SetStageV2(ctx context.Context, c client.Methods, stageID, workflowID string, filter *SetStageFilter) (*SetStageResponse, error) {
	if filter == nil {
		if d.ID == nil {
			return nil, ErrMissingID
		}
		filter = &SetStageFilter{DatasetIDs: []uint32{*d.ID}, SelectAll: true}
	}
	payload := SetStagePayloadV2{Filters: *filter, StageID: stageID, WorkflowID: workflowID}
	resp, err := c.Post(ctx, fmt.Sprintf("v2/teams/%s/items/stage", c.Team()), payload)
	if err != nil {
		return nil, err
	}
	return client.Decode[SetStageResponse](resp, http.StatusOK)
}
