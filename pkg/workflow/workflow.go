// Package workflow models Darwin workflows: the stage pipeline a dataset
// item moves through (annotate, review, complete, ...) and the templates
// that define it.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/franklin-ai/darwin-v7/pkg/client"
)

// StageType is the kind of a workflow stage.
type StageType string

const (
	StageAnnotate  StageType = "annotate"
	StageComplete  StageType = "complete"
	StageConsensus StageType = "consensus"
	StageModel     StageType = "model"
	StageNew       StageType = "new"
	StageReview    StageType = "review"
	StageDataset   StageType = "dataset"
)

// ParseStageType converts a stage type string, case-insensitively.
func ParseStageType(s string) (StageType, error) {
	switch StageType(strings.ToLower(s)) {
	case StageAnnotate:
		return StageAnnotate, nil
	case StageComplete:
		return StageComplete, nil
	case StageConsensus:
		return StageConsensus, nil
	case StageModel:
		return StageModel, nil
	case StageNew:
		return StageNew, nil
	case StageReview:
		return StageReview, nil
	case StageDataset:
		return StageDataset, nil
	}
	return "", fmt.Errorf("invalid stage type: %s", s)
}

// TemplateMetadata is the per-stage template configuration.
type TemplateMetadata struct {
	AssignableTo     *string  `json:"assignable_to,omitempty"`
	BaseSamplingRate *float64 `json:"base_sampling_rate,omitempty"`
	Parallel         *uint32  `json:"parallel,omitempty"`
	UserSamplingRate *float64 `json:"user_sampling_rate,omitempty"`
	Readonly         *bool    `json:"readonly,omitempty"`
}

// StageMetadata is the live per-stage state.
type StageMetadata struct {
	ReadyForCompletion     *bool   `json:"ready_for_completion,omitempty"`
	PreviousStageNumber    *uint32 `json:"previous_stage_number,omitempty"`
	ReviewStatus           *string `json:"review_status,omitempty"`
	ReviewStatusModifiedAt *string `json:"review_status_modified_at,omitempty"`
}

// Stage is one stage instance of a v1 workflow.
type Stage struct {
	AssigneeID              *uint32           `json:"assignee_id"`
	Completed               *bool             `json:"completed"`
	CompletesAt             *string           `json:"completes_at"`
	DatasetItemID           uint32            `json:"dataset_item_id"`
	ID                      uint32            `json:"id"`
	Metadata                *StageMetadata    `json:"metadata"`
	Number                  *uint32           `json:"number"`
	Skipped                 *bool             `json:"skipped"`
	SkippedReason           *string           `json:"skipped_reason"`
	TemplateMetadata        *TemplateMetadata `json:"template_metadata"`
	Type                    *StageType        `json:"type"`
	WorkflowID              uint32            `json:"workflow_id"`
	WorkflowStageTemplateID uint32            `json:"workflow_stage_template_id"`
}

// TemplateAssignee links a user to a stage template with a sampling rate.
type TemplateAssignee struct {
	AssigneeID   uint32  `json:"assignee_id"`
	SamplingRate float64 `json:"sampling_rate"`
}

// StageTemplate defines one stage of a workflow template.
type StageTemplate struct {
	ID                 *uint32            `json:"id,omitempty"`
	Metadata           TemplateMetadata   `json:"metadata"`
	Name               *string            `json:"name"`
	Assignees          []TemplateAssignee `json:"workflow_stage_template_assignees"`
	StageNumber        *uint32            `json:"stage_number"`
	Type               StageType          `json:"type"`
	WorkflowTemplateID *uint32            `json:"workflow_template_id"`
}

// Workflow is a v1 workflow instance attached to one dataset item.
type Workflow struct {
	CurrentStageNumber            uint32             `json:"current_stage_number"`
	CurrentWorkflowStageTemplateID uint32            `json:"current_workflow_stage_template_id"`
	DatasetItemID                 uint32             `json:"dataset_item_id"`
	ID                            uint32             `json:"id"`
	Stages                        map[uint32][]Stage `json:"stages"`
	Status                        string             `json:"status"`
	WorkflowTemplateID            uint32             `json:"workflow_template_id"`
}

// Template is a v1 workflow template.
type Template struct {
	DatasetID uint32          `json:"dataset_id"`
	ID        *uint32         `json:"id,omitempty"`
	Name      *string         `json:"name"`
	Stages    []StageTemplate `json:"workflow_stage_templates"`
}

// Dataset is the dataset summary embedded in a v2 workflow.
type Dataset struct {
	AnnotationHotkeys map[string]string `json:"annotation_hotkeys"`
	AnnotatorsCanInstantiateWorkflows bool `json:"annotators_can_instantiate_workflows"`
	ID           uint64 `json:"id"`
	Instructions string `json:"instructions"`
	Name         string `json:"name"`
}

// Progress is the item completion summary of a v2 workflow.
type Progress struct {
	Complete   uint32 `json:"complete"`
	Idle       uint32 `json:"idle"`
	InProgress uint32 `json:"in_progress"`
	Total      uint32 `json:"total"`
}

// StageConfig is the configuration block of a v2 workflow stage. Darwin
// returns null for most of these fields outside the stage types that use
// them.
type StageConfig struct {
	AllowedClassIDs   *string  `json:"allowed_class_ids,omitempty"`
	AnnotationGroupID *string  `json:"annotation_group_id,omitempty"`
	AssignableTo      *string  `json:"assignable_to,omitempty"`
	AutoInstantiate   *bool    `json:"auto_instantiate,omitempty"`
	ClassMapping      []string `json:"class_mapping,omitempty"`
	DatasetID         uint32   `json:"dataset_id"`
	IncludeAnnotations *bool   `json:"include_annotations,omitempty"`
	Initial           bool     `json:"initial"`
	ModelID           *string  `json:"model_id,omitempty"`
	ModelType         *string  `json:"model_type,omitempty"`
	Readonly          *bool    `json:"readonly,omitempty"`
	RetryIfFails      *bool    `json:"retry_if_fails,omitempty"`
	Skippable         *bool    `json:"skippable,omitempty"`
	Threshold         *string  `json:"threshold,omitempty"`
	URL               *string  `json:"url,omitempty"`
	X                 uint32   `json:"x"`
	Y                 uint32   `json:"y"`
}

// StageEdge connects two stages of a v2 workflow graph.
type StageEdge struct {
	ID            *string `json:"id,omitempty"`
	Name          string  `json:"name"`
	SourceStageID string  `json:"source_stage_id"`
	TargetStageID string  `json:"target_stage_id"`
}

// StageAssignee maps a user onto a v2 stage.
type StageAssignee struct {
	StageID string `json:"stage_id"`
	UserID  uint32 `json:"user_id"`
}

// StageV2 is one stage of a v2 workflow.
type StageV2 struct {
	AssignableUsers []StageAssignee `json:"assignable_users"`
	Config          StageConfig     `json:"config"`
	Edges           []StageEdge     `json:"edges"`
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Type            StageType       `json:"type"`
}

// WorkflowV2 is a team-scoped v2 workflow.
type WorkflowV2 struct {
	Dataset    *Dataset  `json:"dataset"`
	ID         string    `json:"id"`
	InsertedAt string    `json:"inserted_at"`
	Name       string    `json:"name"`
	Progress   Progress  `json:"progress"`
	Stages     []StageV2 `json:"stages"`
	TeamID     string    `json:"team_id"`
	Thumbnails []string  `json:"thumbnails"`
	UpdatedAt  string    `json:"updated_at"`
}

// Builder is the payload for creating or replacing a v2 workflow.
type Builder struct {
	Stages []StageV2 `json:"stages"`
	Name   *string   `json:"name,omitempty"`
}

// AssignFilter scopes a bulk item assignment.
type AssignFilter struct {
	Statuses   []StageType `json:"statuses,omitempty"`
	DatasetIDs []uint32    `json:"dataset_ids"`
	ItemIDs    []string    `json:"item_ids,omitempty"`
	SelectAll  bool        `json:"select_all"`
}

// AssignItemsPayload assigns filtered items to a user within a workflow.
type AssignItemsPayload struct {
	Filters       AssignFilter `json:"filters"`
	AssigneeEmail string       `json:"assignee_email"`
	WorkflowID    string       `json:"workflow_id"`
}

// AssignItemsResponse reports how many assignment commands were created.
type AssignItemsResponse struct {
	CreatedCommands uint32 `json:"created_commands"`
}

// ListWorkflows returns the team's v2 workflows, optionally filtered by a
// name substring.
func ListWorkflows(ctx context.Context, c client.Methods, nameContains string) ([]WorkflowV2, error) {
	endpoint := fmt.Sprintf("v2/teams/%s/workflows", c.Team())
	if nameContains != "" {
		endpoint += "?name_contains=" + url.QueryEscape(nameContains)
	}
	resp, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	workflows, err := client.Decode[[]WorkflowV2](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return *workflows, nil
}

// AssignItems bulk-assigns filtered items to a user.
func AssignItems(ctx context.Context, c client.Methods, payload *AssignItemsPayload) (*AssignItemsResponse, error) {
	resp, err := c.Post(ctx, fmt.Sprintf("v2/teams/%s/items/assign", c.Team()), payload)
	if err != nil {
		return nil, err
	}
	return client.Decode[AssignItemsResponse](resp, http.StatusOK)
}

type userID struct {
	UserID uint32 `json:"user_id"`
}

// Assign puts the workflow's current stage in the hands of the user.
func (w *Workflow) Assign(ctx context.Context, c client.Methods, user uint32) (*Workflow, error) {
	resp, err := c.Post(ctx, fmt.Sprintf("workflow_stages/%d/assign", w.ID), userID{UserID: user})
	if err != nil {
		return nil, err
	}
	return client.Decode[Workflow](resp, http.StatusOK)
}

// GetTemplate fetches a v1 workflow template by id.
func GetTemplate(ctx context.Context, c client.Methods, id uint32) (*Template, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("workflow_templates/%d", id))
	if err != nil {
		return nil, err
	}
	return client.Decode[Template](resp, http.StatusOK)
}

// Update pushes assignee changes of the stage template back to the
// platform.
func (t *StageTemplate) Update(ctx context.Context, c client.Methods) (*StageTemplate, error) {
	if t.ID == nil {
		return nil, errors.New("workflow stage template id not specified")
	}
	resp, err := c.Put(ctx, fmt.Sprintf("workflow_stage_templates/%d", *t.ID), t)
	if err != nil {
		return nil, err
	}
	return client.Decode[StageTemplate](resp, http.StatusOK)
}
