package dataset

// Filter scopes a bulk item operation. Every field is optional and
// omitted from the payload when unset; the platform treats a missing
// field as "no constraint". The zero Filter serializes to {}.
type Filter struct {
	Statuses     []string `json:"statuses,omitempty"`
	AccuracyFrom *uint32  `json:"accuracy_from,omitempty"`
	NotStatuses  []string `json:"not_statuses,omitempty"`

	NotWorkflowStageIDs []uint32 `json:"not_workflow_stage_ids,omitempty"`
	NotItemNameContains *string  `json:"not_item_name_contains,omitempty"`
	IOUThreshold        *string  `json:"iou_threshold,omitempty"`

	AnnotationClassIDs  []uint32 `json:"annotation_class_ids,omitempty"`
	NotCurrentAssignees []uint32 `json:"not_current_assignees,omitempty"`
	Types               []string `json:"types,omitempty"`
	NotAssignees        []uint32 `json:"not_assignees,omitempty"`

	ItemPaths        []string `json:"item_paths,omitempty"`
	ItemNames        []string `json:"item_names,omitempty"`
	NotItemNames     []string `json:"not_item_names,omitempty"`
	CurrentAssignees []uint32 `json:"current_assignees,omitempty"`
	HasComments      *bool    `json:"has_comments,omitempty"`
	Assignees        []uint32 `json:"assignees,omitempty"`

	ItemPathPrefix         *string  `json:"item_path_prefix,omitempty"`
	ItemNamePrefix         *string  `json:"item_name_prefix,omitempty"`
	NotItemPaths           []string `json:"not_item_paths,omitempty"`
	ItemNameContains       *string  `json:"item_name_contains,omitempty"`
	NotAnnotationClassIDs  []uint32 `json:"not_annotation_class_ids,omitempty"`
	MapFrom                *uint32  `json:"map_from,omitempty"`
	EvaluationMetricsRunID *string  `json:"evaluation_metrics_run_id,omitempty"`

	NotItemIDs []string `json:"not_item_ids,omitempty"`
	ItemIDs    []string `json:"item_ids,omitempty"`
	DatasetIDs []uint32 `json:"dataset_ids,omitempty"`

	NotItemNamePrefix            *string  `json:"not_item_name_prefix,omitempty"`
	AccuracyTo                   *uint32  `json:"accuracy_to,omitempty"`
	EvaluationMetricsRunOutcomes []string `json:"evaluation_metrics_run_otucomes,omitempty"`
	NotItemPathPrefix            *string  `json:"not_item_path_prefix,omitempty"`
	WorkflowStageIDs             []uint32 `json:"workflow_stage_ids,omitempty"`
	NotTypes                     []string `json:"not_types,omitempty"`
	MapTo                        *uint32  `json:"map_to,omitempty"`

	SelectAll *bool `json:"select_all,omitempty"`
}
