package workflow

import (
	"context"
	"fmt"
	"net/http"

	"github.com/franklin-ai/darwin-v7/pkg/annotation"
	"github.com/franklin-ai/darwin-v7/pkg/client"
)

// CommentBody is one comment message.
type CommentBody struct {
	Body string `json:"body"`
}

// CommentThread is a new comment thread anchored to a region of an item
// slot.
type CommentThread struct {
	BoundingBox annotation.BoundingBox `json:"bounding_box"`
	Comments    []CommentBody          `json:"comments"`
	SlotName    string                 `json:"slot_name"`
}

// CommentLine is a single stored comment within a thread.
type CommentLine struct {
	AuthorID        *uint32 `json:"author_id"`
	Body            *string `json:"body"`
	CommentThreadID *string `json:"comment_thread_id"`
	CreatedBySystem *bool   `json:"created_by_system"`
	ID              *string `json:"id"`
	InsertedAt      *string `json:"inserted_at"`
	UpdatedAt       *string `json:"updated_at"`
}

// CommentThreadResponse is the platform's record of a created thread.
type CommentThreadResponse struct {
	AuthorID      *uint32                 `json:"author_id"`
	BoundingBox   *annotation.BoundingBox `json:"bounding_box"`
	CommentCount  *uint32                 `json:"comment_count"`
	DatasetItemID *string                 `json:"dataset_item_id"`
	FirstComment  *CommentLine            `json:"first_comment"`
	ID            *string                 `json:"id"`
	InsertedAt    *string                 `json:"inserted_at"`
	IssueData     *string                 `json:"issue_data,omitempty"`
	IssueTypes    *string                 `json:"issue_types,omitempty"`
	LastCommentAt *string                 `json:"last_comment_at"`
	Resolved      *bool                   `json:"resolved"`
	SectionIndex  *string                 `json:"section_index,omitempty"`
	SlotName      *string                 `json:"slot_name"`
	UpdatedAt     *string                 `json:"updated_at"`
}

// AddCommentThread opens a comment thread on the given dataset item.
func AddCommentThread(ctx context.Context, c client.Methods, itemID string, thread *CommentThread) (*CommentThreadResponse, error) {
	endpoint := fmt.Sprintf("v2/teams/%s/items/%s/comment_threads", c.Team(), itemID)
	resp, err := c.Post(ctx, endpoint, thread)
	if err != nil {
		return nil, err
	}
	return client.Decode[CommentThreadResponse](resp, http.StatusOK)
}
