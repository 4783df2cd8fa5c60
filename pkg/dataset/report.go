package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/franklin-ai/darwin-v7/pkg/client"
	"github.com/franklin-ai/darwin-v7/pkg/item"
)

// ItemReport is one row of a dataset's per-item work report, served by
// the platform as CSV.
type ItemReport struct {
	// Original filename of the item.
	Filename *string
	// When the item was added to the dataset.
	UploadedDate *string
	Status       *item.Status
	// When the item first entered a workflow.
	WorkflowStartDate *string
	// When work completed; nil while in progress.
	WorkflowCompleteDate *string
	// For playback videos, the frame count.
	NumberOfFrames *uint32
	// Folder path the item was assigned in the dataset.
	Folder                       *string
	TimeSpentAnnotatingSec       *uint64
	TimeSpentReviewingSec        *uint64
	AutomationTimeAnnotatingSec  *uint64
	AutomationTimeReviewingSec   *uint64
	// Semicolon-joined annotator emails.
	Annotators *string
	// Semicolon-joined reviewer emails.
	Reviewers            *string
	WasRejectedInReview  *bool
	// Workview URL of the item.
	URL *string
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optUint32(s string) (*uint32, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil, err
	}
	out := uint32(v)
	return &out, nil
}

func optUint64(s string) (*uint64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseItemReports decodes the CSV body of the item report endpoint. The
// first row must be the header; columns are matched by name so column
// order does not matter.
func ParseItemReports(contents []byte) ([]ItemReport, error) {
	reader := csv.NewReader(bytes.NewReader(contents))
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("item report header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var reports []ItemReport
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("item report line %d: %w", line, err)
		}

		report := ItemReport{
			Filename:             optString(field(record, "filename")),
			UploadedDate:         optString(field(record, "uploaded_date")),
			WorkflowStartDate:    optString(field(record, "workflow_start_date")),
			WorkflowCompleteDate: optString(field(record, "workflow_complete_date")),
			Folder:               optString(field(record, "folder")),
			Annotators:           optString(field(record, "annotators")),
			Reviewers:            optString(field(record, "reviewers")),
			URL:                  optString(field(record, "url")),
		}
		if raw := field(record, "status"); raw != "" {
			status, err := item.ParseStatus(raw)
			if err != nil {
				return nil, fmt.Errorf("item report line %d: %w", line, err)
			}
			report.Status = &status
		}
		if report.NumberOfFrames, err = optUint32(field(record, "number_of_frames")); err != nil {
			return nil, fmt.Errorf("item report line %d: %w", line, err)
		}
		if report.TimeSpentAnnotatingSec, err = optUint64(field(record, "time_spent_annotating_sec")); err != nil {
			return nil, fmt.Errorf("item report line %d: %w", line, err)
		}
		if report.TimeSpentReviewingSec, err = optUint64(field(record, "time_spent_reviewing_sec")); err != nil {
			return nil, fmt.Errorf("item report line %d: %w", line, err)
		}
		if report.AutomationTimeAnnotatingSec, err = optUint64(field(record, "automation_time_annotating_sec")); err != nil {
			return nil, fmt.Errorf("item report line %d: %w", line, err)
		}
		if report.AutomationTimeReviewingSec, err = optUint64(field(record, "automation_time_reviewing_sec")); err != nil {
			return nil, fmt.Errorf("item report line %d: %w", line, err)
		}
		if report.WasRejectedInReview, err = optBool(field(record, "was_rejected_in_review")); err != nil {
			return nil, fmt.Errorf("item report line %d: %w", line, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// GetItemReports downloads and parses the dataset's item report CSV.
func (d *Dataset) GetItemReports(ctx context.Context, c client.Methods) ([]ItemReport, error) {
	if d.TeamSlug == nil {
		return nil, ErrMissingTeamSlug
	}
	if d.Slug == nil {
		return nil, ErrMissingSlug
	}
	endpoint := fmt.Sprintf("teams/%s/datasets/%s/item_reports", *d.TeamSlug, *d.Slug)
	resp, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &client.APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return ParseItemReports(body)
}
