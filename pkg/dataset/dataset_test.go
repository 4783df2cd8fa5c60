package dataset

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franklin-ai/darwin-v7/pkg/client"
	"github.com/franklin-ai/darwin-v7/pkg/imports"
)

func ptr[T any](v T) *T { return &v }

func testDataset() *Dataset {
	return &Dataset{
		ID:       ptr(uint32(123456)),
		Name:     ptr("Test Dataset"),
		Slug:     ptr("test-dataset"),
		TeamSlug: ptr("team-a"),
	}
}

func TestFilterSerialization(t *testing.T) {
	empty, err := json.Marshal(Filter{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(empty))

	filter := Filter{
		AnnotationClassIDs: []uint32{1, 2, 3, 4},
		SelectAll:          ptr(true),
	}
	encoded, err := json.Marshal(filter)
	require.NoError(t, err)
	assert.Equal(t, `{"annotation_class_ids":[1,2,3,4],"select_all":true}`, string(encoded))

	var decoded Filter
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, filter, decoded)
}

func TestList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/datasets", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`[{"id": 1, "name": "one"}, {"id": 2, "name": "two"}]`))
	}))
	defer server.Close()

	c := client.New(server.URL, "key", "team-a")
	datasets, err := List(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, uint32(1), *datasets[0].ID)
	assert.Equal(t, "two", *datasets[1].Name)
}

func TestListStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := client.New(server.URL, "bad-key", "team-a")
	_, err := List(context.Background(), c)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestShow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/datasets/123456", r.URL.Path)
		w.Write([]byte(`{"id": 123456, "slug": "test-dataset"}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "key", "team-a")
	d, err := Show(context.Background(), c, 123456)
	require.NoError(t, err)
	assert.Equal(t, "test-dataset", *d.Slug)
}

func TestArchiveItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/teams/team-a/items/archive", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"filters":{"dataset_ids":[123456],"select_all":true}}`, string(body))
		w.Write([]byte(`{"affected_item_count": 3}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "key", "team-a")
	d := testDataset()
	filter := Filter{DatasetIDs: []uint32{123456}, SelectAll: ptr(true)}

	archived, err := d.ArchiveItems(context.Background(), c, filter)
	require.NoError(t, err)
	require.NotNil(t, archived.AffectedItemCount)
	assert.Equal(t, int32(3), *archived.AffectedItemCount)
}

func TestArchiveItemsMissingTeamSlug(t *testing.T) {
	d := testDataset()
	d.TeamSlug = nil
	_, err := d.ArchiveItems(context.Background(), client.New("http://unused", "k", "t"), Filter{})
	assert.ErrorIs(t, err, ErrMissingTeamSlug)
}

func TestAssignItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/datasets/123456/assign_items", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := client.New(server.URL, "key", "team-a")
	d := testDataset()
	require.NoError(t, d.AssignItems(context.Background(), c, 77, Filter{SelectAll: ptr(true)}))
}

func TestImportAnnotations(t *testing.T) {
	itemID := "0189b92f-e00c-fea9-476c-0cb6e961362b"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/teams/team-a/items/"+itemID+"/import", r.URL.Path)
		var payload imports.Import
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.True(t, payload.Overwrite)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "key", "team-a")
	d := testDataset()
	err := d.ImportAnnotations(context.Background(), c, itemID, &imports.Import{Overwrite: true})
	require.NoError(t, err)
}

func TestGenerateExport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/teams/team-a/datasets/test-dataset/exports", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "release-1", payload["name"])
		assert.Equal(t, "darwin_json_2", payload["format"])
		_, hasFilters := payload["filters"]
		assert.False(t, hasFilters)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "key", "team-a")
	d := testDataset()
	err := d.GenerateExport(context.Background(), c, "release-1", FormatDarwinJSON2, true, false, nil)
	require.NoError(t, err)
}

func TestListExports(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name": "release-1", "format": "darwin_json_2", "latest": true}]`))
	}))
	defer server.Close()

	c := client.New(server.URL, "key", "team-a")
	d := testDataset()
	exports, err := d.ListExports(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, FormatDarwinJSON2, *exports[0].Format)
	assert.True(t, *exports[0].Latest)
}

func TestListItemsV2(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/teams/team-a/items", r.URL.Path)
		assert.Equal(t, "dataset_ids=123456", r.URL.RawQuery)
		w.Write([]byte(`{
			"items": [
				{"id": "abc", "name": "slide.tiff", "status": "new", "slot_types": ["tiled_image"]}
			],
			"page": {"count": 1, "previous": null}
		}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "key", "team-a")
	d := testDataset()
	listing, err := d.ListItemsV2(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "slide.tiff", *listing.Items[0].Name)
	assert.Equal(t, uint32(1), *listing.Page.Count)
}

func TestResetToNew(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/datasets/123456/items/move_to_new", r.URL.Path)
		assert.Equal(t, http.MethodPut, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := client.New(server.URL, "key", "team-a")
	d := testDataset()
	require.NoError(t, d.ResetToNew(context.Background(), c, Filter{}))
}

func TestSetStageV2DefaultFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/teams/team-a/items/stage", r.URL.Path)
		var payload SetStagePayloadV2
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, []uint32{123456}, payload.Filters.DatasetIDs)
		assert.True(t, payload.Filters.SelectAll)
		assert.Equal(t, "stage-1", payload.StageID)
		w.Write([]byte(`{"created_commands": 12}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "key", "team-a")
	d := testDataset()
	resp, err := d.SetStageV2(context.Background(), c, "stage-1", "workflow-1", nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(12), *resp.CreatedCommands)
}
