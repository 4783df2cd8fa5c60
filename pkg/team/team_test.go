package team

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franklin-ai/darwin-v7/pkg/annotation"
	"github.com/franklin-ai/darwin-v7/pkg/client"
	"github.com/franklin-ai/darwin-v7/pkg/config"
)

const membershipsBody = `[
	{"id": 1, "email": "alice@franklin.ai", "first_name": "Alice", "last_name": "A", "role": "admin", "team_id": 10, "user_id": 100},
	{"id": 2, "email": "bob@franklin.ai", "first_name": "Bob", "last_name": "B", "role": "annotator", "team_id": 10, "user_id": 200}
]`

func TestListMemberships(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/memberships", r.URL.Path)
		w.Write([]byte(membershipsBody))
	}))
	defer server.Close()

	c := client.New(server.URL, "key", "team-a")
	members, err := ListMemberships(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, uint32(100), members[0].UserID)
	assert.Equal(t, "bob@franklin.ai", *members[1].Email)
}

func TestMemberString(t *testing.T) {
	email, first, last := "alice@franklin.ai", "Alice", "A"
	m := Member{UserID: 100, Email: &email, FirstName: &first, LastName: &last}
	assert.Equal(t, "{id-100}Alice A (alice@franklin.ai)", m.String())

	assert.Equal(t, "{id-0}  ()", Member{}.String())
}

func TestListAnnotationClasses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teams/team-a/annotation_classes", r.URL.Path)
		w.Write([]byte(`{
			"annotation_classes": [
				{"id": 42, "name": "Tissue", "annotation_types": ["polygon"]}
			],
			"type_counts": [{"count": 1, "id": 3, "name": "polygon"}]
		}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "key", "team-a")
	team := Team{Slug: "team-a"}
	classes, err := team.ListAnnotationClasses(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, classes.AnnotationClasses, 1)
	assert.Equal(t, uint32(42), *classes.AnnotationClasses[0].ID)
	require.Len(t, classes.TypeCounts, 1)
	assert.Equal(t, uint32(1), classes.TypeCounts[0].Count)
}

func TestCreateAnnotationClass(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/teams/team-a/annotation_classes", r.URL.Path)
		w.Write([]byte(`{"id": 77, "name": "Stroma"}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "key", "team-a")
	team := Team{Slug: "team-a"}
	name := "Stroma"
	created, err := team.CreateAnnotationClass(context.Background(), c, &annotation.Class{
		Name:            &name,
		AnnotationTypes: []string{"polygon"},
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(77), *created.ID)
}

func TestFindMembersByEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(membershipsBody))
	}))
	defer server.Close()

	c := client.New(server.URL, "key", "team-a")
	found, err := FindMembersByEmail(context.Background(), c, "bob@")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, uint32(200), found[0].UserID)

	none, err := FindMembersByEmail(context.Background(), c, "carol@")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFromConfig(t *testing.T) {
	team := FromConfig(config.Team{Slug: "team-a", APIKey: "k", DatasetsDir: "/data"})
	assert.Equal(t, "team-a", team.Slug)
	assert.Equal(t, "/data", team.DatasetsDir)
	assert.Nil(t, team.TeamID)
}
