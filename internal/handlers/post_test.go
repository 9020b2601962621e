package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mblog/apiserver/types"
)

func createTestPost(t *testing.T, api *testAPI, token, title string) types.Post {
	t.Helper()
	rec := api.do(t, http.MethodPost, "/posts", token, PostCreateRequest{
		Title:   title,
		Content: "content of " + title,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeJSON[types.Post](t, rec)
}

func TestCreatePost(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.registerAndLogin(t, "alice", "alice@x.com", "pw1")

	post := createTestPost(t, api, token, "hello")
	assert.Equal(t, "hello", post.Title)
	assert.True(t, post.IsPublished, "is_published defaults to true")
	assert.NotZero(t, post.ID)
}

func TestCreatePost_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/posts", "", PostCreateRequest{
		Title:   "hello",
		Content: "world",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePost_Validation(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.registerAndLogin(t, "alice", "alice@x.com", "pw1")

	rec := api.do(t, http.MethodPost, "/posts", token, PostCreateRequest{Title: "no content"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPosts_PaginationAndOrder(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.registerAndLogin(t, "alice", "alice@x.com", "pw1")

	first := createTestPost(t, api, token, "first")
	second := createTestPost(t, api, token, "second")
	createTestPost(t, api, token, "third")

	rec := api.do(t, http.MethodGet, "/posts?page=1&limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON[PostListResponse](t, rec)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, first.ID, resp.Items[0].ID)
	assert.Equal(t, second.ID, resp.Items[1].ID)

	rec = api.do(t, http.MethodGet, "/posts?page=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPost(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.registerAndLogin(t, "alice", "alice@x.com", "pw1")
	post := createTestPost(t, api, token, "hello")

	rec := api.do(t, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[types.Post](t, rec)
	assert.Equal(t, post.Title, got.Title)

	rec = api.do(t, http.MethodGet, "/posts/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePost_PartialFields(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.registerAndLogin(t, "alice", "alice@x.com", "pw1")
	post := createTestPost(t, api, token, "original")

	rec := api.do(t, http.MethodPatch, fmt.Sprintf("/posts/%d", post.ID), token, map[string]any{
		"title": "X",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decodeJSON[types.Post](t, rec)
	assert.Equal(t, "X", updated.Title)
	assert.Equal(t, post.Content, updated.Content)
	assert.Equal(t, post.IsPublished, updated.IsPublished)
}

func TestUpdatePost_NotFoundAndAuth(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.registerAndLogin(t, "alice", "alice@x.com", "pw1")

	rec := api.do(t, http.MethodPatch, "/posts/999", token, map[string]any{"title": "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPatch, "/posts/1", "", map[string]any{"title": "X"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeletePost(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.registerAndLogin(t, "alice", "alice@x.com", "pw1")
	post := createTestPost(t, api, token, "to-delete")

	rec := api.do(t, http.MethodDelete, fmt.Sprintf("/posts/%d", post.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodDelete, fmt.Sprintf("/posts/%d", post.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
