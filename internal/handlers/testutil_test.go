package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/mblog/apiserver/config"
	"github.com/mblog/apiserver/internal/auth"
	"github.com/mblog/apiserver/internal/mail"
	"github.com/mblog/apiserver/internal/services"
	"github.com/mblog/apiserver/internal/store"
	"github.com/mblog/apiserver/types"
)

// In-memory repositories backing the handler tests. They mirror the
// SQL implementations' semantics: uniqueness on username/email, stable
// id ordering, COALESCE-style partial updates.

type memUserRepo struct {
	nextID int
	users  map[int]types.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: map[int]types.User{}}
}

func (r *memUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) List(_ context.Context, offset, limit int) ([]types.User, int, error) {
	ids := make([]int, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	users := make([]types.User, 0, limit)
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(users) == limit {
			break
		}
		users = append(users, r.users[id])
	}
	return users, len(ids), nil
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) SetEmailVerified(_ context.Context, email string) error {
	for id, user := range r.users {
		if user.Email == email {
			user.IsEmailVerified = true
			r.users[id] = user
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *memUserRepo) SetActive(_ context.Context, id int, active bool) error {
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.IsActive = active
	r.users[id] = user
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type memPostRepo struct {
	nextID int
	posts  map[int]types.Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{nextID: 1, posts: map[int]types.Post{}}
}

func (r *memPostRepo) List(_ context.Context, offset, limit int) ([]types.Post, int, error) {
	ids := make([]int, 0, len(r.posts))
	for id := range r.posts {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	posts := make([]types.Post, 0, limit)
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(posts) == limit {
			break
		}
		posts = append(posts, r.posts[id])
	}
	return posts, len(ids), nil
}

func (r *memPostRepo) Get(_ context.Context, id int) (types.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	return post, nil
}

func (r *memPostRepo) Create(_ context.Context, post types.Post) (types.Post, error) {
	post.ID = r.nextID
	r.nextID++
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	r.posts[post.ID] = post
	return post, nil
}

func (r *memPostRepo) Patch(_ context.Context, id int, patch types.PostPatch) (types.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	if patch.IsPublished != nil {
		post.IsPublished = *patch.IsPublished
	}
	post.UpdatedAt = time.Now()
	r.posts[id] = post
	return post, nil
}

func (r *memPostRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

type nopSender struct{}

func (nopSender) Send(context.Context, string, string, string) error { return nil }
func (nopSender) Close() error                                       { return nil }

// testAPI bundles the router and the fakes behind it.
type testAPI struct {
	router   *chi.Mux
	userRepo *memUserRepo
	postRepo *memPostRepo
	tokens   *auth.TokenService
	userSvc  *services.UserService
	postSvc  *services.PostService
}

// newTestAPI mounts the full route tree the way the server does, backed
// by in-memory repositories.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	tokens, err := auth.NewTokenService(config.TokenConfig{
		Secret:          "test-secret",
		AccessTTL:       time.Hour,
		VerificationTTL: time.Hour,
	})
	require.NoError(t, err)

	userRepo := newMemUserRepo()
	postRepo := newMemPostRepo()
	mailer := mail.NewMailer(nopSender{}, "http://localhost:8080")

	userSvc := services.NewUserService(userRepo, tokens, mailer, nil, nil)
	postSvc := services.NewPostService(postRepo, nil, nil)

	authHandler := NewAuthHandler(userSvc, tokens)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userSvc, tokens)
	})
	router.Route("/users", func(r chi.Router) {
		UserRouter(r, userSvc, authHandler)
	})
	router.Route("/posts", func(r chi.Router) {
		PostRouter(r, postSvc, authHandler.RequireAuth)
	})

	return &testAPI{
		router:   router,
		userRepo: userRepo,
		postRepo: postRepo,
		tokens:   tokens,
		userSvc:  userSvc,
		postSvc:  postSvc,
	}
}

// do performs a request against the in-process router.
func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin creates a verified account and returns its token and
// record.
func (a *testAPI) registerAndLogin(t *testing.T, username, email, password string) (string, types.User) {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.NoError(t, a.userRepo.SetEmailVerified(context.Background(), email))

	rec = a.do(t, http.MethodPost, "/auth/login", "", LoginRequest{
		Username: username,
		Password: password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token, resp.User
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &value))
	return value
}
