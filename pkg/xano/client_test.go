package xano_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoctl/pkg/credstore"
	"todoctl/pkg/session"
	"todoctl/pkg/xano"
)

// backend fakes the two hosted API groups on a single test server. Any
// bearer token other than backend.token gets a 401, the way the real
// platform rejects stale credentials.
type backend struct {
	t     *testing.T
	token string
	name  string

	lastAuthHeader string
	todos          []map[string]any
	patches        []map[string]any
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()
	b := &backend{t: t, token: "good-token"}

	r := mux.NewRouter()
	r.HandleFunc("/auth/login", b.handleAuth).Methods("POST")
	r.HandleFunc("/auth/signup", b.handleAuth).Methods("POST")
	r.HandleFunc("/auth/me", b.authorized(b.handleMe)).Methods("GET")
	r.HandleFunc("/todo", b.authorized(b.handleTodoList)).Methods("GET")
	r.HandleFunc("/todo", b.authorized(b.handleTodoCreate)).Methods("POST")
	r.HandleFunc("/todo/{id}", b.authorized(b.handleTodoPatch)).Methods("PATCH")
	r.HandleFunc("/todo/{id}", b.authorized(b.handleTodoDelete)).Methods("DELETE")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *backend) handleAuth(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]string{"authToken": b.token})
}

func (b *backend) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.lastAuthHeader = r.Header.Get("Authorization")
		if b.lastAuthHeader != "Bearer "+b.token {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    "ERROR_CODE_UNAUTHORIZED",
				"message": "Unauthorized",
			})
			return
		}
		next(w, r)
	}
}

func (b *backend) handleMe(w http.ResponseWriter, _ *http.Request) {
	me := map[string]any{"id": 1, "email": "a@b.com"}
	if b.name != `` {
		me["name"] = b.name
	}
	_ = json.NewEncoder(w).Encode(me)
}

func (b *backend) handleTodoList(w http.ResponseWriter, _ *http.Request) {
	_ = json.NewEncoder(w).Encode(b.todos)
}

func (b *backend) handleTodoCreate(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	require.NoError(b.t, json.NewDecoder(r.Body).Decode(&body))
	body["id"] = len(b.todos) + 1
	b.todos = append(b.todos, body)
	_ = json.NewEncoder(w).Encode(body)
}

func (b *backend) handleTodoPatch(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	require.NoError(b.t, json.NewDecoder(r.Body).Decode(&patch))
	b.patches = append(b.patches, patch)

	resp := map[string]any{"id": 1, "title": "kept"}
	for k, v := range patch {
		resp[k] = v
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (b *backend) handleTodoDelete(w http.ResponseWriter, _ *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]any{})
}

func newClient(t *testing.T, srv *httptest.Server) (*xano.Client, credstore.Store) {
	t.Helper()
	store := credstore.NewFileStore(afero.NewMemMapFs(), "/state")
	return xano.NewClient(srv.URL, srv.URL, store), store
}

func TestLoginFetchesProfileAndFallsBackToEmail(t *testing.T) {
	b, srv := newBackend(t)
	b.name = `` // remote record without a name
	client, _ := newClient(t, srv)

	u, token, err := client.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "good-token", token)
	assert.Equal(t, 1, u.ID)
	assert.Equal(t, "a@b.com", u.Email)
	assert.Equal(t, "a@b.com", u.Name, "missing remote name falls back to the email")

	// The profile round-trip must carry the freshly issued token even though
	// nothing is stored yet.
	assert.Equal(t, "Bearer good-token", b.lastAuthHeader)
}

func TestLoginWithoutTokenIsHardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"something":"else"}`))
	}))
	t.Cleanup(srv.Close)
	client, _ := newClient(t, srv)

	_, _, err := client.Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, xano.ErrNoAuthToken))
}

func TestLoginRejectedSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code":"ERROR_CODE_ACCESS_DENIED","message":"Invalid Credentials."}`))
	}))
	t.Cleanup(srv.Close)
	client, _ := newClient(t, srv)

	_, _, err := client.Login(context.Background(), "a@b.com", "wrong")
	var apiErr *xano.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.False(t, apiErr.IsUnauthorized())
}

func TestRegisterNameFallsBackToSuppliedName(t *testing.T) {
	b, srv := newBackend(t)
	b.name = ``
	client, _ := newClient(t, srv)

	u, _, err := client.Register(context.Background(), "Bob", "b@c.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Bob", u.Name)
}

func TestRegisterKeepsRemoteName(t *testing.T) {
	b, srv := newBackend(t)
	b.name = "Robert"
	client, _ := newClient(t, srv)

	u, _, err := client.Register(context.Background(), "Bob", "b@c.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Robert", u.Name)
}

func TestBearerTokenIsReadFromStorePerRequest(t *testing.T) {
	ctx := context.Background()
	b, srv := newBackend(t)
	client, store := newClient(t, srv)

	require.NoError(t, store.Set(ctx, credstore.KeyAuthToken, "good-token"))
	_, err := client.ListTodos(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer good-token", b.lastAuthHeader)

	// A token refreshed mid-session is picked up on the very next call.
	b.token = "rotated-token"
	require.NoError(t, store.Set(ctx, credstore.KeyAuthToken, "rotated-token"))
	_, err = client.ListTodos(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer rotated-token", b.lastAuthHeader)
}

func TestUnauthorizedClearsStoreAndFiresHook(t *testing.T) {
	ctx := context.Background()
	_, srv := newBackend(t)
	client, store := newClient(t, srv)

	require.NoError(t, store.Set(ctx, credstore.KeyAuthToken, "stale-token"))
	require.NoError(t, store.Set(ctx, credstore.KeyUser, `{"id":1}`))

	hookFired := false
	client.OnUnauthorized(func() { hookFired = true })

	_, err := client.ListTodos(ctx)
	var apiErr *xano.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())

	assert.True(t, hookFired)
	_, ok, err := store.Get(ctx, credstore.KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok, "a rejected token must not survive for the next request")
	_, ok, err = store.Get(ctx, credstore.KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRejectedCredentialDropsSession(t *testing.T) {
	ctx := context.Background()
	b, srv := newBackend(t)
	store := credstore.NewFileStore(afero.NewMemMapFs(), "/state")
	client := xano.NewClient(srv.URL, srv.URL, store)

	m := session.NewManager(store, client)
	client.OnUnauthorized(func() { m.Invalidate(ctx) })

	m.Hydrate(ctx)
	require.True(t, m.Login(ctx, "a@b.com", "pw"))
	require.True(t, m.IsAuthenticated())

	// The backend rotates its expectation, so the stored token is now stale.
	b.token = "rotated-token"
	_, err := client.ListTodos(ctx)
	require.Error(t, err)

	assert.False(t, m.IsAuthenticated())
	_, ok, err := store.Get(ctx, credstore.KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTodoCRUD(t *testing.T) {
	ctx := context.Background()
	b, srv := newBackend(t)
	client, store := newClient(t, srv)
	require.NoError(t, store.Set(ctx, credstore.KeyAuthToken, "good-token"))

	created, err := client.CreateTodo(ctx, "buy milk", "the lactose-free one")
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "buy milk", created.Title)

	todos, err := client.ListTodos(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 1)

	completed := true
	updated, err := client.UpdateTodo(ctx, 1, xano.TodoPatch{Completed: &completed})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	require.Len(t, b.patches, 1)
	assert.Equal(t, map[string]any{"completed": true}, b.patches[0],
		"a completed-only patch must not touch other fields")

	require.NoError(t, client.DeleteTodo(ctx, 1))
}

func TestCreateTodoOmitsEmptyDescription(t *testing.T) {
	ctx := context.Background()
	b, srv := newBackend(t)
	client, store := newClient(t, srv)
	require.NoError(t, store.Set(ctx, credstore.KeyAuthToken, "good-token"))

	_, err := client.CreateTodo(ctx, "no description", "")
	require.NoError(t, err)
	require.Len(t, b.todos, 1)
	_, hasDesc := b.todos[0]["description"]
	assert.False(t, hasDesc)
}

func TestParseErrorFallsBackToRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	t.Cleanup(srv.Close)
	client, _ := newClient(t, srv)

	_, err := client.ListTodos(context.Background())
	var apiErr *xano.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.True(t, strings.Contains(apiErr.Message, "upstream exploded"))
}
