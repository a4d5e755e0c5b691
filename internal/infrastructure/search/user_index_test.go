package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/pkg/helpers"
)

type recorded struct {
	method, path string
	body         map[string]any
}

func newESServer(t *testing.T, searchResp string) (*elasticsearch.Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec := recorded{method: r.Method, path: r.URL.Path}
		_ = json.Unmarshal(b, &rec.body)
		calls = append(calls, rec)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/_search") {
			_, _ = w.Write([]byte(searchResp))
			return
		}
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, &calls
}

func TestUserIndexIndex(t *testing.T) {
	es, calls := newESServer(t, `{}`)
	x := NewUserIndex(es, "users", helpers.NewNopLogger())

	err := x.Index(context.Background(), &entity.User{
		ID: "u1", Email: "alice@example.com", Name: "Alice", Role: entity.RoleUser,
		Identity: entity.LocalIdentity("secret-hash"),
	})
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodPut, c.method)
	assert.Equal(t, "/users/_doc/u1", c.path)
	assert.Equal(t, "alice@example.com", c.body["email"])
	for _, v := range c.body {
		assert.NotEqual(t, "secret-hash", v)
	}
}

func TestUserIndexSearch(t *testing.T) {
	es, calls := newESServer(t, `{"hits":{"hits":[{"_id":"u1","_source":{"email":"alice@example.com","name":"Alice","role":"user"}}]}}`)
	x := NewUserIndex(es, "users", helpers.NewNopLogger())

	users, err := x.Search(context.Background(), "alice", 500)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, "alice@example.com", users[0].Email)
	assert.EqualValues(t, defaultSize, (*calls)[0].body["size"])
}

func TestUserIndexDisabled(t *testing.T) {
	x := NewUserIndex(nil, "users", nil)
	assert.NoError(t, x.Index(context.Background(), &entity.User{ID: "u1"}))
	users, err := x.Search(context.Background(), "alice", 5)
	require.NoError(t, err)
	assert.Empty(t, users)
}
