package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	c := New("https://api.example.dev/v5/", 0, nil)

	tests := []struct {
		path     string
		expected string
	}{
		{"/boards", "https://api.example.dev/v5/boards"},
		{"boards", "https://api.example.dev/v5/boards"},
		{"", "https://api.example.dev/v5"},
		{"https://elsewhere.dev/x", "https://elsewhere.dev/x"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, c.BuildURL(tt.path), tt.path)
	}
}

func TestRequest(t *testing.T) {
	var gotAuth, gotQuery, gotMethod, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		require.Equal(t, "opcli/1.0.0", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `{"id": "42"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, nil)
	ctx := context.Background()

	t.Run("bearer and ordered query", func(t *testing.T) {
		query := []QueryParam{
			{Key: "page_size", Value: "25"},
			{Key: "field", Value: "a b"},
			{Key: "field", Value: "c"},
		}
		resp, err := c.Request(ctx, http.MethodGet, c.BuildURL("/boards"), Bearer("tok"), query, nil)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"id": "42"}, resp)
		require.Equal(t, "Bearer tok", gotAuth)

		// Order and repeated keys survive encoding.
		require.Equal(t, "page_size=25&field=a+b&field=c", gotQuery)
	})

	t.Run("basic auth", func(t *testing.T) {
		_, err := c.Request(ctx, http.MethodGet, srv.URL, Basic("id", "secret"), nil, nil)
		require.NoError(t, err)
		require.Equal(t, "Basic aWQ6c2VjcmV0", gotAuth)
	})

	t.Run("json body", func(t *testing.T) {
		body := &Body{JSON: map[string]any{"name": "x"}}
		_, err := c.Request(ctx, http.MethodPost, srv.URL, Bearer("tok"), nil, body)
		require.NoError(t, err)
		require.Equal(t, http.MethodPost, gotMethod)
		require.Equal(t, "application/json", gotContentType)
	})

	t.Run("form body", func(t *testing.T) {
		body := &Body{Form: []QueryParam{{Key: "grant_type", Value: "refresh_token"}}}
		_, err := c.Request(ctx, http.MethodPost, srv.URL, Bearer("tok"), nil, body)
		require.NoError(t, err)
		require.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	})

	t.Run("body rejected on GET", func(t *testing.T) {
		_, err := c.Request(ctx, http.MethodGet, srv.URL, Bearer("tok"), nil, &Body{JSON: map[string]any{}})
		require.Error(t, err)
	})
}

func TestRequestErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		case "/denied":
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"code": 403, "message": "denied"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, nil)
	ctx := context.Background()

	t.Run("empty success is nil", func(t *testing.T) {
		resp, err := c.Request(ctx, http.MethodGet, srv.URL+"/empty", Bearer("tok"), nil, nil)
		require.NoError(t, err)
		require.Nil(t, resp)
	})

	t.Run("error carries status and body", func(t *testing.T) {
		_, err := c.Request(ctx, http.MethodGet, srv.URL+"/denied", Bearer("tok"), nil, nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "403")
		require.Contains(t, err.Error(), "denied")
	})

	t.Run("empty error body", func(t *testing.T) {
		_, err := c.Request(ctx, http.MethodGet, srv.URL+"/missing", Bearer("tok"), nil, nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "404")
	})
}

// pageServer serves numbered pages linked by bookmark cursors.
func pageServer(t *testing.T, pages [][]any) (*httptest.Server, *[]string) {
	t.Helper()
	var bookmarks []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bookmark := r.URL.Query().Get("bookmark")
		bookmarks = append(bookmarks, bookmark)

		idx := 0
		if bookmark != "" {
			fmt.Sscanf(bookmark, "page-%d", &idx)
		}
		require.Less(t, idx, len(pages))

		page := map[string]any{"items": pages[idx]}
		if idx+1 < len(pages) {
			page["bookmark"] = fmt.Sprintf("page-%d", idx+1)
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
	return srv, &bookmarks
}

func TestPaginateAll(t *testing.T) {
	ctx := context.Background()

	t.Run("follows bookmarks", func(t *testing.T) {
		srv, bookmarks := pageServer(t, [][]any{{"a", "b"}, {"c"}, {"d"}})
		defer srv.Close()

		c := New(srv.URL, 5*time.Second, nil)
		resp, err := c.PaginateAll(ctx, http.MethodGet, srv.URL, Bearer("tok"), nil, 0, 0)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"items": []any{"a", "b", "c", "d"}}, resp)
		require.Equal(t, []string{"", "page-1", "page-2"}, *bookmarks)
	})

	t.Run("seed bookmark starts mid-stream", func(t *testing.T) {
		srv, bookmarks := pageServer(t, [][]any{{"a"}, {"b"}, {"c"}})
		defer srv.Close()

		c := New(srv.URL, 5*time.Second, nil)
		query := []QueryParam{{Key: "bookmark", Value: "page-1"}}
		resp, err := c.PaginateAll(ctx, http.MethodGet, srv.URL, Bearer("tok"), query, 0, 0)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"items": []any{"b", "c"}}, resp)
		require.Equal(t, []string{"page-1", "page-2"}, *bookmarks)
	})

	t.Run("max pages", func(t *testing.T) {
		srv, _ := pageServer(t, [][]any{{"a"}, {"b"}, {"c"}})
		defer srv.Close()

		c := New(srv.URL, 5*time.Second, nil)
		resp, err := c.PaginateAll(ctx, http.MethodGet, srv.URL, Bearer("tok"), nil, 2, 0)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"items": []any{"a", "b"}}, resp)
	})

	t.Run("max items truncates mid-page", func(t *testing.T) {
		srv, _ := pageServer(t, [][]any{{"a", "b", "c"}, {"d"}})
		defer srv.Close()

		c := New(srv.URL, 5*time.Second, nil)
		resp, err := c.PaginateAll(ctx, http.MethodGet, srv.URL, Bearer("tok"), nil, 0, 2)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"items": []any{"a", "b"}}, resp)
	})

	t.Run("non-GET rejected", func(t *testing.T) {
		c := New("https://api.example.dev", 0, nil)
		_, err := c.PaginateAll(ctx, http.MethodPost, "https://api.example.dev/x", Bearer("tok"), nil, 0, 0)
		require.Error(t, err)
	})

	t.Run("response without items", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"id": "42"}`)
		}))
		defer srv.Close()

		c := New(srv.URL, 5*time.Second, nil)
		_, err := c.PaginateAll(ctx, http.MethodGet, srv.URL, Bearer("tok"), nil, 0, 0)
		require.Error(t, err)
		require.Contains(t, err.Error(), "items")
	})
}
