package facebook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/page-99/feed", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the release", r.PostForm.Get("message"))
		assert.Equal(t, "tok", r.PostForm.Get("access_token"))
		_, _ = w.Write([]byte(`{"id":"page-99_123"}`))
	}))
	defer srv.Close()

	c := NewClient("tok", "page-99", WithBaseURL(srv.URL))
	assert.NoError(t, c.Post(context.Background(), "the release"))
}

func TestPost_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid token"}}`))
	}))
	defer srv.Close()

	c := NewClient("tok", "page-99", WithBaseURL(srv.URL))
	err := c.Post(context.Background(), "text")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
