package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Success(t *testing.T) {
	payload := []byte("fake-jpeg-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg; charset=binary")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, 1<<20)
	data, contentType, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.True(t, bytes.Equal(payload, data))
	assert.Equal(t, "image/jpeg", contentType, "media type parameters are stripped")
}

func TestHTTPFetcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, 1<<20)
	_, _, err := f.Fetch(context.Background(), srv.URL)

	assert.ErrorContains(t, err, "unexpected status 404")
}

func TestHTTPFetcher_SizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, 32)
	_, _, err := f.Fetch(context.Background(), srv.URL)

	assert.ErrorContains(t, err, "exceeds 32 byte limit")
}

func TestHTTPFetcher_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, 1<<20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := f.Fetch(ctx, srv.URL)

	assert.Error(t, err)
}
