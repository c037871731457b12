package jaspar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/strandlab/motifmerge/pkg/cache"
)

const matrixPayload = `{
	"matrix_id": "MA0004.1",
	"name": "Arnt",
	"pfm": {
		"A": [4, 19, 0, 0, 0, 0],
		"C": [16, 0, 20, 0, 0, 0],
		"G": [0, 1, 0, 20, 0, 20],
		"T": [0, 0, 0, 0, 20, 0]
	}
}`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(cache.NullCache{}, 0).WithBaseURL(srv.URL)
	c.http = srv.Client()
	return c, srv
}

func TestFetchMatrix(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/matrix/MA0004.1/", r.URL.Path)
		w.Write([]byte(matrixPayload))
	}))

	m, err := c.FetchMatrix(context.Background(), "MA0004.1", false)
	require.NoError(t, err)
	require.Equal(t, "MA0004.1 Arnt", m.Name)
	require.Len(t, m.Matrix, 6)
	require.NoError(t, m.Validate())
	require.InDelta(t, 0.2, m.Matrix[0][0], 1e-9)  // A: 4/20
	require.InDelta(t, 0.8, m.Matrix[0][1], 1e-9)  // C: 16/20
	require.InDelta(t, 0.95, m.Matrix[1][0], 1e-9) // A: 19/20
}

func TestFetchMatrix_NotFound(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := c.FetchMatrix(context.Background(), "MA9999.9", false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFetchMatrix_UsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(matrixPayload))
	}))
	t.Cleanup(srv.Close)

	backend, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	c := NewClient(backend, time.Hour).WithBaseURL(srv.URL)
	c.http = srv.Client()

	ctx := context.Background()
	_, err = c.FetchMatrix(ctx, "MA0004.1", false)
	require.NoError(t, err)
	_, err = c.FetchMatrix(ctx, "MA0004.1", false)
	require.NoError(t, err)
	require.Equal(t, int32(1), hits.Load())

	// refresh bypasses the cache
	_, err = c.FetchMatrix(ctx, "MA0004.1", true)
	require.NoError(t, err)
	require.Equal(t, int32(2), hits.Load())
}

func TestSearch(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/matrix/", r.URL.Path)
		require.Equal(t, "Arnt", r.URL.Query().Get("search"))
		w.Write([]byte(`{"count": 2, "results": [
			{"matrix_id": "MA0004.1", "name": "Arnt"},
			{"matrix_id": "MA0006.1", "name": "Ahr::Arnt"}
		]}`))
	}))

	hits, err := c.Search(context.Background(), "Arnt", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "MA0004.1", hits[0].MatrixID)
	require.Equal(t, "Ahr::Arnt", hits[1].Name)
}

func TestFetchMatrix_ZeroColumn(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"matrix_id": "MA0000.0", "pfm": {
			"A": [0], "C": [0], "G": [0], "T": [0]
		}}`))
	}))

	_, err := c.FetchMatrix(context.Background(), "MA0000.0", false)
	require.Error(t, err)
}
