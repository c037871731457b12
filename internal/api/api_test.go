package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	srv := httptest.NewServer(New(logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const mergeBody = `{
	"motifs": [
		{"name": "a", "matrix": [[0.9, 0.1, 0, 0], [0.1, 0.9, 0, 0]]},
		{"name": "b", "matrix": [[0.85, 0.15, 0, 0], [0.15, 0.85, 0, 0]]},
		{"name": "c", "matrix": [[0, 0, 0.9, 0.1], [0, 0, 0.1, 0.9]]}
	],
	"threshold": 0.2,
	"gap_policy": "linear",
	"gap_base": 0.1,
	"combine": "l1"
}`

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestMerge_Iterative(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/merge", mergeBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out mergeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	// a and b are near-identical and collapse; c stays alone.
	require.Len(t, out.Motifs, 2)
	var joined []string
	for _, m := range out.Motifs {
		joined = append(joined, m.Label)
	}
	require.Contains(t, joined, "c")
}

func TestMerge_Tree(t *testing.T) {
	srv := newTestServer(t)
	var req map[string]any
	require.NoError(t, json.Unmarshal([]byte(mergeBody), &req))
	req["strategy"] = "tree"
	req["prefix"] = "cluster"
	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp := postJSON(t, srv.URL+"/api/merge", string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out mergeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Motifs, 2)
}

func TestMerge_UnknownStrategy(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/merge", `{"strategy": "spectral", "motifs": []}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestMerge_UnknownPolicy(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/merge",
		`{"gap_policy": "log", "motifs": [{"name": "a", "matrix": [[1, 0, 0, 0]]}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var out errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Contains(t, out.Error, "gap")
}

func TestMerge_InvalidMotif(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/merge",
		`{"motifs": [{"name": "bad", "matrix": [[0.5, 0.5, 0.5, 0.5]]}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestMerge_BadJSON(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/merge", "{not json")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDistances(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/distances", mergeBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out distancesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Pairs, 3) // 3 choose 2

	for _, p := range out.Pairs {
		require.NotEqual(t, p.A, p.B)
		require.GreaterOrEqual(t, p.Distance, 0.0)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	srv := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "fixed-id")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "fixed-id", resp.Header.Get("X-Request-ID"))
}
