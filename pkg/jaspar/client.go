// Package jaspar fetches position frequency matrices from the JASPAR
// REST API and converts them to normalized motifs.
package jaspar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/strandlab/motifmerge/pkg/cache"
	"github.com/strandlab/motifmerge/pkg/httputil"
	"github.com/strandlab/motifmerge/pkg/motif"
)

// DefaultBaseURL is the public JASPAR REST endpoint.
const DefaultBaseURL = "https://jaspar.elixir.no/api/v1"

// ErrNotFound indicates the requested matrix ID does not exist.
var ErrNotFound = errors.New("jaspar: matrix not found")

// MatrixSummary is one search hit.
type MatrixSummary struct {
	MatrixID string `json:"matrix_id"`
	Name     string `json:"name"`
	Family   string `json:"family,omitempty"`
	Species  string `json:"species,omitempty"`
}

// Client provides access to the JASPAR matrix API with response
// caching and automatic retries. Safe for concurrent use.
type Client struct {
	backend cache.Cache
	http    *http.Client
	baseURL string
	ttl     time.Duration
}

// NewClient creates a JASPAR client with the given cache backend.
// Use [cache.NullCache] to disable caching.
func NewClient(backend cache.Cache, ttl time.Duration) *Client {
	return &Client{
		backend: backend,
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: DefaultBaseURL,
		ttl:     ttl,
	}
}

// WithBaseURL overrides the API endpoint. Used in tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// FetchMatrix retrieves a matrix by its JASPAR ID (e.g. "MA0004.1")
// and converts the counts to a validated frequency motif. If refresh
// is true the cache is bypassed.
func (c *Client) FetchMatrix(ctx context.Context, id string, refresh bool) (motif.Motif, error) {
	var resp matrixResponse
	err := c.cached(ctx, "matrix:"+id, refresh, &resp, func() error {
		return c.get(ctx, fmt.Sprintf("%s/matrix/%s/", c.baseURL, url.PathEscape(id)), &resp)
	})
	if err != nil {
		return motif.Motif{}, err
	}
	return resp.toMotif()
}

// Search queries matrices by transcription factor name or ID and
// returns up to limit summaries.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]MatrixSummary, error) {
	if limit <= 0 {
		limit = 25
	}
	target := fmt.Sprintf("%s/matrix/?search=%s&page_size=%d",
		c.baseURL, url.QueryEscape(query), limit)

	var resp searchResponse
	key := fmt.Sprintf("search:%s:%d", query, limit)
	if err := c.cached(ctx, key, false, &resp, func() error {
		return c.get(ctx, target, &resp)
	}); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// cached runs fetch through the cache backend: on a hit, out is
// decoded from the stored payload; on a miss, fetch fills out and the
// result is stored with the client TTL.
func (c *Client) cached(ctx context.Context, key string, refresh bool, out any, fetch func() error) error {
	if !refresh {
		if data, ok, err := c.backend.Get(ctx, key); err == nil && ok {
			if json.Unmarshal(data, out) == nil {
				return nil
			}
		}
	}
	if err := fetch(); err != nil {
		return err
	}
	if data, err := json.Marshal(out); err == nil {
		_ = c.backend.Set(ctx, key, data, c.ttl)
	}
	return nil
}

func (c *Client) get(ctx context.Context, target string, out any) error {
	return httputil.RetryWithBackoff(ctx, func() error {
		err := httputil.GetJSON(ctx, c.http, target, out)
		if err != nil && strings.Contains(err.Error(), "status 404") {
			return fmt.Errorf("%w: %s", ErrNotFound, target)
		}
		return err
	})
}

// matrixResponse mirrors the API's matrix detail payload. The pfm
// field carries raw observation counts per symbol.
type matrixResponse struct {
	MatrixID string               `json:"matrix_id"`
	Name     string               `json:"name"`
	PFM      map[string][]float64 `json:"pfm"`
}

func (r matrixResponse) toMotif() (motif.Motif, error) {
	width := -1
	for s := 0; s < motif.AlphabetSize; s++ {
		row, ok := r.PFM[string(motif.Symbols[s])]
		if !ok {
			return motif.Motif{}, fmt.Errorf("jaspar: matrix %s missing %c row",
				r.MatrixID, motif.Symbols[s])
		}
		if width == -1 {
			width = len(row)
		} else if len(row) != width {
			return motif.Motif{}, fmt.Errorf("jaspar: matrix %s has ragged pfm rows", r.MatrixID)
		}
	}

	pwm := make(motif.PWM, width)
	for i := 0; i < width; i++ {
		var total float64
		for s := 0; s < motif.AlphabetSize; s++ {
			total += r.PFM[string(motif.Symbols[s])][i]
		}
		if total <= 0 {
			return motif.Motif{}, fmt.Errorf("%w: matrix %s column %d",
				motif.ErrBadColumn, r.MatrixID, i)
		}
		for s := 0; s < motif.AlphabetSize; s++ {
			pwm[i][s] = r.PFM[string(motif.Symbols[s])][i] / total
		}
	}

	name := r.MatrixID
	if r.Name != "" {
		name = r.MatrixID + " " + r.Name
	}
	m := motif.Motif{Name: name, Matrix: pwm}
	if err := m.Validate(); err != nil {
		return motif.Motif{}, err
	}
	return m, nil
}

type searchResponse struct {
	Count   int             `json:"count"`
	Results []MatrixSummary `json:"results"`
}
