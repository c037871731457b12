package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/strandlab/motifmerge/pkg/merge"
	"github.com/strandlab/motifmerge/pkg/motif"
)

// Merge strategies accepted by the merge endpoint.
const (
	strategyIterative = "iterative"
	strategyTree      = "tree"
)

// mergeRequest is the POST /api/merge payload. Options left at their
// zero value fall back to the engine defaults.
type mergeRequest struct {
	Motifs    []motifPayload `json:"motifs"`
	Strategy  string         `json:"strategy,omitempty"`
	Threshold *float64       `json:"threshold,omitempty"`
	GapPolicy string         `json:"gap_policy,omitempty"`
	GapBase   *float64       `json:"gap_base,omitempty"`
	Combine   string         `json:"combine,omitempty"`
	Prefix    string         `json:"prefix,omitempty"`
}

type motifPayload struct {
	Name   string      `json:"name"`
	Matrix [][]float64 `json:"matrix"`
}

type mergeResponse struct {
	Motifs []merge.Merged `json:"motifs"`
}

type distancesResponse struct {
	Pairs []merge.PairDistance `json:"pairs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	motifs, opts, threshold, err := req.resolve()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	var out []merge.Merged
	switch req.Strategy {
	case "", strategyIterative:
		out, err = merge.Iterative(motifs, threshold, opts)
	case strategyTree:
		prefix := req.Prefix
		if prefix == "" {
			prefix = merge.DefaultPrefix
		}
		out, _, err = merge.Tree(motifs, threshold, prefix, opts)
	default:
		writeError(w, http.StatusUnprocessableEntity,
			errors.New("unknown strategy "+req.Strategy))
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, mergeResponse{Motifs: out})
}

func (s *Server) handleDistances(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	motifs, opts, _, err := req.resolve()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	pairs, err := merge.Pairwise(motifs, opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, distancesResponse{Pairs: pairs})
}

// resolve converts the wire payload into validated engine inputs.
func (r mergeRequest) resolve() ([]motif.Motif, merge.Options, float64, error) {
	gapPolicy := r.GapPolicy
	if gapPolicy == "" {
		gapPolicy = merge.DefaultGapPolicy
	}
	gapBase := merge.DefaultGapBase
	if r.GapBase != nil {
		gapBase = *r.GapBase
	}
	combine := r.Combine
	if combine == "" {
		combine = merge.DefaultCombinePolicy
	}
	opts, err := merge.NewOptions(gapPolicy, gapBase, combine)
	if err != nil {
		return nil, merge.Options{}, 0, err
	}

	threshold := merge.DefaultThreshold
	if r.Threshold != nil {
		threshold = *r.Threshold
	}

	motifs := make([]motif.Motif, 0, len(r.Motifs))
	for _, p := range r.Motifs {
		m, err := p.toMotif()
		if err != nil {
			return nil, merge.Options{}, 0, err
		}
		motifs = append(motifs, m)
	}
	if err := motif.ValidateAll(motifs); err != nil {
		return nil, merge.Options{}, 0, err
	}
	return motifs, opts, threshold, nil
}

func (p motifPayload) toMotif() (motif.Motif, error) {
	pwm := make(motif.PWM, len(p.Matrix))
	for i, row := range p.Matrix {
		if len(row) != motif.AlphabetSize {
			return motif.Motif{}, errors.New("motif " + p.Name + ": matrix rows must have 4 values")
		}
		copy(pwm[i][:], row)
	}
	return motif.Motif{Name: p.Name, Matrix: pwm}, nil
}

// statusFor maps engine errors to HTTP statuses: bad input is the
// caller's fault, anything else is ours.
func statusFor(err error) int {
	switch {
	case errors.Is(err, motif.ErrEmptyMatrix),
		errors.Is(err, motif.ErrBadColumn),
		errors.Is(err, merge.ErrUnknownGapPolicy),
		errors.Is(err, merge.ErrUnknownCombine):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
