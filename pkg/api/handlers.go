package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/splitplan/pkg/buildinfo"
	"github.com/matzehuels/splitplan/pkg/errors"
	"github.com/matzehuels/splitplan/pkg/pipeline"
	"github.com/matzehuels/splitplan/pkg/render"
	"github.com/matzehuels/splitplan/pkg/store"
)

type createPlanRequest struct {
	Demand    []int64 `json:"demand"`
	MaxLayers int     `json:"max_layers,omitempty"`
}

type listPlansResponse struct {
	Plans []*store.Record `json:"plans"`
	Count int             `json:"count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreate(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Demand) > s.maxOutputs {
		writeError(w, r, errors.New(errors.ErrCodeInvalidDemand,
			"too many outputs: %d (max %d)", len(req.Demand), s.maxOutputs))
		return
	}

	s.logger.Debug("create plan", "demand", req.Demand, "max_layers", req.MaxLayers)
	p, err := s.runner.Plan(r.Context(), pipeline.Options{Demand: req.Demand, MaxLayers: req.MaxLayers})
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := s.store.Save(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/v1/plans/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func decodeCreate(body io.Reader) (createPlanRequest, error) {
	var req createPlanRequest
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body: %v", err)
	}
	if dec.More() {
		return req, errors.New(errors.ErrCodeInvalidFormat, "request body must contain a single JSON object")
	}
	return req, nil
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "invalid limit %q", raw))
			return
		}
		limit = n
	}

	recs, err := s.store.List(r.Context(), store.ClampLimit(limit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []*store.Record{}
	}
	writeJSON(w, http.StatusOK, listPlansResponse{Plans: recs, Count: len(recs)})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	rec, err := s.lookup(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	rec, err := s.lookup(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	opts, err := diagramOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	format := opts.Formats[0]
	if format == pipeline.FormatPDF && !render.Available() {
		writeError(w, r, errors.New(errors.ErrCodeUnsupported, "pdf rendering is not available on this server"))
		return
	}

	artifacts, err := s.runner.Render(r.Context(), rec.Plan, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) lookup(r *http.Request) (*store.Record, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidatePlanID(id); err != nil {
		return nil, err
	}
	return s.store.Get(r.Context(), strings.ToLower(id))
}

func diagramOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = pipeline.DefaultFormat
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return pipeline.Options{}, err
	}

	var detailed bool
	if raw := q.Get("detailed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidFormat, "invalid detailed flag %q", raw)
		}
		detailed = v
	}

	dir := strings.ToUpper(q.Get("direction"))
	if err := pipeline.ValidateDirection(dir); err != nil {
		return pipeline.Options{}, err
	}

	return pipeline.Options{
		Formats:   []string{format},
		Detailed:  detailed,
		Direction: dir,
	}, nil
}
