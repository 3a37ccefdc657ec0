package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mondrian/pkg/atlas"
	"github.com/matzehuels/mondrian/pkg/buildinfo"
	"github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/events"
	"github.com/matzehuels/mondrian/pkg/pipeline"
	"github.com/matzehuels/mondrian/pkg/storage"
	"github.com/matzehuels/mondrian/pkg/trace"
)

// =============================================================================
// Request / response shapes
// =============================================================================

type layoutResponse struct {
	ID        string             `json:"id"`
	TraceHash string             `json:"trace_hash"`
	Lanes     []trace.Renderable `json:"lanes"`
	LaneCount int                `json:"lane_count"`
	Extents   trace.Extents      `json:"extents"`
	Cached    bool               `json:"cached"`
}

type packRequest struct {
	PageWidth  int            `json:"page_width"`
	PageHeight int            `json:"page_height"`
	Shards     int            `json:"shards,omitempty"`
	Images     []atlas.Source `json:"images"`
}

type packResponse struct {
	ID         string       `json:"id"`
	PageWidth  int          `json:"page_width"`
	PageHeight int          `json:"page_height"`
	Pages      []atlas.Page `json:"pages"`
	Cached     bool         `json:"cached"`
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	measures, err := trace.ReadTrace(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.options()
	opts.Refresh = r.URL.Query().Get("refresh") == "true"

	rs, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), measures, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	traceHash, err := pipeline.HashTrace(measures)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc := &storage.LayoutDoc{TraceHash: traceHash, Lanes: rs, LaneCount: trace.LaneCount(rs)}
	if err := s.store.SaveLayout(r.Context(), doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(r, events.Event{
		Type: events.LayoutCreated,
		ID:   doc.ID,
		Payload: map[string]any{
			"trace_hash": doc.TraceHash,
			"lane_count": doc.LaneCount,
			"cached":     hit,
		},
	})
	writeJSON(w, http.StatusCreated, newLayoutResponse(doc, hit))
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDocumentID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.store.GetLayout(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLayoutResponse(doc, false))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.renderOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	measures, err := trace.ReadTrace(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), measures, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Mondrian-Lanes", strconv.Itoa(result.Stats.LaneCount))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) handlePack(w http.ResponseWriter, r *http.Request) {
	var req packRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, img := range req.Images {
		if err := errors.ValidateLabelID(img.ID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	opts := s.options()
	opts.PageWidth, opts.PageHeight = req.PageWidth, req.PageHeight
	if req.Shards > 0 {
		opts.Shards = req.Shards
	}
	if err := opts.ValidateForPack(); err != nil {
		s.writeError(w, r, err)
		return
	}

	pages, hit, err := s.runner.PackWithCacheInfo(r.Context(), req.Images, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc := &storage.AtlasDoc{PageWidth: opts.PageWidth, PageHeight: opts.PageHeight, Pages: pages}
	if err := s.store.SaveAtlas(r.Context(), doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(r, events.Event{
		Type: events.AtlasCreated,
		ID:   doc.ID,
		Payload: map[string]any{
			"page_width":  doc.PageWidth,
			"page_height": doc.PageHeight,
			"pages":       len(doc.Pages),
			"images":      len(req.Images),
		},
	})
	writeJSON(w, http.StatusCreated, packResponse{
		ID:         doc.ID,
		PageWidth:  doc.PageWidth,
		PageHeight: doc.PageHeight,
		Pages:      nonNilPages(doc.Pages),
		Cached:     hit,
	})
}

func (s *Server) handleGetAtlas(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDocumentID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.store.GetAtlas(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, packResponse{
		ID:         doc.ID,
		PageWidth:  doc.PageWidth,
		PageHeight: doc.PageHeight,
		Pages:      nonNilPages(doc.Pages),
	})
}

// =============================================================================
// Helpers
// =============================================================================

// publish announces a saved document. A failed publish is logged and does
// not fail the request; the document is already stored.
func (s *Server) publish(r *http.Request, ev events.Event) {
	if err := s.publisher.Publish(r.Context(), ev); err != nil {
		s.logger.Warn("publish event", "type", ev.Type, "id", ev.ID, "error", err)
	}
}

// options returns a copy of the server defaults that a request may modify.
func (s *Server) options() pipeline.Options {
	opts := s.defaults
	opts.Formats = append([]string(nil), s.defaults.Formats...)
	return opts
}

// renderOptions reads viz_type, format, width, labels and detailed from the
// query string.
func (s *Server) renderOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.options()
	if v := q.Get("viz_type"); v != "" {
		opts.VizType = v
	}
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts.Formats = []string{format}
	if v := q.Get("width"); v != "" {
		width, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid width %q", v)
		}
		opts.Width = width
	}
	opts.NoLabels = q.Get("labels") == "false"
	opts.Detailed = q.Get("detailed") == "true"
	opts.Refresh = q.Get("refresh") == "true"
	return opts, opts.ValidateForRender()
}

func newLayoutResponse(doc *storage.LayoutDoc, cached bool) layoutResponse {
	lanes := doc.Lanes
	if lanes == nil {
		lanes = []trace.Renderable{}
	}
	return layoutResponse{
		ID:        doc.ID,
		TraceHash: doc.TraceHash,
		Lanes:     lanes,
		LaneCount: doc.LaneCount,
		Extents:   trace.ComputeExtents(lanes),
		Cached:    cached,
	}
}

func nonNilPages(pages []atlas.Page) []atlas.Page {
	if pages == nil {
		return []atlas.Page{}
	}
	return pages
}
