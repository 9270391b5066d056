package search

import (
	"context"
	"errors"
	"net/http"

	"booksearch/internal/httpx"
	"booksearch/internal/logging"
	"booksearch/internal/metrics"
)

// SessionHeader names the client session used for stale-response detection.
const SessionHeader = "X-Search-Session"

// Searcher is the pipeline as seen by the HTTP layer.
type Searcher interface {
	Search(ctx context.Context, raw string, limit int) ([]Result, error)
}

// MaxQueryLength bounds the query text accepted over HTTP, in runes.
const MaxQueryLength = 256

type searchRequest struct {
	Query      string `json:"query" validate:"max=256"`
	Limit      int    `json:"limit,omitempty" validate:"gte=0,lte=100"`
	Generation uint64 `json:"generation,omitempty"`
	Session    string `json:"-" validate:"omitempty,max=128,session_id"`
}

type searchResponse struct {
	Results    []Result `json:"results"`
	Generation uint64   `json:"generation,omitempty"`
	Stale      bool     `json:"stale,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type HTTPHandler struct {
	svc         Searcher
	generations *Generations
}

// NewHTTPHandler builds the search endpoint. generations may be nil, which
// disables stale-response detection.
func NewHTTPHandler(svc Searcher, generations *Generations) *HTTPHandler {
	return &HTTPHandler{svc: svc, generations: generations}
}

// Search handles POST /search
// @Summary Search books
// @Description Aggregate community and catalog matches, ranked by relevance
// @Tags search
// @Accept json
// @Produce json
// @Param X-Search-Session header string false "Client session for stale detection"
// @Success 200 {object} searchResponse
// @Failure 400 {object} httpx.ErrorResponse "Malformed body or invalid field"
// @Router /search [post]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use POST")
		return
	}

	var req searchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}

	req.Session = r.Header.Get(SessionHeader)
	if errs := httpx.ValidateStruct(req); errs != nil {
		httpx.JSONValidationError(w, r, errs)
		return
	}

	session := req.Session
	tracked := h.generations != nil && session != "" && req.Generation > 0
	if tracked && !h.generations.Begin(session, req.Generation) {
		h.stale(w, r, req.Generation)
		return
	}

	results, err := h.svc.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			logging.Ctx(r.Context()).Error().Err(err).Msg("search not configured")
			httpx.JSON(w, r, http.StatusOK, errorResponse{Error: err.Error()})
			return
		}
		logging.Ctx(r.Context()).Warn().Err(err).Msg("search failed, returning empty results")
		results = []Result{}
	}

	if tracked && !h.generations.IsCurrent(session, req.Generation) {
		h.stale(w, r, req.Generation)
		return
	}

	httpx.JSON(w, r, http.StatusOK, searchResponse{Results: results, Generation: req.Generation})
}

func (h *HTTPHandler) stale(w http.ResponseWriter, r *http.Request, gen uint64) {
	metrics.SearchRequests.WithLabelValues("stale").Inc()
	httpx.JSON(w, r, http.StatusOK, searchResponse{Results: []Result{}, Generation: gen, Stale: true})
}
