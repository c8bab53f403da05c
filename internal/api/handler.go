package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/lineage/internal/config"
	"github.com/gyaneshwarpardhi/lineage/internal/lineage"
	"github.com/gyaneshwarpardhi/lineage/internal/metrics"
	"github.com/gyaneshwarpardhi/lineage/internal/query"
)

const maxBatchSize = 100

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng    *query.Engine
	loader *config.Loader
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(eng *query.Engine, loader *config.Loader) http.Handler {
	h := &Handler{eng: eng, loader: loader, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /v1/lineages", h.listLineages)
	h.mux.HandleFunc("GET /v1/lineages/{id}/members", h.listMembers)
	h.mux.HandleFunc("GET /v1/lineages/{id}/vampires/{name}", h.getVampire)
	h.mux.HandleFunc("POST /v1/lineages/reload", h.reloadLineages)
	h.mux.HandleFunc("POST /v1/query", h.runQuery)
	h.mux.HandleFunc("POST /v1/query/batch", h.runBatch)
	h.mux.HandleFunc("GET /v1/ops", h.listOps)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// GET /v1/lineages — loaded lineages with their roots.
func (h *Handler) listLineages(w http.ResponseWriter, r *http.Request) {
	f := h.eng.Forest()
	type summary struct {
		ID          string `json:"id"`
		Root        string `json:"root"`
		Vampires    int    `json:"vampires"`
		Description string `json:"description,omitempty"`
	}
	descriptions := make(map[string]string)
	if h.loader != nil {
		for _, ln := range h.loader.Config().Lineages {
			descriptions[ln.ID] = ln.Description
		}
	}
	out := make([]summary, 0, f.Len())
	for _, id := range f.IDs() {
		root, _ := f.Root(id)
		out = append(out, summary{
			ID:          id,
			Root:        root.Name,
			Vampires:    1 + root.TotalDescendants(),
			Description: descriptions[id],
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"lineages": out})
}

// GET /v1/lineages/{id}/members?prefix= — members sorted by name.
func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	members, ok := h.eng.Forest().Search(id, r.URL.Query().Get("prefix"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s %q", query.ErrUnknownLineage, id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lineage": id,
		"members": query.Views(members),
	})
}

// GET /v1/lineages/{id}/vampires/{name} — one vampire's profile.
func (h *Handler) getVampire(w http.ResponseWriter, r *http.Request) {
	id, name := r.PathValue("id"), r.PathValue("name")
	root, ok := h.eng.Forest().Root(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s %q", query.ErrUnknownLineage, id))
		return
	}
	v, ok := root.FindByName(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%q: %s", name, lineage.ErrNotFound))
		return
	}
	path := v.Lineage()
	ancestry := make([]string, len(path))
	for i, a := range path {
		ancestry[i] = a.Name
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"vampire":     query.View(v),
		"descendants": v.TotalDescendants(),
		"offspring":   query.Views(v.Offspring()),
		"lineage":     ancestry,
	})
}

// POST /v1/query — synchronous single query.
func (h *Handler) runQuery(w http.ResponseWriter, r *http.Request) {
	var req query.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if req.Op == "" || req.Lineage == "" {
		writeError(w, http.StatusBadRequest, "lineage and op are required")
		return
	}

	res, err := h.eng.Process(r.Context(), &req)
	if err != nil {
		status := http.StatusGatewayTimeout
		if errors.Is(err, query.ErrQueueFull) {
			status = http.StatusTooManyRequests
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, statusFor(res.Err()), res)
}

// POST /v1/query/batch — up to 100 queries, results in request order.
func (h *Handler) runBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []*query.Request
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "batch must contain at least one query")
		return
	}
	if len(reqs) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch size %d exceeds max %d", len(reqs), maxBatchSize))
		return
	}
	for i, req := range reqs {
		if req == nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("query %d is null", i))
			return
		}
	}

	results := h.eng.ProcessBatch(r.Context(), reqs)
	failed := 0
	for _, res := range results {
		if res.Err() != nil {
			failed++
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id": uuid.New().String(),
		"total":    len(results),
		"failed":   failed,
		"results":  results,
	})
}

// POST /v1/lineages/reload — re-read lineages from disk.
// The loader's callbacks (see query.Engine.Follow) build and swap the forest;
// an invalid file leaves both the config and the forest as they were.
func (h *Handler) reloadLineages(w http.ResponseWriter, r *http.Request) {
	if h.loader == nil {
		writeError(w, http.StatusNotImplemented, "no config loader")
		return
	}
	if _, err := h.loader.Reload(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, config.ErrInvalid) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	f := h.eng.Forest()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": true,
		"lineages": f.Len(),
		"vampires": f.NodeCount(),
	})
}

// GET /v1/ops — registered query ops.
func (h *Handler) listOps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"ops": h.eng.Registry().Ops()})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 if the query queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
	})
}
