// Package api exposes the event collection over JSON HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"weekcal/event"
	"weekcal/merge"
	"weekcal/recur"
)

// Router serves the calendar API: the expanded working set, full-list
// saves, and sync batch ingestion.
type Router struct {
	service  *merge.Service
	expander *recur.Expander
	mux      *http.ServeMux
	logger   *slog.Logger
}

// NewRouter wires the handlers.
func NewRouter(service *merge.Service, expander *recur.Expander, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		service:  service,
		expander: expander,
		mux:      http.NewServeMux(),
		logger:   logger,
	}

	r.mux.HandleFunc("GET /events", r.handleGetEvents)
	r.mux.HandleFunc("PUT /events", r.handlePutEvents)
	r.mux.HandleFunc("POST /sync", r.handleSync)
	r.mux.HandleFunc("GET /healthz", r.handleHealthz)

	return r
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.logger.Info("received request",
		"method", req.Method,
		"path", req.URL.Path,
		"remote_addr", req.RemoteAddr)
	r.mux.ServeHTTP(w, req)
}

// handleGetEvents returns the persisted collection plus freshly
// generated occurrences for the visible horizon.
func (r *Router) handleGetEvents(w http.ResponseWriter, req *http.Request) {
	events, err := r.service.Events(req.Context())
	if err != nil {
		r.logger.Error("listing events failed", "err", err)
		writeError(w, http.StatusInternalServerError, "listing events failed")
		return
	}
	writeJSON(w, http.StatusOK, r.expander.Expand(events))
}

// handlePutEvents replaces the persisted collection with the request
// body, partitioned into buckets by the reconciliation service.
func (r *Router) handlePutEvents(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()

	var events []event.Event
	if err := json.NewDecoder(req.Body).Decode(&events); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := r.service.Save(req.Context(), events); err != nil {
		r.logger.Error("saving events failed", "err", err)
		writeError(w, http.StatusInternalServerError, "saving events failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSync ingests a raw sync batch and returns the merged collection.
func (r *Router) handleSync(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()

	var batch []event.Event
	if err := json.NewDecoder(req.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	merged, err := r.service.Sync(req.Context(), batch)
	if err != nil {
		r.logger.Error("sync failed", "err", err)
		writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

func (r *Router) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
