// Package api serves the HTTP submission/status endpoints for netauditd.
// Grounded on the teacher's internal/checkin.Handler: a net/http.Handler
// wired onto a ServeMux via RegisterRoutes, JSON in/out, bracketed-tag
// log lines on completion.
package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vigilcore/netaudit/internal/auditmodel"
	"github.com/vigilcore/netaudit/internal/orchestrator"
	"github.com/vigilcore/netaudit/internal/taskstore"
)

// Handler serves /api/scans (submit) and /api/scans/{id} (status).
type Handler struct {
	store *taskstore.Store
	orch  *orchestrator.Orchestrator

	// wg tracks every in-flight scan goroutine this handler launches, so
	// the process can drain them on shutdown (SPEC_FULL.md §5), mirroring
	// the teacher's Daemon.wg.
	wg *sync.WaitGroup
}

// NewHandler builds a Handler wired to a Task Store, Orchestrator, and the
// process-wide WaitGroup scan goroutines register with.
func NewHandler(store *taskstore.Store, orch *orchestrator.Orchestrator, wg *sync.WaitGroup) *Handler {
	return &Handler{store: store, orch: orch, wg: wg}
}

// RegisterRoutes mounts the scan-submission and status routes onto mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("/api/scans", h.submit)
	mux.HandleFunc("/api/scans/", h.status)
}

// submit handles POST /api/scans: accepts a ScanRequest body, creates a
// fresh task id, launches the scan on its own goroutine, and returns the
// task id immediately — the caller polls /api/scans/{id} for progress.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return
	}

	var req auditmodel.ScanRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Target == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "target is required"})
		return
	}
	if req.PortRange == "" {
		req.PortRange = "1-1024"
	}

	taskID := uuid.NewString()
	h.store.Create(taskID)

	start := time.Now()
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.orch.RunScan(taskID, req)
		log.Printf("[api] task %s (%s) finished in %v", taskID, req.Target, time.Since(start))
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

// status handles GET /api/scans/{id}.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Path[len("/api/scans/"):]
	if id == "" {
		http.Error(w, "missing task id", http.StatusBadRequest)
		return
	}

	task, ok := h.store.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown task id"})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
