// netauditd is the network security audit daemon.
//
// Serves a small HTTP API for submitting scans and polling their progress,
// backed by an in-process Task Store and Orchestrator. Persistence is a
// minimal in-memory implementation; a real deployment supplies its own
// Persister (e.g. SQLite-backed) ahead of this binary.
//
// Usage:
//
//	netauditd --config /etc/netauditd/config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/vigilcore/netaudit/internal/api"
	"github.com/vigilcore/netaudit/internal/auditmodel"
	"github.com/vigilcore/netaudit/internal/config"
	"github.com/vigilcore/netaudit/internal/orchestrator"
	"github.com/vigilcore/netaudit/internal/rules"
	"github.com/vigilcore/netaudit/internal/taskstore"
)

var (
	flagConfig  = flag.String("config", "/etc/netauditd/config.yaml", "Config file path")
	flagVersion = flag.Bool("version", false, "Print version and exit")
)

const version = "0.1.0"

func main() {
	flag.Parse()

	if *flagVersion {
		fmt.Println("netauditd " + version)
		os.Exit(0)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	catalog := rules.Load(cfg.RuleFile)
	store := taskstore.New()
	persist := newMemPersister()
	orch := orchestrator.New(store, catalog, persist)

	// wg tracks every in-flight scan goroutine so shutdown can drain them,
	// mirroring the teacher's Daemon.wg.
	var wg sync.WaitGroup

	handler := api.NewHandler(store, orch, &wg)
	mux := http.NewServeMux()
	api.RegisterRoutes(mux, handler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Shutdown signal: %v", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)

		// Wait for in-flight scan goroutines with a 30s timeout, the same
		// drain pattern the teacher's daemon uses for its own wg.
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			log.Println("All in-flight scans drained")
		case <-time.After(30 * time.Second):
			log.Println("Scan drain timed out after 30s")
		}
	}()

	log.Printf("netauditd listening on %s (%d rules loaded)", cfg.ListenAddr, catalog.Len())
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}

// memPersister is the minimal in-memory Persister the daemon wires up when
// no external store is configured, purely so netauditd is runnable
// end-to-end out of the box (spec.md §6 leaves real persistence, e.g.
// SQLite, out of scope).
type memPersister struct {
	mu      sync.Mutex
	reports map[int64]*auditmodel.Report
	nextID  int64
}

func newMemPersister() *memPersister {
	return &memPersister{reports: make(map[int64]*auditmodel.Report)}
}

func (p *memPersister) Save(r *auditmodel.Report) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	r.ID = p.nextID
	p.reports[p.nextID] = r
	return p.nextID, nil
}

func (p *memPersister) List() ([]auditmodel.Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]auditmodel.Report, 0, len(p.reports))
	for _, r := range p.reports {
		out = append(out, *r)
	}
	return out, nil
}

func (p *memPersister) Delete(id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.reports, id)
	return nil
}

func (p *memPersister) Purge() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = make(map[int64]*auditmodel.Report)
	return nil
}
