// Package taskstore implements the process-wide task-id -> Task mapping
// described in spec.md §4.I. It is grounded on the teacher's
// internal/grpcserver/registry.go AgentRegistry: a sync.RWMutex-guarded
// map with a single authoritative owner per entry and read-only snapshot
// accessors for everyone else, with AgentState swapped for Task and the
// gRPC/protobuf-specific fields dropped.
package taskstore

import (
	"sync"

	"github.com/vigilcore/netaudit/internal/auditmodel"
)

// Store is a concurrency-safe task-id -> Task map. The zero value is not
// usable; construct with New.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]auditmodel.Task
}

// New returns an empty Store.
func New() *Store {
	return &Store{tasks: make(map[string]auditmodel.Task)}
}

// Create registers taskID in the running state at 0% progress. After
// creation only the task's owning worker goroutine should write to it —
// taskstore itself does not enforce single-writer.
func (s *Store) Create(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[taskID] = auditmodel.Task{
		Status:   auditmodel.TaskRunning,
		Progress: auditmodel.Progress{Percent: 0, Log: "已提交"},
	}
}

// UpdateProgress overwrites taskID's progress fields, leaving Status/Result
// untouched. No-op if the task does not exist (defensive: callers should
// never update a task they didn't create).
func (s *Store) UpdateProgress(taskID string, percent int, log string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return
	}
	t.Progress = auditmodel.Progress{Percent: percent, Log: log}
	s.tasks[taskID] = t
}

// Complete transitions taskID to completed with its final report and 100%
// progress, per spec.md §4.G's completion contract.
func (s *Store) Complete(taskID string, report *auditmodel.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok || t.Status != auditmodel.TaskRunning {
		return
	}
	t.Status = auditmodel.TaskCompleted
	t.Result = report
	t.Progress = auditmodel.Progress{Percent: 100, Log: "审计完成"}
	s.tasks[taskID] = t
}

// Fail transitions taskID to failed, recording err's message. Terminal
// transitions are never reversed: Fail/Complete on an already-terminal
// task is a no-op.
func (s *Store) Fail(taskID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok || t.Status != auditmodel.TaskRunning {
		return
	}
	t.Status = auditmodel.TaskFailed
	t.Error = err.Error()
	s.tasks[taskID] = t
}

// Get returns a consistent snapshot of taskID's current state. The second
// return value is false if no such task was ever created.
func (s *Store) Get(taskID string) (auditmodel.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return auditmodel.Task{}, false
	}
	return t.Snapshot(), true
}
