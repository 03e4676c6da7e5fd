package taskstore

import (
	"errors"
	"testing"

	"github.com/vigilcore/netaudit/internal/auditmodel"
)

func TestCreateThenGetReturnsRunning(t *testing.T) {
	s := New()
	s.Create("task-1")

	task, ok := s.Get("task-1")
	if !ok {
		t.Fatalf("expected task-1 to exist")
	}
	if task.Status != auditmodel.TaskRunning {
		t.Fatalf("expected running, got %s", task.Status)
	}
	if task.Progress.Percent != 0 {
		t.Fatalf("expected 0%%, got %d", task.Progress.Percent)
	}
}

func TestUpdateProgressThenComplete(t *testing.T) {
	s := New()
	s.Create("task-2")
	s.UpdateProgress("task-2", 50, "正在审计端口 22 (1/3)...")

	task, _ := s.Get("task-2")
	if task.Progress.Percent != 50 {
		t.Fatalf("expected 50%%, got %d", task.Progress.Percent)
	}

	report := &auditmodel.Report{Target: "example.com", Score: 80}
	s.Complete("task-2", report)

	task, _ = s.Get("task-2")
	if task.Status != auditmodel.TaskCompleted {
		t.Fatalf("expected completed, got %s", task.Status)
	}
	if task.Progress.Percent != 100 {
		t.Fatalf("expected 100%%, got %d", task.Progress.Percent)
	}
	if task.Result == nil || task.Result.Target != "example.com" {
		t.Fatalf("expected result to be attached, got %+v", task.Result)
	}
}

func TestFailIsTerminalAndIgnoredAfterCompletion(t *testing.T) {
	s := New()
	s.Create("task-3")
	s.Complete("task-3", &auditmodel.Report{Target: "x"})
	s.Fail("task-3", errors.New("too late"))

	task, _ := s.Get("task-3")
	if task.Status != auditmodel.TaskCompleted {
		t.Fatalf("Fail must not override a terminal completed task, got %s", task.Status)
	}
}

func TestFailSetsErrorMessage(t *testing.T) {
	s := New()
	s.Create("task-4")
	s.Fail("task-4", errors.New("boom"))

	task, _ := s.Get("task-4")
	if task.Status != auditmodel.TaskFailed {
		t.Fatalf("expected failed, got %s", task.Status)
	}
	if task.Error != "boom" {
		t.Fatalf("expected error message 'boom', got %q", task.Error)
	}
}

func TestGetUnknownTaskReturnsFalse(t *testing.T) {
	s := New()
	_, ok := s.Get("does-not-exist")
	if ok {
		t.Fatalf("expected ok=false for unknown task")
	}
}

func TestSnapshotIsolatesConcurrentMutation(t *testing.T) {
	s := New()
	s.Create("task-5")
	s.Complete("task-5", &auditmodel.Report{
		Target:  "x",
		Defects: []auditmodel.Finding{{ID: "A"}},
	})

	snap, _ := s.Get("task-5")
	snap.Result.Defects[0].ID = "mutated"

	fresh, _ := s.Get("task-5")
	if fresh.Result.Defects[0].ID != "A" {
		t.Fatalf("mutating a snapshot must not affect stored state, got %q", fresh.Result.Defects[0].ID)
	}
}
