package orchestrator

import (
	"errors"
	"testing"

	"github.com/vigilcore/netaudit/internal/auditmodel"
	"github.com/vigilcore/netaudit/internal/rules"
	"github.com/vigilcore/netaudit/internal/taskstore"
)

type fakePersister struct {
	saved []*auditmodel.Report
	err   error
}

func (f *fakePersister) Save(r *auditmodel.Report) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, r)
	return int64(len(f.saved)), nil
}
func (f *fakePersister) List() ([]auditmodel.Report, error) { return nil, nil }
func (f *fakePersister) Delete(id int64) error               { return nil }
func (f *fakePersister) Purge() error                        { return nil }

// TestRunScanUnreachableTargetStillCompletes exercises the full pipeline
// against a target with nothing listening: every port sweep comes back
// empty, so the task must still complete (0 active ports, 0 findings,
// score 100) rather than fail.
func TestRunScanUnreachableTargetStillCompletes(t *testing.T) {
	store := taskstore.New()
	persist := &fakePersister{}
	o := New(store, rules.Empty(), persist)

	req := auditmodel.ScanRequest{
		Target:      "127.0.0.1",
		PortRange:   "1",
		PortsConfig: auditmodel.PortsConfig{SSH: "1", HTTP: "", HTTPS: "", DNS: ""},
		Mode:        auditmodel.ModeQuick,
	}

	store.Create("t1")
	o.RunScan("t1", req)

	task, ok := store.Get("t1")
	if !ok {
		t.Fatalf("expected task to exist")
	}
	if task.Status != auditmodel.TaskCompleted {
		t.Fatalf("expected completed, got %s (%s)", task.Status, task.Error)
	}
	if task.Result == nil {
		t.Fatalf("expected a result")
	}
	if task.Result.Score != 100 {
		t.Fatalf("expected score 100 with no active ports, got %d", task.Result.Score)
	}
	if len(persist.saved) != 1 {
		t.Fatalf("expected exactly one Save call, got %d", len(persist.saved))
	}
}

// TestRunScanPersisterErrorFailsTask verifies a persister error surfaces
// as a failed task rather than a silently dropped report.
func TestRunScanPersisterErrorFailsTask(t *testing.T) {
	store := taskstore.New()
	persist := &fakePersister{err: errors.New("disk full")}
	o := New(store, rules.Empty(), persist)

	req := auditmodel.ScanRequest{
		Target:      "127.0.0.1",
		PortRange:   "1",
		PortsConfig: auditmodel.PortsConfig{SSH: "1"},
		Mode:        auditmodel.ModeQuick,
	}

	store.Create("t2")
	o.RunScan("t2", req)

	task, _ := store.Get("t2")
	if task.Status != auditmodel.TaskFailed {
		t.Fatalf("expected failed, got %s", task.Status)
	}
	if task.Error != "disk full" {
		t.Fatalf("expected persister error message, got %q", task.Error)
	}
}

// TestAuditDNSAlwaysReturnsPortStatusRow verifies the DNS PortStatusRow is
// appended even when no supplied domain turns out to be AXFR-vulnerable
// (including when there are no non-empty domains to test at all) — the
// row records that the port is open under the DNS role, independent of
// what the zone-transfer probe found.
func TestAuditDNSAlwaysReturnsPortStatusRow(t *testing.T) {
	o := New(taskstore.New(), rules.Empty(), &fakePersister{})

	req := auditmodel.ScanRequest{Target: "127.0.0.1", Domains: nil}
	findings, row := o.auditDNS(req, 53)
	if len(findings) != 0 {
		t.Fatalf("expected no findings with no domains, got %+v", findings)
	}
	if row.Protocol != "DNS" || row.Status != "OPEN" || row.Port != 53 {
		t.Fatalf("expected a DNS PortStatusRow regardless of vulnerability, got %+v", row)
	}
}

func TestSplitDictFallsBackToDefaultWhenEmpty(t *testing.T) {
	got := splitDict("", "admin")
	if len(got) != 1 || got[0] != "admin" {
		t.Fatalf("expected single-entry fallback, got %+v", got)
	}
}

func TestSplitDictTrimsAndDropsBlankLines(t *testing.T) {
	got := splitDict("root\n\n  admin  \n", "fallback")
	want := []string{"root", "admin"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
