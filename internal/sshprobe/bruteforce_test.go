package sshprobe

import "testing"

func TestCleanTrimsAndDropsEmpty(t *testing.T) {
	got := clean([]string{" admin ", "", "  ", "root"})
	want := []string{"admin", "root"}
	if len(got) != len(want) {
		t.Fatalf("clean() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("clean()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCartesianProduct(t *testing.T) {
	got := cartesianProduct([]string{"a", "b"}, []string{"1", "2"})
	if len(got) != 4 {
		t.Fatalf("expected 4 combinations, got %d", len(got))
	}
}

func TestBruteForceEmptyDictionariesReturnsNil(t *testing.T) {
	got := BruteForce("127.0.0.1", 1, nil, nil)
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestBruteForceUnreachableHostReturnsEmpty(t *testing.T) {
	// Port 1 on loopback should refuse immediately — no listener there.
	got := BruteForce("127.0.0.1", 1, []string{"admin"}, []string{"wrongpass"})
	if len(got) != 0 {
		t.Fatalf("expected at-most-one (here: zero) credentials, got %v", got)
	}
}

func TestBannerGrabRefusedOnClosedPort(t *testing.T) {
	banner := BannerGrab("127.0.0.1", 1)
	if banner != RefusedBanner {
		t.Fatalf("BannerGrab() = %q, want %q", banner, RefusedBanner)
	}
}
