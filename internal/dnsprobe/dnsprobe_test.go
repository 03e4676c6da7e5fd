package dnsprobe

import "testing"

func TestCheckZoneTransferUnreachableNameserver(t *testing.T) {
	res := CheckZoneTransfer("example.com", "127.0.0.1", 1)
	if res.Vulnerable {
		t.Fatalf("expected Vulnerable=false for unreachable nameserver, got %+v", res)
	}
	if res.Detail == "" {
		t.Fatalf("expected a non-empty Detail explaining the failure")
	}
}

func TestCheckZoneTransferDefaultPort(t *testing.T) {
	// port=0 should fall back to 53 rather than dialing ":0"; this will
	// still fail (nothing listening) but must not panic on an empty addr.
	res := CheckZoneTransfer("example.com", "127.0.0.1", 0)
	if res.Vulnerable {
		t.Fatalf("expected Vulnerable=false, got %+v", res)
	}
}
