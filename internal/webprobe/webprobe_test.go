package webprobe

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func testPort(t *testing.T, srv *httptest.Server) int {
	t.Helper()
	_, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("atoi: %v", err)
	}
	return port
}

func TestScanHTTPBannerAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "nginx/1.18")
		w.Header().Set("X-Frame-Options", "DENY")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	port := testPort(t, srv)
	result := ScanHTTP("127.0.0.1", port, "")

	if result.Banner != "nginx/1.18" {
		t.Errorf("Banner = %q, want nginx/1.18", result.Banner)
	}
	found := false
	for _, h := range result.DeepScan.MissingHeaders {
		if h == "Content-Security-Policy" {
			found = true
		}
		if h == "X-Frame-Options" {
			t.Errorf("X-Frame-Options should not be missing")
		}
	}
	if !found {
		t.Errorf("expected Content-Security-Policy to be reported missing")
	}
}

func TestScanHTTPUnreachablePortReturnsUnknownBanner(t *testing.T) {
	result := ScanHTTP("127.0.0.1", 1, "")
	if result.Banner != "Unknown" {
		t.Errorf("Banner = %q, want Unknown", result.Banner)
	}
}

func TestExposedPathsFiltersSoft404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.git/config":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("[core]\nrepositoryformatversion = 0"))
		case "/.env":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Error 404: page not found, sorry"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	port := testPort(t, srv)

	paths := exposedPaths("127.0.0.1", port, "")
	if len(paths) != 1 || paths[0].Path != "/.git/config" {
		t.Fatalf("exposedPaths() = %v, want only /.git/config", paths)
	}
}

func TestMissingHeadersAllAbsent(t *testing.T) {
	h := http.Header{}
	missing := missingHeaders(h)
	if len(missing) != len(SecurityHeaders) {
		t.Fatalf("expected all %d headers missing, got %d", len(SecurityHeaders), len(missing))
	}
}
