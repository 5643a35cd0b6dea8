package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kraklabs/depconfuse/internal/scan"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := NewWithBaseURL(1000, 5*time.Second, srv.URL)
	return c, srv
}

func TestLookupPackageExistsAndNotFound(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lodash":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	defer srv.Close()

	if got := c.LookupPackage(context.Background(), "lodash"); got != scan.ClassExists {
		t.Fatalf("lodash = %v, want Exists", got)
	}
	if got := c.LookupPackage(context.Background(), "nonexistent-pkg-xyz"); got != scan.ClassNotFound {
		t.Fatalf("nonexistent = %v, want NotFound", got)
	}
}

func TestLookupPackageCaching(t *testing.T) {
	var hits int32
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	for i := 0; i < 5; i++ {
		c.LookupPackage(context.Background(), "lodash")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected exactly one request (cache coherence P2), got %d", got)
	}
}

func TestLookupPackageSingleFlight(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	const n = 8
	done := make(chan scan.PackageClass, n)
	for i := 0; i < n; i++ {
		go func() {
			done <- c.LookupPackage(context.Background(), "concurrent-pkg")
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)

	for i := 0; i < n; i++ {
		if got := <-done; got != scan.ClassExists {
			t.Fatalf("result = %v, want Exists", got)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected exactly one in-flight request (P5), got %d", got)
	}
}

func TestClassifyScopedCollapsesNotFoundOnClaimedScope(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/-/org/xq9zk7823/package":
			w.WriteHeader(http.StatusOK) // scope claimed
		default:
			w.WriteHeader(http.StatusNotFound) // package missing
		}
	})
	defer srv.Close()

	got := c.Classify(context.Background(), "@xq9zk7823/design-system")
	if got != scan.ClassNotFound {
		t.Fatalf("got %v, want NotFound (collapsed, not ScopeNotClaimed)", got)
	}
}

func TestClassifyScopedUnclaimed(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	got := c.Classify(context.Background(), "@xq9zk7823/design-system")
	if got != scan.ClassScopeNotClaimed {
		t.Fatalf("got %v, want ScopeNotClaimed", got)
	}
}

func TestClassifyUnscopedDelegatesToPackageLookup(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	got := c.Classify(context.Background(), "lodash")
	if got != scan.ClassExists {
		t.Fatalf("got %v, want Exists", got)
	}
}

func TestTransportFailureYieldsUncachedUnknown(t *testing.T) {
	c := NewWithBaseURL(1000, 5*time.Second, "http://127.0.0.1:0") // nothing listening

	var hits int
	for i := 0; i < 2; i++ {
		if got := c.LookupPackage(context.Background(), "whatever-pkg"); got != scan.ClassUnknown {
			t.Fatalf("got %v, want Unknown", got)
		}
		hits++
	}
	if _, ok := c.cache.Get("whatever-pkg"); ok {
		t.Fatal("Unknown must not be cached")
	}
}
