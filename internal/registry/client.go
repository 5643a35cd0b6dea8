// Package registry implements the registry client (spec.md §4.1): npm
// registry lookups for packages and scopes, rate-limited with a shared
// token bucket, cached for the process lifetime with single-flight
// coordination across concurrent callers.
package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/kraklabs/depconfuse/internal/scan"
)

const defaultBaseURL = "https://registry.npmjs.org"

// Client is the registry-lookup layer: rate limiting, a shared process
// cache, and single-flight in-flight coordination (spec.md §4.1, §5,
// §9 "Shared cache under concurrency").
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	cache      *Cache
	group      singleflight.Group
}

// New builds a Client against the public npm registry. ratePerSecond
// configures the shared token bucket (--rate-limit, default 10 rps);
// timeout bounds each outbound request.
func New(ratePerSecond float64, timeout time.Duration) *Client {
	return NewWithBaseURL(ratePerSecond, timeout, defaultBaseURL)
}

// NewWithBaseURL builds a Client against an arbitrary registry base URL
// (a private registry mirror, or a test double).
func NewWithBaseURL(ratePerSecond float64, timeout time.Duration, baseURL string) *Client {
	if ratePerSecond <= 0 {
		ratePerSecond = 10
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSecond), int(ratePerSecond)+1),
		cache:      NewCache(),
	}
}

// LookupPackage resolves a bare package name (unscoped, or a full
// "@scope/pkg" name) to its PackageClass, single-flighting and caching
// by name.
func (c *Client) LookupPackage(ctx context.Context, name string) scan.PackageClass {
	if cached, ok := c.cache.Get(name); ok {
		return cached
	}

	v, _, _ := c.group.Do("pkg:"+name, func() (interface{}, error) {
		class := c.fetchPackage(ctx, name)
		if class != scan.ClassUnknown {
			c.cache.Set(name, class)
		}
		return class, nil
	})
	return v.(scan.PackageClass)
}

// ScopeStatus is the result of a scope-ownership probe.
type ScopeStatus string

const (
	ScopeClaimed   ScopeStatus = "Claimed"
	ScopeUnclaimed ScopeStatus = "Unclaimed"
	ScopeUnknown   ScopeStatus = "Unknown"
)

// LookupScope resolves a "@scope" prefix's ownership status.
func (c *Client) LookupScope(ctx context.Context, scope string) ScopeStatus {
	if cached, ok := c.cache.GetScope(scope); ok {
		return cached
	}

	v, _, _ := c.group.Do("scope:"+scope, func() (interface{}, error) {
		status := c.fetchScope(ctx, scope)
		if status != ScopeUnknown {
			c.cache.SetScope(scope, status)
		}
		return status, nil
	})
	return v.(ScopeStatus)
}

// Classify runs the two-step scoped-name protocol of spec.md §4.1: for a
// scoped name "@s/p", first resolve the scope; only query the full
// package when the scope is claimed. NotFound on a claimed scope
// collapses to NotFound, not ScopeNotClaimed. Unknown propagates from
// either step.
func (c *Client) Classify(ctx context.Context, name string) scan.PackageClass {
	scope, isScoped := splitScope(name)
	if !isScoped {
		return c.LookupPackage(ctx, name)
	}

	switch c.LookupScope(ctx, scope) {
	case ScopeUnclaimed:
		return scan.ClassScopeNotClaimed
	case ScopeUnknown:
		return scan.ClassUnknown
	default: // ScopeClaimed
		return c.LookupPackage(ctx, name)
	}
}

func splitScope(name string) (scope string, ok bool) {
	if !strings.HasPrefix(name, "@") {
		return "", false
	}
	idx := strings.Index(name, "/")
	if idx <= 0 {
		return "", false
	}
	return name[:idx], true
}

func (c *Client) fetchPackage(ctx context.Context, name string) scan.PackageClass {
	if err := c.limiter.Wait(ctx); err != nil {
		return scan.ClassUnknown
	}

	reqURL := c.baseURL + "/" + url.PathEscape(name)
	if strings.HasPrefix(name, "@") {
		// Scoped names keep their "/" literal: scope and package are
		// escaped separately and joined as two path segments.
		scope, pkg, _ := strings.Cut(name, "/")
		reqURL = fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(scope), url.PathEscape(pkg))
	}

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return scan.ClassUnknown
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return scan.ClassExists
	case http.StatusNotFound:
		return scan.ClassNotFound
	default:
		return scan.ClassUnknown
	}
}

func (c *Client) fetchScope(ctx context.Context, scope string) ScopeStatus {
	if err := c.limiter.Wait(ctx); err != nil {
		return ScopeUnknown
	}

	name := strings.TrimPrefix(scope, "@")
	reqURL := fmt.Sprintf("%s/-/org/%s/package", c.baseURL, url.PathEscape(name))

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return ScopeUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return ScopeClaimed
	}
	// Only a 404 status counts as Unclaimed; the response body is not
	// read. Any other non-200 status is Unknown.
	if resp.StatusCode == http.StatusNotFound {
		return ScopeUnclaimed
	}
	return ScopeUnknown
}

func (c *Client) get(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}
