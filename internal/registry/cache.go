package registry

import (
	"sync"

	"github.com/kraklabs/depconfuse/internal/scan"
)

// Cache holds registry verdicts for the lifetime of the process. Both
// positive and negative results are cached under the same policy
// (spec.md §4.1 "Caching"): only Unknown (transient failure) is never
// cached, so a later retry can still succeed.
type Cache struct {
	mu     sync.RWMutex
	pkgs   map[string]scan.PackageClass
	scopes map[string]ScopeStatus
}

// NewCache returns an empty process-lifetime cache.
func NewCache() *Cache {
	return &Cache{
		pkgs:   make(map[string]scan.PackageClass),
		scopes: make(map[string]ScopeStatus),
	}
}

func (c *Cache) Get(name string) (scan.PackageClass, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	class, ok := c.pkgs[name]
	return class, ok
}

func (c *Cache) Set(name string, class scan.PackageClass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pkgs[name] = class
}

func (c *Cache) GetScope(scope string) (ScopeStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	status, ok := c.scopes[scope]
	return status, ok
}

func (c *Cache) SetScope(scope string, status ScopeStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scopes[scope] = status
}
