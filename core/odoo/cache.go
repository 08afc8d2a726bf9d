package odoo

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// companyCache caches the company list with a TTL. Companies change rarely
// but the list is consulted on every login and target switch, so one slow
// Odoo round trip should not be paid repeatedly. Singleflight collapses
// concurrent rebuilds into a single fetch.
type companyCache struct {
	mu        sync.RWMutex
	companies []Company
	built     time.Time
	ttl       time.Duration
	sf        singleflight.Group
	fetch     func(ctx context.Context) ([]Company, error)
}

func newCompanyCache(ttl time.Duration, fetch func(ctx context.Context) ([]Company, error)) *companyCache {
	return &companyCache{ttl: ttl, fetch: fetch}
}

// expired reports whether the cached list needs a rebuild.
// A zero TTL disables caching entirely.
func (c *companyCache) expired() bool {
	if c.ttl == 0 {
		return true
	}
	return c.companies == nil || time.Since(c.built) > c.ttl
}

// Get returns the cached company list, rebuilding it when stale.
func (c *companyCache) Get(ctx context.Context) ([]Company, error) {
	c.mu.RLock()
	if !c.expired() {
		companies := c.companies
		c.mu.RUnlock()
		return companies, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("companies", func() (interface{}, error) {
		// Double-check after acquiring the singleflight slot.
		c.mu.RLock()
		if !c.expired() {
			companies := c.companies
			c.mu.RUnlock()
			return companies, nil
		}
		c.mu.RUnlock()

		companies, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.companies = companies
		c.built = time.Now()
		c.mu.Unlock()

		return companies, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Company), nil
}

// Invalidate drops the cached list, forcing the next Get to refetch.
func (c *companyCache) Invalidate() {
	c.mu.Lock()
	c.companies = nil
	c.mu.Unlock()
}
