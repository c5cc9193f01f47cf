package analysis

import (
	"fmt"
	"sync"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/modules/indicators"
)

// Context is the caller-owned state of a batch of analyses. It memoizes
// indicator sets by series and indicator configuration; one Context may be
// shared by concurrent Run calls.
type Context struct {
	mu     sync.Mutex
	sets   map[string]*indicators.Set
	hits   int
	misses int
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{sets: make(map[string]*indicators.Set)}
}

func memoKey(series *domain.Series, cfg config.IndicatorConfig) string {
	return fmt.Sprintf("%s|%+v", series.Key(), cfg)
}

// indicators returns the memoized set for series or computes and stores it.
// A nil Context always computes.
func (c *Context) indicators(engine *indicators.Engine, series *domain.Series) (*indicators.Set, error) {
	if c == nil {
		return engine.Compute(series)
	}

	key := memoKey(series, engine.Config())
	c.mu.Lock()
	if set, ok := c.sets[key]; ok {
		c.hits++
		c.mu.Unlock()
		return set, nil
	}
	c.mu.Unlock()

	set, err := engine.Compute(series)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses++
	if existing, ok := c.sets[key]; ok {
		return existing, nil
	}
	c.sets[key] = set
	return set, nil
}

// Stats reports memo hits and misses.
func (c *Context) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Reset drops every memoized set.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets = make(map[string]*indicators.Set)
	c.hits, c.misses = 0, 0
}
