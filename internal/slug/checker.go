package slug

import (
	"context"
	"sync"
	"time"

	"github.com/saravn-ent/tamilring/internal/catalog"
)

// DefaultDebounce is the quiet period after the last metadata keystroke
// before a catalog query is issued.
const DefaultDebounce = 500 * time.Millisecond

// checkTimeout bounds a single existence query.
const checkTimeout = 10 * time.Second

// Status is the UI-facing state of the duplicate check.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusChecking  Status = "checking"
	StatusAvailable Status = "available"
	StatusDuplicate Status = "duplicate"
	StatusError     Status = "error"
)

// Result is a published check outcome for one derived slug.
type Result struct {
	Slug   string `json:"slug"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Checker recomputes the slug on every metadata edit and confirms it is
// not already cataloged. Each debounce cycle carries a monotonically
// increasing token; a query's resolution is applied only while its token
// is still the latest issued, so a slow stale response can never
// overwrite a fresher one — last request wins by issue order, not by
// completion order.
type Checker struct {
	catalog catalog.Catalog
	delay   time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	token     uint64
	current   Result
	listeners []func(Result)
}

// NewChecker creates a checker against the given catalog.
func NewChecker(cat catalog.Catalog, delay time.Duration) *Checker {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Checker{
		catalog: cat,
		delay:   delay,
		current: Result{Status: StatusIdle},
	}
}

// AddListener registers a callback invoked on every status change.
func (c *Checker) AddListener(listener func(Result)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// Update resets the debounce timer with the latest metadata fields. Any
// in-flight query for an earlier cycle is invalidated immediately.
func (c *Checker) Update(mediaName, itemName, variantLabel string) {
	derived := Derive(mediaName, itemName, variantLabel)

	c.mu.Lock()
	c.token++
	token := c.token
	if c.timer != nil {
		c.timer.Stop()
	}

	if derived == "" {
		c.current = Result{Status: StatusIdle}
		result := c.current
		c.mu.Unlock()
		c.notifyListeners(result)
		return
	}

	c.current = Result{Slug: derived, Status: StatusChecking}
	result := c.current
	c.timer = time.AfterFunc(c.delay, func() {
		c.check(token, derived)
	})
	c.mu.Unlock()

	c.notifyListeners(result)
}

func (c *Checker) check(token uint64, derived string) {
	c.mu.Lock()
	if token != c.token {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	exists, err := c.catalog.Exists(ctx, derived)

	c.mu.Lock()
	if token != c.token {
		// A newer cycle was issued while this query was in flight; its
		// resolution owns the status now.
		c.mu.Unlock()
		return
	}

	switch {
	case err != nil:
		c.current = Result{Slug: derived, Status: StatusError, Error: err.Error()}
	case exists:
		c.current = Result{Slug: derived, Status: StatusDuplicate}
	default:
		c.current = Result{Slug: derived, Status: StatusAvailable}
	}
	result := c.current
	c.mu.Unlock()

	c.notifyListeners(result)
}

// Current returns the latest published result.
func (c *Checker) Current() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Ready reports whether submission may proceed: only an available slug
// unblocks the submit button.
func (c *Checker) Ready() bool {
	return c.Current().Status == StatusAvailable
}

// Stop cancels any pending debounce cycle.
func (c *Checker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token++
	if c.timer != nil {
		c.timer.Stop()
	}
}

func (c *Checker) notifyListeners(result Result) {
	c.mu.Lock()
	listeners := make([]func(Result), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, listener := range listeners {
		listener(result)
	}
}
