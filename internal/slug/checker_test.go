package slug

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saravn-ent/tamilring/internal/domain"
)

// gatedCatalog lets a test hold each Exists call open and release it in a
// chosen order.
type gatedCatalog struct {
	mu     sync.Mutex
	issued chan string
	gates  map[string]chan bool
}

func newGatedCatalog() *gatedCatalog {
	return &gatedCatalog{
		issued: make(chan string, 16),
		gates:  make(map[string]chan bool),
	}
}

func (g *gatedCatalog) gateFor(slug string) chan bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	gate, ok := g.gates[slug]
	if !ok {
		gate = make(chan bool, 1)
		g.gates[slug] = gate
	}
	return gate
}

func (g *gatedCatalog) Exists(ctx context.Context, slug string) (bool, error) {
	gate := g.gateFor(slug)
	g.issued <- slug
	select {
	case exists := <-gate:
		return exists, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (g *gatedCatalog) Insert(ctx context.Context, ring *domain.Ring) (string, error) {
	return "", errors.New("not implemented")
}

func waitForStatus(t *testing.T, c *Checker, want Status) Result {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if current := c.Current(); current.Status == want {
			return current
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("checker never reached status %q (last: %+v)", want, c.Current())
	return Result{}
}

func TestCheckerAvailableFlow(t *testing.T) {
	cat := newGatedCatalog()
	c := NewChecker(cat, time.Millisecond)
	defer c.Stop()

	c.Update("Vaaranam Aayiram", "Ninaikatha", "BGM")
	assert.Equal(t, StatusChecking, c.Current().Status)

	require.Equal(t, "vaaranam-aayiram-ninaikatha-bgm", <-cat.issued)
	cat.gateFor("vaaranam-aayiram-ninaikatha-bgm") <- false

	result := waitForStatus(t, c, StatusAvailable)
	assert.Equal(t, "vaaranam-aayiram-ninaikatha-bgm", result.Slug)
	assert.True(t, c.Ready())
}

func TestCheckerDuplicateBlocks(t *testing.T) {
	cat := newGatedCatalog()
	c := NewChecker(cat, time.Millisecond)
	defer c.Stop()

	c.Update("Mouna Ragam", "Theme", "")
	require.Equal(t, "mouna-ragam-theme", <-cat.issued)
	cat.gateFor("mouna-ragam-theme") <- true

	waitForStatus(t, c, StatusDuplicate)
	assert.False(t, c.Ready())
}

func TestCheckerLastRequestWinsByIssueOrder(t *testing.T) {
	cat := newGatedCatalog()
	c := NewChecker(cat, time.Millisecond)
	defer c.Stop()

	// Cycle A goes out first and will resolve last.
	c.Update("Alaipayuthey", "Snehithane", "")
	require.Equal(t, "alaipayuthey-snehithane", <-cat.issued)

	// Cycle B is issued while A is still in flight.
	c.Update("Alaipayuthey", "Pachchai Nirame", "")
	require.Equal(t, "alaipayuthey-pachchai-nirame", <-cat.issued)

	// B resolves duplicate, then A resolves available.
	cat.gateFor("alaipayuthey-pachchai-nirame") <- true
	waitForStatus(t, c, StatusDuplicate)

	cat.gateFor("alaipayuthey-snehithane") <- false

	// A's stale "available" must not overwrite B's result.
	time.Sleep(20 * time.Millisecond)
	result := c.Current()
	assert.Equal(t, StatusDuplicate, result.Status)
	assert.Equal(t, "alaipayuthey-pachchai-nirame", result.Slug)
}

func TestCheckerDebounceCollapsesRapidEdits(t *testing.T) {
	cat := newGatedCatalog()
	c := NewChecker(cat, 50*time.Millisecond)
	defer c.Stop()

	c.Update("Minnale", "V", "")
	c.Update("Minnale", "Va", "")
	c.Update("Minnale", "Vaseegara", "")

	// Only the last cycle's query goes out.
	require.Equal(t, "minnale-vaseegara", <-cat.issued)
	select {
	case extra := <-cat.issued:
		t.Fatalf("unexpected extra query for %q", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCheckerEmptyFieldsGoIdle(t *testing.T) {
	cat := newGatedCatalog()
	c := NewChecker(cat, time.Millisecond)
	defer c.Stop()

	c.Update("Minnale", "Vaseegara", "")
	require.Equal(t, "minnale-vaseegara", <-cat.issued)

	c.Update("", "", "")
	assert.Equal(t, StatusIdle, c.Current().Status)
	assert.False(t, c.Ready())

	// Unblock the orphaned query; its resolution is dropped.
	cat.gateFor("minnale-vaseegara") <- false
}

func TestCheckerErrorStatus(t *testing.T) {
	cat := &erroringCatalog{}
	c := NewChecker(cat, time.Millisecond)
	defer c.Stop()

	c.Update("Minnale", "Vaseegara", "")

	result := waitForStatus(t, c, StatusError)
	assert.Contains(t, result.Error, "catalog unavailable")
	assert.False(t, c.Ready())
}

func TestCheckerListenersSeeTransitions(t *testing.T) {
	cat := newGatedCatalog()
	c := NewChecker(cat, time.Millisecond)
	defer c.Stop()

	var mu sync.Mutex
	var seen []Status
	c.AddListener(func(r Result) {
		mu.Lock()
		seen = append(seen, r.Status)
		mu.Unlock()
	})

	c.Update("Minnale", "Vaseegara", "")
	require.Equal(t, "minnale-vaseegara", <-cat.issued)
	cat.gateFor("minnale-vaseegara") <- false
	waitForStatus(t, c, StatusAvailable)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusChecking, StatusAvailable}, seen)
}

type erroringCatalog struct{}

func (erroringCatalog) Exists(ctx context.Context, slug string) (bool, error) {
	return false, errors.New("catalog unavailable")
}

func (erroringCatalog) Insert(ctx context.Context, ring *domain.Ring) (string, error) {
	return "", errors.New("catalog unavailable")
}
