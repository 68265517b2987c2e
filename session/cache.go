// Package session keeps per-token pagination state for recipe matching.
//
// Each token owns an entry with its own lock. The map lock only guards
// membership; all per-token mutation happens under the entry lock, so work on
// one token never blocks another. Callers must not hold an entry across a slow
// call: take a Snapshot, do the slow work, then Append.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pantrypilot/recipe"
)

// ErrNotFound is returned for unknown, expired or removed tokens.
var ErrNotFound = errors.New("session not found")

// DefaultMaxGenerated is the per-session cap on served generated recipes.
const DefaultMaxGenerated = 5

// State is the pagination state of a token.
type State string

const (
	StateFresh      State = "FRESH"
	StateServing    State = "SERVING"
	StateGenerating State = "GENERATING"
	StateExhausted  State = "EXHAUSTED"
)

// Clock abstracts time for TTL tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type Options struct {
	TTL           time.Duration
	SweepInterval time.Duration
	MaxGenerated  int
	Clock         Clock
}

// Cache is a keyed store of session entries. It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry

	ttl           time.Duration
	sweepInterval time.Duration
	maxGenerated  int
	clock         Clock
	newToken      func() string
}

func NewCache(opts Options) *Cache {
	if opts.MaxGenerated <= 0 {
		opts.MaxGenerated = DefaultMaxGenerated
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	return &Cache{
		entries:       make(map[string]*entry),
		ttl:           opts.TTL,
		sweepInterval: opts.SweepInterval,
		maxGenerated:  opts.MaxGenerated,
		clock:         opts.Clock,
		newToken:      uuid.NewString,
	}
}

// MaxGenerated returns the configured generated-recipe quota.
func (c *Cache) MaxGenerated() int { return c.maxGenerated }

// Create stores a new entry seeded with recipes and returns its token.
// Recipes sharing a normalized title with an earlier one are dropped.
func (c *Cache) Create(pantry []recipe.PantryItem, minPrep, maxPrep int, recipes []recipe.Recipe) string {
	e := newEntry(pantry, minPrep, maxPrep, c.clock.Now())
	added := e.append(recipes)

	token := c.newToken()
	c.mu.Lock()
	c.entries[token] = e
	c.mu.Unlock()

	slog.Info("SESSION: Created", "token", token, "recipes", added, "offered", len(recipes))
	return token
}

// Append adds recipes whose normalized titles are not yet known to the token
// and returns how many were added.
func (c *Cache) Append(token string, recipes []recipe.Recipe) (int, error) {
	e, err := c.acquire(token)
	if err != nil {
		return 0, err
	}
	defer e.mu.Unlock()

	added := e.append(recipes)
	if e.state == StateGenerating {
		e.state = StateServing
	}
	slog.Info("SESSION: Appended", "token", token, "added", added, "offered", len(recipes))
	return added, nil
}

// Draw scans forward from the cursor and returns up to n recipes that were not
// presented before. Generated recipes are skipped once the quota is spent.
func (c *Cache) Draw(token string, n int) ([]recipe.Recipe, error) {
	e, err := c.acquire(token)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	batch := e.draw(n, c.maxGenerated)
	slog.Debug("SESSION: Drew batch",
		"token", token,
		"size", len(batch),
		"cursor", e.cursor,
		"total", len(e.recipes),
		"generated_served", e.generatedServed)
	return batch, nil
}

// Snapshot returns a copy of the token's state.
func (c *Cache) Snapshot(token string) (Snapshot, error) {
	e, err := c.acquire(token)
	if err != nil {
		return Snapshot{}, err
	}
	defer e.mu.Unlock()

	return e.snapshot(token, c.maxGenerated), nil
}

// SetState records a pagination state transition for the token.
func (c *Cache) SetState(token string, state State) error {
	e, err := c.acquire(token)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	e.state = state
	return nil
}

// Delete removes the token. It waits for any in-flight operation on the entry.
func (c *Cache) Delete(token string) bool {
	c.mu.RLock()
	e, ok := c.entries[token]
	c.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return c.remove(token, e)
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep removes entries older than the TTL and returns how many were removed.
// A zero TTL disables expiry.
func (c *Cache) Sweep() int {
	if c.ttl <= 0 {
		return 0
	}

	now := c.clock.Now()
	c.mu.RLock()
	stale := make(map[string]*entry)
	for token, e := range c.entries {
		if now.Sub(e.createdAt) > c.ttl {
			stale[token] = e
		}
	}
	c.mu.RUnlock()

	removed := 0
	for token, e := range stale {
		e.mu.Lock()
		if c.remove(token, e) {
			removed++
		}
		e.mu.Unlock()
	}

	if removed > 0 {
		slog.Info("SESSION: Swept expired entries", "removed", removed, "remaining", c.Len())
	}
	return removed
}

// Run sweeps on every tick until ctx is done.
func (c *Cache) Run(ctx context.Context) {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// acquire returns the live entry for token with its lock held.
func (c *Cache) acquire(token string) (*entry, error) {
	c.mu.RLock()
	e, ok := c.entries[token]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return nil, ErrNotFound
	}
	if c.ttl > 0 && c.clock.Now().Sub(e.createdAt) > c.ttl {
		c.remove(token, e)
		e.mu.Unlock()
		return nil, ErrNotFound
	}
	return e, nil
}

// remove must be called with e.mu held.
func (c *Cache) remove(token string, e *entry) bool {
	if e.removed {
		return false
	}
	e.removed = true

	c.mu.Lock()
	if c.entries[token] == e {
		delete(c.entries, token)
	}
	c.mu.Unlock()
	return true
}

// Snapshot is a point-in-time copy of one session entry.
type Snapshot struct {
	Token           string
	Pantry          []recipe.PantryItem
	MinPrepTime     int
	MaxPrepTime     int
	AllTitles       []string
	PresentedCount  int
	GeneratedServed int
	RemainingQuota  int
	Total           int
	Cursor          int
	State           State
	CreatedAt       time.Time
}

// Scanned reports whether every appended recipe has been looked at.
func (s Snapshot) Scanned() bool { return s.Cursor >= s.Total }

// QuotaSpent reports whether no more generated recipes may be served.
func (s Snapshot) QuotaSpent() bool { return s.RemainingQuota <= 0 }

type entry struct {
	mu      sync.Mutex
	removed bool

	recipes         []recipe.Recipe
	cursor          int
	presented       map[string]struct{}
	all             map[string]struct{}
	generatedServed int

	minPrep   int
	maxPrep   int
	pantry    []recipe.PantryItem
	createdAt time.Time
	state     State
}

func newEntry(pantry []recipe.PantryItem, minPrep, maxPrep int, now time.Time) *entry {
	return &entry{
		presented: make(map[string]struct{}),
		all:       make(map[string]struct{}),
		minPrep:   minPrep,
		maxPrep:   maxPrep,
		pantry:    recipe.ClonePantry(pantry),
		createdAt: now,
		state:     StateFresh,
	}
}

func (e *entry) append(recipes []recipe.Recipe) int {
	added := 0
	for _, r := range recipes {
		key := r.Key()
		if key == "" {
			continue
		}
		if _, dup := e.all[key]; dup {
			continue
		}
		e.all[key] = struct{}{}
		e.recipes = append(e.recipes, r.Clone())
		added++
	}
	return added
}

func (e *entry) draw(n, maxGenerated int) []recipe.Recipe {
	batch := make([]recipe.Recipe, 0, max(n, 0))
	for len(batch) < n && e.cursor < len(e.recipes) {
		r := e.recipes[e.cursor]
		e.cursor++

		key := r.Key()
		if _, seen := e.presented[key]; seen {
			continue
		}
		if r.IsGenerated() && e.generatedServed >= maxGenerated {
			continue
		}

		batch = append(batch, r.Clone())
		e.presented[key] = struct{}{}
		if r.IsGenerated() {
			e.generatedServed++
		}
	}

	switch {
	case e.cursor >= len(e.recipes) && e.generatedServed >= maxGenerated:
		e.state = StateExhausted
	case len(batch) > 0:
		e.state = StateServing
	}
	return batch
}

func (e *entry) snapshot(token string, maxGenerated int) Snapshot {
	titles := make([]string, 0, len(e.all))
	for t := range e.all {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	return Snapshot{
		Token:           token,
		Pantry:          recipe.ClonePantry(e.pantry),
		MinPrepTime:     e.minPrep,
		MaxPrepTime:     e.maxPrep,
		AllTitles:       titles,
		PresentedCount:  len(e.presented),
		GeneratedServed: e.generatedServed,
		RemainingQuota:  max(maxGenerated-e.generatedServed, 0),
		Total:           len(e.recipes),
		Cursor:          e.cursor,
		State:           e.state,
		CreatedAt:       e.createdAt,
	}
}
