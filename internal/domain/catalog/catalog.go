package catalog

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/terminal"
)

// Catalog holds the launchable simulations. Every entry is compiled when
// it is added, so a malformed script never reaches a session.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]Entry // Protected by mu
	order   []string         // Protected by mu
	logger  *zap.Logger
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{
		entries: make(map[string]Entry),
		logger:  zap.NewNop(),
	}
}

// WithLogger attaches a logger to the catalog
func (c *Catalog) WithLogger(logger *zap.Logger) *Catalog {
	c.logger = logger.Named("catalog")
	return c
}

// Add validates and compiles an entry. An entry with an existing id
// replaces it in place, except that a file-backed entry may not replace
// a built-in.
func (c *Catalog) Add(entry Entry) error {
	if err := entry.validate(); err != nil {
		return err
	}

	program, err := terminal.Compile(entry.Simulation)
	if err != nil {
		return fmt.Errorf("entry %s: %w", entry.ID, err)
	}
	entry.program = program
	entry.Simulation = program.Script()

	c.mu.Lock()
	if existing, exists := c.entries[entry.ID]; exists {
		if existing.Source == builtinSource && entry.fileBacked() {
			c.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrReservedID, entry.ID)
		}
		c.logger.Warn("Replacing catalog entry",
			zap.String("id", entry.ID),
			zap.String("source", entry.Source),
		)
	} else {
		c.order = append(c.order, entry.ID)
	}
	c.entries[entry.ID] = entry
	c.mu.Unlock()

	return nil
}

// Get retrieves an entry by id
func (c *Catalog) Get(id string) (Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entry, nil
}

// List returns every entry in insertion order
func (c *Catalog) List() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

// ListKind returns the entries of one kind in insertion order
func (c *Catalog) ListKind(kind Kind) []Entry {
	var out []Entry
	for _, e := range c.List() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Remove drops an entry. It reports whether the entry existed.
func (c *Catalog) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[id]; !ok {
		return false
	}
	delete(c.entries, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// pruneStale removes file-backed entries that their source file no longer
// produces. produced maps each loaded file to its entry id; entries from a
// file in failed are kept as they were. Built-in entries are never pruned.
func (c *Catalog) pruneStale(produced map[string]string, failed map[string]error) []string {
	var stale []string
	for _, e := range c.List() {
		if !e.fileBacked() {
			continue
		}
		if _, ok := failed[e.Source]; ok {
			continue
		}
		if id, ok := produced[e.Source]; ok && id == e.ID {
			continue
		}
		stale = append(stale, e.ID)
	}
	for _, id := range stale {
		c.Remove(id)
	}
	return stale
}
