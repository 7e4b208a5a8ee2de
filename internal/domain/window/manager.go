package window

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Manager owns the live window collection. Every view is single instance;
// opening a view that is already open focuses it instead.
type Manager struct {
	mu      sync.RWMutex
	windows map[int]*Record // Protected by mu
	nextID  int             // Protected by mu

	logger   *zap.Logger
	onChange func([]Record)
	onOpen   func(Record)
}

// NewManager creates an empty window manager
func NewManager() *Manager {
	return &Manager{
		windows: make(map[int]*Record),
		logger:  zap.NewNop(),
	}
}

// WithLogger attaches a logger to the manager
func (m *Manager) WithLogger(logger *zap.Logger) *Manager {
	m.logger = logger.Named("windows")
	return m
}

// OnChange registers the observer that receives the live window list after
// every mutation.
func (m *Manager) OnChange(fn func([]Record)) *Manager {
	m.onChange = fn
	return m
}

// OnOpen registers the observer for true window creation (not re-focus)
func (m *Manager) OnOpen(fn func(Record)) *Manager {
	m.onOpen = fn
	return m
}

// Open opens a window for view, or focuses the live window already hosting
// it. It reports whether a new window was created.
func (m *Manager) Open(view View) (Record, bool) {
	m.mu.Lock()

	if existing := m.findByViewLocked(view); existing != nil {
		changed := m.raiseLocked(existing)
		rec := *existing
		snapshot := m.listLocked()
		m.mu.Unlock()

		m.logger.Debug("View already open, focusing",
			zap.String("view", string(view)),
			zap.Int("window_id", rec.ID),
		)
		if changed {
			m.notify(snapshot)
		}
		return rec, false
	}

	rec := &Record{
		ID:         m.nextID,
		View:       view,
		StackOrder: m.maxStackLocked() + 1,
	}
	m.nextID++
	m.windows[rec.ID] = rec

	created := *rec
	snapshot := m.listLocked()
	m.mu.Unlock()

	m.logger.Debug("Window opened",
		zap.String("view", string(view)),
		zap.Int("window_id", created.ID),
		zap.Int("stack_order", created.StackOrder),
	)
	if m.onOpen != nil {
		m.onOpen(created)
	}
	m.notify(snapshot)
	return created, true
}

// Focus brings a window to the top. Unknown ids and the window already on
// top are no-ops. It reports whether the stacking changed.
func (m *Manager) Focus(id int) bool {
	m.mu.Lock()

	rec, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	changed := m.raiseLocked(rec)
	snapshot := m.listLocked()
	m.mu.Unlock()

	if changed {
		m.notify(snapshot)
	}
	return changed
}

// Close removes a window. Remaining stack orders are left untouched.
func (m *Manager) Close(id int) bool {
	m.mu.Lock()

	rec, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.windows, id)
	snapshot := m.listLocked()
	m.mu.Unlock()

	m.logger.Debug("Window closed",
		zap.String("view", string(rec.View)),
		zap.Int("window_id", id),
	)
	m.notify(snapshot)
	return true
}

// Get retrieves a live window by id
func (m *Manager) Get(id int) (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.windows[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// FindByView retrieves the live window hosting view
func (m *Manager) FindByView(view View) (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec := m.findByViewLocked(view)
	if rec == nil {
		return Record{}, false
	}
	return *rec, true
}

// List returns copies of the live windows, bottom to top
func (m *Manager) List() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked()
}

// Focused returns the topmost window
func (m *Manager) Focused() (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var top *Record
	for _, rec := range m.windows {
		if top == nil || rec.StackOrder > top.StackOrder {
			top = rec
		}
	}
	if top == nil {
		return Record{}, false
	}
	return *top, true
}

// Stats returns manager statistics
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{Open: len(m.windows), Allocated: m.nextID}
	for _, rec := range m.windows {
		if stats.FocusedID == nil || rec.StackOrder > m.windows[*stats.FocusedID].StackOrder {
			id := rec.ID
			stats.FocusedID = &id
		}
	}
	return stats
}

// raiseLocked moves rec above every other window unless it is already on
// top. Must hold lock.
func (m *Manager) raiseLocked(rec *Record) bool {
	top := m.maxStackLocked()
	if rec.StackOrder == top {
		return false
	}
	rec.StackOrder = top + 1
	return true
}

func (m *Manager) maxStackLocked() int {
	top := 0
	for _, rec := range m.windows {
		if rec.StackOrder > top {
			top = rec.StackOrder
		}
	}
	return top
}

func (m *Manager) findByViewLocked(view View) *Record {
	for _, rec := range m.windows {
		if rec.View == view {
			return rec
		}
	}
	return nil
}

func (m *Manager) listLocked() []Record {
	out := make([]Record, 0, len(m.windows))
	for _, rec := range m.windows {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StackOrder == out[j].StackOrder {
			return out[i].ID < out[j].ID
		}
		return out[i].StackOrder < out[j].StackOrder
	})
	return out
}

func (m *Manager) notify(snapshot []Record) {
	if m.onChange != nil {
		m.onChange(snapshot)
	}
}
