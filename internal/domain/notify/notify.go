package notify

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DefaultDuration is how long a banner stays up when none is given
const DefaultDuration = 5 * time.Second

// ErrUnknownType is returned for a notification type outside the known set
var ErrUnknownType = errors.New("unknown notification type")

// Type is the banner severity
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// ParseType validates a notification type
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeSuccess, TypeError, TypeWarning, TypeInfo:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Notification is one transient banner
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Duration  Duration  `json:"duration"`
	CreatedAt time.Time `json:"created_at"`

	seq uint64
}

// Duration marshals as whole milliseconds
type Duration time.Duration

// MarshalJSON renders the duration in milliseconds
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%d", time.Duration(d).Milliseconds())), nil
}

// Center keeps the live banners. Each banner expires on its own after its
// duration; expired banners are swept in the background.
type Center struct {
	cache           *gocache.Cache
	defaultDuration time.Duration
	logger          *zap.Logger

	mu       sync.Mutex
	seq      uint64               // Protected by mu
	onChange func([]Notification) // Protected by mu
}

// NewCenter creates a notification center. sweep is the interval at which
// expired banners are removed and observers told.
func NewCenter(defaultDuration, sweep time.Duration) *Center {
	if defaultDuration <= 0 {
		defaultDuration = DefaultDuration
	}
	if sweep <= 0 {
		sweep = time.Second
	}

	c := &Center{
		cache:           gocache.New(defaultDuration, sweep),
		defaultDuration: defaultDuration,
		logger:          zap.NewNop(),
	}
	c.cache.OnEvicted(func(id string, _ interface{}) {
		c.logger.Debug("Notification removed", zap.String("notification_id", id))
		c.notify()
	})
	return c
}

// WithLogger attaches a logger to the center
func (c *Center) WithLogger(logger *zap.Logger) *Center {
	c.logger = logger.Named("notify")
	return c
}

// OnChange registers the observer that receives the live banners after
// every add, removal and expiry.
func (c *Center) OnChange(fn func([]Notification)) *Center {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
	return c
}

// Add posts a banner and returns it with its id and effective duration
func (c *Center) Add(n Notification) Notification {
	if n.Type == "" {
		n.Type = TypeInfo
	}
	if n.Duration <= 0 {
		n.Duration = Duration(c.defaultDuration)
	}
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()

	c.mu.Lock()
	c.seq++
	n.seq = c.seq
	c.mu.Unlock()

	c.cache.Set(n.ID, n, time.Duration(n.Duration))
	c.logger.Debug("Notification added",
		zap.String("notification_id", n.ID),
		zap.String("type", string(n.Type)),
		zap.String("title", n.Title),
	)
	c.notify()
	return n
}

// Remove dismisses a banner early. It reports whether it was still live.
func (c *Center) Remove(id string) bool {
	if _, ok := c.cache.Get(id); !ok {
		return false
	}
	c.cache.Delete(id)
	return true
}

// List returns the live banners, oldest first
func (c *Center) List() []Notification {
	items := c.cache.Items()
	out := make([]Notification, 0, len(items))
	for _, item := range items {
		if n, ok := item.Object.(Notification); ok {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Sweep removes expired banners immediately
func (c *Center) Sweep() {
	c.cache.DeleteExpired()
}

func (c *Center) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(c.List())
	}
}
