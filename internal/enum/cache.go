package enum

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/mcncl/jsoncompat/internal/naming"
)

type cacheKey struct {
	typ       reflect.Type
	transform naming.Transform
}

// Cache holds built tables keyed by enum type and transform identity. Racing
// builders may each build a table; the first one stored is kept and the
// rest are discarded.
type Cache struct {
	tables sync.Map // cacheKey -> *Table
	logger *slog.Logger
}

// NewCache returns an empty cache that reports table construction to
// logger. A nil logger discards.
func NewCache(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{logger: logger}
}

var defaultCache = NewCache(nil)

// DefaultCache is the process-wide cache used when a Resolver is not given
// one.
func DefaultCache() *Cache { return defaultCache }

// Table returns the table for d under transform, building it on first use.
// A transform whose value cannot be a map key gets a fresh, uncached table.
func (c *Cache) Table(d Descriptor, transform naming.Transform) *Table {
	if transform != nil && !reflect.TypeOf(transform).Comparable() {
		c.logger.Debug("enum naming transform is not comparable; table not cached",
			"type", d.TypeName(),
			"transform", naming.NameOf(transform))
		return BuildTable(d, transform)
	}

	key := cacheKey{typ: d.Type, transform: transform}
	if v, ok := c.tables.Load(key); ok {
		return v.(*Table)
	}

	built := BuildTable(d, transform)
	v, loaded := c.tables.LoadOrStore(key, built)
	if !loaded {
		c.logger.Debug("built enum alias table",
			"type", d.TypeName(),
			"transform", naming.NameOf(transform),
			"members", len(d.Members),
			"aliases", built.Aliases(),
			"overrides", built.Overrides())
		for _, col := range built.Collisions() {
			c.logger.Warn("enum members share a wire name; the later member wins",
				"type", d.TypeName(),
				"wire_name", col.WireName,
				"earlier", col.Earlier,
				"later", col.Later)
		}
	}
	return v.(*Table)
}

// Len is the number of cached tables.
func (c *Cache) Len() int {
	n := 0
	c.tables.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
