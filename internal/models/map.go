package models

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Map is an insertion-ordered string-keyed map. Keys are unique; setting an
// existing key replaces its value in place.
type Map struct {
	members []Member
	index   map[string]int
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

// MapOf builds a Map from members, applying Set in order.
func MapOf(members ...Member) *Map {
	m := NewMap()
	for _, mem := range members {
		m.Set(mem.Key, mem.Value)
	}
	return m
}

// Set inserts or replaces the value stored under key.
func (m *Map) Set(key string, v Value) {
	if i, ok := m.index[key]; ok {
		m.members[i].Value = v
		return
	}
	m.index[key] = len(m.members)
	m.members = append(m.members, Member{Key: key, Value: v})
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	return m.members[i].Value, true
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.members))
	for i, mem := range m.members {
		keys[i] = mem.Key
	}
	return keys
}

// Members returns the members in insertion order. The slice must not be
// modified.
func (m *Map) Members() []Member {
	if m == nil {
		return nil
	}
	return m.members
}

// Len returns the number of members.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.members)
}

// Equal reports whether both maps hold equal members in the same order.
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	a, b := m.Members(), o.Members()
	for i := range a {
		if a[i].Key != b[i].Key || !a[i].Value.Equal(b[i].Value) {
			return false
		}
	}
	return true
}
