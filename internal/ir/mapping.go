package ir

import (
	"encoding/json"
	"fmt"
)

// Entry is one resolved symbol.
type Entry struct {
	Name  string
	Value Value
}

type entryJSON struct {
	Name  string          `json:"name"`
	Type  Type            `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the entry as {"name","type","value"}.
func (e Entry) MarshalJSON() ([]byte, error) {
	raw, err := MarshalValue(e.Value)
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", e.Name, err)
	}
	return json.Marshal(entryJSON{Name: e.Name, Type: e.Value.Type(), Value: raw})
}

// UnmarshalJSON decodes an entry, using the type field to pick the value kind.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := UnmarshalValue(raw.Type, raw.Value)
	if err != nil {
		return fmt.Errorf("entry %q: %w", raw.Name, err)
	}
	e.Name = raw.Name
	e.Value = v
	return nil
}

// Mapping is the resolved name -> value table of one run.
// Iteration follows insertion order, which the resolver keeps equal to
// schema declaration order.
type Mapping struct {
	entries []Entry
	index   map[string]int
}

// NewMapping returns an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// Set stores a value. A new name is appended; an existing name keeps its
// position and has its value replaced.
func (m *Mapping) Set(name string, v Value) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[name]; ok {
		m.entries[i].Value = v
		return
	}
	m.index[name] = len(m.entries)
	m.entries = append(m.entries, Entry{Name: name, Value: v})
}

// Get returns the value stored for name.
func (m *Mapping) Get(name string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns a copy of all entries in insertion order.
func (m *Mapping) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// OfType returns the entries whose value has one of the given types,
// in insertion order.
func (m *Mapping) OfType(types ...Type) []Entry {
	if m == nil {
		return nil
	}
	var out []Entry
	for _, e := range m.entries {
		for _, t := range types {
			if e.Value.Type() == t {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// MarshalJSON encodes the mapping as an ordered array of entries.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	entries := m.Entries()
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

// UnmarshalJSON decodes an array of entries. Duplicate names keep the
// first position and the last value.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	m.entries = nil
	m.index = make(map[string]int, len(entries))
	for _, e := range entries {
		m.Set(e.Name, e.Value)
	}
	return nil
}
