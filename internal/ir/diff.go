package ir

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Change records a symbol present on both sides with different values.
type Change struct {
	Name string
	From Value
	To   Value
}

type changeJSON struct {
	Name string          `json:"name"`
	From json.RawMessage `json:"from"`
	To   json.RawMessage `json:"to"`
}

// MarshalJSON encodes the change as {"name","from","to"}.
func (c Change) MarshalJSON() ([]byte, error) {
	from, err := MarshalValue(c.From)
	if err != nil {
		return nil, fmt.Errorf("change %q: %w", c.Name, err)
	}
	to, err := MarshalValue(c.To)
	if err != nil {
		return nil, fmt.Errorf("change %q: %w", c.Name, err)
	}
	return json.Marshal(changeJSON{Name: c.Name, From: from, To: to})
}

// Delta is the difference between two mappings. Every list is sorted by
// name so the output is stable.
type Delta struct {
	Added   []Entry  `json:"added" yaml:"added"`
	Removed []Entry  `json:"removed" yaml:"removed"`
	Changed []Change `json:"changed" yaml:"changed"`
}

// Empty reports whether the mappings were identical.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Diff compares base against head. Added holds symbols only in head,
// Removed those only in base. A type change counts as a change.
func Diff(base, head *Mapping) Delta {
	var d Delta
	for _, e := range head.Entries() {
		old, ok := base.Get(e.Name)
		switch {
		case !ok:
			d.Added = append(d.Added, e)
		case !Equal(old, e.Value):
			d.Changed = append(d.Changed, Change{Name: e.Name, From: old, To: e.Value})
		}
	}
	for _, e := range base.Entries() {
		if _, ok := head.Get(e.Name); !ok {
			d.Removed = append(d.Removed, e)
		}
	}

	sort.Slice(d.Added, func(i, j int) bool { return d.Added[i].Name < d.Added[j].Name })
	sort.Slice(d.Removed, func(i, j int) bool { return d.Removed[i].Name < d.Removed[j].Name })
	sort.Slice(d.Changed, func(i, j int) bool { return d.Changed[i].Name < d.Changed[j].Name })
	return d
}
