package ir

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML encodes the mapping as a YAML mapping in insertion order with
// natively typed values.
func (m *Mapping) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range m.Entries() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Name},
			valueNode(e.Value),
		)
	}
	return node, nil
}

func valueNode(v Value) *yaml.Node {
	switch val := v.(type) {
	case Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(bool(val))}
	case Int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(val), 10)}
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Text()}
	}
}

// MarshalYAML encodes the entry as a single-key mapping.
func (e Entry) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Name},
		valueNode(e.Value),
	}}, nil
}

// MarshalYAML encodes the change as {name, from, to}.
func (c Change) MarshalYAML() (any, error) {
	str := func(s string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	}
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: []*yaml.Node{
		str("name"), str(c.Name),
		str("from"), valueNode(c.From),
		str("to"), valueNode(c.To),
	}}, nil
}
