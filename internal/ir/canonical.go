package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON of a mapping for hashing.
// The mapping is encoded as an object {name: value}; declaration order is
// deliberately not part of the canonical form.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings are NFC normalized
func MarshalCanonical(m *Mapping) ([]byte, error) {
	entries := m.Entries()
	slices.SortFunc(entries, func(a, b Entry) int {
		return compareKeysRFC8785(a.Name, b.Name)
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalCanonicalString(e.Name)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := marshalCanonicalValue(e.Value)
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", e.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalCanonicalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case Int:
		return []byte(val.Text()), nil
	case String:
		return marshalCanonicalString(string(val))
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalCanonicalString produces a canonical JSON string with NFC
// normalization. Only control characters, backslash and quote are escaped.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return unescapeLineSeparators(out), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes emitted by
// encoding/json back into literal characters. Escape sequences are walked
// pairwise so an escaped backslash followed by "u2028" is left alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if data[i+1] == 'u' && i+6 <= len(data) {
			switch string(data[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

// compareKeysRFC8785 compares strings by UTF-16 code units as RFC 8785
// requires. Go's string comparison orders by UTF-8 bytes, which differs
// for characters outside the BMP.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
