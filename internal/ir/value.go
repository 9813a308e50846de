package ir

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Type is the declared type of a configuration symbol.
type Type int

const (
	TypeUnknown Type = iota
	TypeBool
	TypeInt
	TypeString
)

// String returns the schema spelling of the type.
func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if t == TypeUnknown {
		return nil, fmt.Errorf("cannot marshal unknown type")
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// IsHexType reports whether a schema type name declares a hex symbol.
func IsHexType(s string) bool {
	return strings.ToLower(strings.TrimSpace(s)) == "hex"
}

// ParseType maps a schema type name to a Type.
// "tristate" is folded into bool and "hex" into int.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bool", "boolean", "tristate":
		return TypeBool, nil
	case "int", "integer", "hex":
		return TypeInt, nil
	case "string":
		return TypeString, nil
	default:
		return TypeUnknown, fmt.Errorf("unsupported symbol type %q", s)
	}
}

// Value is a sealed interface over resolved symbol values.
// Only Bool, Int and String implement it.
type Value interface {
	irValue()

	// Type reports the symbol type the value belongs to.
	Type() Type

	// Text returns the value in defconfig spelling: y/n for bools,
	// decimal for ints, the raw string for strings.
	Text() string
}

// Bool is a resolved bool symbol value.
type Bool bool

func (Bool) irValue() {}

func (Bool) Type() Type { return TypeBool }

func (b Bool) Text() string {
	if b {
		return "y"
	}
	return "n"
}

// Int is a resolved int symbol value.
type Int int64

func (Int) irValue() {}

func (Int) Type() Type { return TypeInt }

func (i Int) Text() string { return strconv.FormatInt(int64(i), 10) }

// String is a resolved string symbol value.
type String string

func (String) irValue() {}

func (String) Type() Type { return TypeString }

func (s String) Text() string { return string(s) }

// ErrCoerce is returned (wrapped) when text cannot be converted to a type.
var ErrCoerce = errors.New("value not coercible")

// Coerce converts defconfig text to a typed value.
//
// Bools accept y and n. Ints are decimal only: a leading zero does not
// change the base and 0x, 0o or 0b prefixes are rejected. Strings accept
// anything.
func Coerce(t Type, text string) (Value, error) {
	switch t {
	case TypeBool:
		switch strings.TrimSpace(text) {
		case "y":
			return Bool(true), nil
		case "n":
			return Bool(false), nil
		}
		return nil, fmt.Errorf("%w: %q is not y or n", ErrCoerce, text)
	case TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrCoerce, text)
		}
		return Int(n), nil
	case TypeString:
		return String(text), nil
	default:
		return nil, fmt.Errorf("%w: unknown type %v", ErrCoerce, t)
	}
}

// CoerceHex converts the text of a symbol declared as hex: 0x-prefixed
// hexadecimal, or decimal as Int.Text writes it back.
func CoerceHex(text string) (Value, error) {
	n, ok := ParseNumber(text)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a hex integer", ErrCoerce, text)
	}
	return Int(n), nil
}

// ParseNumber parses an integer written in decimal or, with a 0x prefix,
// in hexadecimal.
func ParseNumber(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	neg := false
	body := s
	if strings.HasPrefix(body, "-") {
		neg, body = true, body[1:]
	}
	if len(body) > 2 && (body[:2] == "0x" || body[:2] == "0X") {
		n, err := strconv.ParseInt(body[2:], 16, 64)
		if err != nil || strings.ContainsAny(body[2:], "+-_") {
			return 0, false
		}
		if neg {
			n = -n
		}
		return n, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

// Equal reports whether two values have the same type and text.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Type() == b.Type() && a.Text() == b.Text()
}

// MarshalValue marshals a Value to its natural JSON form.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Bool:
		return json.Marshal(bool(val))
	case Int:
		return json.Marshal(int64(val))
	case String:
		return json.Marshal(string(val))
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// UnmarshalValue decodes JSON produced by MarshalValue for the given type.
func UnmarshalValue(t Type, data []byte) (Value, error) {
	switch t {
	case TypeBool:
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case TypeInt:
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return Int(n), nil
	case TypeString:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return String(s), nil
	default:
		return nil, fmt.Errorf("unknown type %v", t)
	}
}
