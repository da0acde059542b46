package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/loopwell/invitekit/pkg/apierrors"
)

// Kind identifies which variant a Value holds. The set is closed: decoding
// never produces a kind outside this list.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindDouble
	KindBool
	KindArray
	KindObject
	KindPageData
	KindTheme
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindDouble:
		return "double"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindPageData:
		return "page_data"
	case KindTheme:
		return "theme"
	default:
		return "null"
	}
}

// Value is the tagged union used for every dynamic piece of a widget
// configuration: prop values, node attributes, and nested settings.
type Value struct {
	kind     Kind
	str      string
	integer  int64
	double   float64
	boolean  bool
	array    []Value
	object   map[string]Value
	pageData *Node
	theme    *Theme
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// StringValue wraps s.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// IntValue wraps i.
func IntValue(i int64) Value { return Value{kind: KindInt, integer: i} }

// DoubleValue wraps f.
func DoubleValue(f float64) Value { return Value{kind: KindDouble, double: f} }

// BoolValue wraps b.
func BoolValue(b bool) Value { return Value{kind: KindBool, boolean: b} }

// ArrayValue wraps vs.
func ArrayValue(vs ...Value) Value { return Value{kind: KindArray, array: vs} }

// ObjectValue wraps m.
func ObjectValue(m map[string]Value) Value { return Value{kind: KindObject, object: m} }

// PageDataValue wraps a server-authored element tree root.
func PageDataValue(root *Node) Value { return Value{kind: KindPageData, pageData: root} }

// ThemeValue wraps an embedded theme document.
func ThemeValue(t *Theme) Value { return Value{kind: KindTheme, theme: t} }

// Kind reports which variant the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string variant.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsInt returns the integer variant.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.integer, true
}

// AsDouble returns the double variant; integers promote.
func (v Value) AsDouble() (float64, bool) {
	switch v.kind {
	case KindDouble:
		return v.double, true
	case KindInt:
		return float64(v.integer), true
	default:
		return 0, false
	}
}

// AsBool returns the boolean variant.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.boolean, true
}

// AsArray returns the array variant.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.array, true
}

// AsObject returns the object variant.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.object, true
}

// AsPageData returns the embedded element tree root.
func (v Value) AsPageData() (*Node, bool) {
	if v.kind != KindPageData {
		return nil, false
	}
	return v.pageData, true
}

// AsTheme returns the embedded theme.
func (v Value) AsTheme() (*Theme, bool) {
	if v.kind != KindTheme {
		return nil, false
	}
	return v.theme, true
}

// UnmarshalJSON classifies raw by its JSON token kind. Numbers without a
// fraction or exponent decode as integers, everything else numeric as
// double. Objects decode as generic objects; page_data and theme variants
// exist only where a prop's declared valueType selects them (see Prop).
func (v *Value) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return apierrors.NewDecodingError("value", fmt.Errorf("empty input"))
	}

	switch trimmed[0] {
	case 'n':
		*v = Null()
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return apierrors.NewDecodingError("string value", err)
		}
		*v = StringValue(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return apierrors.NewDecodingError("boolean value", err)
		}
		*v = BoolValue(b)
		return nil
	case '[':
		var items []Value
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		if items == nil {
			items = []Value{}
		}
		*v = ArrayValue(items...)
		return nil
	case '{':
		var fields map[string]Value
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return err
		}
		*v = ObjectValue(fields)
		return nil
	default:
		return v.unmarshalNumber(trimmed)
	}
}

func (v *Value) unmarshalNumber(trimmed []byte) error {
	if isIntegral(trimmed) {
		i, err := strconv.ParseInt(string(trimmed), 10, 64)
		if err == nil {
			*v = IntValue(i)
			return nil
		}
		// Out of int64 range; fall through to double.
	}
	f, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil {
		return apierrors.NewDecodingError("numeric value", err)
	}
	*v = DoubleValue(f)
	return nil
}

func isIntegral(raw []byte) bool {
	for _, c := range raw {
		if c == '.' || c == 'e' || c == 'E' {
			return false
		}
	}
	return true
}

// MarshalJSON emits the wire form of the active variant.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindInt:
		return []byte(strconv.FormatInt(v.integer, 10)), nil
	case KindDouble:
		return json.Marshal(v.double)
	case KindBool:
		return json.Marshal(v.boolean)
	case KindArray:
		if v.array == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.array)
	case KindObject:
		return json.Marshal(v.object)
	case KindPageData:
		return json.Marshal(v.pageData)
	case KindTheme:
		return json.Marshal(v.theme)
	default:
		return nil, apierrors.NewEncodingError("value", fmt.Errorf("unknown kind %d", v.kind))
	}
}
