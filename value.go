package flipbook

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ValueKind distinguishes the payload held by a Value.
type ValueKind uint8

const (
	ValueNil    ValueKind = iota // absent / JSON null
	ValueNumber                  // float64
	ValueBool                    // boolean flag
	ValueString                  // string (hex color strings included)
	ValueArray                   // ordered list of Values
	ValueObject                  // nested name→Value map
)

// Value is the tagged union used for element properties and keyframe values.
// A single flat struct is used for all kinds to avoid interface dispatch on
// the per-frame resolution path; exactly one payload field is meaningful for
// a given Kind. The zero Value has kind ValueNil.
type Value struct {
	Kind ValueKind
	Num  float64
	Bool bool
	Str  string
	Arr  []Value
	Obj  map[string]Value
}

// Num wraps a float64 as a Value.
func Num(n float64) Value { return Value{Kind: ValueNumber, Num: n} }

// Bool wraps a bool as a Value.
func Bool(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// Str wraps a string as a Value.
func Str(s string) Value { return Value{Kind: ValueString, Str: s} }

// Arr wraps a list of Values as an array Value.
func Arr(vs ...Value) Value { return Value{Kind: ValueArray, Arr: vs} }

// NumArr wraps a list of float64s as an array Value of numbers.
func NumArr(ns ...float64) Value {
	vs := make([]Value, len(ns))
	for i, n := range ns {
		vs[i] = Num(n)
	}
	return Value{Kind: ValueArray, Arr: vs}
}

// Obj wraps a property map as an object Value. The map is not copied.
func Obj(m map[string]Value) Value { return Value{Kind: ValueObject, Obj: m} }

// Clone returns a deep copy. Arrays and objects are copied recursively;
// scalar kinds are value types already.
func (v Value) Clone() Value {
	switch v.Kind {
	case ValueArray:
		arr := make([]Value, len(v.Arr))
		for i, e := range v.Arr {
			arr[i] = e.Clone()
		}
		return Value{Kind: ValueArray, Arr: arr}
	case ValueObject:
		obj := make(map[string]Value, len(v.Obj))
		for k, e := range v.Obj {
			obj[k] = e.Clone()
		}
		return Value{Kind: ValueObject, Obj: obj}
	default:
		return v
	}
}

// Equal reports deep equality. NaN numbers are never equal, matching float64.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueNil:
		return true
	case ValueNumber:
		return v.Num == o.Num
	case ValueBool:
		return v.Bool == o.Bool
	case ValueString:
		return v.Str == o.Str
	case ValueArray:
		if len(v.Arr) != len(o.Arr) {
			return false
		}
		for i := range v.Arr {
			if !v.Arr[i].Equal(o.Arr[i]) {
				return false
			}
		}
		return true
	case ValueObject:
		if len(v.Obj) != len(o.Obj) {
			return false
		}
		for k, e := range v.Obj {
			oe, ok := o.Obj[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON encodes the Value as its natural JSON shape.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNil:
		return []byte("null"), nil
	case ValueNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return nil, fmt.Errorf("flipbook: cannot encode non-finite number %v", v.Num)
		}
		return json.Marshal(v.Num)
	case ValueBool:
		return json.Marshal(v.Bool)
	case ValueString:
		return json.Marshal(v.Str)
	case ValueArray:
		return json.Marshal(v.Arr)
	case ValueObject:
		return json.Marshal(v.Obj)
	}
	return nil, fmt.Errorf("flipbook: unknown value kind %d", v.Kind)
}

// UnmarshalJSON decodes any JSON value into the matching Value kind.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = valueFromJSON(raw)
	return nil
}

func valueFromJSON(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Value{}
	case float64:
		return Num(x)
	case bool:
		return Bool(x)
	case string:
		return Str(x)
	case []any:
		arr := make([]Value, len(x))
		for i, e := range x {
			arr[i] = valueFromJSON(e)
		}
		return Value{Kind: ValueArray, Arr: arr}
	case map[string]any:
		obj := make(map[string]Value, len(x))
		for k, e := range x {
			obj[k] = valueFromJSON(e)
		}
		return Value{Kind: ValueObject, Obj: obj}
	}
	return Value{}
}

// --- Dotted property paths ---

// LookupPath resolves a dotted path (e.g. "transform.x") in a property map.
// The second result is false when any path component is missing or an
// intermediate component is not an object.
func LookupPath(props map[string]Value, path string) (Value, bool) {
	if props == nil || path == "" {
		return Value{}, false
	}
	parts := strings.Split(path, ".")
	cur := props
	for i, part := range parts {
		v, ok := cur[part]
		if !ok {
			return Value{}, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		if v.Kind != ValueObject {
			return Value{}, false
		}
		cur = v.Obj
	}
	return Value{}, false
}

// StorePath writes a value at a dotted path, creating intermediate objects
// as needed. A non-object intermediate value is replaced by a fresh object;
// a bad animation path must not halt resolution of the rest.
func StorePath(props map[string]Value, path string, v Value) {
	if props == nil || path == "" {
		return
	}
	parts := strings.Split(path, ".")
	cur := props
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part]
		if !ok || next.Kind != ValueObject || next.Obj == nil {
			next = Obj(make(map[string]Value))
			cur[part] = next
		}
		cur = next.Obj
	}
	cur[parts[len(parts)-1]] = v
}

// cloneProps deep-copies a property map.
func cloneProps(props map[string]Value) map[string]Value {
	if props == nil {
		return nil
	}
	out := make(map[string]Value, len(props))
	for k, v := range props {
		out[k] = v.Clone()
	}
	return out
}
