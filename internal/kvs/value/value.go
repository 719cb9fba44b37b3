// Package value implements the tagged value sum type shared by every KVS
// instance: the ten recognized tags, their canonical wire encoding as
// {"t": tag, "v": payload}, and structural equality/deep-copy helpers.
package value

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Tag identifies the concrete type carried by a Value.
type Tag string

const (
	TagI32    Tag = "i32"
	TagU32    Tag = "u32"
	TagI64    Tag = "i64"
	TagU64    Tag = "u64"
	TagF64    Tag = "f64"
	TagBool   Tag = "bool"
	TagStr    Tag = "str"
	TagNull   Tag = "null"
	TagArray  Tag = "arr"
	TagObject Tag = "obj"
)

// ErrInvalidValue is returned by Decode/UnmarshalJSON when the input is not
// a well-formed tagged value: unknown tag, missing t/v, wrong shape for the
// tag's payload, or a numeric value outside the tag's declared range.
var ErrInvalidValue = errors.New("value: invalid tagged value")

// Value is an explicit sum type over the ten wire tags. Exactly one of the
// fields below is meaningful at a time, selected by tag; callers must go
// through the constructors and accessors rather than the zero value.
type Value struct {
	tag Tag
	i32 int32
	u32 uint32
	i64 int64
	u64 uint64
	f64 float64
	b   bool
	s   string
	arr []Value
	obj map[string]Value
}

func I32(v int32) Value      { return Value{tag: TagI32, i32: v} }
func U32(v uint32) Value     { return Value{tag: TagU32, u32: v} }
func I64(v int64) Value      { return Value{tag: TagI64, i64: v} }
func U64(v uint64) Value     { return Value{tag: TagU64, u64: v} }
func F64(v float64) Value    { return Value{tag: TagF64, f64: v} }
func Bool(v bool) Value      { return Value{tag: TagBool, b: v} }
func Str(v string) Value     { return Value{tag: TagStr, s: v} }
func Null() Value            { return Value{tag: TagNull} }

// Array copies items into a new Value of tag arr.
func Array(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{tag: TagArray, arr: cp}
}

// Object copies fields into a new Value of tag obj.
func Object(fields map[string]Value) Value {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{tag: TagObject, obj: cp}
}

// Tag reports the value's wire tag.
func (v Value) Tag() Tag { return v.tag }

func (v Value) AsI32() (int32, bool)   { return v.i32, v.tag == TagI32 }
func (v Value) AsU32() (uint32, bool)  { return v.u32, v.tag == TagU32 }
func (v Value) AsI64() (int64, bool)   { return v.i64, v.tag == TagI64 }
func (v Value) AsU64() (uint64, bool)  { return v.u64, v.tag == TagU64 }
func (v Value) AsF64() (float64, bool) { return v.f64, v.tag == TagF64 }
func (v Value) AsBool() (bool, bool)   { return v.b, v.tag == TagBool }
func (v Value) AsStr() (string, bool)  { return v.s, v.tag == TagStr }
func (v Value) IsNull() bool           { return v.tag == TagNull }

// AsArray returns the element slice without copying; callers that intend to
// mutate it should go through Clone first.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.tag == TagArray }

// AsObject returns the field map without copying; callers that intend to
// mutate it should go through Clone first.
func (v Value) AsObject() (map[string]Value, bool) { return v.obj, v.tag == TagObject }

// Clone returns a deep copy, so that a caller holding a Value read out of a
// live map cannot mutate the stored array/object through an aliased slice
// or map.
func (v Value) Clone() Value {
	switch v.tag {
	case TagArray:
		cp := make([]Value, len(v.arr))
		for i, e := range v.arr {
			cp[i] = e.Clone()
		}
		return Value{tag: TagArray, arr: cp}
	case TagObject:
		cp := make(map[string]Value, len(v.obj))
		for k, e := range v.obj {
			cp[k] = e.Clone()
		}
		return Value{tag: TagObject, obj: cp}
	default:
		return v
	}
}

// Equal reports structural equality between two values, recursing into
// arrays and objects. Values of different tags are never equal, even when
// numerically comparable (I32(1) != U32(1)).
func Equal(a, b Value) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case TagI32:
		return a.i32 == b.i32
	case TagU32:
		return a.u32 == b.u32
	case TagI64:
		return a.i64 == b.i64
	case TagU64:
		return a.u64 == b.u64
	case TagF64:
		return a.f64 == b.f64
	case TagBool:
		return a.b == b.b
	case TagStr:
		return a.s == b.s
	case TagNull:
		return true
	case TagArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case TagObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for k, av := range a.obj {
			bv, ok := b.obj[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// wireValue is the {"t": ..., "v": ...} envelope used both for standalone
// values and as the element type inside arr/obj payloads.
type wireValue struct {
	T Tag             `json:"t"`
	V json.RawMessage `json:"v"`
}

// MarshalJSON renders v as the canonical {"t": tag, "v": payload} envelope.
func (v Value) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.tag {
	case TagI32:
		payload = v.i32
	case TagU32:
		payload = v.u32
	case TagI64:
		payload = v.i64
	case TagU64:
		payload = v.u64
	case TagF64:
		if math.IsNaN(v.f64) || math.IsInf(v.f64, 0) {
			return nil, fmt.Errorf("%w: f64 value is not finite", ErrInvalidValue)
		}
		payload = v.f64
	case TagBool:
		payload = v.b
	case TagStr:
		payload = v.s
	case TagNull:
		payload = nil
	case TagArray:
		payload = v.arr
	case TagObject:
		payload = v.obj
	default:
		return nil, fmt.Errorf("%w: unrecognized tag %q", ErrInvalidValue, v.tag)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("value: marshal payload for tag %q: %w", v.tag, err)
	}
	return json.Marshal(wireValue{T: v.tag, V: raw})
}

// UnmarshalJSON parses the {"t": tag, "v": payload} envelope, enforcing the
// numeric ranges declared by spec §4.1: i32/u32 are 32-bit, i64/u64 are
// 64-bit, f64 must be finite.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if w.T == "" || w.V == nil {
		return fmt.Errorf("%w: missing t or v", ErrInvalidValue)
	}

	switch w.T {
	case TagI32:
		var n int64
		if err := json.Unmarshal(w.V, &n); err != nil {
			return fmt.Errorf("%w: i32: %v", ErrInvalidValue, err)
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return fmt.Errorf("%w: i32 out of range: %d", ErrInvalidValue, n)
		}
		*v = I32(int32(n))
	case TagU32:
		var n int64
		if err := json.Unmarshal(w.V, &n); err != nil {
			return fmt.Errorf("%w: u32: %v", ErrInvalidValue, err)
		}
		if n < 0 || n > math.MaxUint32 {
			return fmt.Errorf("%w: u32 out of range: %d", ErrInvalidValue, n)
		}
		*v = U32(uint32(n))
	case TagI64:
		var n int64
		if err := json.Unmarshal(w.V, &n); err != nil {
			return fmt.Errorf("%w: i64: %v", ErrInvalidValue, err)
		}
		*v = I64(n)
	case TagU64:
		var n uint64
		if err := json.Unmarshal(w.V, &n); err != nil {
			return fmt.Errorf("%w: u64: %v", ErrInvalidValue, err)
		}
		*v = U64(n)
	case TagF64:
		var f float64
		if err := json.Unmarshal(w.V, &f); err != nil {
			return fmt.Errorf("%w: f64: %v", ErrInvalidValue, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: f64 value is not finite", ErrInvalidValue)
		}
		*v = F64(f)
	case TagBool:
		var b bool
		if err := json.Unmarshal(w.V, &b); err != nil {
			return fmt.Errorf("%w: bool: %v", ErrInvalidValue, err)
		}
		*v = Bool(b)
	case TagStr:
		var s string
		if err := json.Unmarshal(w.V, &s); err != nil {
			return fmt.Errorf("%w: str: %v", ErrInvalidValue, err)
		}
		*v = Str(s)
	case TagNull:
		if string(w.V) != "null" {
			return fmt.Errorf("%w: null payload must be JSON null", ErrInvalidValue)
		}
		*v = Null()
	case TagArray:
		var items []Value
		if err := json.Unmarshal(w.V, &items); err != nil {
			return fmt.Errorf("%w: arr: %v", ErrInvalidValue, err)
		}
		*v = Value{tag: TagArray, arr: items}
	case TagObject:
		var fields map[string]Value
		if err := json.Unmarshal(w.V, &fields); err != nil {
			return fmt.Errorf("%w: obj: %v", ErrInvalidValue, err)
		}
		*v = Value{tag: TagObject, obj: fields}
	default:
		return fmt.Errorf("%w: unrecognized tag %q", ErrInvalidValue, w.T)
	}
	return nil
}

// Encode serializes v to its canonical wire form.
func Encode(v Value) ([]byte, error) {
	return json.Marshal(v)
}

// Decode parses a standalone tagged value.
func Decode(data []byte) (Value, error) {
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return Value{}, err
	}
	return v, nil
}

// DecodeMap parses the top-level defaults/live-map shape: a JSON object
// whose members are themselves tag wrappers.
func DecodeMap(data []byte) (map[string]Value, error) {
	var m map[string]Value
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// EncodeMap serializes a key/value map to the defaults/live-map shape.
func EncodeMap(m map[string]Value) ([]byte, error) {
	return json.Marshal(m)
}
