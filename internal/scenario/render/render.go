// Package render formats engine results the way the driver CLI's log
// fields expect: a small Rust-flavored Result<T, E> textual convention
// (Ok(...)/Err(...)) rather than Go's usual (value, error) pair, since
// that is the wire contract the scenario runner asserts against.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kvsdriver/kvs/internal/kvs/kvserr"
	"github.com/kvsdriver/kvs/internal/kvs/value"
)

// Ok wraps a successful payload: Ok(payload).
func Ok(payload string) string {
	return "Ok(" + payload + ")"
}

// OkUnit renders the unit success used by operations with no return value
// (flush, set, restore): Ok(()).
func OkUnit() string {
	return Ok("()")
}

// OkBool renders a plain boolean success payload, as used by is_default.
func OkBool(b bool) string {
	return Ok(strconv.FormatBool(b))
}

// OkQuoted renders a string success payload wrapped in Rust-style double
// quotes, as used for filesystem paths: Ok("/tmp/x/kvs_1_1.json").
func OkQuoted(s string) string {
	return Ok(strconv.Quote(s))
}

// Err renders a failed result by error code: Err(KeyNotFound).
func Err(code kvserr.Code) string {
	return "Err(" + string(code) + ")"
}

// FromError renders ok if err is nil, else Err(code-of-err).
func FromError(err error, ok string) string {
	if err == nil {
		return ok
	}
	return Err(kvserr.CodeOf(err))
}

// Value renders a tagged value the way the original KVS's Debug-derived
// Display renders it: the tag name (uppercased for numeric/float kinds)
// applied to the payload, bare for bool/str/null.
func Value(v value.Value) string {
	switch v.Tag() {
	case value.TagI32:
		n, _ := v.AsI32()
		return fmt.Sprintf("I32(%d)", n)
	case value.TagU32:
		n, _ := v.AsU32()
		return fmt.Sprintf("U32(%d)", n)
	case value.TagI64:
		n, _ := v.AsI64()
		return fmt.Sprintf("I64(%d)", n)
	case value.TagU64:
		n, _ := v.AsU64()
		return fmt.Sprintf("U64(%d)", n)
	case value.TagF64:
		f, _ := v.AsF64()
		return fmt.Sprintf("F64(%s)", strconv.FormatFloat(f, 'g', -1, 64))
	case value.TagBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b)
	case value.TagStr:
		s, _ := v.AsStr()
		return s
	case value.TagNull:
		return "Null"
	case value.TagArray:
		arr, _ := v.AsArray()
		parts := make([]string, len(arr))
		for i, e := range arr {
			parts[i] = Value(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case value.TagObject:
		obj, _ := v.AsObject()
		parts := make([]string, 0, len(obj))
		for k, e := range obj {
			parts = append(parts, fmt.Sprintf("%s: %s", k, Value(e)))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "?"
	}
}

// OkValue renders a successfully retrieved value: Ok(F64(111.1)).
func OkValue(v value.Value) string {
	return Ok(Value(v))
}
