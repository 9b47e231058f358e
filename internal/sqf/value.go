// Package sqf encodes and decodes the composite value format the game engine
// uses to persist structured state (positions, inventories, medical state) as
// a single text column.
//
// A Value is one of nil, float64, string, bool or Array.
package sqf

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a decoded composite value: nil, float64, string, bool or Array.
type Value any

// Array is an ordered, heterogeneous list of values.
type Array []Value

// DecodeError reports malformed input and the byte offset where parsing stopped.
type DecodeError struct {
	Offset int
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("sqf: %s at offset %d", e.Msg, e.Offset)
}

// Encode renders v in the textual format read by Decode.
// Integer kinds are accepted and written without a fraction.
func Encode(v Value) string {
	var b strings.Builder
	encode(&b, v)
	return b.String()
}

func encode(b *strings.Builder, v Value) {
	switch t := v.(type) {
	case nil:
		b.WriteString("any")
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case string:
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(t, `"`, `""`))
		b.WriteByte('"')
	case float64:
		b.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(t), 'f', -1, 32))
	case int:
		b.WriteString(strconv.Itoa(t))
	case int32:
		b.WriteString(strconv.FormatInt(int64(t), 10))
	case int64:
		b.WriteString(strconv.FormatInt(t, 10))
	case Array:
		encodeList(b, t)
	case []Value:
		encodeList(b, t)
	default:
		// unknown host types are written as their string form
		encode(b, fmt.Sprint(t))
	}
}

func encodeList(b *strings.Builder, items []Value) {
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		encode(b, item)
	}
	b.WriteByte(']')
}

// Number coerces a numeric value to float64. Strings holding a number are
// accepted because older game builds quote counters.
func Number(v Value) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// FromJSON converts a value produced by encoding/json into a Value.
// Objects have no composite representation and become nil.
func FromJSON(v any) Value {
	switch t := v.(type) {
	case nil, bool, string, float64:
		return t
	case []any:
		out := make(Array, len(t))
		for i, item := range t {
			out[i] = FromJSON(item)
		}
		return out
	}
	return nil
}

// EmptyArray returns a fresh empty list, the default for every composite column.
func EmptyArray() Array { return Array{} }
