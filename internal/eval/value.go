// internal/eval/value.go
package eval

import (
	"strconv"
	"strings"

	"sst/internal/memory"
	"sst/internal/parser"
)

// Value is the runtime representation: a tagged union over the four
// static types. Int, Float and Bool are inline scalars; String holds a
// handle into the memory manager instead of an inline buffer.
type Value struct {
	T     parser.Type
	Int   int64
	Float float64
	Bool  bool
	Str   memory.Handle
}

func IntValue(v int64) Value     { return Value{T: parser.TypeInt, Int: v} }
func FloatValue(v float64) Value { return Value{T: parser.TypeFloat, Float: v} }
func BoolValue(v bool) Value     { return Value{T: parser.TypeBool, Bool: v} }
func StringValue(h memory.Handle) Value {
	return Value{T: parser.TypeString, Str: h}
}

// asFloat promotes a numeric value to float64.
func (v Value) asFloat() float64 {
	if v.T == parser.TypeInt {
		return float64(v.Int)
	}
	return v.Float
}

// Format renders the canonical textual form used by print: decimal
// ints, floats with a fractional part always shown, true/false, and
// string content without quotes.
func Format(v Value, mem *memory.Manager) (string, error) {
	switch v.T {
	case parser.TypeInt:
		return strconv.FormatInt(v.Int, 10), nil
	case parser.TypeFloat:
		s := strconv.FormatFloat(v.Float, 'f', -1, 64)
		if !strings.Contains(s, ".") && !strings.ContainsAny(s, "NI") {
			s += ".0" // fractional part is always shown
		}
		return s, nil
	case parser.TypeBool:
		return strconv.FormatBool(v.Bool), nil
	case parser.TypeString:
		return mem.String(v.Str)
	default:
		return "", nil
	}
}
