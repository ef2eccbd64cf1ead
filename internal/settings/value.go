package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ValueType is the type tag carried by every setting definition and stored override.
type ValueType string

const (
	// TypeBool is a boolean setting.
	TypeBool ValueType = "bool"
	// TypeString is a free text setting.
	TypeString ValueType = "string"
	// TypeInt is a 64-bit integer setting.
	TypeInt ValueType = "int"
	// TypeFloat is a 64-bit floating point setting.
	TypeFloat ValueType = "float"
	// TypeJSON is an arbitrary JSON document.
	TypeJSON ValueType = "json"
)

// ParseValueType converts a stored type tag into a ValueType.
func ParseValueType(s string) (ValueType, error) {
	switch t := ValueType(s); t {
	case TypeBool, TypeString, TypeInt, TypeFloat, TypeJSON:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownValueType, s)
	}
}

// Value is a type-checked setting value. Exactly one payload field is meaningful,
// selected by the type tag. Values are built with Coerce, Decode or the typed constructors
// and are immutable afterwards.
type Value struct {
	typ ValueType
	b   bool
	i   int64
	f   float64
	s   string
	raw json.RawMessage
}

// BoolValue returns a bool typed value.
func BoolValue(b bool) Value { return Value{typ: TypeBool, b: b} }

// StringValue returns a string typed value.
func StringValue(s string) Value { return Value{typ: TypeString, s: s} }

// IntValue returns an int typed value.
func IntValue(i int64) Value { return Value{typ: TypeInt, i: i} }

// FloatValue returns a float typed value.
func FloatValue(f float64) Value { return Value{typ: TypeFloat, f: f} }

// JSONValue returns a json typed value. The document must be valid JSON.
func JSONValue(doc string) (Value, error) {
	return Coerce(TypeJSON, doc)
}

// Type returns the type tag of the value.
func (v Value) Type() ValueType { return v.typ }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Int returns the integer payload.
func (v Value) Int() int64 { return v.i }

// Float returns the floating point payload.
func (v Value) Float() float64 { return v.f }

// Str returns the string payload.
func (v Value) Str() string { return v.s }

// JSON returns the raw JSON payload of a json typed value.
func (v Value) JSON() json.RawMessage { return v.raw }

// Interface returns the payload as a plain Go value, suitable for responses.
func (v Value) Interface() any {
	switch v.typ {
	case TypeBool:
		return v.b
	case TypeString:
		return v.s
	case TypeInt:
		return v.i
	case TypeFloat:
		return v.f
	case TypeJSON:
		return v.raw
	default:
		return nil
	}
}

// Equal reports whether both values carry the same type and payload.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}

	switch v.typ {
	case TypeBool:
		return v.b == o.b
	case TypeString:
		return v.s == o.s
	case TypeInt:
		return v.i == o.i
	case TypeFloat:
		return v.f == o.f
	case TypeJSON:
		return bytes.Equal(v.raw, o.raw)
	default:
		return true
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeBool:
		return strconv.AppendBool(nil, v.b), nil
	case TypeInt:
		return strconv.AppendInt(nil, v.i, 10), nil
	case TypeFloat:
		return json.Marshal(v.f)
	case TypeString:
		return json.Marshal(v.s)
	case TypeJSON:
		return v.raw, nil
	default:
		return []byte("null"), nil
	}
}

// Encode returns the canonical storage text of the value.
func (v Value) Encode() string {
	out, err := v.MarshalJSON()
	if err != nil {
		return ""
	}

	return string(out)
}

// Decode parses stored text written by Encode back into a Value of the given type.
func Decode(t ValueType, text string) (Value, error) {
	if t == TypeJSON {
		return Coerce(TypeJSON, json.RawMessage(text))
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var in any
	if err := dec.Decode(&in); err != nil {
		return Value{}, fmt.Errorf("%w: cannot decode %q as %s", ErrTypeMismatch, text, t)
	}

	return Coerce(t, in)
}

// Coerce checks in against t and returns the typed value. Input usually comes from a
// decoded JSON request body, so numbers may arrive as float64 or json.Number.
func Coerce(t ValueType, in any) (Value, error) {
	switch t {
	case TypeBool:
		if b, ok := in.(bool); ok {
			return BoolValue(b), nil
		}
	case TypeString:
		if s, ok := in.(string); ok {
			return StringValue(s), nil
		}
	case TypeInt:
		if i, ok := toInt64(in); ok {
			return IntValue(i), nil
		}
	case TypeFloat:
		if f, ok := toFloat64(in); ok {
			return FloatValue(f), nil
		}
	case TypeJSON:
		return coerceJSON(in)
	default:
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownValueType, t)
	}

	return Value{}, fmt.Errorf("%w: expected %s, got %T", ErrTypeMismatch, t, in)
}

func coerceJSON(in any) (Value, error) {
	var doc []byte

	switch x := in.(type) {
	case string:
		doc = []byte(x)
	case json.RawMessage:
		doc = x
	case []byte:
		doc = x
	default:
		out, err := json.Marshal(in)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
		}

		doc = out
	}

	if !gjson.ValidBytes(doc) {
		return Value{}, fmt.Errorf("%w: expected json, got invalid document", ErrTypeMismatch)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, doc); err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}

	return Value{typ: TypeJSON, raw: json.RawMessage(buf.Bytes())}, nil
}

func toInt64(in any) (int64, bool) {
	switch x := in.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, false
		}

		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}

		return int64(x), true
	case float64:
		return floatToInt64(x)
	case float32:
		return floatToInt64(float64(x))
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, true
		}

		if f, err := x.Float64(); err == nil {
			return floatToInt64(f)
		}
	}

	return 0, false
}

// floatToInt64 accepts only integral values inside the int64 range.
func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}

	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}

	return int64(f), true
}

func toFloat64(in any) (float64, bool) {
	var f float64

	switch x := in.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case json.Number:
		v, err := x.Float64()
		if err != nil {
			return 0, false
		}

		f = v
	default:
		i, ok := toInt64(in)
		if !ok {
			return 0, false
		}

		f = float64(i)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}
