package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind identifies which scalar type a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a stored scalar: string, number, boolean or null. Numbers are kept
// as decimal.Decimal so they round-trip through the on-disk encoding without
// float64 precision loss. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  decimal.Decimal
	b    bool
}

func Null() Value {
	return Value{kind: KindNull}
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func (v Value) Kind() Kind { return v.kind }

// Equal reports whether two values hold the same scalar. Numbers compare by
// numeric value, so 1.0 equals 1.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num.Equal(other.num)
	case KindBool:
		return v.b == other.b
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num.String()
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	default:
		return "null"
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(v.num.String()), nil
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch t := raw.(type) {
	case nil:
		*v = Null()
	case string:
		*v = String(t)
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		*v = Number(d)
	case bool:
		*v = Bool(t)
	default:
		return fmt.Errorf("%w: got %T", ErrValueType, raw)
	}
	return nil
}

// GobEncode/GobDecode route through the JSON form so the gob codec can
// serialize snapshots without registering the scalar variants.
func (v Value) GobEncode() ([]byte, error) {
	return v.MarshalJSON()
}

func (v *Value) GobDecode(data []byte) error {
	return v.UnmarshalJSON(data)
}
