// Package encoder turns lists of named features into sparse vectors.
package encoder

import (
	"fmt"
	"reflect"
)

// Feature is a named feature value. Supported values:
//   - nil: dropped
//   - string: indicator "name=value" with 1.0
//   - []string: one indicator "name:item" with 1.0 per item
//   - bool: "name" with 1.0 or 0.0
//   - any integer or float kind: "name" with the value
//
// Any other value becomes an indicator of its fmt.Sprint form.
type Feature struct {
	Name  string
	Value any
}

// NameNumber is a feature expanded to a single name and numeric value.
type NameNumber struct {
	Name   string
	Number float64
}

// Expand converts one feature into zero or more name/number pairs.
func Expand(f Feature) []NameNumber {
	switch v := f.Value.(type) {
	case nil:
		return nil
	case string:
		return []NameNumber{{Name: fmt.Sprintf("%s=%s", f.Name, v), Number: 1.0}}
	case []string:
		out := make([]NameNumber, 0, len(v))
		for _, item := range v {
			out = append(out, NameNumber{Name: fmt.Sprintf("%s:%s", f.Name, item), Number: 1.0})
		}
		return out
	case bool:
		if v {
			return []NameNumber{{Name: f.Name, Number: 1.0}}
		}
		return []NameNumber{{Name: f.Name, Number: 0.0}}
	case int:
		return []NameNumber{{Name: f.Name, Number: float64(v)}}
	case int32:
		return []NameNumber{{Name: f.Name, Number: float64(v)}}
	case int64:
		return []NameNumber{{Name: f.Name, Number: float64(v)}}
	case float32:
		return []NameNumber{{Name: f.Name, Number: float64(v)}}
	case float64:
		return []NameNumber{{Name: f.Name, Number: v}}
	default:
		if n, ok := number(reflect.ValueOf(v)); ok {
			return []NameNumber{{Name: f.Name, Number: n}}
		}
		return []NameNumber{{Name: fmt.Sprintf("%s=%v", f.Name, v), Number: 1.0}}
	}
}

// number reports the value of any integer or float kind, including named
// numeric types.
func number(rv reflect.Value) (float64, bool) {
	switch {
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	case rv.CanFloat():
		return rv.Float(), true
	}
	return 0, false
}

// ExpandAll expands every feature in order.
func ExpandAll(features []Feature) []NameNumber {
	var out []NameNumber
	for _, f := range features {
		out = append(out, Expand(f)...)
	}
	return out
}
