package convoker

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
)

type kindTag int

const (
	kindBoolean kindTag = iota
	kindString
	kindNumber
	kindBigInt
	kindValidated
)

// Validator converts a raw token into a value, or reports why it can't.
// A non-empty issues slice means the value was rejected.
type Validator interface {
	Validate(ctx context.Context, raw string) (value any, issues []string)
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(ctx context.Context, raw string) (any, []string)

func (f ValidatorFunc) Validate(ctx context.Context, raw string) (any, []string) {
	return f(ctx, raw)
}

// Kind decides how raw strings are converted into typed values.
type Kind struct {
	tag       kindTag
	validator Validator
}

var (
	Boolean = Kind{tag: kindBoolean} // bool, "true" only
	String  = Kind{tag: kindString}  // string
	Number  = Kind{tag: kindNumber}  // float64
	BigInt  = Kind{tag: kindBigInt}  // *big.Int
)

// Validated returns a Kind that delegates conversion to v. A nil v panics
// with a *ProgrammingError.
func Validated(v Validator) Kind {
	if v == nil {
		panic(NewProgrammingError("validator must not be nil"))
	}
	return Kind{tag: kindValidated, validator: v}
}

func (k Kind) IsBoolean() bool {
	return k.tag == kindBoolean
}

func (k Kind) String() string {
	switch k.tag {
	case kindBoolean:
		return "bool"
	case kindString:
		return "str"
	case kindNumber:
		return "num"
	case kindBigInt:
		return "bigint"
	case kindValidated:
		return "value"
	}
	return "unknown"
}

// convert turns one raw token into a value for the field named key.
func (k Kind) convert(ctx context.Context, key string, raw string) (any, error) {
	switch k.tag {
	case kindBoolean:
		return raw == "true", nil
	case kindString:
		return raw, nil
	case kindNumber:
		val, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(val) {
			return nil, &ConversionError{Key: key, Value: raw, Kind: k}
		}
		return val, nil
	case kindBigInt:
		val, ok := parseBigInt(raw)
		if !ok {
			return nil, &ConversionError{Key: key, Value: raw, Kind: k}
		}
		return val, nil
	case kindValidated:
		val, issues := k.validate(ctx, raw)
		if len(issues) > 0 {
			return nil, &InputValidationError{Key: key, Value: raw, Issues: issues}
		}
		return val, nil
	}
	return nil, NewProgrammingError("unsupported kind for: " + key)
}

// validate runs the validator, turning a panic into an issue.
func (k Kind) validate(ctx context.Context, raw string) (val any, issues []string) {
	defer func() {
		if r := recover(); r != nil {
			val, issues = nil, []string{fmt.Sprintf("validator panicked: %v", r)}
		}
	}()
	return k.validator.Validate(ctx, raw)
}

// convertList converts every element in order. The first failure wins.
func (k Kind) convertList(ctx context.Context, key string, raws []string) (any, error) {
	values := make([]any, 0, len(raws))
	for _, raw := range raws {
		val, err := k.convert(ctx, key, raw)
		if err != nil {
			return nil, err
		}
		values = append(values, val)
	}
	return k.typedList(values), nil
}

// typedList narrows a list of converted values to its concrete slice type.
func (k Kind) typedList(values []any) any {
	switch k.tag {
	case kindBoolean:
		out := make([]bool, len(values))
		for i, v := range values {
			out[i] = v.(bool)
		}
		return out
	case kindString:
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = v.(string)
		}
		return out
	case kindNumber:
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = v.(float64)
		}
		return out
	case kindBigInt:
		out := make([]*big.Int, len(values))
		for i, v := range values {
			out[i] = v.(*big.Int)
		}
		return out
	}
	return values
}

func parseBigInt(raw string) (*big.Int, bool) {
	s := strings.TrimSpace(raw)
	base := 10
	unsigned := strings.TrimLeft(s, "+-")
	if len(unsigned) > 2 && unsigned[0] == '0' {
		switch unsigned[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			base = 0
		}
	}
	return new(big.Int).SetString(s, base)
}

// coerceDefault brings a declared default to the type conversion would have
// produced, so an int default on a number field reads back as float64.
// Validated kinds take their default as-is.
func (k Kind) coerceDefault(key string, def any, list bool) (any, error) {
	if k.tag == kindValidated {
		return def, nil
	}
	if !list {
		v, ok := k.coerceScalar(def)
		if !ok {
			return nil, NewProgrammingError(fmt.Sprintf("default for %s is %T, want %s", key, def, k))
		}
		return v, nil
	}

	rv := reflect.ValueOf(def)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, NewProgrammingError(fmt.Sprintf("default for %s is %T, want %s list", key, def, k))
	}
	values := make([]any, rv.Len())
	for i := range values {
		v, ok := k.coerceScalar(rv.Index(i).Interface())
		if !ok {
			return nil, NewProgrammingError(fmt.Sprintf("default for %s is %T, want %s list", key, def, k))
		}
		values[i] = v
	}
	return k.typedList(values), nil
}

func (k Kind) coerceScalar(v any) (any, bool) {
	switch k.tag {
	case kindBoolean:
		b, ok := v.(bool)
		return b, ok
	case kindString:
		s, ok := v.(string)
		return s, ok
	case kindNumber:
		return toFloat64(v)
	case kindBigInt:
		return toBigInt(v)
	}
	return nil, false
}

func toFloat64(v any) (any, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int, int8, int16, int32, int64:
		return float64(reflect.ValueOf(n).Int()), true
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(n).Uint()), true
	}
	return nil, false
}

func toBigInt(v any) (any, bool) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, false
		}
		return n, true
	case int, int8, int16, int32, int64:
		return big.NewInt(reflect.ValueOf(n).Int()), true
	case uint, uint8, uint16, uint32, uint64:
		return new(big.Int).SetUint64(reflect.ValueOf(n).Uint()), true
	}
	return nil, false
}
