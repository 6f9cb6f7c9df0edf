package ext

import (
	"fmt"
	"iter"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Value is a typed result passed between extension calls. It is one of
// [Text], [Symbol], [Number], [Vector], [Bool] or [Void].
type Value interface {
	// Kind returns the name of the variant.
	Kind() string

	value()
}

// Text is literal text.
type Text string

// Symbol is the name of a variable, read when the value is cast.
type Symbol string

// Number is a floating-point number.
type Number float64

// Vector is an ordered list of values.
type Vector []Value

// Bool is a boolean.
type Bool bool

// Void is the absence of a value.
type Void struct{}

func (Text) Kind() string   { return "text" }
func (Symbol) Kind() string { return "symbol" }
func (Number) Kind() string { return "number" }
func (Vector) Kind() string { return "vector" }
func (Bool) Kind() string   { return "bool" }
func (Void) Kind() string   { return "void" }

func (Text) value()   {}
func (Symbol) value() {}
func (Number) value() {}
func (Vector) value() {}
func (Bool) value()   {}
func (Void) value()   {}

// String formats n in the shortest decimal form that parses back to n.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Scope gives extension functions read access to the variables of a render.
type Scope interface {
	Lookup(key string) (string, bool)
	Vars() iter.Seq2[string, string]
}

// Cast converts v to the string bound by an execute statement.
//
// Symbols are looked up in scope, vectors join the casts of their elements
// with a newline, true is "true", and false, void and nil are empty.
func Cast(v Value, scope Scope) (string, error) {
	switch v := v.(type) {
	case nil, Void:
		return "", nil
	case Text:
		return string(v), nil
	case Symbol:
		s, ok := scope.Lookup(string(v))
		if !ok {
			return "", ErrArgument.With(
				slog.String("reason", "undefined variable"),
				slog.String("name", string(v)),
			)
		}

		return s, nil
	case Number:
		return v.String(), nil
	case Bool:
		if v {
			return "true", nil
		}

		return "", nil
	case Vector:
		items := make([]string, len(v))
		for i, e := range v {
			s, err := Cast(e, scope)
			if err != nil {
				return "", err
			}

			items[i] = s
		}

		return strings.Join(items, "\n"), nil
	default:
		return "", ErrArgument.With(slog.String("kind", v.Kind()))
	}
}

// Concat converts v to text without consulting any variables: symbols
// contribute their names and vector elements are concatenated.
func Concat(v Value) string {
	switch v := v.(type) {
	case Text:
		return string(v)
	case Symbol:
		return string(v)
	case Number:
		return v.String()
	case Bool:
		if v {
			return "true"
		}

		return ""
	case Vector:
		var sb strings.Builder
		for _, e := range v {
			sb.WriteString(Concat(e))
		}

		return sb.String()
	default:
		return ""
	}
}

// FromAny converts a Go value decoded by an evaluator or parser to a
// [Value]. Maps and other composite values become their YAML encoding.
func FromAny(a any) Value {
	switch a := a.(type) {
	case nil:
		return Void{}
	case Value:
		return a
	case string:
		return Text(a)
	case bool:
		return Bool(a)
	case []any:
		vec := make(Vector, len(a))
		for i, e := range a {
			vec[i] = FromAny(e)
		}

		return vec
	}

	rv := reflect.ValueOf(a)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return Number(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float())
	case reflect.Slice, reflect.Array:
		vec := make(Vector, rv.Len())
		for i := range vec {
			vec[i] = FromAny(rv.Index(i).Interface())
		}

		return vec
	case reflect.Map, reflect.Struct:
		b, err := yaml.Marshal(a)
		if err == nil {
			return Text(strings.TrimSuffix(string(b), "\n"))
		}
	}

	return Text(fmt.Sprint(a))
}
