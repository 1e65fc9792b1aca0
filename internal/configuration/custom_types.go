package configuration

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
)

// Optional is a generic container for optional configuration values.
type Optional[T any] struct {
	// Value holds the actual value as unmarshalled.
	Value T
	// Present indicates if the value was present in the configuration.
	Present bool
	// RuntimeOverride indicates if the value was overridden at runtime.
	RuntimeOverride bool
}

// Get returns the value if present or overridden, otherwise it returns the zero value.
func (o *Optional[T]) Get() T {
	return o.Value
}

// SetOverride sets the value and marks it as overridden at runtime.
func (o *Optional[T]) SetOverride(value T) {
	o.RuntimeOverride = true
	o.Value = value
}

// IsSet reports whether the value was given in the configuration or
// overridden at runtime.
func (o *Optional[T]) IsSet() bool {
	return o.Present || o.RuntimeOverride
}

// optionalFloatHookFunc returns a mapstructure decode hook that decodes a
// bare numeric (or numeric string) configuration value into an
// Optional[float64] with Present set. Absent values keep the zero
// Optional, which keeps "not configured" distinguishable from "configured
// as zero".
func optionalFloatHookFunc() mapstructure.DecodeHookFuncType {
	optionalFloatType := reflect.TypeOf(Optional[float64]{})

	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != optionalFloatType {
			return data, nil
		}

		value, err := anyToFloat(data)
		if err != nil {
			return nil, err
		}
		return Optional[float64]{Value: value, Present: true}, nil
	}
}

// anyToFloat converts numeric and string values to float64.
func anyToFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case string:
		n, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as float: %w", val, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}
