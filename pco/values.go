package pco

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// the as* helpers accept the types a property value arrives as: Go values
// from code, float64 and json.Number from decoded JSON, strings from YAML.

func asInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int8:
		return int(t), nil
	case int16:
		return int(t), nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case uint:
		return int(t), nil
	case uint8:
		return int(t), nil
	case uint16:
		return int(t), nil
	case uint32:
		return int(t), nil
	case uint64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, errors.Wrapf(ErrWrongType, "%v is not an integer", t)
		}
		return int(t), nil
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, errors.Wrapf(ErrWrongType, "%v is not an integer", t)
		}
		return int(i), nil
	}
	return 0, errors.Wrapf(ErrWrongType, "expected an integer, got %T", v)
}

func asFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, errors.Wrapf(ErrWrongType, "%v is not a number", t)
		}
		return f, nil
	}
	i, err := asInt(v)
	if err != nil {
		return 0, errors.Wrapf(ErrWrongType, "expected a number, got %T", v)
	}
	return float64(i), nil
}

func asBool(v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, errors.Wrapf(ErrWrongType, "expected a bool, got %T", v)
	}
	return b, nil
}

func asString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.Wrapf(ErrWrongType, "expected a string, got %T", v)
	}
	return s, nil
}

// boolU16 converts to the SDK's on/off words
func boolU16(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
