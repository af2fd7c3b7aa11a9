package domain

import (
	"strconv"
	"strings"

	apperrors "github.com/allisson/planexec/internal/errors"
)

// ExpectedType names the structural type a data binding requires of the
// value extracted from a source step's result.
type ExpectedType string

const (
	StringType  ExpectedType = "string"
	NumberType  ExpectedType = "number"
	BooleanType ExpectedType = "boolean"
	ObjectType  ExpectedType = "object"
	ArrayType   ExpectedType = "array"
	AnyType     ExpectedType = "any"
)

// KnownExpectedTypes lists every expected type a data binding may declare.
var KnownExpectedTypes = []ExpectedType{
	StringType,
	NumberType,
	BooleanType,
	ObjectType,
	ArrayType,
	AnyType,
}

// IsKnownExpectedType reports whether value is one of the enumerated
// expected types.
func IsKnownExpectedType(value string) bool {
	for _, expectedType := range KnownExpectedTypes {
		if string(expectedType) == value {
			return true
		}
	}
	return false
}

// DeepCopyValue copies a structural value so no mutation of the copy can
// reach the original. Structural values are null, booleans, strings, numbers,
// string-keyed maps, and slices of structural values; anything else returns
// ErrNonStructuralValue.
func DeepCopyValue(value any) (any, error) {
	switch typed := value.(type) {
	case nil, bool, string, int, int32, int64, float32, float64:
		return typed, nil
	case map[string]any:
		copied := make(map[string]any, len(typed))
		for key, element := range typed {
			elementCopy, err := DeepCopyValue(element)
			if err != nil {
				return nil, apperrors.Wrapf(err, "key %q", key)
			}
			copied[key] = elementCopy
		}
		return copied, nil
	case []any:
		copied := make([]any, len(typed))
		for i, element := range typed {
			elementCopy, err := DeepCopyValue(element)
			if err != nil {
				return nil, apperrors.Wrapf(err, "index %d", i)
			}
			copied[i] = elementCopy
		}
		return copied, nil
	default:
		return nil, apperrors.Wrapf(ErrNonStructuralValue, "unsupported type %T", value)
	}
}

// DeepCopyParams copies a parameter mapping via DeepCopyValue.
func DeepCopyParams(params map[string]any) (map[string]any, error) {
	copied, err := DeepCopyValue(params)
	if err != nil {
		return nil, err
	}
	if copied == nil {
		return map[string]any{}, nil
	}
	return copied.(map[string]any), nil
}

// LookupPath extracts the value at a dotted path from a structural result.
// Each path segment descends into a map by key; a numeric segment indexes
// into a slice. A missing key, out-of-range index, or descent into a
// non-container returns ErrBindingResolution.
func LookupPath(result map[string]any, path string) (any, error) {
	if path == "" {
		return nil, apperrors.Wrap(ErrBindingResolution, "empty path")
	}

	var current any = result
	for _, segment := range strings.Split(path, ".") {
		switch container := current.(type) {
		case map[string]any:
			value, exists := container[segment]
			if !exists {
				return nil, apperrors.Wrapf(ErrBindingResolution, "path %q not found in result", path)
			}
			current = value
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil {
				return nil, apperrors.Wrapf(ErrBindingResolution, "segment %q is not an array index", segment)
			}
			if index < 0 || index >= len(container) {
				return nil, apperrors.Wrapf(ErrBindingResolution, "index %d out of range in path %q", index, path)
			}
			current = container[index]
		default:
			return nil, apperrors.Wrapf(ErrBindingResolution, "path %q descends into non-container value", path)
		}
	}

	return current, nil
}

// CheckExpectedType verifies that value conforms to the declared expected
// type. A mismatch returns ErrBindingResolution.
func CheckExpectedType(value any, expectedType ExpectedType) error {
	matches := false

	switch expectedType {
	case AnyType:
		matches = true
	case StringType:
		_, matches = value.(string)
	case BooleanType:
		_, matches = value.(bool)
	case NumberType:
		switch value.(type) {
		case int, int32, int64, float32, float64:
			matches = true
		}
	case ObjectType:
		_, matches = value.(map[string]any)
	case ArrayType:
		_, matches = value.([]any)
	default:
		return apperrors.Wrapf(ErrBindingResolution, "unknown expected type %q", expectedType)
	}

	if !matches {
		return apperrors.Wrapf(ErrBindingResolution, "value of type %T does not match expected type %q", value, expectedType)
	}
	return nil
}
