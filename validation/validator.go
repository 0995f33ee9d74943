// Package validation checks candidate setting values against their declared
// value type, enum membership and constraints.
//
// Checks run in a fixed order (shape, enum membership, constraints) and stop
// at the first failure, so callers always surface exactly one message.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"unicode/utf8"

	"github.com/blogem/admin-console/apperr"
	"github.com/blogem/admin-console/models"
)

const field = "value"

// shapeRule checks that a normalized value has the form its type declares
type shapeRule func(v any) error

var shapeRules = map[models.ValueType]shapeRule{
	models.ValueBoolean:    checkBoolean,
	models.ValueNumber:     checkNumber,
	models.ValueString:     checkString,
	models.ValueEnum:       checkEnum,
	models.ValueJSON:       checkObject,
	models.ValueStringList: checkStringList,
	models.ValueNumberList: checkNumberList,
}

// IsKnownType reports whether t is a value type the validator can check
func IsKnownType(t models.ValueType) bool {
	_, ok := shapeRules[t]
	return ok
}

// Validate checks value against valueType, allowedValues and constraints.
// A nil error means the value may be stored.
func Validate(valueType models.ValueType, value any, allowedValues []any, constraints *models.Constraints) error {
	_, err := Normalize(valueType, value, allowedValues, constraints)
	return err
}

// Normalize validates value and returns it in canonical JSON form
func Normalize(valueType models.ValueType, value any, allowedValues []any, constraints *models.Constraints) (any, error) {
	rule, ok := shapeRules[valueType]
	if !ok {
		return nil, apperr.Newf(apperr.CodeInternal, "unknown value type %q", valueType)
	}

	v, err := models.NormalizeValue(value)
	if err != nil {
		return nil, apperr.Field(apperr.CodeValidation, field, "value has an unsupported type")
	}

	if err := rule(v); err != nil {
		return nil, err
	}

	if valueType == models.ValueEnum && len(allowedValues) > 0 && !isMember(v, allowedValues) {
		return nil, apperr.Field(apperr.CodeValidation, field, "value is not one of the allowed values")
	}

	if constraints != nil {
		if err := checkConstraints(v, constraints); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// ValidateSetting validates a candidate value against a stored setting's
// declared type and rules
func ValidateSetting(s *models.Setting, value any) (any, error) {
	return Normalize(s.ValueType, value, s.AllowedValues, s.Constraints)
}

func invalid(format string, args ...any) error {
	return apperr.Field(apperr.CodeValidation, field, fmt.Sprintf(format, args...))
}

func checkBoolean(v any) error {
	if _, ok := v.(bool); !ok {
		return invalid("value must be a boolean")
	}
	return nil
}

func checkNumber(v any) error {
	f, ok := v.(float64)
	if !ok {
		return invalid("value must be a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return invalid("value must be a finite number")
	}
	return nil
}

func checkString(v any) error {
	if _, ok := v.(string); !ok {
		return invalid("value must be a string")
	}
	return nil
}

func checkEnum(v any) error {
	switch t := v.(type) {
	case string:
		return nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return invalid("value must be a finite number")
		}
		return nil
	}
	return invalid("value must be a string or a number")
}

func checkObject(v any) error {
	if _, ok := v.(map[string]any); !ok {
		return invalid("value must be an object")
	}
	return nil
}

func checkStringList(v any) error {
	list, ok := v.([]any)
	if !ok {
		return invalid("value must be a list of strings")
	}
	for i, item := range list {
		if _, ok := item.(string); !ok {
			return invalid("item %d must be a string", i)
		}
	}
	return nil
}

func checkNumberList(v any) error {
	list, ok := v.([]any)
	if !ok {
		return invalid("value must be a list of numbers")
	}
	for i, item := range list {
		f, ok := item.(float64)
		if !ok {
			return invalid("item %d must be a number", i)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return invalid("item %d must be a finite number", i)
		}
	}
	return nil
}

func isMember(v any, allowed []any) bool {
	for _, a := range allowed {
		if models.ValuesEqual(v, a) {
			return true
		}
	}
	return false
}

func checkConstraints(v any, c *models.Constraints) error {
	if c.Required && isEmpty(v) {
		return invalid("value is required")
	}

	switch t := v.(type) {
	case float64:
		return checkRange(t, c, "value")
	case string:
		if err := checkLength(utf8.RuneCountInString(t), c, "value", "characters"); err != nil {
			return err
		}
		return checkPattern(t, c, "value")
	case []any:
		if err := checkLength(len(t), c, "list", "items"); err != nil {
			return err
		}
		for i, item := range t {
			label := fmt.Sprintf("item %d", i)
			switch it := item.(type) {
			case float64:
				if err := checkRange(it, c, label); err != nil {
					return err
				}
			case string:
				if err := checkPattern(it, c, label); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	}
	return false
}

func checkRange(f float64, c *models.Constraints, label string) error {
	if c.Min != nil && f < *c.Min {
		return invalid("%s must be at least %v", label, *c.Min)
	}
	if c.Max != nil && f > *c.Max {
		return invalid("%s must be at most %v", label, *c.Max)
	}
	return nil
}

func checkLength(n int, c *models.Constraints, label, unit string) error {
	if c.MinLength != nil && n < *c.MinLength {
		return invalid("%s must have at least %d %s", label, *c.MinLength, unit)
	}
	if c.MaxLength != nil && n > *c.MaxLength {
		return invalid("%s must have at most %d %s", label, *c.MaxLength, unit)
	}
	return nil
}

// checkPattern treats an uncompilable regex as stored-data corruption
func checkPattern(s string, c *models.Constraints, label string) error {
	if c.Regex == "" {
		return nil
	}
	re, err := regexp.Compile(c.Regex)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "setting has an invalid regex constraint", err)
	}
	if !re.MatchString(s) {
		return invalid("%s does not match the required pattern", label)
	}
	return nil
}
