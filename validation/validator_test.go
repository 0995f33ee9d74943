package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogem/admin-console/apperr"
	"github.com/blogem/admin-console/models"
)

func ptrF(f float64) *float64 { return &f }
func ptrI(i int) *int         { return &i }

func TestShapeRules(t *testing.T) {
	tests := []struct {
		name      string
		valueType models.ValueType
		value     any
		wantCode  apperr.Code
	}{
		{"boolean ok", models.ValueBoolean, true, ""},
		{"boolean rejects string", models.ValueBoolean, "true", apperr.CodeValidation},
		{"boolean rejects null", models.ValueBoolean, nil, apperr.CodeValidation},
		{"number ok", models.ValueNumber, 3.5, ""},
		{"number accepts int", models.ValueNumber, 7, ""},
		{"number rejects NaN", models.ValueNumber, math.NaN(), apperr.CodeValidation},
		{"number rejects Inf", models.ValueNumber, math.Inf(1), apperr.CodeValidation},
		{"number rejects string", models.ValueNumber, "3", apperr.CodeValidation},
		{"string ok", models.ValueString, "hello", ""},
		{"string rejects number", models.ValueString, 1, apperr.CodeValidation},
		{"enum string ok", models.ValueEnum, "gpt", ""},
		{"enum number ok", models.ValueEnum, 2, ""},
		{"enum rejects bool", models.ValueEnum, false, apperr.CodeValidation},
		{"json ok", models.ValueJSON, map[string]any{"a": 1}, ""},
		{"json rejects array", models.ValueJSON, []any{1}, apperr.CodeValidation},
		{"json rejects null", models.ValueJSON, nil, apperr.CodeValidation},
		{"string list ok", models.ValueStringList, []string{"a", "b"}, ""},
		{"string list empty ok", models.ValueStringList, []any{}, ""},
		{"string list rejects mixed", models.ValueStringList, []any{"a", 1}, apperr.CodeValidation},
		{"number list ok", models.ValueNumberList, []any{1, 2.5}, ""},
		{"number list rejects string item", models.ValueNumberList, []any{1, "2"}, apperr.CodeValidation},
		{"number list rejects scalar", models.ValueNumberList, 1, apperr.CodeValidation},
		{"unsupported go type", models.ValueString, struct{}{}, apperr.CodeValidation},
		{"unknown type tag", "color", "red", apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.valueType, tt.value, nil, nil)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.CodeOf(err))
		})
	}
}

func TestEnumMembership(t *testing.T) {
	allowed := []any{"fast", "balanced", 3}

	assert.NoError(t, Validate(models.ValueEnum, "fast", allowed, nil))
	assert.NoError(t, Validate(models.ValueEnum, 3.0, allowed, nil))

	err := Validate(models.ValueEnum, "slow", allowed, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	assert.Contains(t, err.Error(), "allowed values")

	// Empty allowed list means any string or number
	assert.NoError(t, Validate(models.ValueEnum, "anything", nil, nil))
}

func TestConstraints(t *testing.T) {
	tests := []struct {
		name        string
		valueType   models.ValueType
		value       any
		constraints models.Constraints
		wantMsg     string
	}{
		{"required rejects empty string", models.ValueString, "", models.Constraints{Required: true}, "required"},
		{"required rejects empty list", models.ValueStringList, []any{}, models.Constraints{Required: true}, "required"},
		{"min", models.ValueNumber, 1, models.Constraints{Min: ptrF(5)}, "at least 5"},
		{"max", models.ValueNumber, 11, models.Constraints{Max: ptrF(10)}, "at most 10"},
		{"in range", models.ValueNumber, 7, models.Constraints{Min: ptrF(5), Max: ptrF(10)}, ""},
		{"min length", models.ValueString, "ab", models.Constraints{MinLength: ptrI(3)}, "at least 3 characters"},
		{"max length counts runes", models.ValueString, "ééé", models.Constraints{MaxLength: ptrI(3)}, ""},
		{"max length", models.ValueString, "abcd", models.Constraints{MaxLength: ptrI(3)}, "at most 3 characters"},
		{"regex mismatch", models.ValueString, "abc", models.Constraints{Regex: `^[0-9]+$`}, "pattern"},
		{"regex match", models.ValueString, "123", models.Constraints{Regex: `^[0-9]+$`}, ""},
		{"list max length", models.ValueStringList, []any{"a", "b", "c"}, models.Constraints{MaxLength: ptrI(2)}, "at most 2 items"},
		{"list min length", models.ValueNumberList, []any{1}, models.Constraints{MinLength: ptrI(2)}, "at least 2 items"},
		{"number list item range", models.ValueNumberList, []any{1, 50}, models.Constraints{Max: ptrF(10)}, "item 1 must be at most 10"},
		{"string list item pattern", models.ValueStringList, []any{"ok", "NO"}, models.Constraints{Regex: `^[a-z]+$`}, "item 1 does not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.constraints
			err := Validate(tt.valueType, tt.value, nil, &c)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestInvalidRegexIsInternal(t *testing.T) {
	err := Validate(models.ValueString, "abc", nil, &models.Constraints{Regex: "(["})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
}

func TestFirstFailureWins(t *testing.T) {
	// Shape failure is reported even though the constraint would also fail
	err := Validate(models.ValueNumber, "x", nil, &models.Constraints{Regex: "(["})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	assert.Contains(t, err.Error(), "must be a number")

	// Enum membership is checked before constraints
	err = Validate(models.ValueEnum, "zzz", []any{"a"}, &models.Constraints{MaxLength: ptrI(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allowed values")
}

func TestValidateSettingNormalizes(t *testing.T) {
	s := &models.Setting{Key: "ranking.weights", ValueType: models.ValueNumberList}

	v, err := ValidateSetting(s, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0}, v)
}

func TestIsKnownType(t *testing.T) {
	assert.True(t, IsKnownType(models.ValueJSON))
	assert.False(t, IsKnownType("blob"))
}
