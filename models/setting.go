package models

import "time"

// ValueType is the discriminator of a setting's polymorphic value
type ValueType string

const (
	ValueBoolean    ValueType = "boolean"
	ValueNumber     ValueType = "number"
	ValueString     ValueType = "string"
	ValueEnum       ValueType = "enum"
	ValueJSON       ValueType = "json"
	ValueStringList ValueType = "string_list"
	ValueNumberList ValueType = "number_list"
)

// Constraints are the per-setting rules applied after the shape check.
// Nil pointers mean "no bound".
type Constraints struct {
	Required  bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength *int     `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Regex     string   `json:"regex,omitempty" yaml:"regex,omitempty"`
}

// Setting is a configuration value under administration
type Setting struct {
	Key           string       `json:"key" yaml:"key"`
	Category      string       `json:"category" yaml:"category"`
	Description   string       `json:"description,omitempty" yaml:"description,omitempty"`
	ValueType     ValueType    `json:"value_type" yaml:"value_type"`
	Value         any          `json:"value" yaml:"value"`
	AllowedValues []any        `json:"allowed_values,omitempty" yaml:"allowed_values,omitempty"`
	Constraints   *Constraints `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Editable      bool         `json:"editable" yaml:"editable"`
	Sensitive     bool         `json:"sensitive" yaml:"sensitive"`
	Version       int64        `json:"version" yaml:"-"`
	LastUpdatedBy string       `json:"last_updated_by,omitempty" yaml:"-"`
	LastUpdatedAt time.Time    `json:"last_updated_at" yaml:"-"`
}

// Ref returns the resource address of the setting
func (s *Setting) Ref() ResourceRef {
	return ResourceRef{Kind: KindSetting, Key: s.Key}
}

// UpdateValueRequest is an administrator's intent to change a setting value
type UpdateValueRequest struct {
	Value           any    `json:"value"`
	Reason          string `json:"reason"`
	ExpectedVersion *int64 `json:"expected_version,omitempty" validate:"omitempty,min=1"`
}

// RollbackRequest targets a history entry whose after-value should be restored
type RollbackRequest struct {
	HistoryEntryID  string `json:"history_entry_id" validate:"required"`
	Reason          string `json:"reason"`
	ExpectedVersion *int64 `json:"expected_version,omitempty" validate:"omitempty,min=1"`
}

// Stamp records the version and authorship of the stored state
func (s *Setting) Stamp(version int64, by string, at time.Time) {
	s.Version = version
	s.LastUpdatedBy = by
	s.LastUpdatedAt = at
}
