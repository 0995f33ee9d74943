package models

// ResourceKind tags the kind of record under administration
type ResourceKind string

const (
	KindSetting ResourceKind = "setting"
	KindReport  ResourceKind = "report"
	KindReview  ResourceKind = "review"
	KindJob     ResourceKind = "job"
)

// ResourceKinds lists every administered kind
var ResourceKinds = []ResourceKind{KindSetting, KindReport, KindReview, KindJob}

// IsValid reports whether k is a known resource kind
func (k ResourceKind) IsValid() bool {
	for _, known := range ResourceKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ResourceRef addresses one record
type ResourceRef struct {
	Kind ResourceKind `json:"kind"`
	Key  string       `json:"key"`
}

func (r ResourceRef) String() string {
	return string(r.Kind) + "/" + r.Key
}

// SortField names a sortable list column
type SortField string

const (
	SortByKey       SortField = "key"
	SortByUpdatedAt SortField = "updated_at"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ListFilter narrows a record listing
type ListFilter struct {
	Category   string    `json:"category,omitempty"`
	Status     string    `json:"status,omitempty"`
	KeyPrefix  string    `json:"key_prefix,omitempty"`
	SortBy     SortField `json:"sort_by,omitempty"`
	Descending bool      `json:"descending,omitempty"`
	Limit      int       `json:"limit,omitempty"`
}

// Normalize fills defaults and clamps the limit
func (f ListFilter) Normalize() ListFilter {
	if f.SortBy != SortByUpdatedAt {
		f.SortBy = SortByKey
	}
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	return f
}
