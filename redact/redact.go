// Package redact replaces sensitive values before they leave the trust
// boundary: history snapshots, audit metadata and API responses.
package redact

import (
	"strings"

	"github.com/blogem/admin-console/models"
)

// Marker is substituted for every redacted value
const Marker = "[REDACTED]"

// secretKeyHints are lower-case substrings of key names that suggest the
// value is a credential
var secretKeyHints = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"api_key",
	"apikey",
	"api-key",
	"credential",
	"private_key",
	"privatekey",
	"authorization",
	"access_key",
	"accesskey",
	"session",
}

// Value returns Marker when sensitive is set and v otherwise
func Value(sensitive bool, v any) any {
	if sensitive {
		return Marker
	}
	return v
}

// IsMarker reports whether v is exactly the redaction marker
func IsMarker(v any) bool {
	s, ok := v.(string)
	return ok && s == Marker
}

// ContainsMarker reports whether the marker appears anywhere inside v
func ContainsMarker(v any) bool {
	switch t := v.(type) {
	case string:
		return t == Marker
	case map[string]any:
		for _, item := range t {
			if ContainsMarker(item) {
				return true
			}
		}
	case models.Snapshot:
		return ContainsMarker(map[string]any(t))
	case []any:
		for _, item := range t {
			if ContainsMarker(item) {
				return true
			}
		}
	}
	return false
}

// IsSecretKey reports whether a key name looks like it holds a credential
func IsSecretKey(key string) bool {
	k := strings.ToLower(key)
	for _, hint := range secretKeyHints {
		if strings.Contains(k, hint) {
			return true
		}
	}
	return false
}

// Payload returns a deep copy of a free-form payload with every value whose
// key looks like a credential replaced by Marker. The input is not modified.
func Payload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if IsSecretKey(k) {
			out[k] = Marker
			continue
		}
		out[k] = scrub(v)
	}
	return out
}

// Snapshot scrubs a history snapshot the same way as Payload
func Snapshot(s models.Snapshot) models.Snapshot {
	if s == nil {
		return nil
	}
	return models.Snapshot(Payload(map[string]any(s)))
}

func scrub(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Payload(t)
	case models.Snapshot:
		return Snapshot(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = scrub(item)
		}
		return out
	}
	return v
}
