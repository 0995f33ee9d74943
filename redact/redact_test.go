package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blogem/admin-console/models"
)

func TestValue(t *testing.T) {
	assert.Equal(t, Marker, Value(true, "sk-live-123"))
	assert.Equal(t, "plain", Value(false, "plain"))
}

func TestPayloadScrubsSecretKeys(t *testing.T) {
	in := map[string]any{
		"prompt":   "summarize",
		"apiKey":   "sk-123",
		"Password": "hunter2",
		"provider": map[string]any{
			"name":          "openai",
			"access_token":  "abc",
			"Authorization": "Bearer x",
		},
		"steps": []any{
			map[string]any{"client_secret": "s", "n": 1.0},
			"literal",
		},
	}

	out := Payload(in)

	assert.Equal(t, "summarize", out["prompt"])
	assert.Equal(t, Marker, out["apiKey"])
	assert.Equal(t, Marker, out["Password"])
	provider := out["provider"].(map[string]any)
	assert.Equal(t, "openai", provider["name"])
	assert.Equal(t, Marker, provider["access_token"])
	assert.Equal(t, Marker, provider["Authorization"])
	steps := out["steps"].([]any)
	assert.Equal(t, Marker, steps[0].(map[string]any)["client_secret"])
	assert.Equal(t, 1.0, steps[0].(map[string]any)["n"])
	assert.Equal(t, "literal", steps[1])

	// Input untouched
	assert.Equal(t, "sk-123", in["apiKey"])
	assert.Equal(t, "abc", in["provider"].(map[string]any)["access_token"])
}

func TestPayloadNil(t *testing.T) {
	assert.Nil(t, Payload(nil))
	assert.Nil(t, Snapshot(nil))
}

func TestContainsMarker(t *testing.T) {
	assert.True(t, ContainsMarker(Marker))
	assert.True(t, ContainsMarker(map[string]any{"a": []any{"x", Marker}}))
	assert.True(t, ContainsMarker(models.Snapshot{"value": Marker}))
	assert.False(t, ContainsMarker(map[string]any{"a": "b"}))
	assert.False(t, ContainsMarker(3.0))
	assert.False(t, IsMarker(map[string]any{"a": Marker}))
}

func TestIsSecretKey(t *testing.T) {
	for _, k := range []string{"token", "refresh_token", "DB_PASSWORD", "x-api-key", "sessionId", "PrivateKey"} {
		assert.True(t, IsSecretKey(k), k)
	}
	for _, k := range []string{"prompt", "model", "retries", "author"} {
		assert.False(t, IsSecretKey(k), k)
	}
}
