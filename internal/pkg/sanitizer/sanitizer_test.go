package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"port", false},
		{"protocol", false},
		{"api_key", true},
		{"Master-Key", true},
		{"PASSWORD", true},
		{"client_secret", true},
		{"passphrase", true},
		{"ruleset", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSensitiveKey(tt.key))
		})
	}
}

func TestParameters(t *testing.T) {
	in := map[string]string{
		"port":     "8080",
		"protocol": "TCP",
		"password": "hunter22",
		"contact":  "admin@example.com",
		"upstream": "sk_abcdefghijklmnopqrstu",
	}

	out := Parameters(in)

	assert.Equal(t, "8080", out["port"])
	assert.Equal(t, "TCP", out["protocol"])
	assert.Equal(t, "***MASKED***", out["password"])
	assert.Equal(t, "ad***@example.com", out["contact"])
	assert.Equal(t, "sk_a***rstu", out["upstream"])

	// 原 map 不被修改
	assert.Equal(t, "hunter22", in["password"])
}

func TestParameters_Empty(t *testing.T) {
	assert.Empty(t, Parameters(nil))
	assert.Empty(t, Parameters(map[string]string{}))
}

func TestSortedKeys(t *testing.T) {
	keys := SortedKeys(map[string]string{"protocol": "TCP", "port": "8080", "chain": "INPUT"})
	assert.Equal(t, []string{"chain", "port", "protocol"}, keys)
}

func TestAPIKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"short", "***"},
		{"medium12", "medi***um12"},
		{"verylongapikey123456", "very***3456"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, APIKey(tt.input))
	}
}

func TestPassword(t *testing.T) {
	assert.Equal(t, "", Password(""))
	assert.Equal(t, "***MASKED***", Password("x"))
}
