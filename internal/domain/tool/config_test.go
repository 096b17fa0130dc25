package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	params := map[string]string{"port": "8080", "protocol": "TCP"}
	cfg := NewConfig(CategoryFirewall, "Firewall Tool", params)

	assert.Equal(t, CategoryFirewall, cfg.Category())
	assert.Equal(t, "Firewall Tool", cfg.Name())
	assert.Equal(t, params, cfg.Parameters())

	v, ok := cfg.Parameter("port")
	assert.True(t, ok)
	assert.Equal(t, "8080", v)

	_, ok = cfg.Parameter("missing")
	assert.False(t, ok)
}

func TestConfig_Immutable(t *testing.T) {
	params := map[string]string{"port": "8080"}
	cfg := NewConfig(CategoryFirewall, "fw", params)

	t.Run("調用方修改原 map 不影響配置", func(t *testing.T) {
		params["port"] = "9090"
		params["extra"] = "x"

		v, _ := cfg.Parameter("port")
		assert.Equal(t, "8080", v)
		_, ok := cfg.Parameter("extra")
		assert.False(t, ok)
	})

	t.Run("修改返回的副本不影響配置", func(t *testing.T) {
		got := cfg.Parameters()
		got["port"] = "1"

		v, _ := cfg.Parameter("port")
		assert.Equal(t, "8080", v)
	})
}

func TestConfig_NilParameters(t *testing.T) {
	cfg := NewConfig(CategoryEncryption, "enc", nil)

	assert.NotNil(t, cfg.Parameters())
	assert.Empty(t, cfg.Parameters())
}
