package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestDefaultConfig 測試默認配置
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "/var/log/sectool/sectool.log", cfg.OutputPath)
	assert.Equal(t, 10, cfg.MaxSize)
	assert.Equal(t, 5, cfg.MaxBackups)
	assert.Equal(t, 30, cfg.MaxAge)
	assert.True(t, cfg.Compress)
	assert.False(t, cfg.Console)
}

// TestNew 測試自定義配置創建logger
func TestNew(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	logger, _, err := New(Config{
		Level:      "debug",
		OutputPath: logPath,
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     7,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("test message")
	_ = logger.Sync()

	_, err = os.Stat(logPath)
	assert.NoError(t, err, "日誌文件應該被創建")
}

// TestNew_InvalidLevel 測試無效日誌級別
func TestNew_InvalidLevel(t *testing.T) {
	logger, _, err := New(Config{Level: "invalid", Console: true})
	assert.Error(t, err)
	assert.Nil(t, logger)
}

// TestNew_NoOutputs 測試文件與控制台均關閉
func TestNew_NoOutputs(t *testing.T) {
	logger, _, err := New(Config{Level: "info"})
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		logger.Info("dropped")
	})
}

// TestNew_ConsoleOnly 測試僅控制台輸出
func TestNew_ConsoleOnly(t *testing.T) {
	logger, _, err := New(Config{Level: "warn", Console: true})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

// TestNew_AdjustLevel 測試運行期調整級別
func TestNew_AdjustLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")

	logger, level, err := New(Config{Level: "warn", OutputPath: logPath, MaxSize: 1})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))

	level.SetLevel(zap.DebugLevel)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

// TestParameters 測試參數字段脫敏
func TestParameters(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)

	log.Info("tool", Parameters("params", map[string]string{
		"port":    "8080",
		"api_key": "super-secret-value",
	}))

	require.Equal(t, 1, logs.Len())
	params, ok := logs.All()[0].ContextMap()["params"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "8080", params["port"])
	assert.Equal(t, "***MASKED***", params["api_key"])
}
