package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestInfo 測試完整版本信息
func TestInfo(t *testing.T) {
	info := Info()

	lines := strings.Split(info, "\n")
	assert.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], Name+" v"+Version))
	assert.Contains(t, info, "Go Version: "+GoVersion)
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
}

// TestInfo_Injected 測試構建注入字段
func TestInfo_Injected(t *testing.T) {
	origVersion, origBuild, origCommit := Version, BuildTime, GitCommit
	t.Cleanup(func() { Version, BuildTime, GitCommit = origVersion, origBuild, origCommit })

	Version, BuildTime, GitCommit = "1.2.0", "", ""
	info := Info()
	assert.True(t, strings.HasPrefix(info, "sectool v1.2.0"))
	assert.Contains(t, info, "Build Time: unknown")
	assert.Contains(t, info, "Git Commit: unknown")

	BuildTime, GitCommit = "2026-01-01T00:00:00Z", "abc1234"
	info = Info()
	assert.Contains(t, info, "Build Time: 2026-01-01T00:00:00Z")
	assert.Contains(t, info, "Git Commit: abc1234")
}
