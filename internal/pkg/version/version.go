package version

import (
	"fmt"
	"runtime"
)

// Name 程序名
const Name = "sectool"

// 構建時通過 -ldflags "-X" 注入
var (
	Version   = "dev"
	BuildTime = ""
	GoVersion = runtime.Version()
	GitCommit = ""
)

// Info 多行版本信息，未注入的字段顯示 unknown
func Info() string {
	return fmt.Sprintf(
		"%s v%s (安全工具生成器)\nBuild Time: %s\nGo Version: %s\nGit Commit: %s\nPlatform:   %s/%s",
		Name, Version, orUnknown(BuildTime), GoVersion, orUnknown(GitCommit), runtime.GOOS, runtime.GOARCH,
	)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
