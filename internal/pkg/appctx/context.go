package appctx

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths 定義應用程序所有的關鍵路徑
type Paths struct {
	BaseDir   string
	DataDir   string
	LogDir    string
	BackupDir string

	LogFile string
	KeyFile string // 參數加密主密鑰
}

// NewPaths 根據工作目錄推導各路徑並創建目錄
// baseDir 為空時：生產環境使用 /etc/sectool，否則使用 ~/.sectool
func NewPaths(baseDir string) (*Paths, error) {
	explicit := baseDir != ""
	if !explicit {
		if isProduction() {
			baseDir = "/etc/sectool"
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("無法獲取用戶主目錄: %w", err)
			}
			baseDir = filepath.Join(home, ".sectool")
		}
	}

	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("無法解析絕對路徑: %w", err)
	}

	dataDir := filepath.Join(absPath, "data")

	// 日誌目錄邏輯：顯式指定工作目錄時一律放在其下
	logDir := filepath.Join(absPath, "logs")
	if !explicit && isProduction() {
		logDir = "/var/log/sectool"
	}

	paths := &Paths{
		BaseDir:   absPath,
		DataDir:   dataDir,
		LogDir:    logDir,
		BackupDir: filepath.Join(absPath, "backups"),
		LogFile:   filepath.Join(logDir, "sectool.log"),
		KeyFile:   filepath.Join(dataDir, "master.key"),
	}

	for _, dir := range []string{paths.BaseDir, paths.DataDir, paths.LogDir} {
		perm := os.FileMode(0700)
		if dir == paths.LogDir {
			perm = 0755
		}
		if err := os.MkdirAll(dir, perm); err != nil {
			return nil, fmt.Errorf("無法創建目錄 %s: %w", dir, err)
		}
	}

	return paths, nil
}

func isProduction() bool {
	return os.Geteuid() == 0 || os.Getenv("SECTOOL_ENV") == "production"
}
