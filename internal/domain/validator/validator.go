package validator

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// 文件名：字母、數字、點、橫線、下劃線
var reFilename = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateToolID 驗證工具實例 ID（標準 36 位 UUID）
func ValidateToolID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// ValidateFilename 驗證文件名安全性（防止路徑遍歷）
func ValidateFilename(filename string) error {
	filename = strings.TrimSpace(filename)

	switch {
	case filename == "":
		return errors.New("文件名不能為空")
	case strings.Contains(filename, ".."):
		return errors.New("文件名不能包含 '..'")
	case strings.ContainsAny(filename, `/\`):
		return errors.New("文件名不能包含路徑分隔符")
	case strings.Contains(filename, "\x00"):
		return errors.New("文件名不能包含空字節")
	case len(filename) > 255:
		return errors.New("文件名過長（最多 255 字符）")
	case !reFilename.MatchString(filename):
		return errors.New("文件名只能包含字母、數字、點、橫線、下劃線")
	}

	return nil
}

// ValidateSafePath 確保 baseDir/filename 仍位於 baseDir 之內
func ValidateSafePath(baseDir, filename string) error {
	if err := ValidateFilename(filename); err != nil {
		return err
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return errors.New("無法解析基礎目錄: " + err.Error())
	}

	rel, err := filepath.Rel(absBase, filepath.Join(absBase, filename))
	if err != nil || strings.HasPrefix(rel, "..") {
		return errors.New("路徑不在允許的基礎目錄內")
	}

	return nil
}
