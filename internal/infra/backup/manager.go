package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Yat-Muk/sectool/internal/domain/validator"
	"github.com/Yat-Muk/sectool/internal/pkg/crypto"
	"go.uber.org/zap"
)

const (
	BackupFileMode os.FileMode = 0600
	BackupDirMode  os.FileMode = 0700
	ChecksumSuffix             = ".sha256"

	backupExt    = ".bak"
	lastHashFile = ".last-hash"
)

// Manager 工具清單快照管理：加密存儲、HMAC 校驗、按策略輪替
type Manager struct {
	backupDir string
	retention RetentionPolicy
	encryptor *crypto.Encryptor
	log       *zap.Logger
	now       func() time.Time
}

type RetentionPolicy struct {
	MaxFiles int
	MaxAge   time.Duration
}

// DefaultRetention 保留最近 10 份、30 天內的快照
func DefaultRetention() RetentionPolicy {
	return RetentionPolicy{MaxFiles: 10, MaxAge: 30 * 24 * time.Hour}
}

type BackupFile struct {
	Name      string
	Path      string
	ModTime   time.Time
	Size      int64
	Encrypted bool
	Verified  bool
}

func NewManager(backupDir string, encryptor *crypto.Encryptor, retention RetentionPolicy, log *zap.Logger) (*Manager, error) {
	if encryptor == nil {
		return nil, fmt.Errorf("加密器未初始化")
	}
	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(backupDir, BackupDirMode); err != nil {
		return nil, fmt.Errorf("創建備份目錄失敗: %w", err)
	}

	return &Manager{
		backupDir: backupDir,
		retention: retention,
		encryptor: encryptor,
		log:       log,
		now:       time.Now,
	}, nil
}

// Backup 為 srcPath 創建快照，內容與上一份相同時跳過
// 返回快照文件名，跳過時為空
func (m *Manager) Backup(srcPath string, tag string) (string, error) {
	if err := validator.ValidateSafePath(filepath.Dir(srcPath), filepath.Base(srcPath)); err != nil {
		return "", fmt.Errorf("源文件路徑不安全: %w", err)
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("讀取源文件失敗: %w", err)
	}

	hash := sha256.Sum256(data)
	hashStr := hex.EncodeToString(hash[:])
	if m.isDuplicateContent(hashStr) {
		m.log.Debug("內容未變化，跳過快照", zap.String("source", srcPath))
		return "", nil
	}

	encrypted, err := m.encryptor.Encrypt(string(data))
	if err != nil {
		return "", fmt.Errorf("加密失敗: %w", err)
	}
	encryptedData := []byte(encrypted)

	timestamp := m.now().Format("20060102-150405.000")
	backupName := "tools-" + timestamp + backupExt
	if tag != "" {
		backupName = fmt.Sprintf("tools-%s-%s%s", timestamp, tag, backupExt)
	}
	if err := validator.ValidateFilename(backupName); err != nil {
		return "", fmt.Errorf("快照標籤無效: %w", err)
	}
	dstPath := filepath.Join(m.backupDir, backupName)

	if err := os.WriteFile(dstPath, encryptedData, BackupFileMode); err != nil {
		return "", fmt.Errorf("寫入備份失敗: %w", err)
	}

	if err := m.saveChecksum(dstPath, encryptedData); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("生成校驗文件失敗: %w", err)
	}

	m.saveLastHash(hashStr)
	m.enforcePolicy()

	m.log.Info("已創建清單快照", zap.String("backup", backupName))
	return backupName, nil
}

func (m *Manager) saveChecksum(filePath string, data []byte) error {
	tmpPath := filePath + ChecksumSuffix + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(m.encryptor.ComputeHMAC(data)), BackupFileMode); err != nil {
		return err
	}
	return os.Rename(tmpPath, filePath+ChecksumSuffix)
}

func (m *Manager) verifyChecksum(filePath string, data []byte) bool {
	expected, err := os.ReadFile(filePath + ChecksumSuffix)
	if err != nil {
		return false
	}
	return m.encryptor.VerifyHMAC(data, string(expected))
}

// Restore 校驗並解密快照，原子替換 targetPath
func (m *Manager) Restore(backupName string, targetPath string) error {
	if err := validator.ValidateSafePath(m.backupDir, backupName); err != nil {
		return fmt.Errorf("快照名稱不安全: %w", err)
	}

	srcPath := filepath.Join(m.backupDir, backupName)
	encryptedData, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("讀取備份文件失敗: %w", err)
	}

	if !m.verifyChecksum(srcPath, encryptedData) {
		return fmt.Errorf("備份完整性校驗失敗")
	}

	decrypted, err := m.encryptor.Decrypt(string(encryptedData))
	if err != nil {
		return fmt.Errorf("解密失敗: %w", err)
	}

	tmpFile := targetPath + ".tmp"
	if err := os.WriteFile(tmpFile, []byte(decrypted), 0600); err != nil {
		return fmt.Errorf("寫入臨時文件失敗: %w", err)
	}

	if err := os.Rename(tmpFile, targetPath); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("替換目標文件失敗: %w", err)
	}

	m.log.Info("已從快照恢復清單", zap.String("backup", backupName), zap.String("target", targetPath))
	return nil
}

// List 按修改時間倒序列出快照
func (m *Manager) List() ([]BackupFile, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupFile{}, nil
		}
		return nil, fmt.Errorf("讀取備份目錄失敗: %w", err)
	}

	var backups []BackupFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), backupExt) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(m.backupDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		backups = append(backups, BackupFile{
			Name:      entry.Name(),
			Path:      path,
			ModTime:   info.ModTime(),
			Size:      info.Size(),
			Encrypted: crypto.IsEncrypted(string(data)),
			Verified:  m.verifyChecksum(path, data),
		})
	}

	// 文件名帶毫秒時間戳，同一秒內按名稱排序
	sort.Slice(backups, func(i, j int) bool {
		if backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].Name > backups[j].Name
		}
		return backups[i].ModTime.After(backups[j].ModTime)
	})

	return backups, nil
}

func (m *Manager) enforcePolicy() {
	backups, err := m.List()
	if err != nil {
		m.log.Warn("讀取快照列表失敗", zap.Error(err))
		return
	}

	now := m.now()
	for i, b := range backups {
		expired := m.retention.MaxAge > 0 && now.Sub(b.ModTime) > m.retention.MaxAge
		if (m.retention.MaxFiles > 0 && i >= m.retention.MaxFiles) || expired {
			os.Remove(b.Path)
			os.Remove(b.Path + ChecksumSuffix)
			m.log.Debug("已清理過期快照", zap.String("backup", b.Name))
		}
	}
}

func (m *Manager) isDuplicateContent(hash string) bool {
	lastHash, err := os.ReadFile(filepath.Join(m.backupDir, lastHashFile))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(lastHash)) == hash
}

func (m *Manager) saveLastHash(hash string) {
	hashFile := filepath.Join(m.backupDir, lastHashFile)
	tmpFile := hashFile + ".tmp"
	if err := os.WriteFile(tmpFile, []byte(hash), BackupFileMode); err == nil {
		os.Rename(tmpFile, hashFile)
	}
}
