package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	domainConfig "github.com/Yat-Muk/sectool/internal/domain/config"
	"github.com/Yat-Muk/sectool/internal/pkg/crypto"
	"github.com/Yat-Muk/sectool/internal/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileRepository 基於 YAML 文件的工具清單倉庫
type FileRepository struct {
	filePath    string
	mu          sync.RWMutex
	fileMu      sync.Mutex // 串行化寫入
	encryptor   *crypto.Encryptor
	migrator    *domainConfig.Migrator
	logger      *zap.Logger
	snapshotter Snapshotter
	cachedDoc   *domainConfig.Document
	lastModTime time.Time
}

var _ domainConfig.Repository = (*FileRepository)(nil)

// Snapshotter 覆蓋前為舊文件創建快照
type Snapshotter interface {
	Backup(srcPath string, tag string) (string, error)
}

// NewFileRepository 創建倉庫，encryptor 為 nil 時敏感參數以明文保存
func NewFileRepository(path string, encryptor *crypto.Encryptor, logger *zap.Logger) *FileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileRepository{
		filePath:  path,
		encryptor: encryptor,
		migrator:  domainConfig.NewMigrator(),
		logger:    logger,
	}
}

// SetSnapshotter 設置後每次 Save 覆蓋已有文件前先創建快照
func (r *FileRepository) SetSnapshotter(s Snapshotter) {
	r.fileMu.Lock()
	defer r.fileMu.Unlock()
	r.snapshotter = s
}

// Load 加載清單（支持緩存、熱重載與自動解密）
func (r *FileRepository) Load(ctx context.Context) (*domainConfig.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 快速路徑：緩存命中
	r.mu.RLock()
	stat, err := os.Stat(r.filePath)

	// 文件不存在 -> 返回默認清單
	if os.IsNotExist(err) {
		r.mu.RUnlock()
		r.logger.Info("工具清單文件不存在，使用默認清單", zap.String("path", r.filePath))
		return domainConfig.DefaultDocument(), nil
	}
	if err != nil {
		r.mu.RUnlock()
		return nil, fmt.Errorf("檢查工具清單狀態失敗: %w", err)
	}

	if r.cachedDoc != nil && !stat.ModTime().After(r.lastModTime) {
		// 必須返回深拷貝，避免外部修改污染緩存
		doc := r.cachedDoc.DeepCopy()
		r.mu.RUnlock()
		r.logger.Debug("工具清單未變更，使用內存緩存")
		return doc, nil
	}
	r.mu.RUnlock()

	// 慢速路徑：從磁盤重新加載
	r.mu.Lock()
	defer r.mu.Unlock()

	// 雙重檢查，避免重複 I/O
	stat, err = os.Stat(r.filePath)
	if os.IsNotExist(err) {
		return domainConfig.DefaultDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("檢查工具清單狀態失敗: %w", err)
	}
	if r.cachedDoc != nil && !stat.ModTime().After(r.lastModTime) {
		return r.cachedDoc.DeepCopy(), nil
	}

	// 寫入走臨時文件 + rename，讀取無需持有 fileMu
	content, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("讀取工具清單失敗: %w", err)
	}

	doc := &domainConfig.Document{}
	if err := yaml.Unmarshal(content, doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrConfigParseFailed, r.filePath, err)
	}

	if r.migrator.NeedsMigration(doc) {
		migrated, err := r.migrator.MigrateToLatest(doc)
		if err != nil {
			return nil, fmt.Errorf("遷移工具清單失敗: %w", err)
		}
		r.logger.Info("工具清單已遷移", zap.Int("from", doc.Version), zap.Int("to", migrated.Version))
		doc = migrated
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	if err := doc.DecryptSensitiveParameters(r.encryptor); err != nil {
		r.logger.Error("工具參數解密失敗", zap.Error(err))
		return nil, fmt.Errorf("解密敏感參數失敗: %w", err)
	}

	r.cachedDoc = doc.DeepCopy()
	r.lastModTime = stat.ModTime()

	r.logger.Info("工具清單已從磁盤加載",
		zap.String("path", r.filePath),
		zap.Int("tools", len(doc.Tools)),
		zap.Time("mod_time", r.lastModTime),
	)

	return doc, nil
}

// Save 保存清單到文件（原子寫入）
func (r *FileRepository) Save(ctx context.Context, doc *domainConfig.Document) error {
	if doc == nil {
		return fmt.Errorf("配置對象為空")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	r.fileMu.Lock()
	defer r.fileMu.Unlock()

	// 在副本上加密，調用方持有的對象保持明文
	docCopy := doc.DeepCopy()
	if err := docCopy.EncryptSensitiveParameters(r.encryptor); err != nil {
		return fmt.Errorf("加密工具參數失敗: %w", err)
	}

	data, err := yaml.Marshal(docCopy)
	if err != nil {
		return fmt.Errorf("序列化工具清單失敗: %w", err)
	}

	// 創建臨時文件 -> 寫入 -> Sync -> 關閉 -> Rename
	dir := filepath.Dir(r.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("創建配置目錄失敗: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "tools.*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("創建臨時文件失敗: %w", err)
	}
	tmpName := tmpFile.Name()

	writeSuccess := false
	defer func() {
		if !writeSuccess {
			tmpFile.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("寫入數據失敗: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("同步磁盤失敗: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("關閉臨時文件失敗: %w", err)
	}

	if r.snapshotter != nil {
		if _, statErr := os.Stat(r.filePath); statErr == nil {
			if _, err := r.snapshotter.Backup(r.filePath, "pre-save"); err != nil {
				return fmt.Errorf("創建清單快照失敗: %w", err)
			}
		}
	}
	if err := os.Rename(tmpName, r.filePath); err != nil {
		return fmt.Errorf("替換工具清單失敗: %w", err)
	}

	// 600 - 僅所有者可讀寫
	if err := os.Chmod(r.filePath, 0600); err != nil {
		r.logger.Warn("設置文件權限失敗", zap.Error(err))
	}

	writeSuccess = true

	r.mu.Lock()
	r.cachedDoc = doc.DeepCopy()
	if stat, err := os.Stat(r.filePath); err == nil {
		r.lastModTime = stat.ModTime()
	}
	r.mu.Unlock()

	r.logger.Info("工具清單已保存", zap.String("path", r.filePath), zap.Int("tools", len(doc.Tools)))
	return nil
}
