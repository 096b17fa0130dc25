package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sectool/internal/domain/config"
	"github.com/Yat-Muk/sectool/internal/domain/tool"
	"github.com/Yat-Muk/sectool/internal/pkg/errors"
)

// ManifestService 工具清單服務
type ManifestService struct {
	repo   config.Repository
	logger *zap.Logger
	mu     sync.Mutex
}

// NewManifestService 創建清單服務
func NewManifestService(repo config.Repository, logger *zap.Logger) *ManifestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManifestService{
		repo:   repo,
		logger: logger,
	}
}

// GetManifest 獲取當前清單
func (s *ManifestService) GetManifest(ctx context.Context) (*config.Document, error) {
	return s.repo.Load(ctx)
}

// UpdateManifest 原子更新清單
// Lock -> Load -> DeepCopy -> Modify -> Validate -> Save -> Unlock
func (s *ManifestService) UpdateManifest(ctx context.Context, modifier func(*config.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("加載清單失敗: %w", err)
	}

	next := current.DeepCopy()
	if err := modifier(next); err != nil {
		return fmt.Errorf("應用清單修改失敗: %w", err)
	}

	if err := next.Validate(); err != nil {
		return fmt.Errorf("新清單驗證失敗: %w", err)
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("保存清單失敗: %w", err)
	}

	s.logger.Info("清單已更新並保存", zap.Int("tools", len(next.Tools)))
	return nil
}

// Reset 以默認清單覆蓋
func (s *ManifestService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, config.DefaultDocument()); err != nil {
		return fmt.Errorf("保存清單失敗: %w", err)
	}
	s.logger.Info("清單已重置為默認值")
	return nil
}

// AddTool 追加工具，名稱重複時報錯
func (s *ManifestService) AddTool(ctx context.Context, entry config.ToolEntry) error {
	return s.UpdateManifest(ctx, func(doc *config.Document) error {
		for _, t := range doc.Tools {
			if t.Name == entry.Name {
				return fmt.Errorf("工具 %q 已存在", entry.Name)
			}
		}
		doc.Tools = append(doc.Tools, entry)
		return nil
	})
}

// RemoveTool 按名稱刪除工具
func (s *ManifestService) RemoveTool(ctx context.Context, name string) error {
	return s.UpdateManifest(ctx, func(doc *config.Document) error {
		for i, t := range doc.Tools {
			if t.Name == name {
				doc.Tools = append(doc.Tools[:i], doc.Tools[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("工具 %q 不存在", name)
	})
}

// ParseToolSpec 解析 "<category>:<name>" 形式的工具描述，兩側空白會被去除
func ParseToolSpec(spec string) (config.ToolEntry, error) {
	rawCategory, name, ok := strings.Cut(spec, ":")
	rawCategory, name = strings.TrimSpace(rawCategory), strings.TrimSpace(name)
	if !ok || name == "" {
		return config.ToolEntry{}, errors.New(errors.CodeConfigName,
			fmt.Sprintf("工具描述 %q 應為 <category>:<name>", spec))
	}

	category, err := tool.ParseCategory(rawCategory)
	if err != nil {
		return config.ToolEntry{}, err
	}

	return config.ToolEntry{Category: category, Name: name}, nil
}
