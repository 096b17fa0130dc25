package application

import (
	"context"
	"fmt"

	"github.com/Yat-Muk/sectool/internal/domain/tool"
	"go.uber.org/zap"
)

// LifecycleService 工具生命週期編排服務接口
type LifecycleService interface {
	// Run 依次對每個配置執行 Init -> Start -> Stop
	Run(ctx context.Context, cfgs []tool.Config) ([]Report, error)
}

// Report 單個工具的運行結果
type Report struct {
	ToolID   string
	Name     string
	Category tool.Category
	State    tool.State
}

type lifecycleService struct {
	generator tool.Generator
	log       *zap.Logger
}

func NewLifecycleService(generator tool.Generator, log *zap.Logger) LifecycleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &lifecycleService{
		generator: generator,
		log:       log,
	}
}

// Run 先構造全部工具再運行，任何類別不受支持時不產生任何狀態輸出
func (s *lifecycleService) Run(ctx context.Context, cfgs []tool.Config) ([]Report, error) {
	tools := make([]tool.Tool, 0, len(cfgs))
	for i, cfg := range cfgs {
		t, err := s.generator.Generate(cfg)
		if err != nil {
			return nil, fmt.Errorf("構造第 %d 個工具 %q 失敗: %w", i+1, cfg.Name(), err)
		}
		tools = append(tools, t)
	}

	reports := make([]Report, 0, len(tools))
	for _, t := range tools {
		if err := ctx.Err(); err != nil {
			s.log.Warn("生命週期已取消",
				zap.Int("completed", len(reports)),
				zap.Int("total", len(tools)),
			)
			return reports, err
		}

		t.Init()
		t.Start()
		t.Stop()

		cfg := t.Config()
		reports = append(reports, Report{
			ToolID:   t.ID(),
			Name:     cfg.Name(),
			Category: cfg.Category(),
			State:    t.State(),
		})

		s.log.Info("工具生命週期完成",
			zap.String("tool_id", t.ID()),
			zap.String("name", cfg.Name()),
			zap.Stringer("category", cfg.Category()),
		)
	}

	return reports, nil
}
