package tool

import (
	"fmt"
	"io"
	"os"

	"github.com/Yat-Muk/sectool/internal/pkg/errors"
	"github.com/Yat-Muk/sectool/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Generator 工具工廠接口
type Generator interface {
	Generate(cfg Config) (Tool, error)
}

// NewGenerator 創建工具工廠
// out 為狀態輸出目標，nil 時使用 os.Stdout；log 為 nil 時不記錄日誌
func NewGenerator(out io.Writer, log *zap.Logger) Generator {
	if out == nil {
		out = os.Stdout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &generatorImpl{
		out: out,
		log: log,
	}
}

type generatorImpl struct {
	out io.Writer
	log *zap.Logger
}

// Generate 按類別創建工具，每次調用返回新實例
func (g *generatorImpl) Generate(cfg Config) (Tool, error) {
	var kind string

	switch cfg.Category() {
	case CategoryFirewall:
		kind = CategoryFirewall.Kind()
	case CategoryIntrusionDetection:
		kind = CategoryIntrusionDetection.Kind()
	case CategoryEncryption:
		kind = CategoryEncryption.Kind()
	case CategoryAccessControl:
		kind = CategoryAccessControl.Kind()
	default:
		g.log.Error("不支持的工具類別",
			zap.Int("category", int(cfg.Category())),
			zap.String("name", cfg.Name()),
		)
		return nil, errors.Wrap(errors.ErrUnsupportedCategory, errors.CodeUnsupportedCategory,
			fmt.Sprintf("類別 %d 沒有對應的工具實現", int(cfg.Category())))
	}

	t := &securityTool{
		id:    uuid.NewString(),
		kind:  kind,
		cfg:   cfg,
		out:   g.out,
		log:   g.log.Named("tool"),
		state: StateUninitialized,
	}

	g.log.Debug("工具已創建",
		zap.String("tool_id", t.id),
		zap.String("name", cfg.Name()),
		zap.Stringer("category", cfg.Category()),
		logger.Parameters("parameters", cfg.parameters),
	)

	return t, nil
}
