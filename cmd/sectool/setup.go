package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Yat-Muk/sectool/internal/application"
	domainConfig "github.com/Yat-Muk/sectool/internal/domain/config"
	"github.com/Yat-Muk/sectool/internal/domain/tool"
	"github.com/Yat-Muk/sectool/internal/infra/backup"
	infraConfig "github.com/Yat-Muk/sectool/internal/infra/config"
	"github.com/Yat-Muk/sectool/internal/pkg/appctx"
	"github.com/Yat-Muk/sectool/internal/pkg/crypto"
	"go.uber.org/zap"
)

type AppDependencies struct {
	Log       *zap.Logger
	Paths     *appctx.Paths
	Generator tool.Generator
	Lifecycle application.LifecycleService
}

func initializeDependencies(log *zap.Logger, paths *appctx.Paths, out io.Writer) *AppDependencies {
	generator := tool.NewGenerator(out, log.Named("generator"))

	return &AppDependencies{
		Log:       log,
		Paths:     paths,
		Generator: generator,
		Lifecycle: application.NewLifecycleService(generator, log.Named("lifecycle")),
	}
}

// manifestStore 清單文件及其快照
type manifestStore struct {
	service   *application.ManifestService
	snapshots *backup.Manager
}

// newSnapshots 主密鑰只在訪問清單文件或快照時創建，示例模式不落盤
func newSnapshots(deps *AppDependencies) (*crypto.Encryptor, *backup.Manager, error) {
	encryptor, err := crypto.NewEncryptor(deps.Paths.KeyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化參數加密器失敗: %w", err)
	}

	snapshots, err := backup.NewManager(deps.Paths.BackupDir, encryptor, backup.DefaultRetention(), deps.Log.Named("backup"))
	if err != nil {
		return nil, nil, err
	}
	return encryptor, snapshots, nil
}

func newManifestStore(deps *AppDependencies, configPath string) (*manifestStore, error) {
	encryptor, snapshots, err := newSnapshots(deps)
	if err != nil {
		return nil, err
	}

	repo := infraConfig.NewFileRepository(configPath, encryptor, deps.Log.Named("repository"))
	repo.SetSnapshotter(snapshots)

	return &manifestStore{
		service:   application.NewManifestService(repo, deps.Log.Named("manifest")),
		snapshots: snapshots,
	}, nil
}

// loadToolConfigs 未指定清單文件時返回內置示例，否則從文件加載
// 清單中的日誌級別僅在未開啟 -debug 時生效
func loadToolConfigs(ctx context.Context, deps *AppDependencies, configPath string, level zap.AtomicLevel, debug bool) ([]tool.Config, error) {
	if configPath == "" {
		return domainConfig.DefaultDocument().ToolConfigs(), nil
	}

	store, err := newManifestStore(deps, configPath)
	if err != nil {
		return nil, err
	}

	doc, err := store.service.GetManifest(ctx)
	if err != nil {
		return nil, err
	}

	if doc.Log.Level != "" && !debug {
		if err := level.UnmarshalText([]byte(doc.Log.Level)); err != nil {
			deps.Log.Warn("忽略無效的日誌級別", zap.String("level", doc.Log.Level))
		}
	}

	return doc.ToolConfigs(), nil
}

// manifestEdits 清單編輯參數，按 restore -> init -> add -> remove 順序執行
type manifestEdits struct {
	restore string
	reset   bool
	add     string
	remove  string
}

func (e manifestEdits) empty() bool {
	return e.restore == "" && !e.reset && e.add == "" && e.remove == ""
}

// editManifest 修改清單，覆蓋已有文件前先創建快照
func editManifest(ctx context.Context, deps *AppDependencies, configPath string, edits manifestEdits) error {
	store, err := newManifestStore(deps, configPath)
	if err != nil {
		return err
	}

	if edits.restore != "" {
		if _, err := os.Stat(configPath); err == nil {
			if _, err := store.snapshots.Backup(configPath, "pre-restore"); err != nil {
				return fmt.Errorf("創建清單快照失敗: %w", err)
			}
		}
		if err := store.snapshots.Restore(edits.restore, configPath); err != nil {
			return err
		}
	}

	if edits.reset {
		if err := store.service.Reset(ctx); err != nil {
			return err
		}
	}

	if edits.add != "" {
		entry, err := application.ParseToolSpec(edits.add)
		if err != nil {
			return err
		}
		if err := store.service.AddTool(ctx, entry); err != nil {
			return err
		}
	}

	if edits.remove != "" {
		if err := store.service.RemoveTool(ctx, edits.remove); err != nil {
			return err
		}
	}

	return nil
}

// listSnapshots 每行一個快照：名稱、修改時間、校驗結果，最新的在前
func listSnapshots(deps *AppDependencies, out io.Writer) error {
	_, snapshots, err := newSnapshots(deps)
	if err != nil {
		return err
	}

	files, err := snapshots.List()
	if err != nil {
		return err
	}

	for _, f := range files {
		status := "verified"
		if !f.Verified {
			status = "unverified"
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", f.Name, f.ModTime.Format(time.RFC3339), status)
	}
	return nil
}
