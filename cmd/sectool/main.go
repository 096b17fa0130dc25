package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Yat-Muk/sectool/internal/pkg/appctx"
	"github.com/Yat-Muk/sectool/internal/pkg/logger"
	"github.com/Yat-Muk/sectool/internal/pkg/version"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run 返回進程退出碼；stdout 只寫工具狀態行、版本信息與快照列表
func run(args []string, stdout, stderr io.Writer) int {
	// 1. 命令行參數解析
	fs := flag.NewFlagSet("sectool", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		workDir    = fs.String("dir", "", "指定工作目錄 (默認: /etc/sectool 或 ~/.sectool)")
		configPath = fs.String("config", "", "工具清單 YAML 文件，未指定時運行內置防火牆示例")
		initFlag   = fs.Bool("init", false, "將默認清單寫入 -config 指定的文件後退出")
		addSpec    = fs.String("add", "", "向 -config 清單追加工具，格式 <category>:<name>")
		removeName = fs.String("remove", "", "從 -config 清單刪除指定名稱的工具")
		restore    = fs.String("restore", "", "用指定快照恢復 -config 清單")
		listBackup = fs.Bool("backups", false, "列出清單快照後退出")
		showVer    = fs.Bool("version", false, "顯示版本信息")
		debugFlag  = fs.Bool("debug", false, "開啟調試模式")
	)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if *showVer {
		fmt.Fprintln(stdout, version.Info())
		return 0
	}

	edits := manifestEdits{
		restore: *restore,
		reset:   *initFlag,
		add:     *addSpec,
		remove:  *removeName,
	}
	if !edits.empty() && *configPath == "" {
		fmt.Fprintln(stderr, "-init、-add、-remove 與 -restore 需要同時指定 -config")
		return 2
	}

	// 2. 環境初始化
	paths, err := appctx.NewPaths(*workDir)
	if err != nil {
		fmt.Fprintf(stderr, "致命錯誤: 無法初始化路徑: %v\n", err)
		return 1
	}

	logConfig := logger.DefaultConfig()
	logConfig.OutputPath = paths.LogFile
	logConfig.Console = false
	if *debugFlag {
		logConfig.Level = "debug"
	}

	log, level, err := logger.New(logConfig)
	if err != nil {
		fmt.Fprintf(stderr, "致命錯誤: 無法初始化日誌: %v\n", err)
		return 1
	}
	defer log.Sync()

	log.Info("sectool 正在啟動",
		zap.String("version", version.Version),
		zap.String("commit", version.GitCommit),
		zap.String("config", *configPath),
	)

	// 3. 依賴注入
	deps := initializeDependencies(log, paths, stdout)
	ctx := context.Background()

	if *listBackup {
		if err := listSnapshots(deps, stdout); err != nil {
			log.Error("讀取快照列表失敗", zap.Error(err))
			fmt.Fprintf(stderr, "讀取快照列表失敗: %v\n", err)
			return 1
		}
		return 0
	}

	if !edits.empty() {
		if err := editManifest(ctx, deps, *configPath, edits); err != nil {
			log.Error("更新工具清單失敗", zap.Error(err))
			fmt.Fprintf(stderr, "更新工具清單失敗: %v\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "已更新工具清單: %s\n", *configPath)
		return 0
	}

	// 4. 加載工具清單並運行
	cfgs, err := loadToolConfigs(ctx, deps, *configPath, level, *debugFlag)
	if err != nil {
		log.Error("加載工具清單失敗", zap.Error(err))
		fmt.Fprintf(stderr, "加載工具清單失敗: %v\n", err)
		return 1
	}

	if _, err := deps.Lifecycle.Run(ctx, cfgs); err != nil {
		log.Error("工具運行失敗", zap.Error(err))
		fmt.Fprintf(stderr, "工具運行失敗: %v\n", err)
		return 1
	}

	log.Info("所有工具已完成", zap.Int("tools", len(cfgs)))
	return 0
}
