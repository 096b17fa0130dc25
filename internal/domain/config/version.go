package config

import (
	"fmt"
)

const (
	// ConfigVersionLatest 最新配置版本
	ConfigVersionLatest = 1

	// ConfigVersionV1 首個版本
	ConfigVersionV1 = 1
)

// Migrator 配置遷移器
type Migrator struct{}

// NewMigrator 創建遷移器
func NewMigrator() *Migrator {
	return &Migrator{}
}

// MigrateToLatest 自動遷移到最新版本
func (m *Migrator) MigrateToLatest(doc *Document) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("配置為空，無法遷移")
	}

	if doc.Version == ConfigVersionLatest {
		return doc, nil
	}

	// 未寫 version 字段的手寫文件視為 V1
	if doc.Version == 0 {
		migrated := doc.DeepCopy()
		migrated.Version = ConfigVersionV1
		return migrated, nil
	}

	if doc.Version > ConfigVersionLatest {
		return nil, fmt.Errorf("配置版本過高 (v%d)，當前程序僅支持 v%d", doc.Version, ConfigVersionLatest)
	}

	return nil, fmt.Errorf("無效的配置版本 (v%d)", doc.Version)
}

// NeedsMigration 檢查是否需要遷移
func (m *Migrator) NeedsMigration(doc *Document) bool {
	if doc == nil {
		return false
	}
	return doc.Version < ConfigVersionLatest
}
