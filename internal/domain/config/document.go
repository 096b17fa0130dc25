package config

import (
	"context"
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/Yat-Muk/sectool/internal/domain/tool"
	"github.com/Yat-Muk/sectool/internal/pkg/crypto"
	"github.com/Yat-Muk/sectool/internal/pkg/errors"
	"github.com/Yat-Muk/sectool/internal/pkg/sanitizer"
)

// Repository 工具清單倉庫接口
type Repository interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

// Document 工具清單文件結構
type Document struct {
	Version int         `yaml:"version"`
	Log     LogConfig   `yaml:"log"`
	Tools   []ToolEntry `yaml:"tools"`
}

// LogConfig 日誌配置，空值表示沿用命令行設置
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// ToolEntry 單個工具配置
type ToolEntry struct {
	Category   tool.Category     `yaml:"category"`
	Name       string            `yaml:"name"`
	Parameters map[string]string `yaml:"parameters,omitempty"`
}

// DefaultDocument 返回默認清單：單個防火牆工具
func DefaultDocument() *Document {
	return &Document{
		Version: ConfigVersionLatest,
		Log:     LogConfig{Level: "info"},
		Tools: []ToolEntry{
			{
				Category: tool.CategoryFirewall,
				Name:     "Firewall Tool",
				Parameters: map[string]string{
					"port":     "8080",
					"protocol": "TCP",
				},
			},
		},
	}
}

// Validate 驗證清單
// 只檢查字段是否存在與類別是否合法，不解釋參數內容
func (d *Document) Validate() error {
	if d.Version < ConfigVersionV1 || d.Version > ConfigVersionLatest {
		return errors.Wrap(errors.ErrConfigInvalid, errors.CodeConfigVersion,
			fmt.Sprintf("不支持的配置版本 v%d", d.Version))
	}

	switch d.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.Wrap(errors.ErrConfigInvalid, errors.CodeConfigLog,
			fmt.Sprintf("無效的日誌級別 %q", d.Log.Level))
	}

	if len(d.Tools) == 0 {
		return errors.Wrap(errors.ErrConfigInvalid, errors.CodeConfigNoTools, "至少需要配置一個工具")
	}

	for i, t := range d.Tools {
		if !t.Category.IsValid() {
			return errors.Wrap(errors.ErrConfigInvalid, errors.CodeConfigCategory,
				fmt.Sprintf("tools[%d] 類別無效", i))
		}
		if strings.TrimSpace(t.Name) == "" {
			return errors.Wrap(errors.ErrConfigInvalid, errors.CodeConfigName,
				fmt.Sprintf("tools[%d] 缺少名稱", i))
		}
	}

	return nil
}

// ToolConfigs 轉換為工具配置，保持文件順序
func (d *Document) ToolConfigs() []tool.Config {
	out := make([]tool.Config, 0, len(d.Tools))
	for _, t := range d.Tools {
		out = append(out, tool.NewConfig(t.Category, t.Name, t.Parameters))
	}
	return out
}

// DeepCopy 深拷貝清單
func (d *Document) DeepCopy() *Document {
	if d == nil {
		return nil
	}

	out := &Document{
		Version: d.Version,
		Log:     d.Log,
	}
	if d.Tools != nil {
		out.Tools = make([]ToolEntry, len(d.Tools))
		for i, t := range d.Tools {
			out.Tools[i] = ToolEntry{Category: t.Category, Name: t.Name}
			if t.Parameters != nil {
				out.Tools[i].Parameters = make(map[string]string, len(t.Parameters))
				for k, v := range t.Parameters {
					out.Tools[i].Parameters[k] = v
				}
			}
		}
	}
	return out
}

// EncryptSensitiveParameters 加密所有敏感參數
// 能被當前密鑰解密的值視為已加密並跳過；帶前綴但無法解密的值按明文加密
func (d *Document) EncryptSensitiveParameters(encryptor *crypto.Encryptor) error {
	if encryptor == nil {
		return nil
	}

	for i := range d.Tools {
		for k, v := range d.Tools[i].Parameters {
			if v == "" || !sanitizer.IsSensitiveKey(k) {
				continue
			}
			if crypto.IsEncrypted(v) {
				if _, err := encryptor.Decrypt(v); err == nil {
					continue
				}
			}
			encrypted, err := encryptor.Encrypt(v)
			if err != nil {
				return fmt.Errorf("加密 tools[%d].%s 失敗: %w", i, k, err)
			}
			d.Tools[i].Parameters[k] = encrypted
		}
	}
	return nil
}

// DecryptSensitiveParameters 解密敏感參數，與加密範圍一致
// 非敏感鍵的值原樣保留；敏感鍵上結構不合法的 "enc:" 值視為明文
func (d *Document) DecryptSensitiveParameters(encryptor *crypto.Encryptor) error {
	if encryptor == nil {
		return nil
	}

	for i := range d.Tools {
		for k, v := range d.Tools[i].Parameters {
			if !sanitizer.IsSensitiveKey(k) || !crypto.IsEncrypted(v) {
				continue
			}
			decrypted, err := encryptor.Decrypt(v)
			if goerrors.Is(err, errors.ErrMalformedEncrypted) {
				continue
			}
			if err != nil {
				return fmt.Errorf("解密 tools[%d].%s 失敗: %w", i, k, err)
			}
			d.Tools[i].Parameters[k] = decrypted
		}
	}
	return nil
}
