package tool

import (
	"fmt"
	"strings"

	"github.com/Yat-Muk/sectool/internal/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Category 安全工具類別（封閉集合）
type Category int

const (
	CategoryUnknown            Category = 0
	CategoryFirewall           Category = 1
	CategoryIntrusionDetection Category = 2
	CategoryEncryption         Category = 3
	CategoryAccessControl      Category = 4
)

// String 實現 Stringer 接口，返回配置文件中使用的標識符
func (c Category) String() string {
	switch c {
	case CategoryFirewall:
		return "firewall"
	case CategoryIntrusionDetection:
		return "intrusion_detection"
	case CategoryEncryption:
		return "encryption"
	case CategoryAccessControl:
		return "access_control"
	default:
		return "unknown"
	}
}

// Kind 返回狀態輸出中使用的類別名稱
func (c Category) Kind() string {
	switch c {
	case CategoryFirewall:
		return "firewall"
	case CategoryIntrusionDetection:
		return "intrusion detection"
	case CategoryEncryption:
		return "encryption"
	case CategoryAccessControl:
		return "access control"
	default:
		return ""
	}
}

// IsValid 檢查類別是否屬於封閉集合
func (c Category) IsValid() bool {
	return c >= CategoryFirewall && c <= CategoryAccessControl
}

// AllCategories 返回所有支持的類別 (用於遍歷)
func AllCategories() []Category {
	return []Category{
		CategoryFirewall,
		CategoryIntrusionDetection,
		CategoryEncryption,
		CategoryAccessControl,
	}
}

// ParseCategory 解析類別字符串，大小寫不敏感，接受 "intrusion_detection"、
// "intrusion-detection" 與 "intrusion detection"
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)

	for _, c := range AllCategories() {
		if c.String() == norm {
			return c, nil
		}
	}
	return CategoryUnknown, errors.Wrap(errors.ErrInvalidCategory, errors.CodeInvalidCategory,
		fmt.Sprintf("無法識別的工具類別 %q", s))
}

// MarshalYAML 以標識符形式寫出
func (c Category) MarshalYAML() (interface{}, error) {
	if !c.IsValid() {
		return nil, errors.Wrap(errors.ErrInvalidCategory, errors.CodeInvalidCategory,
			fmt.Sprintf("無法序列化工具類別 %d", int(c)))
	}
	return c.String(), nil
}

// UnmarshalYAML 從標識符解析
func (c *Category) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
