package errors

import (
	"errors"
	"fmt"
)

// 錯誤碼
const (
	CodeUnsupportedCategory = "TOOL001"
	CodeInvalidCategory     = "TOOL002"

	CodeConfigVersion  = "CONFIG001"
	CodeConfigNoTools  = "CONFIG002"
	CodeConfigCategory = "CONFIG003"
	CodeConfigName     = "CONFIG004"
	CodeConfigLog      = "CONFIG005"

	CodeInvalidKey  = "KEY001"
	CodeInvalidSalt = "KEY002"
)

// 預定義錯誤類型
var (
	// 工具相關
	ErrUnsupportedCategory = errors.New("unsupported tool category")
	ErrInvalidCategory     = errors.New("invalid tool category")

	// 配置相關
	ErrConfigInvalid     = errors.New("configuration is invalid")
	ErrConfigParseFailed = errors.New("failed to parse configuration")

	// 密鑰相關
	ErrInvalidKey         = errors.New("invalid master key")
	ErrNotEncrypted       = errors.New("value is not encrypted")
	ErrMalformedEncrypted = errors.New("encrypted value is malformed")
)

// Error 自定義錯誤類型
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 創建新錯誤
func New(code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap 包裝錯誤
func Wrap(err error, code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf 返回錯誤鏈上最外層的錯誤碼，沒有則返回空字符串
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
