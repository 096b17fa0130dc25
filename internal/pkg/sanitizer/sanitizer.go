package sanitizer

import (
	"regexp"
	"sort"
	"strings"
)

// 敏感字段關鍵詞 (Fast Path 過濾用)
var sensitiveKeywords = []string{
	"password", "passwd", "passphrase", "secret", "token", "key", "auth",
	"credential", "bearer", "private", "salt",
}

// 預編譯正則表達式 (Slow Path 用)
var (
	// API Key 常見模式 (sk_..., ghp_...)
	apiKeyRegex = regexp.MustCompile(`(?i)(sk|pk|api|ghp|gho|token)_[a-zA-Z0-9_-]{16,}`)
	// Email
	emailRegex = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
)

// IsSensitiveKey 判斷參數名是否屬於敏感字段
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(k, kw) {
			return true
		}
	}
	return false
}

// Parameters 返回脫敏後的參數副本 (用於日誌輸出)
// 敏感鍵的值全脫敏，其餘值只替換其中的郵箱與 API Key
func Parameters(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if IsSensitiveKey(k) {
			out[k] = Password(v)
			continue
		}
		out[k] = Value(v)
	}
	return out
}

// SortedKeys 返回排序後的參數名，日誌輸出保持穩定
func SortedKeys(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value 對單個值做正則脫敏
func Value(s string) string {
	if !strings.Contains(s, "@") && !strings.Contains(s, "_") {
		return s
	}

	s = emailRegex.ReplaceAllStringFunc(s, Email)
	s = apiKeyRegex.ReplaceAllStringFunc(s, APIKey)
	return s
}

// Password 密碼全脫敏
func Password(s string) string {
	if s == "" {
		return ""
	}
	return "***MASKED***"
}

// APIKey API Key 脫敏 (保留前綴)
func APIKey(s string) string {
	if len(s) < 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}

// Email 郵箱脫敏
func Email(s string) string {
	at := strings.Index(s, "@")
	if at <= 1 {
		return s
	}
	name := s[:at]
	domain := s[at:]

	if len(name) > 2 {
		return name[:2] + "***" + domain
	}
	return name[:1] + "***" + domain
}
