package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Yat-Muk/sectool/internal/pkg/errors"
	"golang.org/x/crypto/argon2"
)

const (
	// EncryptedPrefix 加密值的前綴標識
	EncryptedPrefix = "enc:"
	// KeySize AES-256 密鑰長度
	KeySize = 32
	// SaltSize 口令派生鹽長度
	SaltSize = 16

	// EnvMasterKey 主密鑰環境變量，可為 32 字節 hex/base64 密鑰或任意口令
	EnvMasterKey = "SECTOOL_MASTER_KEY"
)

// argon2id 參數
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Encryptor 加密器 (單密鑰版)
type Encryptor struct {
	key []byte
}

// NewEncryptor 創建加密器
// 優先級：環境變量 > 密鑰文件 > 首次運行自動生成
func NewEncryptor(keyPath string) (*Encryptor, error) {
	// 1. 環境變量：合法密鑰直接使用，否則視為口令
	if v := os.Getenv(EnvMasterKey); v != "" {
		if key, err := decodeKey(v); err == nil {
			return &Encryptor{key: key}, nil
		}
		salt, err := loadOrCreateSalt(keyPath + ".salt")
		if err != nil {
			return nil, fmt.Errorf("加載口令鹽失敗: %w", err)
		}
		return NewPassphraseEncryptor(v, salt), nil
	}

	// 2. 嘗試從文件讀取
	if _, err := os.Stat(keyPath); err == nil {
		content, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("無法讀取密鑰文件: %w", err)
		}
		key, err := decodeKey(strings.TrimSpace(string(content)))
		if err != nil {
			return nil, fmt.Errorf("密鑰文件內容無效: %w", err)
		}
		return &Encryptor{key: key}, nil
	}

	// 3. 自動生成並保存 (首次運行)
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("生成隨機密鑰失敗: %w", err)
	}
	if err := atomicWriteHex(keyPath, key); err != nil {
		return nil, fmt.Errorf("保存新密鑰失敗: %w", err)
	}

	return &Encryptor{key: key}, nil
}

// NewPassphraseEncryptor 以 argon2id 從口令派生密鑰
func NewPassphraseEncryptor(passphrase string, salt []byte) *Encryptor {
	key := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, KeySize)
	return &Encryptor{key: key}
}

func loadOrCreateSalt(path string) ([]byte, error) {
	if content, err := os.ReadFile(path); err == nil {
		salt, err := hex.DecodeString(strings.TrimSpace(string(content)))
		if err != nil || len(salt) != SaltSize {
			return nil, errors.Wrap(errors.ErrInvalidKey, errors.CodeInvalidSalt, "鹽文件內容無效")
		}
		return salt, nil
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	if err := atomicWriteHex(path, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// atomicWriteHex 以 hex 形式原子寫入，權限 600
func atomicWriteHex(filename string, data []byte) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	tmpFile, err := os.CreateTemp(dir, ".masterkey.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(hex.EncodeToString(data)); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return err
	}
	tmpFile.Close()

	if err := os.Chmod(tmpFile.Name(), 0600); err != nil {
		return err
	}
	return os.Rename(tmpFile.Name(), filename)
}

func decodeKey(input string) ([]byte, error) {
	key, err := hex.DecodeString(input)
	if err == nil && len(key) == KeySize {
		return key, nil
	}
	key, err = base64.StdEncoding.DecodeString(input)
	if err == nil && len(key) == KeySize {
		return key, nil
	}
	return nil, errors.Wrap(errors.ErrInvalidKey, errors.CodeInvalidKey, "無效的密鑰格式或長度")
}

// Encrypt 加密，空字符串原樣返回
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	gcm, err := e.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedPrefix + base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt 解密
// 前綴之後不是合法密文結構時返回 ErrMalformedEncrypted，密鑰不匹配時返回認證錯誤
func (e *Encryptor) Decrypt(encrypted string) (string, error) {
	if !IsEncrypted(encrypted) {
		return "", errors.ErrNotEncrypted
	}

	data, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(encrypted, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrMalformedEncrypted, err)
	}

	gcm, err := e.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("%w: 密文數據過短", errors.ErrMalformedEncrypted)
	}

	nonce, ciphertextBytes := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertextBytes, nil)
	if err != nil {
		return "", fmt.Errorf("解密失敗: %w", err)
	}

	return string(plaintext), nil
}

func (e *Encryptor) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// ComputeHMAC 計算 HMAC-SHA256，返回 hex
func (e *Encryptor) ComputeHMAC(data []byte) string {
	h := hmac.New(sha256.New, e.key)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHMAC 常數時間比較
func (e *Encryptor) VerifyHMAC(data []byte, expectedHex string) bool {
	actualHex := e.ComputeHMAC(data)
	return subtle.ConstantTimeCompare([]byte(actualHex), []byte(expectedHex)) == 1
}

// IsEncrypted 檢查字符串是否已加密
func IsEncrypted(text string) bool {
	return strings.HasPrefix(text, EncryptedPrefix)
}
