package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/Yat-Muk/sectool/internal/pkg/errors"
)

func writeKey(t *testing.T, path string) {
	t.Helper()
	rawKey := make([]byte, KeySize)
	if _, err := rand.Read(rawKey); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(rawKey)), 0600); err != nil {
		t.Fatal(err)
	}
}

// TestNewEncryptor 測試密鑰加載與初始化
func TestNewEncryptor(t *testing.T) {
	t.Setenv(EnvMasterKey, "")
	tempDir := t.TempDir()

	// 1. 合法密鑰文件
	keyPath := filepath.Join(tempDir, "test.key")
	writeKey(t, keyPath)

	enc, err := NewEncryptor(keyPath)
	if err != nil {
		t.Fatalf("Failed to create encryptor with valid key: %v", err)
	}
	if enc == nil {
		t.Fatal("Encryptor instance is nil")
	}

	// 2. 無效密鑰 (長度錯誤)
	badKeyPath := filepath.Join(tempDir, "bad.key")
	if err := os.WriteFile(badKeyPath, []byte("short-key"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewEncryptor(badKeyPath); !errors.Is(err, apperrors.ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}

	// 3. 文件不存在時自動生成
	genPath := filepath.Join(tempDir, "nested", "gen.key")
	if _, err := NewEncryptor(genPath); err != nil {
		t.Fatalf("auto-generate failed: %v", err)
	}
	info, err := os.Stat(genPath)
	if err != nil {
		t.Fatalf("key file not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("key file mode = %v, want 0600", info.Mode().Perm())
	}
}

// TestEncryptDecrypt 測試加密解密完整流程
func TestEncryptDecrypt(t *testing.T) {
	t.Setenv(EnvMasterKey, "")
	keyPath := filepath.Join(t.TempDir(), "enc.key")
	writeKey(t, keyPath)

	enc, err := NewEncryptor(keyPath)
	if err != nil {
		t.Fatal(err)
	}

	plainText := "correct horse battery staple"

	cipherText, err := enc.Encrypt(plainText)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if !IsEncrypted(cipherText) {
		t.Errorf("ciphertext %q lacks prefix", cipherText)
	}

	decrypted, err := enc.Decrypt(cipherText)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if decrypted != plainText {
		t.Errorf("Decryption mismatch.\nWant: %s\nGot: %s", plainText, decrypted)
	}

	// 同一密鑰重新加載後仍可解密
	again, err := NewEncryptor(keyPath)
	if err != nil {
		t.Fatal(err)
	}
	if got, err := again.Decrypt(cipherText); err != nil || got != plainText {
		t.Errorf("reloaded decrypt = %q, %v", got, err)
	}
}

func TestEncrypt_Empty(t *testing.T) {
	enc := NewPassphraseEncryptor("pw", make([]byte, SaltSize))
	got, err := enc.Encrypt("")
	if err != nil || got != "" {
		t.Errorf("Encrypt(\"\") = %q, %v", got, err)
	}
}

func TestDecrypt_Errors(t *testing.T) {
	enc := NewPassphraseEncryptor("pw", make([]byte, SaltSize))

	if _, err := enc.Decrypt("plain"); !errors.Is(err, apperrors.ErrNotEncrypted) {
		t.Errorf("expected ErrNotEncrypted, got %v", err)
	}
	if _, err := enc.Decrypt(EncryptedPrefix + "AAAA"); !errors.Is(err, apperrors.ErrMalformedEncrypted) {
		t.Errorf("short ciphertext: expected ErrMalformedEncrypted, got %v", err)
	}
	if _, err := enc.Decrypt(EncryptedPrefix + "not base64!"); !errors.Is(err, apperrors.ErrMalformedEncrypted) {
		t.Errorf("bad encoding: expected ErrMalformedEncrypted, got %v", err)
	}

	other := NewPassphraseEncryptor("other", make([]byte, SaltSize))
	ct, err := other.Encrypt("secret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Decrypt(ct); err == nil || errors.Is(err, apperrors.ErrMalformedEncrypted) {
		t.Errorf("decrypt with wrong key should fail authentication, got %v", err)
	}
}

// TestNewEncryptor_EnvPassphrase 環境變量口令經 argon2 派生，鹽持久化
func TestNewEncryptor_EnvPassphrase(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "master.key")
	t.Setenv(EnvMasterKey, "my long passphrase")

	enc1, err := NewEncryptor(keyPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(keyPath + ".salt"); err != nil {
		t.Fatalf("salt file not created: %v", err)
	}
	if _, err := os.Stat(keyPath); !os.IsNotExist(err) {
		t.Error("key file should not be written in passphrase mode")
	}

	ct, err := enc1.Encrypt("payload")
	if err != nil {
		t.Fatal(err)
	}

	enc2, err := NewEncryptor(keyPath)
	if err != nil {
		t.Fatal(err)
	}
	if got, err := enc2.Decrypt(ct); err != nil || got != "payload" {
		t.Errorf("decrypt with re-derived key = %q, %v", got, err)
	}
}

func TestNewEncryptor_EnvHexKey(t *testing.T) {
	raw := make([]byte, KeySize)
	for i := range raw {
		raw[i] = byte(i)
	}
	t.Setenv(EnvMasterKey, hex.EncodeToString(raw))

	keyPath := filepath.Join(t.TempDir(), "master.key")
	enc, err := NewEncryptor(keyPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(enc.key) != string(raw) {
		t.Error("hex key from env not used verbatim")
	}
	if _, err := os.Stat(keyPath + ".salt"); !os.IsNotExist(err) {
		t.Error("salt file should not be written for a raw key")
	}
}

// TestIsEncrypted 測試判斷字符串是否已加密
func TestIsEncrypted(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"Plain text", false},
		{"", false},
		{"enc:abc", true},
		{"ENC:abc", false},
	}

	for _, tt := range tests {
		if got := IsEncrypted(tt.input); got != tt.expected {
			t.Errorf("IsEncrypted(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

// TestHMAC 測試完整性校驗
func TestHMAC(t *testing.T) {
	enc := NewPassphraseEncryptor("hmac-pass", make([]byte, SaltSize))
	data := []byte("version: 1\ntools: []\n")

	signature := enc.ComputeHMAC(data)
	if len(signature) != 64 {
		t.Fatalf("HMAC 長度錯誤: %d", len(signature))
	}
	if !enc.VerifyHMAC(data, signature) {
		t.Error("合法數據校驗失敗")
	}
	if enc.VerifyHMAC([]byte("tampered"), signature) {
		t.Error("篡改數據不應通過校驗")
	}

	other := NewPassphraseEncryptor("other-pass", make([]byte, SaltSize))
	if other.VerifyHMAC(data, signature) {
		t.Error("不同密鑰不應通過校驗")
	}
}
