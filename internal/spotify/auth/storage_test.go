package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenStorage(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")

	storage, err := NewTokenStorage(tokenPath)
	if err != nil {
		t.Fatalf("NewTokenStorage() error = %v", err)
	}

	if storage.Exists() {
		t.Error("Exists() = true, want false for new storage")
	}

	token, err := storage.Get()
	if err != nil {
		t.Errorf("Get() error = %v", err)
	}
	if token != nil {
		t.Error("Get() should return nil for non-existent token")
	}

	testToken := &oauth2.Token{
		AccessToken:  "access_123",
		TokenType:    "Bearer",
		RefreshToken: "refresh_456",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}

	if err := storage.Set(testToken); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if !storage.Exists() {
		t.Error("Exists() = false after set, want true")
	}

	loaded, err := storage.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if loaded.AccessToken != testToken.AccessToken {
		t.Errorf("AccessToken = %q, want %q", loaded.AccessToken, testToken.AccessToken)
	}
	if loaded.RefreshToken != testToken.RefreshToken {
		t.Errorf("RefreshToken = %q, want %q", loaded.RefreshToken, testToken.RefreshToken)
	}
	if !loaded.Expiry.Equal(testToken.Expiry) {
		t.Errorf("Expiry = %v, want %v", loaded.Expiry, testToken.Expiry)
	}

	info, err := os.Stat(tokenPath)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("File permissions = %o, want 0600", mode)
	}

	if err := storage.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if storage.Exists() {
		t.Error("Exists() = true after clear, want false")
	}
}

func TestTokenStorageNestedDirectory(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "nested", "dir", "token.json")

	storage, err := NewTokenStorage(tokenPath)
	if err != nil {
		t.Fatalf("NewTokenStorage() error = %v", err)
	}

	if err := storage.Set(&oauth2.Token{AccessToken: "test"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !storage.Exists() {
		t.Error("Token file not created in nested directory")
	}
}

func TestTokenStorageSetNilClears(t *testing.T) {
	storage, _ := NewTokenStorage(filepath.Join(t.TempDir(), "token.json"))
	_ = storage.Set(&oauth2.Token{AccessToken: "test"})

	if err := storage.Set(nil); err != nil {
		t.Fatalf("Set(nil) error = %v", err)
	}
	if storage.Exists() {
		t.Error("Set(nil) should remove the stored token")
	}
}

func TestTokenStorageCorruptFile(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(tokenPath, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	storage, _ := NewTokenStorage(tokenPath)
	if _, err := storage.Get(); err == nil {
		t.Error("Get() expected error for corrupt token file")
	}
}

func TestTokenStorageClearNonExistent(t *testing.T) {
	storage, err := NewTokenStorage(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("NewTokenStorage() error = %v", err)
	}

	if err := storage.Clear(); err != nil {
		t.Errorf("Clear() on non-existent file error = %v", err)
	}
}

func TestTokenStoragePath(t *testing.T) {
	path := "/custom/path/token.json"
	storage, err := NewTokenStorage(path)
	if err != nil {
		t.Fatalf("NewTokenStorage() error = %v", err)
	}

	if storage.Path() != path {
		t.Errorf("Path() = %q, want %q", storage.Path(), path)
	}
}
