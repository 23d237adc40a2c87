package config

import (
	"testing"
)

func TestCredentialStorePlainTextRoundtrip(t *testing.T) {
	dir := t.TempDir()

	store := NewCredentialStore(SecurityPlainText, "")
	store.SetSession(Session{
		AccessToken: "tok-abc",
		Username:    "hong@example.com",
		Nickname:    "길동",
	})
	if err := store.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := NewCredentialStore(SecurityPlainText, "")
	if err := loaded.Load(dir); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !loaded.SignedIn() {
		t.Fatal("expected signed-in store after load")
	}
	if loaded.Token() != "tok-abc" {
		t.Errorf("token = %q", loaded.Token())
	}
	if loaded.Session().Nickname != "길동" {
		t.Errorf("nickname = %q", loaded.Session().Nickname)
	}
}

func TestCredentialStoreMissingFileIsSignedOut(t *testing.T) {
	store := NewCredentialStore(SecurityPlainText, "")
	if err := store.Load(t.TempDir()); err != nil {
		t.Fatalf("Load of missing file should not error: %v", err)
	}
	if store.SignedIn() {
		t.Error("expected signed-out store")
	}
}

func TestCredentialStoreDelete(t *testing.T) {
	dir := t.TempDir()

	store := NewCredentialStore(SecurityPlainText, "")
	store.SetSession(Session{AccessToken: "tok"})
	if err := store.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(dir); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	fresh := NewCredentialStore(SecurityPlainText, "")
	if err := fresh.Load(dir); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if fresh.SignedIn() {
		t.Error("session should be gone after delete")
	}
}

func TestEncryptDecryptAESGCM(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	plaintext := []byte(`{"access_token":"secret"}`)
	ciphertext, err := encryptAESGCM(plaintext, key)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if string(ciphertext) == string(plaintext) {
		t.Fatal("ciphertext equals plaintext")
	}

	decrypted, err := decryptAESGCM(ciphertext, key)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("roundtrip mismatch: %q", decrypted)
	}

	// Tampered ciphertext must not decrypt.
	ciphertext[len(ciphertext)-1] ^= 0xff
	if _, err := decryptAESGCM(ciphertext, key); err == nil {
		t.Error("tampered ciphertext decrypted successfully")
	}
}
