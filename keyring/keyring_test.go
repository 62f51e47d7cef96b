package keyring

import (
	"crypto/sha256"
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/pbkdf2"

	"github.com/steve-ongera/dbswitch/common"
)

// useTempStore forces the local backend into a temp directory and
// restores the previous state when the test ends.
func useTempStore(t *testing.T) {
	t.Helper()

	prevUseLocal := useLocalStorage
	prevStore := localStore
	prevFile := localStoreFile
	prevKey := encryptionKey

	useLocalStorage = true
	localStore = make(map[string]string)
	localStoreFile = filepath.Join(t.TempDir(), common.CredentialsFileName)
	encryptionKey = pbkdf2.Key([]byte("test-key"), keySalt, keyIterations, 32, sha256.New)

	t.Cleanup(func() {
		useLocalStorage = prevUseLocal
		localStore = prevStore
		localStoreFile = prevFile
		encryptionKey = prevKey
	})
}

func TestEncryptDecrypt(t *testing.T) {
	useTempStore(t)

	plaintext := []byte(`{"target-1":"hunter2"}`)

	encrypted, err := encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt() error = %v", err)
	}
	if string(encrypted) == string(plaintext) {
		t.Error("encrypt() should not return the plaintext")
	}

	decrypted, err := decrypt(encrypted)
	if err != nil {
		t.Fatalf("decrypt() error = %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("decrypt() = %q, want %q", decrypted, plaintext)
	}
}

func TestDecrypt_Garbage(t *testing.T) {
	useTempStore(t)

	if _, err := decrypt([]byte("not base64 ciphertext!!")); err == nil {
		t.Error("decrypt() should fail on garbage input")
	}
}

func TestStoreGetDelete(t *testing.T) {
	useTempStore(t)

	if err := Store("target-1", "hunter2"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	password, err := Get("target-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if password != "hunter2" {
		t.Errorf("Get() = %q, want %q", password, "hunter2")
	}

	if err := Delete("target-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := Get("target-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestStore_Validation(t *testing.T) {
	useTempStore(t)

	if err := Store("", "password"); err == nil {
		t.Error("Store() should reject an empty target ID")
	}
	if err := Store("target-1", ""); err == nil {
		t.Error("Store() should reject an empty password")
	}
	if _, err := Get(""); err == nil {
		t.Error("Get() should reject an empty target ID")
	}
	if err := Delete(""); err == nil {
		t.Error("Delete() should reject an empty target ID")
	}
}

func TestExists(t *testing.T) {
	useTempStore(t)

	if Exists("target-1") {
		t.Error("Exists() should be false before storing")
	}

	if err := Store("target-1", "hunter2"); err != nil {
		t.Fatal(err)
	}

	if !Exists("target-1") {
		t.Error("Exists() should be true after storing")
	}
}

func TestLocalStore_Persistence(t *testing.T) {
	useTempStore(t)

	if err := Store("target-1", "hunter2"); err != nil {
		t.Fatal(err)
	}

	// Drop the in-memory map and reload from the encrypted file.
	localStore = make(map[string]string)
	loadLocalStore()

	password, err := Get("target-1")
	if err != nil {
		t.Fatalf("Get() after reload error = %v", err)
	}
	if password != "hunter2" {
		t.Errorf("Get() after reload = %q, want %q", password, "hunter2")
	}
}

func TestRing_ImplementsCredentialStore(t *testing.T) {
	useTempStore(t)

	var store common.CredentialStore = Ring{}

	if err := store.Store("target-ring", "secret"); err != nil {
		t.Fatalf("Ring.Store() error = %v", err)
	}

	password, err := store.Get("target-ring")
	if err != nil {
		t.Fatalf("Ring.Get() error = %v", err)
	}
	if password != "secret" {
		t.Errorf("Ring.Get() = %q, want %q", password, "secret")
	}

	if err := store.Delete("target-ring"); err != nil {
		t.Fatalf("Ring.Delete() error = %v", err)
	}
}
