// Package keyring provides secure credential storage for targets.
// It uses the system keyring when available, falling back to
// encrypted local file storage when not.
package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/pbkdf2"

	"github.com/steve-ongera/dbswitch/common"
)

const (
	// serviceName is the identifier used in the system keyring.
	serviceName = "dbswitch"

	// keyIterations is the PBKDF2 round count for the local store key.
	keyIterations = 4096
)

// keySalt is fixed per application; the derived key varies with the
// machine, not the salt.
var keySalt = []byte("dbswitch-credential-store")

// ErrNotFound - re-exported from common package for convenience.
var ErrNotFound = common.ErrCredentialsNotFound

// Storage backend state
var (
	useLocalStorage bool
	localStoreMu    sync.RWMutex
	localStore      map[string]string
	localStoreFile  string
	encryptionKey   []byte
	initialized     bool
)

// init initializes the storage backend
func init() {
	initStorage()
}

func initStorage() {
	if initialized {
		return
	}

	// Try system keyring first
	testKey := "dbswitch-test-init"
	err := keyring.Set(serviceName, testKey, "test")
	if err == nil {
		keyring.Delete(serviceName, testKey)
		useLocalStorage = false
	} else {
		useLocalStorage = true
		initLocalStorage()
	}
	initialized = true
}

func initLocalStorage() {
	configDir, err := common.GetConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config", common.ConfigDirName)
		os.MkdirAll(configDir, 0700)
	}
	localStoreFile = filepath.Join(configDir, common.CredentialsFileName)

	// Derive the encryption key from machine-specific data, so the
	// store only decrypts on the machine that wrote it.
	hostname, _ := os.Hostname()
	keyData := fmt.Sprintf("dbswitch-%s-%s-%d", hostname, getMachineID(), os.Getuid())
	encryptionKey = pbkdf2.Key([]byte(keyData), keySalt, keyIterations, 32, sha256.New)

	// Load existing credentials
	localStore = make(map[string]string)
	loadLocalStore()
}

func getMachineID() string {
	// Try to read machine-id
	data, err := os.ReadFile("/etc/machine-id")
	if err == nil {
		return strings.TrimSpace(string(data))
	}
	// Fallback
	return "default-machine-id"
}

func loadLocalStore() {
	data, err := os.ReadFile(localStoreFile)
	if err != nil {
		return
	}

	decrypted, err := decrypt(data)
	if err != nil {
		return
	}

	json.Unmarshal(decrypted, &localStore)
}

func saveLocalStore() error {
	localStoreMu.RLock()
	data, err := json.Marshal(localStore)
	localStoreMu.RUnlock()
	if err != nil {
		return err
	}

	encrypted, err := encrypt(data)
	if err != nil {
		return err
	}

	return os.WriteFile(localStoreFile, encrypted, 0600)
}

func encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return []byte(base64.StdEncoding.EncodeToString(ciphertext)), nil
}

func decrypt(data []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// Store saves a password for a target.
func Store(targetID string, password string) error {
	if targetID == "" {
		return errors.New("target ID cannot be empty")
	}
	if password == "" {
		return errors.New("password cannot be empty")
	}

	if useLocalStorage {
		localStoreMu.Lock()
		localStore[targetID] = password
		localStoreMu.Unlock()
		return saveLocalStore()
	}

	if err := keyring.Set(serviceName, targetID, password); err != nil {
		// Fallback to local storage
		useLocalStorage = true
		initLocalStorage()
		localStoreMu.Lock()
		localStore[targetID] = password
		localStoreMu.Unlock()
		return saveLocalStore()
	}
	return nil
}

// Get retrieves a password for a target.
func Get(targetID string) (string, error) {
	if targetID == "" {
		return "", errors.New("target ID cannot be empty")
	}

	if useLocalStorage {
		localStoreMu.RLock()
		password, exists := localStore[targetID]
		localStoreMu.RUnlock()
		if !exists {
			return "", ErrNotFound
		}
		return password, nil
	}

	password, err := keyring.Get(serviceName, targetID)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		// Try local storage as fallback
		localStoreMu.RLock()
		password, exists := localStore[targetID]
		localStoreMu.RUnlock()
		if exists {
			return password, nil
		}
		return "", ErrNotFound
	}
	return password, nil
}

// Delete removes a password for a target.
func Delete(targetID string) error {
	if targetID == "" {
		return errors.New("target ID cannot be empty")
	}

	if useLocalStorage {
		localStoreMu.Lock()
		delete(localStore, targetID)
		localStoreMu.Unlock()
		return saveLocalStore()
	}

	keyring.Delete(serviceName, targetID)

	// Also remove from local storage if present
	localStoreMu.Lock()
	delete(localStore, targetID)
	localStoreMu.Unlock()
	saveLocalStore()

	return nil
}

// Exists checks if a credential exists for a target.
func Exists(targetID string) bool {
	_, err := Get(targetID)
	return err == nil
}

// Ring adapts the package-level storage functions to
// common.CredentialStore, so surfaces can take the store as an
// injected dependency.
type Ring struct{}

// Store implements common.CredentialStore.
func (Ring) Store(targetID, password string) error {
	return Store(targetID, password)
}

// Get implements common.CredentialStore.
func (Ring) Get(targetID string) (string, error) {
	return Get(targetID)
}

// Delete implements common.CredentialStore.
func (Ring) Delete(targetID string) error {
	return Delete(targetID)
}

var _ common.CredentialStore = Ring{}
