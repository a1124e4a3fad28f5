// Package settings persists the values written by `graphmail configure`:
// application (client) ID, tenant ID, refresh token and the mailbox owner
// address. The file is encrypted at rest with AES-GCM under a locally
// generated key. The short-lived access token is never written here.
package settings

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

const (
	settingsDir  = ".local/graphmail"
	settingsFile = "settings.enc"
	keyFile      = ".key"
)

// Settings holds the configure-written mailbox configuration.
type Settings struct {
	ClientID     string `json:"client_id"`
	TenantID     string `json:"tenant_id"`
	RefreshToken string `json:"refresh_token"`
	OwnerAddress string `json:"owner_address"`
}

// Store reads and writes the encrypted settings file.
type Store struct {
	basePath string
	key      []byte
}

// NewStore opens (creating if needed) the settings directory under the
// user's home directory and loads or generates the encryption key.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "resolving home directory")
	}
	return NewStoreAt(filepath.Join(homeDir, settingsDir))
}

// NewStoreAt opens a store rooted at basePath.
func NewStoreAt(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0700); err != nil {
		return nil, errors.Wrap(err, "creating settings directory")
	}

	s := &Store{basePath: basePath}
	if err := s.loadOrGenerateKey(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) loadOrGenerateKey() error {
	keyPath := filepath.Join(s.basePath, keyFile)

	keyData, err := os.ReadFile(keyPath)
	if err == nil && len(keyData) == 32 {
		s.key = keyData
		return nil
	}

	s.key = make([]byte, 32)
	if _, err := rand.Read(s.key); err != nil {
		return errors.Wrap(err, "generating encryption key")
	}
	if err := os.WriteFile(keyPath, s.key, 0600); err != nil {
		return errors.Wrap(err, "writing encryption key")
	}
	return nil
}

// Save encrypts and writes the settings file.
func (s *Store) Save(settings *Settings) error {
	jsonData, err := json.Marshal(settings)
	if err != nil {
		return errors.Wrap(err, "marshaling settings")
	}

	encrypted, err := s.encrypt(jsonData)
	if err != nil {
		return errors.Wrap(err, "encrypting settings")
	}

	path := filepath.Join(s.basePath, settingsFile)
	if err := os.WriteFile(path, encrypted, 0600); err != nil {
		return errors.Wrap(err, "writing settings file")
	}
	return nil
}

// Load reads and decrypts the settings file. Returns (nil, nil) when no
// settings have been saved yet.
func (s *Store) Load() (*Settings, error) {
	path := filepath.Join(s.basePath, settingsFile)

	encrypted, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading settings file")
	}

	decrypted, err := s.decrypt(encrypted)
	if err != nil {
		return nil, errors.Wrap(err, "decrypting settings")
	}

	var settings Settings
	if err := json.Unmarshal(decrypted, &settings); err != nil {
		return nil, errors.Wrap(err, "unmarshaling settings")
	}
	return &settings, nil
}

// Delete removes the settings file. Missing file is not an error.
func (s *Store) Delete() error {
	err := os.Remove(filepath.Join(s.basePath, settingsFile))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting settings file")
	}
	return nil
}

// BasePath returns the directory holding the settings and key files.
func (s *Store) BasePath() string {
	return s.basePath
}

func (s *Store) encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
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

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *Store) decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
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
