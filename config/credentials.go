package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SecurityMethod defines how the bearer token is stored at rest
type SecurityMethod string

const (
	SecurityPlainText SecurityMethod = "plaintext"
	SecuritySSHKey    SecurityMethod = "ssh_key"
)

// Session is the persisted identity state: the bearer credential issued by
// the backend plus a display snapshot of the signed-in user. The rest of
// the program only ever reads it - sign-in and sign-out are the sole
// writers.
type Session struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
	Nickname    string `json:"nickname"`
}

// CredentialStore manages the stored session, plaintext or SSH-key
// encrypted.
type CredentialStore struct {
	method     SecurityMethod
	sshKeyPath string
	passphrase string
	encManager *EncryptionManager
	session    Session
}

// NewCredentialStore creates a credential store for the given method.
func NewCredentialStore(method SecurityMethod, sshKeyPath string) *CredentialStore {
	return &CredentialStore{
		method:     method,
		sshKeyPath: sshKeyPath,
	}
}

// SetPassphrase sets the passphrase for decrypting the SSH key
func (c *CredentialStore) SetPassphrase(passphrase string) {
	c.passphrase = passphrase
	if c.encManager != nil {
		c.encManager.SetPassphrase(passphrase)
	}
}

// Token returns the stored bearer token, empty when signed out.
func (c *CredentialStore) Token() string {
	return c.session.AccessToken
}

// Session returns a copy of the current identity snapshot.
func (c *CredentialStore) Session() Session {
	return c.session
}

// SignedIn reports whether a bearer token is present.
func (c *CredentialStore) SignedIn() bool {
	return c.session.AccessToken != ""
}

// SetSession replaces the stored session (sign-in).
func (c *CredentialStore) SetSession(session Session) {
	c.session = session
}

// Clear wipes the stored session (sign-out).
func (c *CredentialStore) Clear() {
	c.session = Session{}
}

// Load reads the session from disk. A missing file is not an error - the
// user is simply signed out.
func (c *CredentialStore) Load(dataDir string) error {
	switch c.method {
	case SecurityPlainText:
		path := sessionPath(dataDir)
		if !FileExists(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read session file: %w", err)
		}
		if err := json.Unmarshal(data, &c.session); err != nil {
			return fmt.Errorf("failed to parse session file: %w", err)
		}
		return nil

	case SecuritySSHKey:
		path := encryptedSessionPath(dataDir)
		if !FileExists(path) {
			return nil
		}
		if err := c.ensureEncryption(); err != nil {
			return err
		}
		encrypted, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read encrypted session: %w", err)
		}
		data, err := c.encManager.Decrypt(encrypted)
		if err != nil {
			return fmt.Errorf("failed to decrypt session: %w", err)
		}
		if err := json.Unmarshal(data, &c.session); err != nil {
			return fmt.Errorf("failed to parse decrypted session: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown security method: %s", c.method)
	}
}

// Save writes the session to disk with user-only permissions.
func (c *CredentialStore) Save(dataDir string) error {
	data, err := json.MarshalIndent(c.session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	switch c.method {
	case SecurityPlainText:
		if err := os.WriteFile(sessionPath(dataDir), data, 0600); err != nil {
			return fmt.Errorf("failed to write session file: %w", err)
		}
		return nil

	case SecuritySSHKey:
		if err := c.ensureEncryption(); err != nil {
			return err
		}
		encrypted, err := c.encManager.Encrypt(data)
		if err != nil {
			return fmt.Errorf("failed to encrypt session: %w", err)
		}
		if err := os.WriteFile(encryptedSessionPath(dataDir), encrypted, 0600); err != nil {
			return fmt.Errorf("failed to write encrypted session: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown security method: %s", c.method)
	}
}

// Delete removes the on-disk session (both variants, sign-out path).
func (c *CredentialStore) Delete(dataDir string) error {
	for _, path := range []string{sessionPath(dataDir), encryptedSessionPath(dataDir)} {
		if FileExists(path) {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove session file: %w", err)
			}
		}
	}
	return nil
}

func (c *CredentialStore) ensureEncryption() error {
	if c.encManager == nil || c.passphrase != "" {
		c.encManager = NewEncryptionManager(EncryptionSSHKey, c.sshKeyPath)
		c.encManager.SetPassphrase(c.passphrase)
		if err := c.encManager.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize encryption: %w", err)
		}
	}
	return nil
}

func sessionPath(dataDir string) string {
	return filepath.Join(dataDir, "session.json")
}

func encryptedSessionPath(dataDir string) string {
	return filepath.Join(dataDir, "session.enc")
}
