package session

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/99designs/keyring"
)

const sessionTokenKey = "session-token"

// KeyringStore keeps the token in the platform keyring.
// On macOS: Keychain. On Linux: Secret Service (GNOME Keyring / KDE Wallet).
type KeyringStore struct {
	ring    keyring.Keyring
	backend string
}

// OpenKeyring opens the platform-native keyring under service.
func OpenKeyring(service string) (*KeyringStore, error) {
	backends := platformKeyringBackends()
	if len(backends) == 0 {
		return nil, fmt.Errorf("no keyring backend available on %s", runtime.GOOS)
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:                    service,
		AllowedBackends:                backends,
		KeychainTrustApplication:       true,
		KeychainAccessibleWhenUnlocked: true,
		KeychainSynchronizable:         false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	return NewKeyringStore(ring, keyringBackendName()), nil
}

// NewKeyringStore wraps an already opened keyring.
func NewKeyringStore(ring keyring.Keyring, backend string) *KeyringStore {
	return &KeyringStore{ring: ring, backend: backend}
}

func (k *KeyringStore) Load() (string, error) {
	item, err := k.ring.Get(sessionTokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read from %s: %w", k.backend, err)
	}
	return string(item.Data), nil
}

func (k *KeyringStore) Save(token string) error {
	err := k.ring.Set(keyring.Item{
		Key:         sessionTokenKey,
		Data:        []byte(token),
		Label:       "stakedash session",
		Description: "Session token for the staking dashboard backend",
	})
	if err != nil {
		return fmt.Errorf("failed to store in %s: %w", k.backend, err)
	}
	return nil
}

func (k *KeyringStore) Clear() error {
	err := k.ring.Remove(sessionTokenKey)
	if err == nil || errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return fmt.Errorf("failed to remove from %s: %w", k.backend, err)
}

func (k *KeyringStore) Name() string {
	return k.backend
}

// platformKeyringBackends returns the keyring backends for the current platform.
func platformKeyringBackends() []keyring.BackendType {
	switch runtime.GOOS {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend}
	case "linux":
		return []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
		}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend}
	default:
		return nil
	}
}

// keyringBackendName returns a human-readable name for the platform keyring.
func keyringBackendName() string {
	switch runtime.GOOS {
	case "darwin":
		return "macOS Keychain"
	case "linux":
		return "Secret Service"
	case "windows":
		return "Windows Credential Manager"
	default:
		return "system keyring"
	}
}
