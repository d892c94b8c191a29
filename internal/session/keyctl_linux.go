//go:build linux

package session

import (
	"fmt"
	"os/exec"
	"strings"
)

// KernelStore keeps the token in the Linux kernel user keyring. The key
// lives in kernel memory only and is lost on reboot.
// Requires the `keyctl` command (package: keyutils).
type KernelStore struct {
	keyName string
}

// NewKernelStore returns a kernel keyring store if keyctl is installed.
func NewKernelStore(keyName string) (*KernelStore, error) {
	if _, err := exec.LookPath("keyctl"); err != nil {
		return nil, fmt.Errorf("kernel keyring unavailable: %w", err)
	}
	return &KernelStore{keyName: keyName}, nil
}

func (k *KernelStore) search() (string, bool) {
	out, err := exec.Command("keyctl", "search", "@u", "user", k.keyName).Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

func (k *KernelStore) Load() (string, error) {
	keyID, ok := k.search()
	if !ok {
		return "", nil
	}
	out, err := exec.Command("keyctl", "pipe", keyID).Output()
	if err != nil {
		return "", fmt.Errorf("keyctl pipe failed: %w", err)
	}
	return string(out), nil
}

func (k *KernelStore) Save(token string) error {
	cmd := exec.Command("keyctl", "padd", "user", k.keyName, "@u")
	cmd.Stdin = strings.NewReader(token)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("keyctl padd failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (k *KernelStore) Clear() error {
	keyID, ok := k.search()
	if !ok {
		return nil
	}
	if out, err := exec.Command("keyctl", "unlink", keyID, "@u").CombinedOutput(); err != nil {
		return fmt.Errorf("keyctl unlink failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (k *KernelStore) Name() string {
	return "kernel keyring"
}
