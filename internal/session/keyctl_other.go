//go:build !linux

package session

import "fmt"

// KernelStore is only available on Linux.
type KernelStore struct{}

// NewKernelStore always fails on non-Linux platforms.
func NewKernelStore(_ string) (*KernelStore, error) {
	return nil, fmt.Errorf("kernel keyring is only available on Linux")
}

func (k *KernelStore) Load() (string, error) { return "", nil }
func (k *KernelStore) Save(string) error     { return fmt.Errorf("kernel keyring is only available on Linux") }
func (k *KernelStore) Clear() error          { return nil }
func (k *KernelStore) Name() string          { return "kernel keyring" }
