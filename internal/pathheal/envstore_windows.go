//go:build windows

package pathheal

import (
	"errors"

	"golang.org/x/sys/windows/registry"
)

// RegistryStore reads and writes the Path value under HKCU\Environment.
type RegistryStore struct{}

// NewEnvStore returns the native per-user environment store.
func NewEnvStore() (EnvStore, error) {
	return RegistryStore{}, nil
}

func (RegistryStore) GetPath() (string, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, `Environment`, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	v, _, err := k.GetStringValue("Path")
	if errors.Is(err, registry.ErrNotExist) {
		return "", nil
	}
	return v, err
}

// SetPath writes value, keeping REG_EXPAND_SZ when the existing value uses it or when the
// new value references other variables.
func (RegistryStore) SetPath(value string) error {
	k, err := registry.OpenKey(registry.CURRENT_USER, `Environment`, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()

	_, valType, err := k.GetStringValue("Path")
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return err
	}
	if valType == registry.EXPAND_SZ || containsPercentVar(value) {
		return k.SetExpandStringValue("Path", value)
	}
	return k.SetStringValue("Path", value)
}
