//go:build !windows

package pathheal

// NewEnvStore returns ErrUnsupported: only Windows has a native per-user environment store.
func NewEnvStore() (EnvStore, error) {
	return nil, ErrUnsupported
}
