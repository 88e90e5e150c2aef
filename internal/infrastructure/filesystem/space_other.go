//go:build !linux && !darwin

package filesystem

import "errors"

// DiskFree is not implemented on this platform.
func DiskFree(string) (int64, error) {
	return 0, errors.ErrUnsupported
}
