//go:build linux || darwin

package filesystem

import "syscall"

// DiskFree returns the free bytes on the filesystem containing path.
func DiskFree(path string) (int64, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return 0, err
	}
	return int64(st.Bavail) * int64(st.Bsize), nil
}
