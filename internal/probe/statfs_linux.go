//go:build linux

package probe

import "golang.org/x/sys/unix"

// statfsAvail returns the bytes available to unprivileged users on the
// filesystem holding path.
func statfsAvail(path string) (int64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return int64(st.Bavail) * st.Bsize, nil
}
