package download

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// diskFree reports free bytes available to unprivileged users on the
// filesystem containing path. Overridable in tests.
var diskFree = func(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return st.Bavail * uint64(st.Bsize), nil
}

// checkDiskSpace verifies the filesystem at dir has room for need more
// bytes. A failed statfs is not treated as full; the download proceeds and
// fails on write instead.
func checkDiskSpace(dir string, need int64) error {
	if need <= 0 {
		return nil
	}
	free, err := diskFree(dir)
	if err != nil {
		return nil
	}
	if uint64(need) > free {
		return fmt.Errorf("%w: need %d bytes, %d available in %s", ErrDiskSpace, need, free, dir)
	}
	return nil
}
