//go:build linux

package fsops

import (
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

func statvfsOS(fsys *afero.OsFs, root string) (DiskUsage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(root, &st); err != nil {
		return DiskUsage{}, err
	}
	blockSize := uint64(st.Bsize)
	return DiskUsage{
		TotalBytes: st.Blocks * blockSize,
		FreeBytes:  st.Bfree * blockSize,
	}, nil
}
