//go:build !linux

package fsops

import "github.com/spf13/afero"

func statvfsOS(fsys *afero.OsFs, root string) (DiskUsage, error) {
	return DiskUsage{TotalBytes: 1 << 30, FreeBytes: 1 << 30}, nil
}
