//go:build !linux

package attr

import "github.com/spf13/afero"

// Non-Linux platforms have no equivalent of the vfat ioctl pair; the
// attribute byte is always synthesized.
func readFATAttrOS(fsys *afero.OsFs, hostPath string) (byte, bool) {
	return 0, false
}

func writeFATAttrOS(fsys *afero.OsFs, hostPath string, fatAttr byte) error {
	return nil
}
