//go:build linux

package attr

import (
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// Linux's vfat driver exposes the DOS attribute byte through two ioctls
// defined in <linux/msdos_fs.h>. They operate on a file descriptor, not a
// path, so every call here opens and closes the target file.
const (
	fatIoctlGetAttributes = 0x80047210
	fatIoctlSetAttributes = 0x40047211
)

func readFATAttrOS(fsys *afero.OsFs, hostPath string) (byte, bool) {
	f, err := os.Open(hostPath)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	v, err := unix.IoctlGetInt(int(f.Fd()), fatIoctlGetAttributes)
	if err != nil {
		return 0, false
	}
	return byte(v), true
}

func writeFATAttrOS(fsys *afero.OsFs, hostPath string, fatAttr byte) error {
	f, err := os.OpenFile(hostPath, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	return unix.IoctlSetPointerInt(int(f.Fd()), fatIoctlSetAttributes, int(fatAttr))
}
