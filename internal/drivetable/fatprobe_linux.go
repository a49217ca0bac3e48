//go:build linux

package drivetable

import "golang.org/x/sys/unix"

// msdosSuperMagic is the statfs f_type of a mounted FAT filesystem
// (linux/magic.h MSDOS_SUPER_MAGIC); vfat and msdos mounts both report it.
const msdosSuperMagic = 0x4d44

// ProbeFAT reports whether the filesystem backing root is a real FAT
// mount. The answer is captured once at startup and never re-checked; a
// drive swapped out from under a running server will not be re-detected.
func ProbeFAT(root string) (bool, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(root, &st); err != nil {
		return false, err
	}
	return st.Type == msdosSuperMagic, nil
}
