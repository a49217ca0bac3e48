package attr

import (
	"github.com/spf13/afero"

	"github.com/etherdfs/ethersrv/internal/nametrans"
)

// FileProps is the fixed-size per-file record returned on the wire for
// OPEN/CREATE/FINDFIRST/FINDNEXT.
type FileProps struct {
	FCBName [nametrans.FCBLen]byte
	Fattr   byte
	Ftime   uint32
	Fsize   uint32
}

// ErrAttr is the attribute byte Stat reports when the host stat call
// fails; callers interpret it as an error marker, not a real attribute.
const ErrAttr = 0xFF

// Stat computes the DOS attribute byte, DOS-packed mtime, and size for
// hostPath:
//
//   - if stat fails, fattr = 0xFF (the caller interprets this as an error,
//     not a real attribute byte);
//   - directories get fattr = AttrDir, size 0;
//   - everything else: if fatBacked and the platform exposes FAT attribute
//     ioctls, use the real DOS byte as-is; otherwise synthesize AttrArchive,
//     plus AttrReadOnly when the host inode is write-protected, so DELETE
//     and SETATTR-era clients see read-only files as read-only even off
//     FAT.
//
// ftime is always computed from the inode mtime, regardless of backing.
func Stat(fsys afero.Fs, hostPath string, fatBacked bool) (fattr byte, ftime uint32, fsize uint32, err error) {
	fi, statErr := fsys.Stat(hostPath)
	if statErr != nil {
		return ErrAttr, 0, 0, statErr
	}

	ftime = PackDOSTime(fi.ModTime())

	if fi.IsDir() {
		return nametrans.AttrDir, ftime, 0, nil
	}

	fsize = uint32(fi.Size())

	if fatBacked {
		if fatAttr, ok := readFATAttr(fsys, hostPath); ok {
			return fatAttr, ftime, fsize, nil
		}
	}

	fattr = nametrans.AttrArchive
	if fi.Mode()&0o222 == 0 {
		fattr |= nametrans.AttrReadOnly
	}
	return fattr, ftime, fsize, nil
}

// SetAttr writes the DOS attribute byte through to the host: a no-op on
// non-FAT backing stores, a real write-through on FAT backing.
func SetAttr(fsys afero.Fs, hostPath string, fatAttr byte, fatBacked bool) error {
	if !fatBacked {
		return nil
	}
	return writeFATAttr(fsys, hostPath, fatAttr)
}

// readFATAttr attempts to read the real DOS attribute byte through a FAT
// ioctl. It only succeeds when fsys is backed by the real OS filesystem
// (afero.OsFs) on a platform that exposes the FAT_IOCTL_GET_ATTRIBUTES
// ioctl (Linux with a vfat mount); everything else reports !ok so callers
// fall back to synthesizing the attribute byte.
func readFATAttr(fsys afero.Fs, hostPath string) (byte, bool) {
	osFs, ok := fsys.(*afero.OsFs)
	if !ok {
		return 0, false
	}
	return readFATAttrOS(osFs, hostPath)
}

func writeFATAttr(fsys afero.Fs, hostPath string, fatAttr byte) error {
	osFs, ok := fsys.(*afero.OsFs)
	if !ok {
		return nil
	}
	return writeFATAttrOS(osFs, hostPath, fatAttr)
}
