package dispatch

import (
	"path/filepath"

	"github.com/etherdfs/ethersrv/internal/attr"
	"github.com/etherdfs/ethersrv/internal/drivetable"
	"github.com/etherdfs/ethersrv/internal/fsops"
	"github.com/etherdfs/ethersrv/internal/nametrans"
	"github.com/etherdfs/ethersrv/internal/wire"
)

// spopnfil result codes reported in the reply's result word.
const (
	spopOpened    = 1
	spopCreated   = 2
	spopTruncated = 3
)

// dispatchOpenCreate handles OPEN (AL=0x16), CREATE (AL=0x17), and
// SPOPNFIL (AL=0x2E) through one combined path: all three carry the same
// request layout (three u16 words, then the DOS path), differing only in
// which words are meaningful. openmode is echoed back but never enforced
// on a later WRITEFIL; DOS clients depend on the laxity.
func dispatchOpenCreate(ctx *Context, entry *drivetable.Entry, r *wire.Reader, subfunc byte) (uint16, []byte) {
	stackAttr, _ := r.U16()
	action, _ := r.U16()
	spopnMode, _ := r.U16()
	path := r.PathString()

	dir, _ := splitDirAndPattern(path)

	// The parent directory must exist no matter what is being done to the
	// file inside it.
	dirRes := resolve(ctx, entry, dir)
	if dirRes.Partial {
		return AXPathNotFound, nil
	}
	if err := fsops.Chdir(ctx.FS, dirRes.HostPath); err != nil {
		return AXPathNotFound, nil
	}

	res := resolve(ctx, entry, path)
	hostPath := res.HostPath

	var spopres uint16
	var openmode byte

	switch subfunc {
	case SubCreate:
		openmode = 2
		if err := createWithAttr(ctx, entry, hostPath, byte(stackAttr)); err != nil {
			return AXFileNotFound, nil
		}

	case SubSpopnFile:
		openmode = byte(spopnMode & 0x7F)
		fattr, _, _, statErr := attr.Stat(ctx.FS, hostPath, entry.FATBacked)
		switch {
		case statErr != nil: // no such file
			if action&0xF0 != 0x10 {
				return AXFileNotFound, nil
			}
			if err := createWithAttr(ctx, entry, hostPath, byte(stackAttr)); err != nil {
				return AXFileNotFound, nil
			}
			spopres = spopCreated
		case fattr&(nametrans.AttrVolume|nametrans.AttrDir) != 0:
			return AXFileNotFound, nil
		case action&0x0F == 1:
			spopres = spopOpened
		case action&0x0F == 2:
			if err := createWithAttr(ctx, entry, hostPath, byte(stackAttr)); err != nil {
				return AXFileNotFound, nil
			}
			spopres = spopTruncated
		default:
			return AXFileNotFound, nil
		}

	default: // SubOpen
		openmode = byte(stackAttr)
		fattr, _, _, statErr := attr.Stat(ctx.FS, hostPath, entry.FATBacked)
		if statErr != nil || fattr&(nametrans.AttrVolume|nametrans.AttrDir) != 0 {
			return AXFileNotFound, nil
		}
	}

	fp, err := statProps(ctx, hostPath, entry.FATBacked, filepath.Base(hostPath))
	if err != nil {
		return AXFileNotFound, nil
	}

	handle := ctx.Handles.Intern(hostPath)

	w := wire.NewWriter(25)
	writeFileProps(w, fp)
	w.U16(uint16(handle))
	w.U16(spopres)
	w.U8(openmode)
	return AXSuccess, w.Bytes()
}

// createWithAttr creates (or truncates) a regular file and, on a
// FAT-backed drive, writes the requested DOS attribute byte through to the
// host.
func createWithAttr(ctx *Context, entry *drivetable.Entry, hostPath string, fatAttr byte) error {
	if err := fsops.Create(ctx.FS, hostPath); err != nil {
		return err
	}
	return attr.SetAttr(ctx.FS, hostPath, fatAttr, entry.FATBacked)
}
