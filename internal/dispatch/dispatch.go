// Package dispatch implements the request dispatcher: it routes each
// decoded EtherDFS request to the filesystem/name-translation/attribute
// layers and produces the DOS AX status word plus the reply payload. AX
// travels back in the frame header (wire.BuildReply); the payload here is
// only the subfunction-specific data at offset 60.
package dispatch

import (
	"strings"

	"github.com/spf13/afero"

	"github.com/etherdfs/ethersrv/internal/attr"
	"github.com/etherdfs/ethersrv/internal/drivetable"
	"github.com/etherdfs/ethersrv/internal/fsdb"
	"github.com/etherdfs/ethersrv/internal/logger"
	"github.com/etherdfs/ethersrv/internal/nametrans"
	"github.com/etherdfs/ethersrv/internal/wire"
)

// Context bundles the process-scoped singletons a dispatch call needs: the
// drive table, the filesystem backend, and the handle/dir cache. One
// Context is constructed at startup and reused for the lifetime of the
// event loop.
type Context struct {
	Drives  *drivetable.Table
	FS      afero.Fs
	Handles *fsdb.Arena

	// OnSnapshot, if non-nil, is invoked with the host directory path each
	// time FINDFIRST materializes a directory snapshot, so the server can
	// start watching it for invalidation.
	OnSnapshot func(dir string)
}

// Dispatch routes a decoded request to its handler. It returns the AX
// status word and the reply payload, or ignore=true when the request must
// be dropped without a reply: an invalid or unmapped drive, an unknown
// subfunction, or a payload too short to parse. Polling clients probe
// unmapped drives constantly; answering them would flood the segment.
func Dispatch(ctx *Context, f *wire.Frame) (ax uint16, payload []byte, ignore bool) {
	if !drivetable.Valid(f.Drive) {
		logger.Debug("dispatch: invalid drive %d, ignoring", f.Drive)
		return 0, nil, true
	}

	entry := ctx.Drives.Lookup(f.Drive)
	if entry == nil {
		logger.Debug("dispatch: unmapped drive %d, ignoring", f.Drive)
		return 0, nil, true
	}

	r := wire.NewReader(f.Payload)

	switch f.Subfunc {
	case SubInstallCheck, SubCloseFile, SubCommitFile, SubLock, SubUnlock:
		return AXSuccess, nil, false
	case SubRmdir, SubMkdir:
		return dispatchMakeRemoveDir(ctx, entry, r, f.Subfunc == SubMkdir), nil, false
	case SubChdir:
		return dispatchChdir(ctx, entry, r), nil, false
	case SubReadFile:
		if r.Remaining() != 8 {
			return 0, nil, true
		}
		ax, payload = dispatchReadFile(ctx, r)
	case SubWriteFile:
		if r.Remaining() < 6 {
			return 0, nil, true
		}
		ax, payload = dispatchWriteFile(ctx, r)
	case SubDiskSpace:
		ax, payload = dispatchDiskSpace(ctx, entry)
	case SubSetAttr:
		if r.Remaining() < 2 {
			return 0, nil, true
		}
		return dispatchSetAttr(ctx, entry, r), nil, false
	case SubGetAttr:
		if r.Remaining() < 1 {
			return 0, nil, true
		}
		ax, payload = dispatchGetAttr(ctx, entry, r)
	case SubRename:
		if r.Remaining() < 3 {
			return 0, nil, true
		}
		return dispatchRename(ctx, entry, r), nil, false
	case SubDelete:
		if r.Remaining() < 1 {
			return 0, nil, true
		}
		return dispatchDelete(ctx, entry, r), nil, false
	case SubOpen, SubCreate, SubSpopnFile:
		if r.Remaining() < 7 {
			return 0, nil, true
		}
		ax, payload = dispatchOpenCreate(ctx, entry, r, f.Subfunc)
	case SubFindFirst:
		if r.Remaining() < 2 {
			return 0, nil, true
		}
		ax, payload = dispatchFindFirst(ctx, entry, r)
	case SubFindNext:
		if r.Remaining() < 5+nametrans.FCBLen {
			return 0, nil, true
		}
		ax, payload = dispatchFindNext(ctx, entry, r)
	case SubSeekFromEnd:
		if r.Remaining() != 6 {
			return 0, nil, true
		}
		ax, payload = dispatchSeekFromEnd(ctx, r)
	default:
		logger.Debug("dispatch: unknown subfunction 0x%02X, ignoring", f.Subfunc)
		return 0, nil, true
	}
	return ax, payload, false
}

// resolve runs the name translator against entry's root.
func resolve(ctx *Context, entry *drivetable.Entry, dosPath string) nametrans.Resolution {
	return nametrans.Resolve(ctx.FS, entry.Root, dosPath)
}

// splitDirAndPattern splits a DOS path into its parent directory and final
// component, the form FINDFIRST/DELETE/OPEN need (a directory plus a mask
// or filename within it).
func splitDirAndPattern(dosPath string) (dir, pattern string) {
	norm := strings.ReplaceAll(dosPath, "\\", "/")
	norm = strings.TrimPrefix(norm, "/")
	idx := strings.LastIndexByte(norm, '/')
	if idx < 0 {
		return "", norm
	}
	return norm[:idx], norm[idx+1:]
}

func statProps(ctx *Context, hostPath string, fatBacked bool, fcbName string) (attr.FileProps, error) {
	fattr, ftime, fsize, err := attr.Stat(ctx.FS, hostPath, fatBacked)
	fp := attr.FileProps{
		FCBName: nametrans.ToFCB(fcbName),
		Fattr:   fattr,
		Ftime:   ftime,
		Fsize:   fsize,
	}
	return fp, err
}

// writeFileProps emits the wire form of a FileProps record: attribute byte
// first, then the 11-byte FCB name, the DOS-packed time, and the size.
func writeFileProps(w *wire.Writer, fp attr.FileProps) {
	w.U8(fp.Fattr)
	w.Raw(fp.FCBName[:])
	w.U32(fp.Ftime)
	w.U32(fp.Fsize)
}
