package dispatch

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/etherdfs/ethersrv/internal/attr"
	"github.com/etherdfs/ethersrv/internal/drivetable"
	"github.com/etherdfs/ethersrv/internal/fsops"
	"github.com/etherdfs/ethersrv/internal/nametrans"
	"github.com/etherdfs/ethersrv/internal/wire"
)

// dispatchRename handles RENAME (AL=0x11). Only the source path runs
// through the name translator; the destination is the literal normalized
// DOS token appended to the drive root, letting the client dictate the new
// name (always lower-case after normalization). A source that does not
// resolve is answered with AX=0 without renaming anything, a long-standing
// observable behavior kept intact.
func dispatchRename(ctx *Context, entry *drivetable.Entry, r *wire.Reader) uint16 {
	len1, _ := r.U8()
	path1Raw, err := r.Bytes(int(len1))
	if err != nil {
		return AXFileNotFound
	}
	path2 := r.PathString()

	res := resolve(ctx, entry, string(path1Raw))
	if res.Partial {
		return AXSuccess
	}

	destHost := filepath.Join(entry.Root, nametrans.NormalizeVirtual(path2))

	if _, err := fsops.Stat(ctx.FS, destHost); err == nil {
		return AXAccessDenied
	}
	if err := fsops.Rename(ctx.FS, res.HostPath, destHost); err != nil {
		return AXAccessDenied
	}
	return AXSuccess
}

// dispatchDelete handles DELETE (AL=0x13). A literal path resolves through
// the name translator and is unlinked; a '?'-pattern resolves only its
// directory, then unlinks the non-directory entries whose FCB matches.
// The read-only gate applies to both forms: a protected file answers
// AX=5, never a silent unlink.
func dispatchDelete(ctx *Context, entry *drivetable.Entry, r *wire.Reader) uint16 {
	pattern := r.PathString()

	if !strings.ContainsAny(pattern, "?*") {
		res := resolve(ctx, entry, pattern)
		if res.Partial {
			return AXFileNotFound
		}
		fattr, _, _, err := attr.Stat(ctx.FS, res.HostPath, entry.FATBacked)
		if err != nil {
			return AXFileNotFound
		}
		if fattr&nametrans.AttrReadOnly != 0 {
			return AXAccessDenied
		}
		if err := fsops.Unlink(ctx.FS, res.HostPath); err != nil {
			return AXFileNotFound
		}
		return AXSuccess
	}

	dir, mask := splitDirAndPattern(pattern)
	res := resolve(ctx, entry, dir)
	if res.Partial {
		return AXFileNotFound
	}
	if _, err := fsops.DeleteGlob(ctx.FS, res.HostPath, mask, entry.FATBacked); err != nil {
		if errors.Is(err, fsops.ErrReadOnly) {
			return AXAccessDenied
		}
		return AXFileNotFound
	}
	return AXSuccess
}
