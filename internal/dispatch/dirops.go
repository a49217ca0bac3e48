package dispatch

import (
	"github.com/etherdfs/ethersrv/internal/drivetable"
	"github.com/etherdfs/ethersrv/internal/fsops"
	"github.com/etherdfs/ethersrv/internal/wire"
)

// dispatchMakeRemoveDir handles MKDIR (AL=0x03) and RMDIR (AL=0x01). A
// partial resolution is fine for MKDIR: the unresolved tail is the new
// directory to create. RMDIR on an unresolved path just fails at the host
// call. Either failure maps to AX=29.
func dispatchMakeRemoveDir(ctx *Context, entry *drivetable.Entry, r *wire.Reader, mkdir bool) uint16 {
	res := resolve(ctx, entry, r.PathString())

	var err error
	if mkdir {
		err = fsops.Mkdir(ctx.FS, res.HostPath)
	} else {
		err = fsops.Rmdir(ctx.FS, res.HostPath)
	}
	if err != nil {
		return AXDiskFullFault
	}
	return AXSuccess
}

func dispatchChdir(ctx *Context, entry *drivetable.Entry, r *wire.Reader) uint16 {
	res := resolve(ctx, entry, r.PathString())
	if res.Partial {
		return AXPathNotFound
	}
	if err := fsops.Chdir(ctx.FS, res.HostPath); err != nil {
		return AXPathNotFound
	}
	return AXSuccess
}
