package dispatch

import (
	"github.com/etherdfs/ethersrv/internal/attr"
	"github.com/etherdfs/ethersrv/internal/drivetable"
	"github.com/etherdfs/ethersrv/internal/wire"
)

func dispatchGetAttr(ctx *Context, entry *drivetable.Entry, r *wire.Reader) (uint16, []byte) {
	res := resolve(ctx, entry, r.PathString())
	if res.Partial {
		return AXFileNotFound, nil
	}

	fattr, ftime, fsize, err := attr.Stat(ctx.FS, res.HostPath, entry.FATBacked)
	if err != nil {
		return AXFileNotFound, nil
	}

	w := wire.NewWriter(9)
	w.U32(ftime)
	w.U32(fsize)
	w.U8(fattr)
	return AXSuccess, w.Bytes()
}

func dispatchSetAttr(ctx *Context, entry *drivetable.Entry, r *wire.Reader) uint16 {
	fatAttr, _ := r.U8()

	res := resolve(ctx, entry, r.PathString())
	if res.Partial {
		return AXFileNotFound
	}

	if err := attr.SetAttr(ctx.FS, res.HostPath, fatAttr, entry.FATBacked); err != nil {
		return AXFileNotFound
	}
	return AXSuccess
}
