package dispatch

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/etherdfs/ethersrv/internal/attr"
	"github.com/etherdfs/ethersrv/internal/drivetable"
	"github.com/etherdfs/ethersrv/internal/fsdb"
	"github.com/etherdfs/ethersrv/internal/nametrans"
	"github.com/etherdfs/ethersrv/internal/wire"
)

// buildSnapshot scans a host directory and computes each entry's
// FileProps. The "." and ".." entries a raw host directory read yields
// lead the list; a DOS client expects to see them in subdirectory listings
// (the root-directory skip rule filters them out at scan time). The rest
// is deliberately left unsorted, in host enumeration order.
func buildSnapshot(fsys afero.Fs, dirHostPath string, fatBacked bool) ([]attr.FileProps, error) {
	// fsys.Open + Readdir rather than afero.ReadDir: the latter sorts by
	// name, which would hide the host enumeration order.
	d, err := fsys.Open(dirHostPath)
	if err != nil {
		return nil, err
	}
	entries, err := d.Readdir(-1)
	d.Close()
	if err != nil {
		return nil, err
	}

	out := make([]attr.FileProps, 0, len(entries)+2)
	for _, dot := range []string{".", ".."} {
		fattr, ftime, _, err := attr.Stat(fsys, filepath.Join(dirHostPath, dot), fatBacked)
		if err != nil {
			continue
		}
		out = append(out, attr.FileProps{
			FCBName: nametrans.ToFCB(dot),
			Fattr:   fattr,
			Ftime:   ftime,
		})
	}
	for _, e := range entries {
		fattr, ftime, fsize, err := attr.Stat(fsys, filepath.Join(dirHostPath, e.Name()), fatBacked)
		if err != nil {
			continue
		}
		out = append(out, attr.FileProps{
			FCBName: nametrans.ToFCB(e.Name()),
			Fattr:   fattr,
			Ftime:   ftime,
			Fsize:   fsize,
		})
	}
	return out, nil
}

// scanFrom finds the first entry in snapshot at index >= from that matches
// mask/queryAttr, skipping dot-entries when isRoot. FINDFIRST is the same
// scan starting from position 0.
func scanFrom(snapshot []attr.FileProps, from int, mask [nametrans.FCBLen]byte, queryAttr byte, isRoot bool) (attr.FileProps, int, bool) {
	for i := from; i < len(snapshot); i++ {
		fp := snapshot[i]
		if isRoot && fp.FCBName[0] == '.' {
			continue
		}
		if !nametrans.AttrMatches(queryAttr, fp.Fattr) {
			continue
		}
		if !nametrans.MatchMask(mask, fp.FCBName) {
			continue
		}
		return fp, i + 1, true // positions are 1-based on the wire
	}
	return attr.FileProps{}, 0, false
}

func dispatchFindFirst(ctx *Context, entry *drivetable.Entry, r *wire.Reader) (uint16, []byte) {
	queryAttr, _ := r.U8()
	pathWithMask := r.PathString()

	dir, maskStr := splitDirAndPattern(pathWithMask)
	res := resolve(ctx, entry, dir)
	if res.Partial {
		return AXNoMoreFiles, nil
	}

	snapshot, err := buildSnapshot(ctx.FS, res.HostPath, entry.FATBacked)
	if err != nil {
		return AXNoMoreFiles, nil
	}

	dirSlot := ctx.Handles.Intern(res.HostPath)
	ctx.Handles.SetSnapshot(dirSlot, snapshot)
	if ctx.OnSnapshot != nil {
		ctx.OnSnapshot(res.HostPath)
	}

	mask := nametrans.ToFCBMask(maskStr)
	isRoot := res.HostPath == entry.Root

	fp, position, ok := scanFrom(snapshot, 0, mask, queryAttr, isRoot)
	if !ok {
		return AXNoMoreFiles, nil
	}

	return AXSuccess, writeFindReply(fp, dirSlot, position)
}

func dispatchFindNext(ctx *Context, entry *drivetable.Entry, r *wire.Reader) (uint16, []byte) {
	dirSlotRaw, _ := r.U16()
	position, _ := r.U16()
	queryAttr, _ := r.U8()
	maskBytes, _ := r.Bytes(nametrans.FCBLen)

	dirSlot := fsdb.SlotID(dirSlotRaw)
	dirPath, ok := ctx.Handles.Lookup(dirSlot)
	if !ok {
		return AXNoMoreFiles, nil
	}

	// Position 0 is the caller signalling "rewind": drop the snapshot so
	// the scan below regenerates it.
	if position == 0 {
		ctx.Handles.ClearSnapshot(dirSlot)
	}

	snapshot, ok := ctx.Handles.Snapshot(dirSlot)
	if !ok {
		var err error
		snapshot, err = buildSnapshot(ctx.FS, dirPath, entry.FATBacked)
		if err != nil {
			return AXNoMoreFiles, nil
		}
		ctx.Handles.SetSnapshot(dirSlot, snapshot)
	}

	var mask [nametrans.FCBLen]byte
	copy(mask[:], maskBytes)

	isRoot := dirPath == entry.Root
	fp, newPosition, ok := scanFrom(snapshot, int(position), mask, queryAttr, isRoot)
	if !ok {
		return AXNoMoreFiles, nil
	}

	return AXSuccess, writeFindReply(fp, dirSlot, newPosition)
}

func writeFindReply(fp attr.FileProps, dirSlot fsdb.SlotID, position int) []byte {
	w := wire.NewWriter(24)
	writeFileProps(w, fp)
	w.U16(uint16(dirSlot))
	w.U16(uint16(position))
	return w.Bytes()
}
