package dispatch

import (
	"github.com/etherdfs/ethersrv/internal/drivetable"
	"github.com/etherdfs/ethersrv/internal/fsops"
	"github.com/etherdfs/ethersrv/internal/wire"
)

// dispatchDiskSpace handles DISKSPACE (AL=0x0C): AX packs the media
// descriptor and sectors-per-cluster; the payload carries BX (total
// clusters), CX (the fixed 32768 bytes per sector), and DX (free
// clusters).
func dispatchDiskSpace(ctx *Context, entry *drivetable.Entry) (uint16, []byte) {
	usage, err := fsops.Statvfs(ctx.FS, entry.Root)
	if err != nil {
		return AXPathNotFound, nil
	}

	ax := uint16(mediaDescriptor)<<8 | uint16(sectorsPerCluster)

	w := wire.NewWriter(6)
	w.U16(clampClusters(usage.TotalBytes))
	w.U16(bytesPerSector)
	w.U16(clampClusters(usage.FreeBytes))
	return ax, w.Bytes()
}

// clampClusters converts a byte count to a cluster count, capped to
// maxClusters so the count fits a 16-bit register and total/free bytes
// (clusters * 32768) stay below 2^31.
func clampClusters(bytes uint64) uint16 {
	clusters := bytes / bytesPerSector
	if clusters > maxClusters {
		return maxClusters
	}
	return uint16(clusters)
}
