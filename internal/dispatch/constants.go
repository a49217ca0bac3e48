package dispatch

// Subfunction (AL) opcodes of the DOS redirector requests.
const (
	SubInstallCheck = 0x00
	SubRmdir        = 0x01
	SubMkdir        = 0x03
	SubChdir        = 0x05
	SubCloseFile    = 0x06
	SubCommitFile   = 0x07
	SubReadFile     = 0x08
	SubWriteFile    = 0x09
	SubLock         = 0x0A
	SubUnlock       = 0x0B
	SubDiskSpace    = 0x0C
	SubSetAttr      = 0x0E
	SubGetAttr      = 0x0F
	SubRename       = 0x11
	SubDelete       = 0x13
	SubOpen         = 0x16
	SubCreate       = 0x17
	SubFindFirst    = 0x1B
	SubFindNext     = 0x1C
	SubSeekFromEnd  = 0x21
	SubSpopnFile    = 0x2E
)

// DOS AX status codes.
const (
	AXSuccess       = 0
	AXFileNotFound  = 2
	AXPathNotFound  = 3
	AXAccessDenied  = 5
	AXNoMoreFiles   = 18
	AXDiskFullFault = 29
)

// bytesPerSector is the fixed value DISKSPACE reports in CX; the server
// reports one sector per cluster, so this value also IS the cluster size.
const bytesPerSector = 32768

// sectorsPerCluster is always 1: the 32768-byte "sector" already models a
// cluster. MS-DOS tolerates nothing else here.
const sectorsPerCluster = 1

// mediaDescriptor is reported as 0x00 (no historical meaning is attached to
// it by any DOS client this server targets; only spc in the low byte of AX
// is load-bearing).
const mediaDescriptor = 0x00

// maxClusters caps BX/DX so that the cluster counts fit their 16-bit
// registers and total/free bytes (clusters*bytesPerSector) stay below 2^31,
// which confuses MS-DOS.
const maxClusters = 0xFFFF
