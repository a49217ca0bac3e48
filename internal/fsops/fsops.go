// Package fsops implements the thin filesystem verbs behind the request
// handlers: each maps to one host operation, via afero so the whole stack
// is testable without a real disk.
package fsops

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/etherdfs/ethersrv/internal/attr"
	"github.com/etherdfs/ethersrv/internal/nametrans"
)

// ErrReadOnly is returned by DeleteGlob when the target (or any entry a
// wildcard pattern matches) carries the DOS read-only attribute; the
// dispatcher maps it to "access denied" rather than "file not found".
var ErrReadOnly = errors.New("fsops: file is read-only")

// Stat wraps afero's Stat; callers in the dispatcher narrow the error into
// a DOS AX code.
func Stat(fsys afero.Fs, path string) (os.FileInfo, error) {
	return fsys.Stat(path)
}

// Mkdir creates a single directory (not MkdirAll: MKDIR in the DOS
// protocol operates one directory level at a time). Mode 0 matches what a
// FAT-oriented client expects; the server runs privileged, so the
// directory stays usable.
func Mkdir(fsys afero.Fs, path string) error {
	return fsys.Mkdir(path, 0)
}

func Rmdir(fsys afero.Fs, path string) error {
	return fsys.Remove(path)
}

func Chdir(fsys afero.Fs, path string) error {
	fi, err := fsys.Stat(path)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return os.ErrInvalid
	}
	return nil
}

func Rename(fsys afero.Fs, oldPath, newPath string) error {
	if _, err := fsys.Stat(newPath); err == nil {
		return os.ErrExist
	}
	return fsys.Rename(oldPath, newPath)
}

// Truncate sets path's size; afero carries truncation on the file handle,
// not the Fs interface, so the file is opened for writing first.
func Truncate(fsys afero.Fs, path string, size int64) error {
	f, err := fsys.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Truncate(size)
}

func Unlink(fsys afero.Fs, path string) error {
	return fsys.Remove(path)
}

// Create creates (or truncates, if it already exists) a regular file.
func Create(fsys afero.Fs, path string) error {
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}
	return f.Close()
}

// Read opens path, seeks to off, reads up to len(buf) bytes, and closes.
// Returns the number of bytes actually read, which may be short at EOF;
// io.EOF itself is not an error here.
func Read(fsys afero.Fs, path string, off int64, buf []byte) (int, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if _, err := f.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}

	n, err := io.ReadFull(f, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return n, nil
	}
	return n, err
}

// Write opens path in update mode (the file must already exist; a handle
// always refers to a file something has opened or created) and:
//
//   - if len(data) == 0, reinterprets off as a truncate target;
//   - otherwise seeks to off and writes data, returning bytes written.
func Write(fsys afero.Fs, path string, off int64, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, Truncate(fsys, path, off)
	}

	f, err := fsys.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if _, err := f.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}

	return f.Write(data)
}

// DeleteGlob unlinks files under dir: if pattern contains '?', it
// enumerates the directory and unlinks the non-directory entries whose FCB
// matches; otherwise it unlinks the literal path. It never recurses into
// subdirectories. A read-only target anywhere in the match set aborts the
// whole request with ErrReadOnly before anything is unlinked, so a
// wildcard delete is all-or-nothing with respect to the attribute gate.
func DeleteGlob(fsys afero.Fs, dir, pattern string, fatBacked bool) (int, error) {
	mask := nametrans.ToFCBMask(pattern)
	hasWildcard := false
	for _, c := range pattern {
		if c == '?' {
			hasWildcard = true
			break
		}
	}

	if !hasWildcard {
		path := dir + "/" + pattern
		fattr, _, _, err := attr.Stat(fsys, path, fatBacked)
		if err != nil {
			return 0, err
		}
		if fattr&nametrans.AttrReadOnly != 0 {
			return 0, ErrReadOnly
		}
		return 1, Unlink(fsys, path)
	}

	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return 0, err
	}

	var victims []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !nametrans.MatchMask(mask, nametrans.ToFCB(e.Name())) {
			continue
		}
		path := dir + "/" + e.Name()
		fattr, _, _, err := attr.Stat(fsys, path, fatBacked)
		if err != nil {
			return 0, err
		}
		if fattr&nametrans.AttrReadOnly != 0 {
			return 0, ErrReadOnly
		}
		victims = append(victims, path)
	}

	deleted := 0
	for _, path := range victims {
		if err := Unlink(fsys, path); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// DiskUsage is the result of Statvfs: total and free bytes on the volume
// backing root.
type DiskUsage struct {
	TotalBytes uint64
	FreeBytes  uint64
}

// Statvfs returns (total-bytes, free-bytes) for the volume backing root.
// afero has no native statvfs call, so on a real OsFs this is implemented
// per-platform (see statvfs_linux.go); on any other afero backend (notably
// MemMapFs, used throughout the test suite) a fixed 1 MiB volume, all of it
// free, is reported so dispatcher tests can exercise DISKSPACE
// deterministically.
func Statvfs(fsys afero.Fs, root string) (DiskUsage, error) {
	if osFs, ok := fsys.(*afero.OsFs); ok {
		return statvfsOS(osFs, root)
	}
	return DiskUsage{TotalBytes: 1 << 20, FreeBytes: 1 << 20}, nil
}
