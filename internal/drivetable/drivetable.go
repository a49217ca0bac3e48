// Package drivetable implements the fixed drive-letter table: a
// process-scoped mapping from DOS drive number (0=A..25=Z) to an absolute
// canonical host root path and a FAT-backed flag probed once at startup.
package drivetable

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FirstDrive is drive number 2 (C:), the first letter the CLI assigns
// mapped paths to.
const FirstDrive = 2

// LastDrive is drive number 25 (Z:), the last assignable letter.
const LastDrive = 25

// Entry is one occupied slot in the drive table.
type Entry struct {
	Root      string // absolute canonical host root path
	FATBacked bool   // probed once at startup, never re-checked
}

// Table is the fixed array of drive entries, indexed by drive number.
// Roots are immutable for the process lifetime once New returns.
type Table struct {
	entries [LastDrive + 1]*Entry
}

// FATProber reports whether the host filesystem backing root is a real FAT
// mount. Swapped out in tests; production wiring uses ProbeFAT, which
// checks the statfs(2) magic number.
type FATProber func(root string) (bool, error)

// New builds a Table from paths, assigning them to consecutive drive
// letters starting at C:. A trailing '/' is rejected as a user error.
// Each path is made absolute and probed for FAT backing via probe.
func New(fsys afero.Fs, paths []string, probe FATProber) (*Table, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("drivetable: at least one path is required")
	}
	if len(paths) > LastDrive-FirstDrive+1 {
		return nil, fmt.Errorf("drivetable: too many paths, only %d drive letters available", LastDrive-FirstDrive+1)
	}

	t := &Table{}
	for i, p := range paths {
		if strings.HasSuffix(p, "/") && p != "/" {
			return nil, fmt.Errorf("drivetable: trailing slash not allowed: %q", p)
		}

		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("drivetable: resolve %q: %w", p, err)
		}

		fi, err := fsys.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("drivetable: stat %q: %w", abs, err)
		}
		if !fi.IsDir() {
			return nil, fmt.Errorf("drivetable: %q is not a directory", abs)
		}

		fatBacked := false
		if probe != nil {
			fatBacked, err = probe(abs)
			if err != nil {
				return nil, fmt.Errorf("drivetable: probe %q: %w", abs, err)
			}
		}

		drive := FirstDrive + i
		t.entries[drive] = &Entry{Root: abs, FATBacked: fatBacked}
	}

	return t, nil
}

// Lookup returns the entry mapped to drive, or nil if the drive is unmapped
// or out of range.
func (t *Table) Lookup(drive byte) *Entry {
	if drive > LastDrive {
		return nil
	}
	return t.entries[drive]
}

// Valid reports whether drive is in the addressable range 2..25 (C: to
// Z:).
func Valid(drive byte) bool {
	return drive >= FirstDrive && drive <= LastDrive
}
