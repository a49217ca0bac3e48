package nametrans

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Resolution is the result of resolving a DOS path against a host
// directory tree: either every component matched a real host entry, or a
// trailing run of components did not and is carried along literally for
// callers that intend to create it.
type Resolution struct {
	// HostPath is always populated and always usable: the fully resolved
	// host path when Partial is false, or ResolvedPrefix with
	// UnresolvedTail appended literally when Partial is true (the form
	// CREATE/MKDIR need to create the missing tail).
	HostPath string

	// Partial is true when one or more trailing DOS path components could
	// not be matched against real host directory entries.
	Partial bool

	// ResolvedPrefix is the host-case prefix that did resolve.
	ResolvedPrefix string

	// UnresolvedTail is the literal (downcased, slash-normalized) DOS
	// components that failed to match, joined by '/'. Empty when Partial
	// is false.
	UnresolvedTail string
}

// stripDriveLetter removes a leading "X:" drive prefix, case-insensitively,
// if present.
func stripDriveLetter(p string) string {
	if len(p) >= 2 && isASCIILetter(p[0]) && p[1] == ':' {
		return p[2:]
	}
	return p
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func splitComponents(virtual string) []string {
	parts := strings.Split(virtual, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// NormalizeVirtual strips the drive prefix, converts backslashes, and
// downcases, without the component-wise host matching that follows in
// Resolve. RENAME's destination uses this directly: it is never run
// through the matching half of the translator, the normalized token is
// appended to the drive root as-is.
func NormalizeVirtual(dosPath string) string {
	virtual := stripDriveLetter(dosPath)
	virtual = strings.ReplaceAll(virtual, "\\", "/")
	virtual = strings.ToLower(virtual)
	return strings.TrimPrefix(virtual, "/")
}

// Resolve resolves a DOS path component-wise: strip the drive prefix,
// normalize separators, downcase, then match each component FCB-style
// against real host directory entries, growing a host-case resolved prefix
// as it goes.
func Resolve(fsys afero.Fs, root, dosPath string) Resolution {
	virtual := stripDriveLetter(dosPath)
	virtual = strings.ReplaceAll(virtual, "\\", "/")
	virtual = strings.ToLower(virtual)
	comps := splitComponents(virtual)

	prefix := root
	for i, comp := range comps {
		targetFCB := ToFCB(comp)

		entries, err := afero.ReadDir(fsys, prefix)
		if err != nil {
			return partialResult(prefix, comps[i:])
		}

		matchedName := ""
		for _, e := range entries {
			if e.Name() == "." || e.Name() == ".." {
				continue
			}
			if MatchMask(targetFCB, ToFCB(e.Name())) {
				matchedName = e.Name()
				break
			}
		}

		if matchedName == "" {
			return partialResult(prefix, comps[i:])
		}

		candidate := filepath.Join(prefix, matchedName)
		if i != len(comps)-1 {
			fi, err := fsys.Stat(candidate)
			if err != nil || !fi.IsDir() {
				return partialResult(prefix, comps[i:])
			}
		}
		prefix = candidate
	}

	return Resolution{HostPath: prefix, ResolvedPrefix: prefix}
}

func partialResult(prefix string, unresolvedComps []string) Resolution {
	tail := strings.Join(unresolvedComps, "/")
	return Resolution{
		HostPath:       filepath.Join(prefix, tail),
		Partial:        true,
		ResolvedPrefix: prefix,
		UnresolvedTail: tail,
	}
}
