package git

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

type gitRawEntry struct {
	srcMode filemode.FileMode
	dstMode filemode.FileMode
	srcID   plumbing.Hash
	dstID   plumbing.Hash
	status  string // e.g. "M", "A", "D", "R100", "C075"
	path    string // destination path (or path for non-renames)
	oldPath string // source path for renames and copies
}

// delta converts a raw entry to a Delta. Zero modes mark absent sides.
func (e gitRawEntry) delta() Delta {
	status := deltaStatusFromLetter(e.status)

	oldPath := e.path
	if e.oldPath != "" {
		oldPath = e.oldPath
	}

	d := Delta{Status: status}
	if e.srcMode != filemode.Empty {
		d.Old = FileRef{Path: oldPath, ID: e.srcID, Mode: e.srcMode, Exists: true}
	}
	if e.dstMode != filemode.Empty {
		d.New = FileRef{Path: e.path, ID: e.dstID, Mode: e.dstMode, Exists: true}
	}
	return d
}

// parseGitRawEntries parses NUL-delimited `git diff-tree --raw -z` output.
// Format: ":SRCMODE DSTMODE SRCSHA DSTSHA STATUS\0PATH\0" with a second
// path for renames and copies. It returns the entries and the offset of the
// first byte that is not part of the raw section.
func parseGitRawEntries(body []byte) ([]gitRawEntry, int, error) {
	i := 0
	for i < len(body) && (body[i] == '\n' || body[i] == '\r') {
		i++
	}

	entries := make([]gitRawEntry, 0, 128)

	for i < len(body) && body[i] == ':' {
		meta, ok := readUntilNUL(body, &i)
		if !ok {
			return nil, 0, fmt.Errorf("unexpected git --raw format (missing NUL)")
		}

		fields := strings.Fields(string(meta))
		if len(fields) < 5 {
			return nil, 0, fmt.Errorf("unexpected git --raw meta: %q", string(meta))
		}

		srcMode, err := parseGitFileMode(strings.TrimPrefix(fields[0], ":"))
		if err != nil {
			return nil, 0, err
		}
		dstMode, err := parseGitFileMode(fields[1])
		if err != nil {
			return nil, 0, err
		}

		status := fields[len(fields)-1]

		path1, ok := readStringUntilNUL(body, &i)
		if !ok {
			return nil, 0, fmt.Errorf("unexpected git --raw format (missing path)")
		}

		path := path1
		oldPath := ""
		if len(status) > 0 && (status[0] == 'R' || status[0] == 'C') {
			path2, ok := readStringUntilNUL(body, &i)
			if !ok {
				return nil, 0, fmt.Errorf("unexpected git --raw format (missing rename path)")
			}
			oldPath = path1
			path = path2
		}

		entries = append(entries, gitRawEntry{
			srcMode: srcMode,
			dstMode: dstMode,
			srcID:   plumbing.NewHash(fields[2]),
			dstID:   plumbing.NewHash(fields[3]),
			status:  status,
			path:    path,
			oldPath: oldPath,
		})
	}

	return entries, i, nil
}

func parseGitFileMode(s string) (filemode.FileMode, error) {
	if s == "" {
		return filemode.Empty, nil
	}
	// Modes are printed as octal (e.g. 100644, 120000, 160000, 000000).
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return filemode.Empty, fmt.Errorf("parse file mode %q: %w", s, err)
	}
	return filemode.FileMode(v), nil
}

func readUntilNUL(b []byte, i *int) ([]byte, bool) {
	if *i >= len(b) {
		return nil, false
	}
	j := bytes.IndexByte(b[*i:], 0)
	if j == -1 {
		return nil, false
	}
	start := *i
	end := *i + j
	*i = end + 1
	return b[start:end], true
}

func readStringUntilNUL(b []byte, i *int) (string, bool) {
	raw, ok := readUntilNUL(b, i)
	if !ok {
		return "", false
	}
	return string(raw), true
}
