package discovery

import (
	"path/filepath"
	"sort"
	"strings"
)

// FindByFolder discovers testcases under root from a group folder entry:
//
//	""            every *.sv below root
//	"a/b.sv"      files matching a/b.sv at any depth
//	"a/b"         every *.sv below a directory matching a/b at any depth
//
// Only files whose parent directory is named like the file stem count as
// testcases. The result is sorted and de-duplicated.
func FindByFolder(root, folder string) ([]string, error) {
	files, err := NewScanner(DefaultSkipDirs).SourceFiles(root)
	if err != nil {
		return nil, err
	}

	folder = strings.Trim(strings.TrimSpace(folder), "/")
	var pattern []string
	if folder != "" {
		pattern = strings.Split(folder, "/")
	}
	literal := strings.HasSuffix(folder, ".sv")

	seen := make(map[string]bool)
	var tests []string
	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		stem := strings.TrimSuffix(parts[len(parts)-1], ".sv")
		if len(parts) < 2 || parts[len(parts)-2] != stem {
			continue
		}

		var ok bool
		switch {
		case folder == "":
			ok = true
		case literal:
			ok = matchSuffix(parts, pattern)
		default:
			ok = matchInside(parts[:len(parts)-1], pattern)
		}
		if ok && !seen[stem] {
			seen[stem] = true
			tests = append(tests, stem)
		}
	}
	sort.Strings(tests)
	return tests, nil
}

// matchSuffix reports whether the trailing components of parts match pattern.
func matchSuffix(parts, pattern []string) bool {
	if len(pattern) > len(parts) {
		return false
	}
	return matchAt(parts[len(parts)-len(pattern):], pattern)
}

// matchInside reports whether pattern matches a contiguous run of dirs.
func matchInside(dirs, pattern []string) bool {
	for i := 0; i+len(pattern) <= len(dirs); i++ {
		if matchAt(dirs[i:i+len(pattern)], pattern) {
			return true
		}
	}
	return false
}

func matchAt(parts, pattern []string) bool {
	for i, p := range pattern {
		if ok, err := filepath.Match(p, parts[i]); err != nil || !ok {
			return false
		}
	}
	return true
}
