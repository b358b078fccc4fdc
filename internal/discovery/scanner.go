package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSkipDirs are version control metadata directories never descended into.
var DefaultSkipDirs = []string{".svn", ".git", ".hg", "CVS"}

// Entry is a testcase directory found by a scan.
type Entry struct {
	Name string
	Dir  string
}

// SourceFile returns <dir>/<name>.sv.
func (e Entry) SourceFile() string {
	return filepath.Join(e.Dir, e.Name+".sv")
}

// Scanner walks a test root looking for testcase directories
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan finds every directory D under root that contains basename(D).sv.
// Entries come in walk order; directory entries are visited sorted by name
// and symbolic links to directories are followed once.
func (s *Scanner) Scan(root string) ([]Entry, error) {
	var entries []Entry
	err := s.walk(root, func(dir string, files []os.DirEntry) {
		name := filepath.Base(dir)
		for _, f := range files {
			if f.Name() == name+".sv" {
				entries = append(entries, Entry{Name: name, Dir: dir})
				return
			}
		}
	})
	return entries, err
}

// SourceFiles returns every *.sv file under root, in walk order.
func (s *Scanner) SourceFiles(root string) ([]string, error) {
	var files []string
	err := s.walk(root, func(dir string, entries []os.DirEntry) {
		for _, f := range entries {
			if strings.HasSuffix(f.Name(), ".sv") {
				files = append(files, filepath.Join(dir, f.Name()))
			}
		}
	})
	return files, err
}

// walk calls fn for every directory under root with its non-directory
// entries. Real paths already visited are skipped, so symlink loops end.
func (s *Scanner) walk(root string, fn func(dir string, files []os.DirEntry)) error {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return fmt.Errorf("test path is not a directory: %s", root)
	}

	visited := make(map[string]bool)
	var visit func(dir string) error
	visit = func(dir string) error {
		real, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return err
		}
		if visited[real] {
			return nil
		}
		visited[real] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		var files []os.DirEntry
		var subdirs []string
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			isDir := e.IsDir()
			if e.Type()&os.ModeSymlink != 0 {
				// dangling links are ignored
				if st, err := os.Stat(path); err == nil {
					isDir = st.IsDir()
				} else {
					continue
				}
			}
			if !isDir {
				files = append(files, e)
				continue
			}
			if s.skipDirs[e.Name()] {
				continue
			}
			subdirs = append(subdirs, path)
		}
		fn(dir, files)
		for _, sub := range subdirs {
			if err := visit(sub); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(root)
}
