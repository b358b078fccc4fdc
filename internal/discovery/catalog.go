package discovery

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"simrun/internal/domain"
)

// TestListFile is the include/file list written by GenTestFileList.
const TestListFile = "test.f"

// Catalog maps testcase names to their directories under one test root.
type Catalog struct {
	root       string
	scanner    *Scanner
	dirs       map[string]string
	names      []string
	duplicates []Entry
}

// NewCatalog scans root and builds the catalog.
func NewCatalog(root string) (*Catalog, error) {
	c := &Catalog{scanner: NewScanner(DefaultSkipDirs)}
	if err := c.SetRoot(root); err != nil {
		return nil, err
	}
	return c, nil
}

// SetRoot switches the catalog to a new test root and rescans it. $VAR
// references in dir are expanded.
func (c *Catalog) SetRoot(dir string) error {
	dir = os.ExpandEnv(dir)
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve test root %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("test root %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("test root %s is not a directory", dir)
	}

	entries, err := c.scanner.Scan(abs)
	if err != nil {
		return fmt.Errorf("scan %s: %w", abs, err)
	}

	c.root = abs
	c.dirs = make(map[string]string, len(entries))
	c.names = c.names[:0]
	c.duplicates = nil
	for _, e := range entries {
		if _, ok := c.dirs[e.Name]; ok {
			// the first directory in walk order wins
			c.duplicates = append(c.duplicates, e)
			continue
		}
		c.dirs[e.Name] = e.Dir
		c.names = append(c.names, e.Name)
	}
	sort.Strings(c.names)
	return nil
}

// Root returns the absolute test root.
func (c *Catalog) Root() string { return c.root }

// Names returns the testcase names sorted.
func (c *Catalog) Names() []string { return append([]string(nil), c.names...) }

// Duplicates returns the entries shadowed by an earlier directory of the same name.
func (c *Catalog) Duplicates() []Entry { return append([]Entry(nil), c.duplicates...) }

// Has reports whether a testcase exists.
func (c *Catalog) Has(name string) bool {
	_, ok := c.dirs[name]
	return ok
}

// Dir returns the directory of a testcase.
func (c *Catalog) Dir(name string) (string, error) {
	dir, ok := c.dirs[name]
	if !ok {
		return "", &domain.UnknownNameError{Kind: domain.KindTest, Name: name, Available: c.Names()}
	}
	return dir, nil
}

// SourceFile returns <dir>/<name>.sv for a testcase.
func (c *Catalog) SourceFile(name string) (string, error) {
	dir, err := c.Dir(name)
	if err != nil {
		return "", err
	}
	return Entry{Name: name, Dir: dir}.SourceFile(), nil
}

// DumpScript returns the testcase's own <kind>_dump.tcl, or "" when it has none.
func (c *Catalog) DumpScript(name, kind string) string {
	dir, ok := c.dirs[name]
	if !ok {
		return ""
	}
	p := filepath.Join(dir, kind+"_dump.tcl")
	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		return p
	}
	return ""
}

// GenTestFileList writes test.f into targetDir and returns its path. The
// list starts with the test root include directory, then holds for every
// catalog entry (restricted to validTests when non-empty) its include
// directory, its parent's include directory and its source file.
func (c *Catalog) GenTestFileList(targetDir string, validTests []string) (string, error) {
	keep := make(map[string]bool, len(validTests))
	for _, t := range validTests {
		keep[t] = true
	}

	path := filepath.Join(targetDir, TestListFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "+incdir+%s\n", c.root)
	for _, name := range c.names {
		if len(keep) > 0 && !keep[name] {
			continue
		}
		dir := c.dirs[name]
		fmt.Fprintf(w, "+incdir+%s\n", dir)
		fmt.Fprintf(w, "+incdir+%s/..\n", dir)
		fmt.Fprintf(w, "%s\n", Entry{Name: name, Dir: dir}.SourceFile())
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}
