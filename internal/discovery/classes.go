package discovery

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var (
	classPattern       = regexp.MustCompile(`(?m)^\s*(?:virtual\s+)?class\s+(\w+)(?:\s*#\s*\([^)]*\))?\s+extends\s+(\w+)`)
	lineCommentPattern = regexp.MustCompile(`//[^\n]*`)
	blockComment       = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// ClassFinder lists UVM test classes declared in testcase sources
type ClassFinder struct{}

// NewClassFinder creates a new ClassFinder
func NewClassFinder() *ClassFinder {
	return &ClassFinder{}
}

// FindTestClasses returns the classes in filePath that extend uvm_test or a
// class whose name ends in _test, sorted.
func (p *ClassFinder) FindTestClasses(filePath string) ([]string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	src := blockComment.ReplaceAllString(string(content), "")
	src = lineCommentPattern.ReplaceAllString(src, "")

	seen := make(map[string]bool)
	var classes []string
	for _, m := range classPattern.FindAllStringSubmatch(src, -1) {
		name, base := m[1], m[2]
		if base != "uvm_test" && !strings.HasSuffix(base, "_test") {
			continue
		}
		if !seen[name] {
			seen[name] = true
			classes = append(classes, name)
		}
	}
	sort.Strings(classes)
	return classes, nil
}
