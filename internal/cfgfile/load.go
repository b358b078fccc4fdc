package cfgfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads and parses a configuration file. The syntax is chosen by the
// file extension: .hcl, .yaml/.yml, anything else is ConfigObj-style text.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse parses data as the syntax implied by file's extension and checks the
// top-level layout.
func Parse(file string, data []byte) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch strings.ToLower(filepath.Ext(file)) {
	case ".hcl":
		doc, err = parseHCL(file, data)
	case ".yaml", ".yml":
		doc, err = parseYAML(file, data)
	default:
		doc, err = parseINI(file, data)
	}
	if err != nil {
		return nil, err
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc, nil
}
