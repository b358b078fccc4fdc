// Package cfgfile parses build and test-group configuration documents.
//
// A document is a tree of sections. The top level holds the two section
// kinds "build" and "testgroup"; the options written directly in one of them
// form its unnamed global subsection and each nested section is a named
// build or group. The same tree can be written as ConfigObj-style text, HCL
// or YAML.
package cfgfile

import (
	"fmt"
	"strings"

	"simrun/internal/domain"
)

// Top-level section kinds.
const (
	SectionBuild     = "build"
	SectionTestGroup = "testgroup"
)

// ValidSections lists the accepted top-level section names.
var ValidSections = []string{SectionBuild, SectionTestGroup}

// Value is an option value: a single string or a list of strings.
type Value struct {
	items []string
	list  bool
}

// Scalar returns a single-string value.
func Scalar(s string) Value { return Value{items: []string{s}} }

// List returns a list value.
func List(items ...string) Value { return Value{items: append([]string{}, items...), list: true} }

// IsList reports whether the value was written as a list.
func (v Value) IsList() bool { return v.list }

// List coerces the value to a list; a scalar becomes a one-element list and
// an empty scalar an empty list.
func (v Value) List() []string {
	if !v.list && len(v.items) == 1 && v.items[0] == "" {
		return nil
	}
	return append([]string(nil), v.items...)
}

// String returns the scalar, or the list items joined by a space.
func (v Value) String() string {
	return strings.Join(v.items, " ")
}

// Section is a node of the document tree.
type Section struct {
	Name  string
	Depth int
	File  string
	Line  int

	keys     []string
	values   map[string]Value
	lines    map[string]int
	children []*Section
	index    map[string]*Section
}

func newSection(name string, depth int, file string, line int) *Section {
	return &Section{
		Name:   name,
		Depth:  depth,
		File:   file,
		Line:   line,
		values: make(map[string]Value),
		lines:  make(map[string]int),
		index:  make(map[string]*Section),
	}
}

// Keys returns the option keys in declaration order.
func (s *Section) Keys() []string { return append([]string(nil), s.keys...) }

// Get returns the value of an option.
func (s *Section) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Sections returns the nested sections in declaration order.
func (s *Section) Sections() []*Section { return append([]*Section(nil), s.children...) }

// Section returns a nested section by name, or nil.
func (s *Section) Section(name string) *Section { return s.index[name] }

func (s *Section) set(key string, v Value, line int) error {
	if _, ok := s.values[key]; ok {
		return s.errorf(line, "duplicate option %q in section [%s]", key, s.Name)
	}
	if _, ok := s.index[key]; ok {
		return s.errorf(line, "option %q conflicts with section of the same name", key)
	}
	s.keys = append(s.keys, key)
	s.values[key] = v
	s.lines[key] = line
	return nil
}

func (s *Section) addChild(name string, line int) (*Section, error) {
	if _, ok := s.index[name]; ok {
		return nil, s.errorf(line, "duplicate section [%s]", name)
	}
	if _, ok := s.values[name]; ok {
		return nil, s.errorf(line, "section [%s] conflicts with option of the same name", name)
	}
	child := newSection(name, s.Depth+1, s.File, line)
	s.children = append(s.children, child)
	s.index[name] = child
	return child, nil
}

func (s *Section) errorf(line int, format string, args ...any) error {
	return &domain.ParseError{File: s.File, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Document is a parsed configuration file.
type Document struct {
	File string
	Root *Section
}

func newDocument(file string) *Document {
	return &Document{File: file, Root: newSection("", 0, file, 0)}
}

// Section returns a top-level section by kind, or nil.
func (d *Document) Section(kind string) *Section { return d.Root.Section(kind) }

// validate checks the top-level layout.
func (d *Document) validate() error {
	if len(d.Root.keys) > 0 {
		key := d.Root.keys[0]
		return d.Root.errorf(d.Root.lines[key], "option %q outside of a section", key)
	}
	for _, s := range d.Root.children {
		if !isValidSection(s.Name) {
			return s.errorf(s.Line, "[%s] is unknown section", s.Name)
		}
	}
	return nil
}

func isValidSection(name string) bool {
	for _, v := range ValidSections {
		if v == name {
			return true
		}
	}
	return false
}
