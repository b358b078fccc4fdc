package cfgfile

import (
	"simrun/internal/domain"
)

// Group option keys.
const (
	KeyBuild   = "build"
	KeyTests   = "tests"
	KeyFolders = "folders"
	KeyInclude = "include"
)

// GroupConfig is one testgroup subsection.
type GroupConfig struct {
	Name  string
	Build string
	// Buckets holds the group's own tests. A plain tests list is stored
	// under the group's own name.
	Buckets []domain.Bucket
	Folders []string
	Include []string
}

// GroupSet holds the parsed testgroup section.
type GroupSet struct {
	groups map[string]*GroupConfig
	names  []string
}

// NewGroupSet reads the testgroup section of doc.
func NewGroupSet(doc *Document) (*GroupSet, error) {
	gs := &GroupSet{groups: make(map[string]*GroupConfig)}
	sec := doc.Section(SectionTestGroup)
	if sec == nil {
		return gs, nil
	}
	if keys := sec.Keys(); len(keys) > 0 {
		return nil, sec.errorf(sec.lines[keys[0]], "option %q must belong to a named group", keys[0])
	}
	for _, child := range sec.Sections() {
		g, err := readGroup(child)
		if err != nil {
			return nil, err
		}
		gs.groups[g.Name] = g
		gs.names = append(gs.names, g.Name)
	}
	return gs, nil
}

func readGroup(sec *Section) (*GroupConfig, error) {
	g := &GroupConfig{Name: sec.Name}
	for _, key := range sec.Keys() {
		v, _ := sec.Get(key)
		line := sec.lines[key]
		switch key {
		case KeyBuild:
			if v.IsList() {
				return nil, sec.errorf(line, "group %s: build must be a single name", sec.Name)
			}
			g.Build = v.String()
		case KeyTests:
			tests, err := readTests(sec, line, v.List())
			if err != nil {
				return nil, err
			}
			g.Buckets = append(g.Buckets, domain.Bucket{Name: sec.Name, Tests: tests})
		case KeyFolders:
			g.Folders = v.List()
		case KeyInclude:
			g.Include = v.List()
		default:
			return nil, sec.errorf(line, "group %s: unknown option %q", sec.Name, key)
		}
	}

	for _, child := range sec.Sections() {
		if child.Name != KeyTests {
			return nil, child.errorf(child.Line, "group %s: unknown section [%s]", sec.Name, child.Name)
		}
		if len(child.Sections()) > 0 {
			return nil, child.errorf(child.Line, "group %s: tests buckets cannot nest", sec.Name)
		}
		for _, bucket := range child.Keys() {
			v, _ := child.Get(bucket)
			tests, err := readTests(child, child.lines[bucket], v.List())
			if err != nil {
				return nil, err
			}
			g.Buckets = append(g.Buckets, domain.Bucket{Name: bucket, Tests: tests})
		}
	}
	return g, nil
}

func readTests(sec *Section, line int, entries []string) ([]domain.TestSpec, error) {
	tests := make([]domain.TestSpec, 0, len(entries))
	for _, e := range entries {
		ts, err := domain.ParseTestSpec(e)
		if err != nil {
			return nil, sec.errorf(line, "%s", err)
		}
		tests = append(tests, ts)
	}
	return tests, nil
}

// Names returns the groups in declaration order.
func (s *GroupSet) Names() []string { return append([]string(nil), s.names...) }

// Get returns a group by name.
func (s *GroupSet) Get(name string) (*GroupConfig, error) {
	g, ok := s.groups[name]
	if !ok {
		return nil, &domain.UnknownNameError{Kind: domain.KindGroup, Name: name, Available: s.Names()}
	}
	return g, nil
}
