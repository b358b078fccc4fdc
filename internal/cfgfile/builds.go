package cfgfile

import (
	"simrun/internal/domain"
)

// Build option keys.
const (
	KeyCompileOption     = "compileOption"
	KeySimOption         = "simOption"
	KeyPreCompileOption  = "preCompileOption"
	KeyPostCompileOption = "postCompileOption"
	KeyPreSimOption      = "preSimOption"
	KeyPostSimOption     = "postSimOption"
	KeyTestDir           = "testDir"
)

var buildKeys = map[string]bool{
	KeyCompileOption:     true,
	KeySimOption:         true,
	KeyPreCompileOption:  true,
	KeyPostCompileOption: true,
	KeyPreSimOption:      true,
	KeyPostSimOption:     true,
	KeyTestDir:           true,
}

// BuildConfig is one build subsection. The unnamed global subsection is a
// BuildConfig with an empty Name.
type BuildConfig struct {
	Name              string
	CompileOption     []string
	SimOption         []string
	PreCompileOption  []string
	PostCompileOption []string
	PreSimOption      []string
	PostSimOption     []string
	TestDir           string
}

// ResolvedBuildOptions is the global build merged with one named build.
type ResolvedBuildOptions struct {
	Build       string
	Compile     []string
	Sim         []string
	PreCompile  []string
	PostCompile []string
	PreSim      []string
	PostSim     []string
	// TestDir is the named build's test root override, else the global one.
	TestDir string
}

// BuildSet holds the parsed build section.
type BuildSet struct {
	global BuildConfig
	builds map[string]*BuildConfig
	names  []string
}

// NewBuildSet reads the build section of doc. A document without a build
// section yields an empty set.
func NewBuildSet(doc *Document) (*BuildSet, error) {
	bs := &BuildSet{builds: make(map[string]*BuildConfig)}
	sec := doc.Section(SectionBuild)
	if sec == nil {
		return bs, nil
	}
	if err := readBuild(sec, &bs.global); err != nil {
		return nil, err
	}
	for _, child := range sec.Sections() {
		b := &BuildConfig{Name: child.Name}
		if err := readBuild(child, b); err != nil {
			return nil, err
		}
		if len(child.Sections()) > 0 {
			return nil, child.errorf(child.Sections()[0].Line, "build %s: nested sections are not allowed", child.Name)
		}
		bs.builds[child.Name] = b
		bs.names = append(bs.names, child.Name)
	}
	return bs, nil
}

func readBuild(sec *Section, b *BuildConfig) error {
	for _, key := range sec.Keys() {
		if !buildKeys[key] {
			return sec.errorf(sec.lines[key], "unknown build option %q", key)
		}
		v, _ := sec.Get(key)
		switch key {
		case KeyCompileOption:
			b.CompileOption = v.List()
		case KeySimOption:
			b.SimOption = v.List()
		case KeyPreCompileOption:
			b.PreCompileOption = v.List()
		case KeyPostCompileOption:
			b.PostCompileOption = v.List()
		case KeyPreSimOption:
			b.PreSimOption = v.List()
		case KeyPostSimOption:
			b.PostSimOption = v.List()
		case KeyTestDir:
			if v.IsList() {
				return sec.errorf(sec.lines[key], "%s must be a single path", key)
			}
			b.TestDir = v.String()
		}
	}
	return nil
}

// Names returns the named builds in declaration order.
func (s *BuildSet) Names() []string { return append([]string(nil), s.names...) }

// Has reports whether a named build exists.
func (s *BuildSet) Has(name string) bool {
	_, ok := s.builds[name]
	return ok
}

// Get returns a named build.
func (s *BuildSet) Get(name string) (*BuildConfig, error) {
	b, ok := s.builds[name]
	if !ok {
		return nil, &domain.UnknownNameError{Kind: domain.KindBuild, Name: name, Available: s.Names()}
	}
	return b, nil
}

// CompileOption returns the global compile options followed by the build's.
func (s *BuildSet) CompileOption(name string) ([]string, error) {
	return s.merged(name, func(b *BuildConfig) []string { return b.CompileOption })
}

// SimOption returns the global simulate options followed by the build's.
func (s *BuildSet) SimOption(name string) ([]string, error) {
	return s.merged(name, func(b *BuildConfig) []string { return b.SimOption })
}

func (s *BuildSet) PreCompileOption(name string) ([]string, error) {
	return s.merged(name, func(b *BuildConfig) []string { return b.PreCompileOption })
}

func (s *BuildSet) PostCompileOption(name string) ([]string, error) {
	return s.merged(name, func(b *BuildConfig) []string { return b.PostCompileOption })
}

func (s *BuildSet) PreSimOption(name string) ([]string, error) {
	return s.merged(name, func(b *BuildConfig) []string { return b.PreSimOption })
}

func (s *BuildSet) PostSimOption(name string) ([]string, error) {
	return s.merged(name, func(b *BuildConfig) []string { return b.PostSimOption })
}

func (s *BuildSet) merged(name string, field func(*BuildConfig) []string) ([]string, error) {
	b, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return concat(field(&s.global), field(b)), nil
}

// Resolve merges the global build with the named one.
func (s *BuildSet) Resolve(name string) (ResolvedBuildOptions, error) {
	b, err := s.Get(name)
	if err != nil {
		return ResolvedBuildOptions{}, err
	}
	g := &s.global
	r := ResolvedBuildOptions{
		Build:       name,
		Compile:     concat(g.CompileOption, b.CompileOption),
		Sim:         concat(g.SimOption, b.SimOption),
		PreCompile:  concat(g.PreCompileOption, b.PreCompileOption),
		PostCompile: concat(g.PostCompileOption, b.PostCompileOption),
		PreSim:      concat(g.PreSimOption, b.PreSimOption),
		PostSim:     concat(g.PostSimOption, b.PostSimOption),
		TestDir:     g.TestDir,
	}
	if b.TestDir != "" {
		r.TestDir = b.TestDir
	}
	return r, nil
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
