// Package group expands a named test group into buckets of tests.
package group

import (
	"context"
	"fmt"
	"sort"

	"simrun/internal/cfgfile"
	"simrun/internal/ctxlog"
	"simrun/internal/discovery"
	"simrun/internal/domain"
)

// Resolution is an expanded group.
type Resolution struct {
	Group   string
	Build   string
	Buckets []domain.Bucket
	Folders []string
}

// TestNames returns the distinct test names of all buckets, sorted.
func (r *Resolution) TestNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, b := range r.Buckets {
		for _, t := range b.Tests {
			if !seen[t.Name] {
				seen[t.Name] = true
				names = append(names, t.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Count returns the number of test entries over all buckets.
func (r *Resolution) Count() int {
	n := 0
	for _, b := range r.Buckets {
		n += len(b.Tests)
	}
	return n
}

// FolderFinder discovers testcases below a test root from a folder entry.
type FolderFinder func(root, folder string) ([]string, error)

// Resolver expands groups of one GroupSet.
type Resolver struct {
	groups   *cfgfile.GroupSet
	testRoot string
	find     FolderFinder
}

// NewResolver returns a resolver discovering folder tests below testRoot.
func NewResolver(groups *cfgfile.GroupSet, testRoot string) *Resolver {
	return &Resolver{groups: groups, testRoot: testRoot, find: discovery.FindByFolder}
}

type expansion struct {
	buckets []domain.Bucket
	index   map[string]int
	builds  []string
	folders []string
	done    map[string]bool
	stack   []string
}

func (e *expansion) addBucket(b domain.Bucket) {
	if i, ok := e.index[b.Name]; ok {
		e.buckets[i].Tests = append(e.buckets[i].Tests, b.Tests...)
		return
	}
	e.index[b.Name] = len(e.buckets)
	e.buckets = append(e.buckets, domain.Bucket{Name: b.Name, Tests: append([]domain.TestSpec(nil), b.Tests...)})
}

func (e *expansion) addBuild(build string) {
	for _, b := range e.builds {
		if b == build {
			return
		}
	}
	e.builds = append(e.builds, build)
}

// Resolve expands the named group and discovers its folder tests below the
// resolver's test root.
func (r *Resolver) Resolve(ctx context.Context, name string) (*Resolution, error) {
	res, err := r.Expand(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := r.DiscoverFolders(res, r.testRoot); err != nil {
		return nil, err
	}
	return res, nil
}

// Expand walks the include graph of the named group without touching the
// filesystem. Its own tests come first, then the tests of every group
// reachable through include, each under its bucket name. Every build
// declared along the way is a candidate and exactly one distinct candidate
// must remain. Folder entries are collected in Folders for DiscoverFolders.
func (r *Resolver) Expand(ctx context.Context, name string) (*Resolution, error) {
	e := &expansion{
		index: make(map[string]int),
		done:  make(map[string]bool),
	}
	if err := r.expand(ctx, e, name); err != nil {
		return nil, err
	}
	if len(e.builds) != 1 {
		return nil, &domain.BuildInconsistencyError{Group: name, Builds: e.builds}
	}
	return &Resolution{Group: name, Build: e.builds[0], Buckets: e.buckets, Folders: e.folders}, nil
}

// DiscoverFolders finds the tests of res.Folders below root and appends them
// under domain.FolderBucket.
func (r *Resolver) DiscoverFolders(res *Resolution, root string) error {
	var found []domain.TestSpec
	for _, folder := range res.Folders {
		tests, err := r.find(root, folder)
		if err != nil {
			return fmt.Errorf("group %s: folder %q: %w", res.Group, folder, err)
		}
		for _, t := range tests {
			found = append(found, domain.TestSpec{Name: t})
		}
	}
	if len(found) > 0 {
		res.Buckets = append(res.Buckets, domain.Bucket{Name: domain.FolderBucket, Tests: found})
	}
	return nil
}

func (r *Resolver) expand(ctx context.Context, e *expansion, name string) error {
	for i, s := range e.stack {
		if s == name {
			path := append(append([]string(nil), e.stack[i:]...), name)
			return &domain.GroupCycleError{Path: path}
		}
	}
	if e.done[name] {
		return nil
	}

	g, err := r.groups.Get(name)
	if err != nil {
		return err
	}
	e.done[name] = true
	e.stack = append(e.stack, name)
	defer func() { e.stack = e.stack[:len(e.stack)-1] }()

	ctxlog.FromContext(ctx).Debug("Expanding group", "group", name, "build", g.Build, "include", g.Include)

	if g.Build != "" {
		e.addBuild(g.Build)
	}
	for _, b := range g.Buckets {
		e.addBucket(b)
	}
	e.folders = append(e.folders, g.Folders...)

	for _, inc := range g.Include {
		if err := r.expand(ctx, e, inc); err != nil {
			return err
		}
	}
	return nil
}
