package domain

import (
	"fmt"
	"strings"
)

// TestSpec is one entry of a group bucket: a testcase name plus the inline
// arguments written next to it in the group file.
type TestSpec struct {
	Name string
	Args []string
}

// ParseTestSpec splits "testname [inline args]" on whitespace.
func ParseTestSpec(s string) (TestSpec, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return TestSpec{}, fmt.Errorf("empty test entry")
	}
	return TestSpec{Name: fields[0], Args: fields[1:]}, nil
}

// String renders the spec back in group file form.
func (t TestSpec) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	return t.Name + " " + strings.Join(t.Args, " ")
}

// Bucket is a named list of tests inside a resolved group.
type Bucket struct {
	Name  string
	Tests []TestSpec
}

// FolderBucket is the synthetic bucket holding folder-discovered tests.
const FolderBucket = "folder_"
