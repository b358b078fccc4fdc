package commands

import (
	"simrun/internal/config"
	"simrun/internal/ctxlog"
	"simrun/internal/discovery"
	"simrun/internal/orchestrator"
	"simrun/internal/storage"
	"simrun/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const (
	listTests  = "tests"
	listBuilds = "builds"
	listGroups = "groups"
)

// ListCommand handles the list command
type ListCommand struct {
	config      *config.Config
	filter      *discovery.Filter
	classFinder *discovery.ClassFinder
	formatter   *ui.Formatter
	storage     storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	filter *discovery.Filter,
	classFinder *discovery.ClassFinder,
	formatter *ui.Formatter,
	st storage.Storage,
) *ListCommand {
	return &ListCommand{
		config:      cfg,
		filter:      filter,
		classFinder: classFinder,
		formatter:   formatter,
		storage:     st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	kind := listTests
	if len(args) > 0 {
		kind = args[0]
	}

	session, err := orchestrator.NewSession(ctx, lc.config)
	if err != nil {
		return err
	}

	switch kind {
	case listBuilds:
		lc.formatter.PrintCatalog("build", lc.filter.FilterByName(session.Builds().Names(), lc.config.Flags.NameFilter))
		return nil
	case listGroups:
		groups, err := session.Groups(ctx)
		if err != nil {
			return err
		}
		lc.formatter.PrintCatalog("group", lc.filter.FilterByName(groups.Names(), lc.config.Flags.NameFilter))
		return nil
	}

	build, err := session.Builds().Resolve(lc.config.Flags.Build)
	if err != nil {
		return err
	}
	catalog, err := session.Catalog(ctx, session.TestRoot(build))
	if err != nil {
		return err
	}
	names := lc.filter.FilterByName(catalog.Names(), lc.config.Flags.NameFilter)
	if len(names) == 0 {
		color.Yellow("No testcases found")
		return nil
	}

	var classes map[string][]string
	if lc.config.Flags.TestCases {
		classes = make(map[string][]string, len(names))
		for _, name := range names {
			src, err := catalog.SourceFile(name)
			if err != nil {
				return err
			}
			found, err := lc.classFinder.FindTestClasses(src)
			if err != nil {
				ctxlog.FromContext(ctx).Warn("Could not read testcase source", "test", name, "error", err)
				continue
			}
			classes[name] = found
		}
	}

	lc.formatter.PrintTestList(names, classes, lc.lastFailures())
	return nil
}

// lastFailures returns the tests that failed in the last saved run.
func (lc *ListCommand) lastFailures() map[string]bool {
	failed := make(map[string]bool)
	report, err := lc.storage.Load()
	if err != nil {
		return failed
	}
	for _, r := range report.Failures() {
		failed[r.Test] = true
	}
	return failed
}
