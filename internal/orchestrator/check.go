package orchestrator

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"simrun/internal/domain"
	"simrun/internal/script"
)

// ModeCheck marks reports built from existing logs.
const ModeCheck = "check"

// Check classifies every sim.log below root without running anything. The
// instance directory names give bucket, test and seed.
func (s *Session) Check(ctx context.Context, root string) (*domain.RunReport, error) {
	started := s.now()
	s.transition(ctx, StateClassifying)

	var logs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == script.SimLog {
			logs = append(logs, path)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, fmt.Errorf("scan %s: %w", root, err))
	}
	sort.Strings(logs)

	report := s.newReport(ModeCheck, root, "")
	for _, path := range logs {
		if err := ctx.Err(); err != nil {
			return report, s.fail(ctx, fmt.Errorf("%w: %w", domain.ErrInterrupted, err))
		}
		dir := filepath.Dir(path)
		res := parseInstanceDir(filepath.Base(dir))
		res.Dir = dir
		outcome, err := s.classifier.ClassifyFile(path)
		res.Outcome = outcome
		if err != nil {
			res.Error = err.Error()
		}
		report.Results = append(report.Results, res)
	}
	return s.finish(ctx, report, started), nil
}

// parseInstanceDir splits [bucket__]test__seed from the right, so a bucket
// ending in an underscore (domain.FolderBucket) keeps it. Names that do not
// end in a seed are taken as the test name.
func parseInstanceDir(name string) domain.InstanceResult {
	i := strings.LastIndex(name, "__")
	if i < 0 {
		return domain.InstanceResult{Test: name}
	}
	seed, err := strconv.ParseUint(name[i+2:], 10, 32)
	if err != nil {
		return domain.InstanceResult{Test: name}
	}
	res := domain.InstanceResult{Seed: uint32(seed), Test: name[:i]}
	if j := strings.LastIndex(res.Test, "__"); j > 0 {
		res.Bucket, res.Test = res.Test[:j], res.Test[j+2:]
	}
	return res
}
