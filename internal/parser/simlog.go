package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/acarl005/stripansi"

	"simrun/internal/domain"
)

// maxRecorded bounds the lines kept per category in an Outcome.
const maxRecorded = 100

// LogClassifier classifies sim.log files with one PatternSet
type LogClassifier struct {
	patterns PatternSet
}

// NewLogClassifier creates a new LogClassifier
func NewLogClassifier(patterns PatternSet) *LogClassifier {
	return &LogClassifier{patterns: patterns}
}

// ClassifyFile classifies the log at path. A missing log yields
// StatusUnknown together with the error.
func (c *LogClassifier) ClassifyFile(path string) (domain.Outcome, error) {
	f, err := os.Open(path)
	if err != nil {
		out := domain.Outcome{Status: domain.StatusUnknown, LogPath: path}
		if errors.Is(err, os.ErrNotExist) {
			return out, fmt.Errorf("no simulation log at %s: %w", path, err)
		}
		return out, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	out, err := c.Classify(f)
	out.LogPath = path
	return out, err
}

// Classify scans a log. ANSI color codes are stripped before matching.
// Any error or core dump line fails the run; a log that never reaches the
// end-of-run marker is StatusUnknown; warnings alone give StatusWarn.
func (c *LogClassifier) Classify(r io.Reader) (domain.Outcome, error) {
	var (
		out              domain.Outcome
		errCount, warnCt int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := strings.TrimRight(stripansi.Strip(sc.Text()), "\r")
		line := domain.LogLine{Number: lineNo, Text: text}

		switch {
		case c.isError(text):
			if c.patterns.Exclude != nil && c.patterns.Exclude.MatchString(text) {
				out.Excluded = record(out.Excluded, line)
				continue
			}
			errCount++
			out.Errors = record(out.Errors, line)
		case c.patterns.CoreDump != nil && c.patterns.CoreDump.MatchString(text):
			errCount++
			out.Errors = record(out.Errors, line)
		case matchAny(c.patterns.Warning, text):
			warnCt++
			out.Warnings = record(out.Warnings, line)
		}

		if c.patterns.EndOfRun != nil && c.patterns.EndOfRun.MatchString(text) {
			out.Finished = true
		}
	}
	if err := sc.Err(); err != nil {
		out.Status = domain.StatusUnknown
		return out, fmt.Errorf("read log: %w", err)
	}

	switch {
	case errCount > 0:
		out.Status = domain.StatusFail
	case !out.Finished:
		out.Status = domain.StatusUnknown
	case warnCt > 0:
		out.Status = domain.StatusWarn
	default:
		out.Status = domain.StatusPass
	}
	return out, nil
}

func (c *LogClassifier) isError(text string) bool {
	return matchAny(c.patterns.Error, text)
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func record(lines []domain.LogLine, line domain.LogLine) []domain.LogLine {
	if len(lines) >= maxRecorded {
		return lines
	}
	return append(lines, line)
}
