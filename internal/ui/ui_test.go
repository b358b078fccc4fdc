package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"simrun/internal/domain"
)

func init() {
	color.NoColor = true
}

func report() *domain.RunReport {
	r := &domain.RunReport{
		Meta: domain.RunMeta{Mode: "group", Target: "regress", Build: "default", Simulator: "vcs", Duration: "4s", DurationSeconds: 4},
		Results: []domain.InstanceResult{
			{Bucket: "regress", Test: "sanity1", Seed: 10, Outcome: domain.Outcome{Status: domain.StatusPass, Finished: true}, Duration: time.Second},
			{Bucket: "smoke", Test: "sanity2", Seed: 7, Outcome: domain.Outcome{
				Status: domain.StatusFail,
				Errors: []domain.LogLine{{Number: 42, Text: "UVM_ERROR @ 5: scb [CMP] mismatch"}},
			}},
			{Bucket: "smoke", Test: "sanity3", Seed: 3, Outcome: domain.Outcome{Status: domain.StatusWarn, Finished: true}},
		},
	}
	r.Tally()
	return r
}

func TestFormatter_PrintCatalog(t *testing.T) {
	var buf bytes.Buffer
	NewFormatterTo(&buf).PrintCatalog("test", []string{"sanity1", "sanity2"})
	assert.Equal(t, "Available tests:\n├── sanity1\n└── sanity2\n", buf.String())

	buf.Reset()
	NewFormatterTo(&buf).PrintCatalog("group", nil)
	assert.Equal(t, "Available groups:\n└── (none)\n", buf.String())
}

func TestFormatter_PrintUnknown(t *testing.T) {
	var buf bytes.Buffer
	NewFormatterTo(&buf).PrintUnknown(&domain.UnknownNameError{Kind: "build", Name: "gate", Available: []string{"default"}})
	assert.Equal(t, "Available builds:\n└── default\nbuild: gate is unknown\n", buf.String())
}

func TestFormatter_PrintTestList(t *testing.T) {
	var buf bytes.Buffer
	NewFormatterTo(&buf).PrintTestList(
		[]string{"sanity1", "sanity2"},
		map[string][]string{"sanity1": {"sanity1_test", "sanity1_err_test"}},
		map[string]bool{"sanity2": true},
	)
	want := "Found 2 testcase(s):\n" +
		"├── sanity1\n" +
		"│   ├── sanity1_test\n" +
		"│   └── sanity1_err_test\n" +
		"└── sanity2 [F]\n" +
		"    └── (no test classes found)\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatter_PrintResult(t *testing.T) {
	var buf bytes.Buffer
	NewFormatterTo(&buf).PrintResult(report())
	out := buf.String()
	assert.Contains(t, out, "✗ 1 of 3 instance(s) failed")
	assert.Contains(t, out, "└── smoke\n")
	assert.Contains(t, out, "sanity2 seed 7 [FAIL]")
	assert.Contains(t, out, "42: UVM_ERROR @ 5: scb [CMP] mismatch")
	assert.NotContains(t, out, "sanity1 seed")

	passing := report()
	passing.Results = passing.Results[:1]
	passing.Tally()
	buf.Reset()
	NewFormatterTo(&buf).PrintResult(passing)
	assert.Contains(t, buf.String(), "✓ All 1 instance(s) passed")
}

func TestSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	SummaryTable(&buf, report())
	out := buf.String()
	for _, want := range []string{"sanity1", "sanity2", "sanity3", "TOTAL", "1 FAILED", "1 PASSED"} {
		assert.Contains(t, strings.ToUpper(out), strings.ToUpper(want))
	}
}

func TestFormatFailureDetails(t *testing.T) {
	r := report().Results[1]
	r.Error = "command exited with status 1"
	out := formatFailureDetails(&r)
	assert.Contains(t, out, "sanity2 seed 7: FAIL")
	assert.Contains(t, out, "no end-of-run marker")
	assert.Contains(t, out, "command exited with status 1")
	assert.Contains(t, out, "42")
	assert.Equal(t, "smoke__sanity2__7", instanceName(&r))
}

func TestFailureIndex(t *testing.T) {
	assert.Equal(t, []int{1}, failureIndex(report()))
}
