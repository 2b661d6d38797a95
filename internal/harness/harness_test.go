package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "golden file name must match scenario name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/quitters-backfill.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := Snapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := Snapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_UnexpectedOutcomeFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong-expectation",
		Description: "expects a rejection that does not happen",
		Listing:     ListingSpec{Name: "Open gym"},
		Steps: []Step{
			{Add: "Alice", Expect: "already_inserted"},
		},
		Assertions: []Assertion{{Type: AssertMainList, Names: []string{"Alice"}}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected already_inserted, got ok")
}

func TestRun_FailedAssertion(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong-roster",
		Description: "asserts the wrong main list",
		Listing:     ListingSpec{Name: "Open gym", MaxSize: intPtr(1)},
		Steps:       []Step{{Add: "Alice"}, {Add: "Bob"}},
		Assertions: []Assertion{
			{Type: AssertMainList, Names: []string{"Bob"}},
			{Type: AssertEventCount, Count: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: main_list")
	assert.Contains(t, result.Errors[0], "Actual: [Alice]")
}

func TestRun_StepTimes(t *testing.T) {
	scenario := &Scenario{
		Name:        "timing",
		Description: "mixes default and explicit step times",
		Listing:     ListingSpec{Name: "Open gym", Cutoff: "start+48h"},
		Steps: []Step{
			{Add: "Alice"},
			{Add: "Bob", At: "cutoff-1h"},
			{Add: "Carol"},
			{Add: "Dave", At: "2026-03-10T09:30:00Z"},
		},
		Assertions: []Assertion{{Type: AssertEventCount, Count: 4}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	var at []string
	for _, ev := range result.Trace {
		at = append(at, ev.At)
	}
	assert.Equal(t, []string{
		"2026-03-01T18:01:00Z",
		"2026-03-03T17:00:00Z",
		"2026-03-03T17:01:00Z",
		"2026-03-10T09:30:00Z",
	}, at)
}

func TestRun_InvalidListing(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad-listing",
		Description: "cutoff before start",
		Listing:     ListingSpec{Name: "Open gym", Cutoff: "start-1h"},
		Steps:       []Step{{Add: "Alice"}},
		Assertions:  []Assertion{{Type: AssertEventCount}},
	}

	_, err := Run(scenario)
	assert.ErrorContains(t, err, "cutoff_date")
}

func TestResolveTime(t *testing.T) {
	start := DefaultStart
	cutoff := start.Add(72 * time.Hour)

	tests := []struct {
		expr    string
		want    time.Time
		wantErr bool
	}{
		{"start", start, false},
		{"start+90m", start.Add(90 * time.Minute), false},
		{"cutoff", cutoff, false},
		{"cutoff-1s", cutoff.Add(-time.Second), false},
		{"2026-04-01T00:00:00+02:00", time.Date(2026, 3, 31, 22, 0, 0, 0, time.UTC), false},
		{"start*2", time.Time{}, true},
		{"cutoff+soon", time.Time{}, true},
		{"tomorrow", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := resolveTime(tt.expr, start, &cutoff)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestResolveTime_CutoffWithoutCutoff(t *testing.T) {
	_, err := resolveTime("cutoff+1h", DefaultStart, nil)
	assert.ErrorContains(t, err, "has none")
}

func TestLoadScenario_NotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenario_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: from-file
description: loads from disk
listing:
  name: Open gym
steps:
  - add: Alice
assertions:
  - type: event_count
    count: 1
`), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", s.Name)
}
