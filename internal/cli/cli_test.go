package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rollcall/internal/domain"
)

// run executes the root command with args against dbPath.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	full := append([]string{"--driver", "sqlite", "--db", dbPath, "--log-level", "error"}, args...)
	cmd.SetArgs(full)
	err := cmd.Execute()
	return out.String(), err
}

// data decodes the data field of a JSON CLIResponse into v.
func data(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status, out)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "rollcall", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"serve"},
		{"listing", "create"},
		{"listing", "list"},
		{"listing", "show"},
		{"add"},
		{"remove"},
		{"replay"},
		{"test"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"db", "driver", "database-url", "log-level", "log-format", "env-file"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "x.db"), "--format", "yaml", "listing", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidDriver(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "x.db"), "--driver", "mysql", "listing", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown db driver")
}

func TestListingLifecycle(t *testing.T) {
	db := filepath.Join(t.TempDir(), "rollcall.db")

	out, err := run(t, db, "--format", "json", "listing", "create", "--name", "Thursday volley", "--max-size", "1")
	require.NoError(t, err)
	var l domain.Listing
	data(t, out, &l)
	require.NotEmpty(t, l.ID)
	require.NotNil(t, l.MaxSize)
	assert.Equal(t, 1, *l.MaxSize)

	_, err = run(t, db, "add", l.ID, "Alice")
	require.NoError(t, err)
	out, err = run(t, db, "add", l.ID, "Bob", "--invitee")
	require.NoError(t, err)
	assert.Contains(t, out, "Accepted add Bob (seq 2)")
	assert.Contains(t, out, "Reserve (1): Bob (invitee)")

	out, err = run(t, db, "--format", "json", "listing", "show", l.ID)
	require.NoError(t, err)
	var computed domain.ComputedListing
	data(t, out, &computed)
	assert.Equal(t, []string{"Alice"}, domain.Names(computed.MainList))
	assert.Equal(t, []string{"Bob"}, domain.Names(computed.ReserveList))

	out, err = run(t, db, "remove", l.ID, "Alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Main (1):    Bob (invitee)")

	out, err = run(t, db, "listing", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Thursday volley")
	assert.Contains(t, out, "max 1")
}

func TestSubmissionRejections(t *testing.T) {
	db := filepath.Join(t.TempDir(), "rollcall.db")
	out, err := run(t, db, "--format", "json", "listing", "create", "--name", "Open gym")
	require.NoError(t, err)
	var l domain.Listing
	data(t, out, &l)

	out, err = run(t, db, "--format", "json", "remove", l.ID, "Dave")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `"code": "not_found"`)

	_, err = run(t, db, "add", l.ID, "Alice")
	require.NoError(t, err)
	out, err = run(t, db, "add", l.ID, "Alice")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [already_inserted]")

	_, err = run(t, db, "add", "no-such-listing", "Alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListingCreate_Invalid(t *testing.T) {
	db := filepath.Join(t.TempDir(), "rollcall.db")

	out, err := run(t, db, "listing", "create", "--name", "x", "--max-size", "0")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [invalid]")

	_, err = run(t, db, "listing", "create", "--name", "x", "--cutoff", "next week")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = run(t, db, "listing", "create")
	assert.Error(t, err, "--name is required")
}

func TestReplay(t *testing.T) {
	db := filepath.Join(t.TempDir(), "rollcall.db")

	out, err := run(t, db, "replay")
	require.NoError(t, err)
	assert.Contains(t, out, "No listings found")

	out, err = run(t, db, "--format", "json", "listing", "create", "--name", "Open gym", "--max-size", "2")
	require.NoError(t, err)
	var l domain.Listing
	data(t, out, &l)
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		_, err = run(t, db, "add", l.ID, name)
		require.NoError(t, err)
	}

	out, err = run(t, db, "--format", "json", "replay")
	require.NoError(t, err)
	var result ReplayResult
	data(t, out, &result)
	assert.True(t, result.AllDeterministic)
	require.Len(t, result.Listings, 1)
	assert.Equal(t, ReplayListingResult{
		ListingID: l.ID, Name: "Open gym", Main: 2, Reserve: 1, Paying: 2, Deterministic: true,
	}, result.Listings[0])

	out, err = run(t, db, "replay", "--listing", l.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "All listings verified deterministic")

	_, err = run(t, db, "replay", "--listing", "missing")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

const passingScenario = `
name: overflow
description: third sign-up waits
listing:
  name: Open gym
  max_size: 2
steps:
  - add: Alice
  - add: Bob
  - add: Carol
assertions:
  - type: reserve_list
    names: [Carol]
`

const failingScenario = `
name: wrong
description: asserts the wrong roster
listing:
  name: Open gym
steps:
  - add: Alice
assertions:
  - type: main_list
    names: [Bob]
`

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestTestCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "unused.db")

	t.Run("missing dir", func(t *testing.T) {
		_, err := run(t, db, "test", filepath.Join(t.TempDir(), "nope"))
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("empty dir", func(t *testing.T) {
		out, err := run(t, db, "test", t.TempDir())
		require.NoError(t, err)
		assert.Contains(t, out, "No scenarios found.")
	})

	t.Run("pass then golden", func(t *testing.T) {
		dir := t.TempDir()
		writeScenario(t, dir, "overflow.yaml", passingScenario)

		out, err := run(t, db, "test", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "✓ overflow")

		out, err = run(t, db, "test", dir, "--update")
		require.NoError(t, err)
		assert.Contains(t, out, "golden updated")
		assert.FileExists(t, filepath.Join(dir, "golden", "overflow.golden"))

		out, err = run(t, db, "test", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "1 passed, 0 failed")

		require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "overflow.golden"), []byte("{}\n"), 0o644))
		out, err = run(t, db, "test", dir)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "does not match golden file")
	})

	t.Run("failure json", func(t *testing.T) {
		dir := t.TempDir()
		writeScenario(t, dir, "overflow.yaml", passingScenario)
		writeScenario(t, dir, "wrong.yml", failingScenario)

		out, err := run(t, db, "--format", "json", "test", dir)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		var resp struct {
			Status string     `json:"status"`
			Data   TestResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, 1, resp.Data.Passed)
		assert.Equal(t, 1, resp.Data.Failed)
	})

	t.Run("filter", func(t *testing.T) {
		dir := t.TempDir()
		writeScenario(t, dir, "overflow.yaml", passingScenario)
		writeScenario(t, dir, "wrong.yaml", failingScenario)

		out, err := run(t, db, "test", dir, "--filter", "over*")
		require.NoError(t, err)
		assert.Contains(t, out, "1 passed, 0 failed, 1 total")
	})
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", "")
	writeScenario(t, dir, "b.yml", "")
	writeScenario(t, dir, "notes.txt", "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	writeScenario(t, filepath.Join(dir, "nested"), "c.yaml", "")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	_, err = findScenarioFiles(dir, "[")
	assert.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "overflow.golden"),
		goldenFilePath(filepath.Join("scenarios", "overflow.yaml"), "overflow"))
}
