package merge_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/coursemap/cmd/coursemap/cmd/merge"
	"github.com/agentstation/coursemap/internal/cmd/application"
	"github.com/agentstation/coursemap/pkg/errors"
)

const page1 = `{"school_name": "CES", "locations": [{"city": "Dublin", "country": "IE",
	"courses": [{"name": "General English", "prices": [{"duration": "2 weeks", "price": "€300"}]}]}]}`

const page2 = `{"locations": [{"city": "DUBLIN ", "country": "ie",
	"courses": [{"name": "General English", "prices": [{"duration": "4 weeks", "price": "€550"}]}]}]}`

func writePages(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for i, page := range []string{page1, page2} {
		path := filepath.Join(dir, "page"+string(rune('1'+i))+".json")
		require.NoError(t, os.WriteFile(path, []byte(page), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func run(t *testing.T, app application.Application, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := merge.NewCommand(app)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestMergeJSON(t *testing.T) {
	app := &application.Mock{OutputFormatFunc: func() string { return "json" }}

	stdout, _, err := run(t, app, "", writePages(t)...)
	require.NoError(t, err)

	var got struct {
		Name      string `json:"name"`
		Locations []struct {
			City    string `json:"city"`
			Courses []struct {
				Prices []json.RawMessage `json:"prices"`
			} `json:"courses"`
		} `json:"locations"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "CES", got.Name)
	require.Len(t, got.Locations, 1)
	assert.Equal(t, "Dublin", got.Locations[0].City)
	require.Len(t, got.Locations[0].Courses, 1)
	assert.Len(t, got.Locations[0].Courses[0].Prices, 2)
}

func TestMergeStdinYAML(t *testing.T) {
	app := &application.Mock{OutputFormatFunc: func() string { return "yaml" }}
	stdin := "- school_name: CES\n- locations:\n  - city: Cork\n    country: IE\n"

	stdout, _, err := run(t, app, stdin, "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, "name: CES")
	assert.Contains(t, stdout, "city: Cork")
}

func TestMergeMarkdown(t *testing.T) {
	app := &application.Mock{OutputFormatFunc: func() string { return "markdown" }}

	stdout, _, err := run(t, app, "", writePages(t)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "# CES")
	assert.Contains(t, stdout, "Dublin, IE")
}

func TestMergeIssues(t *testing.T) {
	app := &application.Mock{OutputFormatFunc: func() string { return "json" }}
	stdin := `[{"school_name": "CES", "locations": [{"country": "IE"}]}]`

	_, stderr, err := run(t, app, stdin, "-", "--issues")
	require.NoError(t, err)
	assert.Contains(t, stderr, "locations[0]")
}

func TestMergeNoIssues(t *testing.T) {
	app := &application.Mock{OutputFormatFunc: func() string { return "json" }}

	_, stderr, err := run(t, app, `{"school_name": "CES"}`, "-", "--issues")
	require.NoError(t, err)
	assert.Contains(t, stderr, "No issues.")
}

func TestMergeErrors(t *testing.T) {
	t.Run("invalid format", func(t *testing.T) {
		app := &application.Mock{OutputFormatFunc: func() string { return "xml" }}
		_, _, err := run(t, app, "", writePages(t)...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("missing file", func(t *testing.T) {
		app := &application.Mock{OutputFormatFunc: func() string { return "json" }}
		_, _, err := run(t, app, "", filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
	})

	t.Run("no arguments", func(t *testing.T) {
		_, _, err := run(t, &application.Mock{}, "")
		require.Error(t, err)
	})
}
