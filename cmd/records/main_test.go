package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), buf.String())
	return buf.String()
}

func TestCommands(t *testing.T) {
	chdir(t, t.TempDir())
	dir := t.TempDir()
	data := "--data-dir=" + dir

	out := execute(t, "list", "student", data)
	assert.Contains(t, out, "John Smith")
	assert.Contains(t, out, "Emma Johnson")

	out = execute(t, "add", "movie", `{"title":"Heat","genre":["Crime"],"year":1995}`, data)
	assert.Contains(t, out, `"title": "Heat"`)

	out = execute(t, "list", "movie", "--query=heat", "--format=json", data)
	var movies []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &movies))
	require.Len(t, movies, 1)
	assert.Equal(t, "Heat", movies[0]["title"])

	out = execute(t, "delete", "student", "1", "--yes", data)
	assert.Contains(t, out, "deleted student 1")
	assert.Contains(t, out, "also removed 2 grades")
	assert.Contains(t, out, "also removed 1 attendance")

	out = execute(t, "delete", "student", "1", "--yes", data)
	assert.Contains(t, out, "no student with id 1")

	exported := filepath.Join(t.TempDir(), "export.json")
	execute(t, "export", "-o", exported, data)
	doc, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"exportDate"`)

	out = execute(t, "clear", "--yes", data)
	assert.Contains(t, out, "all data cleared")

	out = execute(t, "list", "student", "--query=", "--format=table", data)
	assert.Contains(t, out, "(none)", "cleared data is not reseeded")

	out = execute(t, "import", exported, "--yes", data)
	assert.Contains(t, out, "students")

	out = execute(t, "list", "student", data)
	assert.Contains(t, out, "Emma Johnson")
	assert.NotContains(t, out, "John Smith")

	out = execute(t, "stats", "--format=yaml", "--no-color", data)
	assert.Contains(t, out, "revenue: 1500")

	out = execute(t, "stats", "--format=table", data)
	assert.Contains(t, out, "Student progress")
	assert.Contains(t, out, "revenue $1500.00")

	out = execute(t, "migrate", "--from=json", "--to=sqlite", data)
	assert.Contains(t, out, "copied 5 keys")
	_, err = os.Stat(filepath.Join(dir, "records.db"))
	assert.NoError(t, err)

	out = execute(t, "list", "movie", "--backend=sqlite", "--query=", data)
	assert.Contains(t, out, "Heat")
}

func TestUnknownKind(t *testing.T) {
	chdir(t, t.TempDir())
	rootCmd.SetArgs([]string{"list", "classroom", "--data-dir=" + t.TempDir()})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.Execute())
}

func TestImportFromStdinNeedsYes(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, importCmd.Flags().Set("yes", "false"))
	var buf bytes.Buffer
	rootCmd.SetIn(bytes.NewBufferString(`{"students":[]}`))
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"import", "-", "--data-dir=" + t.TempDir()})
	err := rootCmd.Execute()
	assert.ErrorContains(t, err, "--yes is required")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
