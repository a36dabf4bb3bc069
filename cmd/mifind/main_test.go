package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/mifind/internal/search"
	"github.com/pders01/mifind/internal/storage"
)

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, dbPath, logLevel = "", "", ""
	queryLimit, queryRegex, queryMigemo = 20, false, false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), err
}

// setupTree writes files under a fresh root and a config pointing at it.
func setupTree(t *testing.T, files ...string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	root := filepath.Join(home, "files")
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, bytes.Repeat([]byte("x"), 1500), 0o644))
	}
	require.NoError(t, os.MkdirAll(root, 0o755))

	cfgPath := filepath.Join(home, "config.toml")
	content := fmt.Sprintf(`
[database]
path = %q
search_index = %q

[index]
roots = [%q]
watch = false

[log]
level = "off"
`, filepath.Join(home, "data", "mifind.db"), filepath.Join(home, "data", "index.bleve"), root)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath
}

func TestVersionCommand(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	versionCmd.Run(nil, nil)

	w.Close()
	os.Stdout = old
	out := <-outC

	if !strings.Contains(out, "mifind dev") {
		t.Errorf("Expected version output to contain 'mifind dev', got: %s", out)
	}
	if !strings.Contains(out, "Incremental file name search") {
		t.Errorf("Expected version output to contain the tagline, got: %s", out)
	}
	if !strings.Contains(out, "github.com/pders01/mifind") {
		t.Errorf("Expected version output to contain 'github.com/pders01/mifind', got: %s", out)
	}
}

func TestGenerateConfigCommand(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	configFile := filepath.Join(tmpDir, ".config", "mifind", "config.toml")

	out, err := execute(t, "generate-config")
	require.NoError(t, err)

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		t.Errorf("Config file was not created at %s", configFile)
	}
	if !strings.Contains(out, "Generated default configuration at:") {
		t.Errorf("Expected output to contain 'Generated default configuration at:', got: %s", out)
	}
}

func TestIndexCommand(t *testing.T) {
	cfg := setupTree(t, "report.txt", "notes/meeting.md", ".hidden/secret.txt")

	out, err := execute(t, "--config", cfg, "index")
	require.NoError(t, err)
	// The root itself, the notes folder and two files.
	assert.Contains(t, out, "Indexed 4 files")
}

func TestQueryCommand(t *testing.T) {
	cfg := setupTree(t, "report.txt", "Report-final.pdf", "notes/meeting.md")

	out, err := execute(t, "--config", cfg, "query", "report")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, out)
	assert.Equal(t, "2 items found", lines[0])
	assert.Contains(t, lines[1], "Report-final.pdf")
	assert.Contains(t, lines[1], "\t2 KB\t")
	assert.Contains(t, lines[2], "report.txt")
}

func TestQueryCommand_Limit(t *testing.T) {
	cfg := setupTree(t, "a1.log", "a2.log", "a3.log")

	out, err := execute(t, "--config", cfg, "query", "--limit", "1", "log")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2, out)
	assert.Equal(t, "3 items found", lines[0])
	assert.Contains(t, lines[1], "a1.log")
}

func TestQueryCommand_Regex(t *testing.T) {
	cfg := setupTree(t, "img001.png", "img002.jpg", "img.txt")

	out, err := execute(t, "--config", cfg, "query", "--regex", `img\d+\.`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "2 items found"), out)

	_, err = execute(t, "--config", cfg, "query", "--regex", "img(")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Invalid pattern"), err.Error())
}

func TestQueryCommand_Migemo(t *testing.T) {
	cfg := setupTree(t, "がっこう.txt", "school.txt")

	out, err := execute(t, "--config", cfg, "query", "--migemo", "gakkou")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1 items found"), out)
	assert.Contains(t, out, "がっこう.txt")
}

func TestQueryCommand_RestoresLostIndex(t *testing.T) {
	cfg := setupTree(t, "report.txt")
	_, err := execute(t, "--config", cfg, "index")
	require.NoError(t, err)

	home := os.Getenv("HOME")
	require.NoError(t, os.RemoveAll(filepath.Join(home, "data", "index.bleve")))

	out, err := execute(t, "--config", cfg, "query", "report")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1 items found"), out)
}

func TestFormatResult(t *testing.T) {
	item := &search.Item{
		Name:            "report.txt",
		Folder:          "/home/docs",
		HighlightedName: "*rep*ort.txt",
		Size:            4097,
		Modified:        time.Date(2024, 5, 6, 7, 8, 0, 0, time.UTC),
	}
	assert.Equal(t, "/home/docs/report.txt\t5 KB\t2024-05-06 07:08", formatResult(item, "2006-01-02 15:04"))

	dir := &search.Item{Name: "src", Folder: "/home", Attributes: storage.AttrDirectory}
	assert.Equal(t, "/home/src\t", formatResult(dir, "2006-01-02 15:04"))
}
