package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/newsintel/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	got, err := LoadConfig(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), got)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
lookup:
  timeout: 3s
  max_results: 2
scoring:
  flag_penalty: 20
server:
  addr: ":9999"
`), 0o644))
	t.Setenv("NEWSINTEL_LOOKUP_MAX_RESULTS", "6")

	got, err := LoadConfig(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, got.Lookup.Timeout)
	assert.Equal(t, 6, got.Lookup.MaxResults, "env beats file")
	assert.Equal(t, 20.0, got.Scoring.FlagPenalty)
	assert.Equal(t, ":9999", got.Server.Addr)
	assert.Equal(t, model.DefaultConfig().HTTP.UserAgent, got.HTTP.UserAgent, "untouched keys keep defaults")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path, false))
	assert.Error(t, WriteDefaultConfig(path, false), "refuses to overwrite")
	require.NoError(t, WriteDefaultConfig(path, true))

	got, err := LoadConfig(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), got)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "aliens-exist", sanitizeFilename("aliens exist"))
	assert.Equal(t, "a-b-c", sanitizeFilename("a/b\\c"))
	assert.Equal(t, "report", sanitizeFilename("???"))
	assert.LessOrEqual(t, len(sanitizeFilename(strings.Repeat("word ", 40))), 60)
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "short", shorten("short", 10))
	assert.Equal(t, "a b", shorten("a \n b", 10))
	assert.Equal(t, "abcd…", shorten("abcdefghij", 5))
}

func TestReadInput(t *testing.T) {
	t.Cleanup(func() { inputURL, inputFile = "", "" })

	got, err := readInput(nil, []string{"Do", "aliens", "exist?"})
	require.NoError(t, err)
	assert.Equal(t, "Do aliens exist?", got)

	inputFile = "-"
	got, err = readInput(strings.NewReader("from stdin"), nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	inputFile = ""
	_, err = readInput(nil, nil)
	assert.Error(t, err)

	inputURL = "example.com/story"
	_, err = readInput(nil, nil)
	assert.Error(t, err)
}

func TestCommands_VersionAndAnalyze(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		jsonStdout, noLookup = false, false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "newsintel v"+Version+"\n", out.String())

	out.Reset()
	rootCmd.SetArgs([]string{"analyze", "--no-lookup", "--print-json", "Do aliens exist?"})
	require.NoError(t, rootCmd.Execute())

	var report model.AnalysisReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.Len(t, report.Claims, 1)
	assert.NotEmpty(t, report.FollowUps)
	for _, c := range report.Claims {
		for _, ref := range c.References {
			assert.True(t, ref.Fallback)
		}
	}
}

func TestCacheClear(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Setenv("NEWSINTEL_CACHE_DISK_DIR", dir)
	entry := filepath.Join(dir, "stale.cache")
	require.NoError(t, os.WriteFile(entry, []byte("{}"), 0o644))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"cache", "clear"})
	require.NoError(t, rootCmd.Execute())

	assert.NoFileExists(t, entry)
	assert.Contains(t, out.String(), "Cleared lookup cache")
}
