package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/factchecker/veracity/internal/config"
	"github.com/factchecker/veracity/internal/knowledge"
	"github.com/factchecker/veracity/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const climateText = "Global temperatures have risen 1.1 degrees since pre-industrial times according to a new study."

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "veracity.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func seedOnlyConfig(t *testing.T) string {
	return writeConfig(t, `
database:
  driver: none
logging:
  level: error
`)
}

func sqliteConfig(t *testing.T) string {
	dbPath := filepath.Join(t.TempDir(), "kb.db")
	return writeConfig(t, fmt.Sprintf(`
database:
  driver: sqlite
  path: %s
knowledge_base:
  source: sqlite
logging:
  level: error
`, dbPath))
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "veracity dev\n", out)
}

func TestAnalyze_TextOutput(t *testing.T) {
	out, errOut, err := runCLI(t, "", "analyze", "--config", seedOnlyConfig(t), "--format", "text", climateText)
	require.NoError(t, err)

	assert.Contains(t, out, "Verdict: Likely True\n")
	assert.Contains(t, out, "Evidence: 3 sources\n")
	assert.Contains(t, out, "Claims:\n  - [climate, ")
	assert.Contains(t, errOut, "[ 16%] Claim Detection\n")
	assert.Contains(t, errOut, "[100%] Explanation Generation\n")
}

func TestAnalyze_JSONFromStdin(t *testing.T) {
	out, errOut, err := runCLI(t, climateText, "analyze", "--config", seedOnlyConfig(t), "--quiet")
	require.NoError(t, err)
	assert.NotContains(t, errOut, "Claim Detection")

	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, models.LikelyTrue, report.Verdict.Classification)
	assert.Len(t, report.ProcessingStages, 6)
}

func TestAnalyze_Errors(t *testing.T) {
	cfg := seedOnlyConfig(t)

	_, _, err := runCLI(t, "   ", "analyze", "--config", cfg)
	assert.True(t, errors.Is(err, models.ErrInvalidInput), "got %v", err)

	_, _, err = runCLI(t, "", "analyze", "--config", cfg, "--format", "xml", climateText)
	assert.ErrorContains(t, err, "invalid format")

	_, _, err = runCLI(t, "", "analyze", "--config", filepath.Join(t.TempDir(), "missing.yaml"), climateText)
	assert.ErrorContains(t, err, "config file not found")
}

func TestClassificationLabel(t *testing.T) {
	tests := map[models.Classification]string{
		models.VerifiedTrue:         "Verified True",
		models.LikelyTrue:           "Likely True",
		models.LikelyFalse:          "Likely False",
		models.VerifiedFalse:        "Verified False",
		models.InsufficientEvidence: "Insufficient Evidence",
	}
	for in, want := range tests {
		assert.Equal(t, want, classificationLabel(in))
	}
}

func TestKB_SeedOnlyList(t *testing.T) {
	out, _, err := runCLI(t, "", "kb", "list", "--config", seedOnlyConfig(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "TOPIC"))
	assert.True(t, strings.HasPrefix(lines[1], "climate change"))
	assert.Contains(t, lines[1], "0.93")
}

func TestKB_ImportListExportDelete(t *testing.T) {
	cfg := sqliteConfig(t)

	out, _, err := runCLI(t, "", "kb", "import", "--config", cfg, "--seed")
	require.NoError(t, err)
	assert.Equal(t, "Imported 3 topics\n", out)

	out, _, err = runCLI(t, "", "kb", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "vaccine")

	out, _, err = runCLI(t, "", "kb", "export", "--config", cfg)
	require.NoError(t, err)
	exported, err := knowledge.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, knowledge.Seed().All(), exported.All())

	out, _, err = runCLI(t, "", "analyze", "--config", cfg, "--quiet", "--format", "text", climateText)
	require.NoError(t, err)
	assert.Contains(t, out, "Verdict: Likely True\n")

	_, _, err = runCLI(t, "", "kb", "delete", "--config", cfg, "vaccine")
	require.NoError(t, err)

	out, _, err = runCLI(t, "", "kb", "list", "--config", cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "vaccine")
	assert.Contains(t, out, "election")
}

func TestKB_ImportFile(t *testing.T) {
	cfg := sqliteConfig(t)
	kbPath := filepath.Join(t.TempDir(), "kb.yaml")
	require.NoError(t, os.WriteFile(kbPath, []byte(`topics:
  - topic: Minimum Wage
    sources:
      - title: Federal Labor Department 2024
        credibility: 0.9
        supports: true
        excerpt: Wage floors were raised in 2024.
`), 0644))

	out, _, err := runCLI(t, "", "kb", "import", "--config", cfg, kbPath)
	require.NoError(t, err)
	assert.Equal(t, "Imported 1 topics\n", out)

	out, _, err = runCLI(t, "", "kb", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "minimum wage")
	assert.Contains(t, out, "0.90")
}

func TestKB_ImportArguments(t *testing.T) {
	cfg := sqliteConfig(t)

	_, _, err := runCLI(t, "", "kb", "import", "--config", cfg)
	assert.ErrorContains(t, err, "either a file or --seed")

	_, _, err = runCLI(t, "", "kb", "import", "--config", cfg, "--seed", "kb.yaml")
	assert.ErrorContains(t, err, "either a file or --seed")
}

func TestKB_RequiresDatabase(t *testing.T) {
	_, _, err := runCLI(t, "", "kb", "import", "--config", seedOnlyConfig(t), "--seed")
	assert.ErrorContains(t, err, "requires database.driver sqlite")
}

func TestKB_HarvestWithoutSources(t *testing.T) {
	cfg := writeConfig(t, `
database:
  driver: none
harvest:
  wikipedia:
    enabled: false
  pubmed:
    enabled: false
logging:
  level: error
`)
	_, _, err := runCLI(t, "", "kb", "harvest", "--config", cfg, "--topic", "inflation")
	assert.ErrorContains(t, err, "no harvest sources are enabled")

	_, _, err = runCLI(t, "", "kb", "harvest", "--config", cfg)
	assert.ErrorContains(t, err, "topic")
}

func TestConfigGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")

	out, _, err := runCLI(t, "", "config", "generate", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Scoring, cfg.Scoring)

	_, _, err = runCLI(t, "", "config", "generate", path)
	assert.ErrorContains(t, err, "already exists")

	_, _, err = runCLI(t, "", "config", "generate", "--force", path)
	assert.NoError(t, err)
}

func TestLogLevelOverride(t *testing.T) {
	_, _, err := runCLI(t, "", "analyze", "--config", seedOnlyConfig(t), "--log-level", "loud", climateText)
	assert.ErrorContains(t, err, "invalid log level")
}
