package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/sheetfit/internal/project"
)

const mixedCSV = `label,height,width,quantity
A,4,3,2
B,2,2,2
C,3,1,1
`

// execute runs the root command with a config file in dir and returns stdout.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(&out, io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--config", filepath.Join(dir, "config.toml")))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFit_JSON(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "pieces.csv", mixedCSV)

	out, err := execute(t, dir, "fit", input, "--width", "10", "--height", "5", "--json")
	require.NoError(t, err)

	var got packingOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Feasible)
	assert.Len(t, got.Placements, 5)
	assert.InDelta(t, 35.0, got.UsedArea, 1e-9)
	assert.InDelta(t, 70.0, got.Efficiency, 1e-9)
}

func TestFit_Infeasible(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "big.csv", "big,20,20,1\n")

	out, err := execute(t, dir, "fit", input, "--width", "10", "--height", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "No packing found on a 10x10 sheet")
}

func TestFit_SheetFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.toml", "sheet_width = 10\nsheet_height = 5\n")
	input := writeFile(t, dir, "pieces.csv", mixedCSV)

	out, err := execute(t, dir, "fit", input)
	require.NoError(t, err)
	assert.Contains(t, out, "5 pieces on a 10x5 sheet, 70.0% used")
}

func TestFit_SheetFromJobFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "job.yaml", `name: test
sheet: {width: 10, height: 5}
pieces:
  - {label: A, height: 5, width: 10}
`)

	out, err := execute(t, dir, "fit", input, "--json")
	require.NoError(t, err)

	var got packingOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 10.0, got.Width)
	assert.Equal(t, 5.0, got.Height)
	assert.True(t, got.Feasible)
}

func TestFit_Errors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "pieces.csv", mixedCSV)

	_, err := execute(t, dir, "fit", filepath.Join(dir, "missing.csv"), "--width", "10", "--height", "5")
	assert.Error(t, err, "missing input")

	_, err = execute(t, dir, "fit", input, "--width", "10", "--height", "5", "--heuristics", "nope")
	assert.Error(t, err, "unknown heuristic")

	_, err = execute(t, dir, "fit", input, "--width=-1", "--height", "5")
	assert.Error(t, err, "negative sheet width")

	_, err = execute(t, dir, "fit")
	assert.Error(t, err, "missing argument")
}

func TestMaxUse_MaxCount(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "pieces.csv", mixedCSV)

	out, err := execute(t, dir, "maxuse", input, "--width", "10", "--height", "5", "--max-count", "1", "--json")
	require.NoError(t, err)

	var got packingOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.True(t, got.Feasible)
	require.Len(t, got.Placements, 1)
	assert.InDelta(t, 12.0, got.UsedArea, 1e-9)
}

func TestMaxUse_MinUsageTooHigh(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "pieces.csv", mixedCSV)

	out, err := execute(t, dir, "maxuse", input, "--width", "10", "--height", "5", "--min-usage", "0.9", "--json")
	require.NoError(t, err)

	var got packingOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Feasible)
}

func TestMaxUse_InvalidMinUsage(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "pieces.csv", mixedCSV)

	_, err := execute(t, dir, "maxuse", input, "--width", "10", "--height", "5", "--min-usage", "2")
	assert.Error(t, err)
}

func TestSheets_WritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "pieces.csv", mixedCSV+"huge,30,30,1\n")
	pdfPath := filepath.Join(dir, "out", "layout.pdf")
	labelPath := filepath.Join(dir, "out", "labels.pdf")
	jobPath := filepath.Join(dir, "out", "job.json")

	out, err := execute(t, dir, "sheets", input, "--width", "6", "--height", "5",
		"--pdf", pdfPath, "--labels", labelPath, "--save", jobPath, "--json")
	require.NoError(t, err)

	var got sheetsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 5, got.PlacedCount())
	require.Len(t, got.Unplaced, 1)
	assert.Equal(t, "huge", got.Unplaced[0].Label)
	assert.Equal(t, 1, got.Estimate.UnfitCount)
	assert.GreaterOrEqual(t, len(got.Sheets), got.Estimate.SheetsNeededMin)
	for _, s := range got.Sheets {
		assert.NoError(t, s.Validate())
	}

	for _, p := range []string{pdfPath, labelPath, jobPath} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Greater(t, info.Size(), int64(0), p)
	}

	job, err := project.LoadJob(jobPath)
	require.NoError(t, err)
	require.NotNil(t, job.Result)
	assert.Equal(t, 5, job.Result.PlacedCount())
	assert.Equal(t, 6.0, job.SheetWidth)

	cfg, err := project.LoadAppConfig(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	require.Len(t, cfg.RecentJobs, 1)
	assert.Equal(t, "job.json", filepath.Base(cfg.RecentJobs[0]))

	// A saved job is valid input for the other commands.
	out, err = execute(t, dir, "fit", jobPath, "--json")
	require.NoError(t, err)
	var fit packingOutput
	require.NoError(t, json.Unmarshal([]byte(out), &fit))
	assert.Equal(t, 6.0, fit.Width)
	assert.False(t, fit.Feasible, "the 30x30 piece never fits")
}

func TestSheets_MaxSheets(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "pieces.csv", "a,10,10,3\n")

	out, err := execute(t, dir, "sheets", input, "--width", "10", "--height", "10", "--max-sheets", "2", "--json")
	require.NoError(t, err)

	var got sheetsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Sheets, 2)
	assert.Len(t, got.Unplaced, 1)
}

func TestSheets_Table(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "pieces.csv", "a,10,10,2\nhuge,50,50,1\n")

	out, err := execute(t, dir, "sheets", input, "--width", "10", "--height", "10", "--detail")
	require.NoError(t, err)
	assert.Contains(t, out, "2 sheets (at least 2 by area), 2 placed, 1 unplaced, 100.0% overall")
	assert.Contains(t, out, "Sheet 2")
	assert.Contains(t, out, "Unplaced")
	assert.Contains(t, out, "huge")
}

func TestCompare_JSON(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "pieces.csv", mixedCSV)

	out, err := execute(t, dir, "compare", input, "--width", "10", "--height", "5", "--json")
	require.NoError(t, err)

	var rows []comparisonOutput
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	// Current settings, five single heuristics, genetic fallback, no probe cache.
	require.Len(t, rows, 8)
	assert.Equal(t, "Current Settings", rows[0].Scenario)
	assert.Equal(t, "Genetic Fallback", rows[6].Scenario)
	assert.Equal(t, "No Probe Cache", rows[7].Scenario)
	for _, r := range rows {
		assert.Equal(t, 5, r.Placed, r.Scenario)
		assert.Equal(t, 1, r.Sheets, r.Scenario)
	}
}

func TestConfig_InitAndShow(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "config.toml")

	_, err = execute(t, dir, "config", "init")
	assert.Error(t, err, "refuses to overwrite")

	_, err = execute(t, dir, "config", "init", "--force")
	assert.NoError(t, err)

	t.Setenv("SHEETFIT_SHEET_WIDTH", "999")
	out, err = execute(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "sheet_width = 999.0")
}

func TestSetup_BadConfig(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "pieces.csv", mixedCSV)

	writeFile(t, dir, "config.toml", "timeout = \"soon\"\n")
	_, err := execute(t, dir, "fit", input)
	assert.Error(t, err, "bad timeout")

	writeFile(t, dir, "config.toml", "log_level = \"loud\"\n")
	_, err = execute(t, dir, "fit", input)
	assert.Error(t, err, "bad log level")
}

func TestFit_SheetPreset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.toml", `[[presets]]
name = "small"
width = 10
height = 5
`)
	input := writeFile(t, dir, "pieces.csv", mixedCSV)

	out, err := execute(t, dir, "fit", input, "--sheet", "Small", "--json")
	require.NoError(t, err)
	var got packingOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 10.0, got.Width)
	assert.Equal(t, 5.0, got.Height)

	out, err = execute(t, dir, "fit", input, "--sheet", "small", "--height", "6", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 6.0, got.Height, "an explicit side overrides the preset")

	_, err = execute(t, dir, "fit", input, "--sheet", "full")
	assert.ErrorContains(t, err, "available: small")
}

func TestPresets_Default(t *testing.T) {
	out, err := execute(t, t.TempDir(), "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "full")
	assert.Contains(t, out, "2440")
}

func TestSheets_Offcuts(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "pieces.csv", "a,10,4,1\n")

	out, err := execute(t, dir, "sheets", input, "--width", "10", "--height", "10", "--json")
	require.NoError(t, err)
	var got sheetsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Offcuts, 1)
	assert.InDelta(t, 60.0, got.Offcuts[0].Area(), 1e-9)

	out, err = execute(t, dir, "sheets", input, "--width", "10", "--height", "10", "--min-offcut", "7", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Empty(t, got.Offcuts)
}
