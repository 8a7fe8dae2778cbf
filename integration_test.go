package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gigurra/arrivals/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// runCLI runs the arrivals CLI with the given args and returns stdout.
// It uses an empty config to avoid interference from the user's config.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()

	tmpDir := t.TempDir()
	emptyConfigPath := filepath.Join(tmpDir, "empty-config.yaml")
	os.WriteFile(emptyConfigPath, []byte(""), 0644)

	return runCLIWithConfigPath(t, emptyConfigPath, args...)
}

func runCLIWithConfigPath(t *testing.T, configPath string, args ...string) string {
	t.Helper()

	fullArgs := append([]string{"--config", configPath}, args...)
	cmd := exec.Command("go", append([]string{"run", "."}, fullArgs...)...)

	// Capture stdout only (stderr has go download messages and logs)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			t.Fatalf("CLI failed: %v\nStderr: %s", err, exitErr.Stderr)
		}
		t.Fatalf("CLI failed: %v", err)
	}
	return string(output)
}

// runCLIJSON runs the CLI with JSON output and parses the result
func runCLIJSON(t *testing.T, args ...string) internal.JSONOutput {
	t.Helper()
	fullArgs := append(args, "--output", "json")
	output := runCLI(t, fullArgs...)

	var result internal.JSONOutput
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	return result
}

// runCLIWithConfigJSON runs the CLI with a custom config and JSON output
func runCLIWithConfigJSON(t *testing.T, configContent string, args ...string) internal.JSONOutput {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	output := runCLIWithConfigPath(t, configPath, append(args, "--output", "json")...)
	var result internal.JSONOutput
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	return result
}

// runCLIExpectFailure runs the CLI and returns stderr, failing if it exits 0
func runCLIExpectFailure(t *testing.T, args ...string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "empty-config.yaml")
	os.WriteFile(configPath, []byte(""), 0644)

	cmd := exec.Command("go", append([]string{"run", ".", "--config", configPath}, args...)...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil {
		t.Fatalf("expected CLI to fail, stderr: %s", stderr.String())
	}
	return stderr.String()
}

var stateNames = []string{
	"New South Wales", "Victoria", "Queensland", "South Australia", "Western Australia",
	"Tasmania", "Northern Territory", "Australian Capital Territory", "Other Territories", "Australia",
}

// createStateXLSX creates a workbook with a title row above a by-state table
func createStateXLSX(t *testing.T, path string, labels []string, months []string) {
	t.Helper()
	f := excelize.NewFile()
	sheet := "Data1"
	f.SetSheetName(f.GetSheetName(0), sheet)

	f.SetCellValue(sheet, "A1", "Short-term visitor arrivals by state of stay")
	f.SetCellValue(sheet, "A2", "Month")
	for i, label := range labels {
		cell, _ := excelize.CoordinatesToCellName(i+2, 2)
		f.SetCellValue(sheet, cell, label)
	}
	for r, month := range months {
		row := r + 3
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), month)
		for i := range labels {
			cell, _ := excelize.CoordinatesToCellName(i+2, row)
			f.SetCellValue(sheet, cell, (r+1)*100+i)
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to create test xlsx: %v", err)
	}
}

func TestCLI_StateMode(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "short_term_arrivals_state_of_stay.xlsx")
	output := filepath.Join(tmpDir, "outputs", "visiting_visas_by_state.csv")
	createStateXLSX(t, input, stateNames, []string{"2023-01-01", "2023-02-01", "2023-03-01"})

	result := runCLIJSON(t, input, "--out", output, "--preview", "3")

	require.Len(t, result.Files, 1)
	f := result.Files[0]
	assert.Equal(t, "state", result.Mode)
	assert.Equal(t, "Data1", f.Sheet)
	assert.Equal(t, 1, *f.HeaderRow)
	assert.Equal(t, 24, f.Records, "3 months x 8 states")
	assert.Equal(t, 6, f.Dropped["excluded"])
	assert.Len(t, f.Preview, 3)
	assert.Equal(t, "ACT", f.Preview[0]["state"])

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\ufeffyear_month,state,arrivals\n"))
	assert.Contains(t, string(data), "2023-01,NSW,100\n")
	assert.NotContains(t, string(data), "TOTAL")
}

func TestCLI_StateTable(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "arrivals.xlsx")
	createStateXLSX(t, input, stateNames, []string{"2023-01-01"})

	output := runCLI(t, input, "--out", filepath.Join(tmpDir, "out.csv"))
	if !strings.Contains(output, `Parsed sheet "Data1" (header row 1)`) {
		t.Errorf("expected parse summary, got: %s", output)
	}
	if !strings.Contains(output, "year_month") {
		t.Errorf("expected preview table, got: %s", output)
	}
}

func TestCLI_MultipleFiles(t *testing.T) {
	tmpDir := t.TempDir()
	createStateXLSX(t, filepath.Join(tmpDir, "2022.xlsx"), stateNames, []string{"2022-12-01"})
	createStateXLSX(t, filepath.Join(tmpDir, "2023.xlsx"), stateNames, []string{"2023-01-01"})
	outDir := filepath.Join(tmpDir, "outputs")

	result := runCLIJSON(t, filepath.Join(tmpDir, "*.xlsx"), "--out", filepath.Join(outDir, "by_state.csv"))

	require.Len(t, result.Files, 2)
	for _, name := range []string{"2022_by_state.csv", "2023_by_state.csv"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestCLI_SchemeFromConfig(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "series.xlsx")
	ids := []string{"A85247916X", "A85247923W", "A85247917A", "A85247924X", "A85247921T",
		"A85247918C", "A85247920R", "A85247919F", "A85247922V", "A85247925A"}
	createStateXLSX(t, input, ids, []string{"2023-01-01"})

	config := `
normalize:
  scheme: series-id
`
	result := runCLIWithConfigJSON(t, config, input, "--out", filepath.Join(tmpDir, "out.csv"))
	assert.Equal(t, "series-id", result.Files[0].Scheme)
	assert.Equal(t, 8, result.Files[0].Records)
	assert.Empty(t, result.Files[0].Unmapped)

	// the flag overrides the config
	result = runCLIWithConfigJSON(t, config, input, "--out", filepath.Join(tmpDir, "out.csv"), "--scheme", "names")
	assert.Equal(t, "names", result.Files[0].Scheme)
	assert.Len(t, result.Files[0].Unmapped, 10)
}

func TestCLI_SameBaseNameInputs(t *testing.T) {
	tmpDir := t.TempDir()
	first := filepath.Join(tmpDir, "2022", "arrivals.xlsx")
	second := filepath.Join(tmpDir, "2023", "arrivals.xlsx")
	for _, p := range []string{first, second} {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		createStateXLSX(t, p, stateNames, []string{"2023-01-01"})
	}
	outDir := filepath.Join(tmpDir, "outputs")

	stderr := runCLIExpectFailure(t, first, second, "--out", filepath.Join(outDir, "by_state.csv"))
	assert.Contains(t, stderr, "would both write")

	_, err := os.Stat(filepath.Join(outDir, "arrivals_by_state.csv"))
	assert.True(t, os.IsNotExist(err), "no output should be written")
}

func TestCLI_NegativePreview(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "arrivals.xlsx")
	createStateXLSX(t, input, stateNames, []string{"2023-01-01"})
	output := filepath.Join(tmpDir, "out.csv")

	stderr := runCLIExpectFailure(t, input, "--out", output, "--preview=-1")
	assert.Contains(t, stderr, "invalid --preview -1")
	assert.NotContains(t, stderr, "panic")

	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err), "no output should be written")
}

func TestRun_NegativePreview(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "arrivals.xlsx")
	createStateXLSX(t, input, stateNames, []string{"2023-01-01"})
	configPath := filepath.Join(tmpDir, "empty-config.yaml")
	require.NoError(t, os.WriteFile(configPath, nil, 0644))

	for _, mode := range []string{"state", "visa", "clean"} {
		t.Run(mode, func(t *testing.T) {
			output := filepath.Join(tmpDir, mode+".csv")
			params := &Params{
				Files:    []string{input},
				Mode:     mode,
				Out:      output,
				OutDir:   filepath.Join(tmpDir, mode),
				Config:   configPath,
				Preview:  -1,
				Output:   "table",
				LogLevel: "info",
			}
			var stdout, stderr strings.Builder
			err := run(params, &stdout, &stderr)
			assert.ErrorContains(t, err, "invalid --preview -1: must be >= 0")
			assert.Empty(t, stdout.String())

			_, statErr := os.Stat(output)
			assert.True(t, os.IsNotExist(statErr), "no output should be written")
		})
	}
}

func TestCLI_NoDataSheet(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "notes.xlsx")
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Explanatory notes")
	if err := f.SaveAs(input); err != nil {
		t.Fatalf("failed to create test xlsx: %v", err)
	}
	output := filepath.Join(tmpDir, "out.csv")

	stderr := runCLIExpectFailure(t, input, "--out", output)
	assert.Contains(t, stderr, "Error: no data-like sheet found")

	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err), "no output should be written")
}

func TestCLI_CleanThenVisa(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "short_term_arrivals_state_of_stay.xlsx")

	// Descriptor in column A, date and value in the columns the visa mode reads
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"", "", "", "", "", "", "", ""},
		{"Number of movements ;  Short-term Visitors arriving ;  Vic ;", "x", "x", "x", "x", "x", "2023-01-01", 1200},
		{"Number of movements ;  Short-term Visitors arriving ;  NSW ;", "x", "x", "x", "x", "x", "2023-01-01", 3400},
		{"Number of movements ;  Short-term Residents returning ;  NSW ;", "x", "x", "x", "x", "x", "2023-01-01", 50},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		f.SetSheetRow(sheet, cell, &row)
	}
	if err := f.SaveAs(input); err != nil {
		t.Fatalf("failed to create test xlsx: %v", err)
	}

	cleanDir := filepath.Join(tmpDir, "cleaned_data")
	cleaned := runCLIJSON(t, "--mode", "clean", input, "--out-dir", cleanDir)
	require.Len(t, cleaned.Files, 1)
	cleanPath := filepath.Join(cleanDir, "short_term_arrivals_state_of_stay_clean.csv")
	assert.Equal(t, cleanPath, cleaned.Files[0].Output)

	output := filepath.Join(tmpDir, "outputs", "visiting_visas_by_state.csv")
	visa := runCLIJSON(t, "--mode", "visa", cleanPath, "--out", output)
	require.Len(t, visa.Files, 1)
	assert.Equal(t, 2, visa.Files[0].Records)
	assert.Equal(t, "NSW", visa.Files[0].Preview[0]["state"])
	assert.Equal(t, "VIC", visa.Files[0].Preview[1]["state"])

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2023-01-01,VIC,Short-term Visitors arriving,1200")
}

func TestCLI_InitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arrivals", "config.yaml")
	cmd := exec.Command("go", "run", ".", "--init-config", "--config", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("init-config failed: %v\n%s", err, out)
	}

	cfg, err := internal.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "WA", cfg.StateNormalizer().Normalize("Western Australia"))
}

func TestExpandInputs(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"a.xlsx", "b.xlsx", "c.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), nil, 0644))
	}

	got, err := expandInputs(nil, "default.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"default.xlsx"}, got)

	got, err = expandInputs([]string{filepath.Join(tmpDir, "*.xlsx")}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmpDir, "a.xlsx"), filepath.Join(tmpDir, "b.xlsx")}, got)

	got, err = expandInputs([]string{"csv:" + filepath.Join(tmpDir, "*.csv")}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"csv:" + filepath.Join(tmpDir, "c.csv")}, got)

	_, err = expandInputs([]string{filepath.Join(tmpDir, "*.ods")}, "")
	assert.ErrorContains(t, err, "no files match")
}
