package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/charmbracelet/log"
	"github.com/gigurra/arrivals/internal"
)

const (
	defaultStateInput = "short_term_arrivals_state_of_stay.xlsx"
	defaultVisaInput  = "cleaned_data/short_term_arrivals_state_of_stay_clean.csv"
	defaultCleanInput = "*.xlsx"
	defaultOutput     = "outputs/visiting_visas_by_state.csv"
	defaultCleanDir   = "cleaned_data"
)

type Params struct {
	Files      []string `descr:"Input files or globs, optionally prefixed with format: (e.g. xlsx:data.xlsx)" positional:"true" optional:"true"`
	Mode       string   `descr:"What to produce" alts:"state,visa,clean" strict:"true" default:"state"`
	Out        string   `descr:"Output CSV path (state and visa modes)" optional:"true"`
	OutDir     string   `descr:"Output directory (clean mode)" optional:"true"`
	Config     string   `descr:"Config file path (default ~/.arrivals/config.yaml)" optional:"true"`
	Scheme     string   `descr:"Label normalization scheme, overrides the config" alts:"names,series-id" strict:"true" optional:"true"`
	Preview    int      `descr:"Rows to preview (default 12 for state, 10 for visa)" optional:"true"`
	Diagnose   bool     `descr:"Print the numeric column profile of the matched rows (visa mode)" optional:"true"`
	Output     string   `descr:"Console output format" alts:"table,json" strict:"true" default:"table"`
	LogLevel   string   `descr:"Log level" alts:"debug,info,warn,error" strict:"true" default:"info"`
	InitConfig bool     `descr:"Write a config template with every default and exit" optional:"true"`
}

func main() {
	boa.NewCmdT[Params]("arrivals").
		WithShort("Convert ABS short-term visitor arrival workbooks into tidy CSV").
		WithLong("Finds the data table inside ABS short-term visitor arrival workbooks, reshapes it into (year_month, state, arrivals) rows and writes a UTF-8 CSV. " +
			"The visa mode extracts visitor series by state and category from a cleaned CSV, and the clean mode produces those cleaned CSVs from workbooks.").
		WithRunFunc(func(params *Params) {
			if err := run(params, os.Stdout, os.Stderr); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(params *Params, stdout, stderr io.Writer) error {
	if params.InitConfig {
		return initConfig(params.Config, stdout)
	}

	logger, err := internal.NewLogger(stderr, params.LogLevel)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(params.Config, logger)
	if err != nil {
		return err
	}
	if params.Scheme != "" {
		if err := cfg.SetScheme(params.Scheme); err != nil {
			return err
		}
	}

	if params.Preview < 0 {
		return fmt.Errorf("invalid --preview %d: must be >= 0", params.Preview)
	}

	opts := internal.OutputOptions{Preview: params.Preview, Numbers: internal.DetectNumberFormat()}
	switch params.Mode {
	case "visa":
		if opts.Preview == 0 {
			opts.Preview = 10
		}
		return runVisa(params, cfg, logger, opts, stdout)
	case "clean":
		return runClean(params, cfg, logger, stdout)
	default:
		if opts.Preview == 0 {
			opts.Preview = 12
		}
		return runState(params, cfg, logger, opts, stdout)
	}
}

func initConfig(path string, stdout io.Writer) error {
	if path == "" {
		path = internal.DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := internal.GenerateConfigTemplate().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote config template to %s\n", path)
	return nil
}

// loadConfig uses the --config file if given, else the default path if it exists
func loadConfig(path string, logger *log.Logger) (*internal.Config, error) {
	if path != "" {
		return internal.LoadConfig(path)
	}
	path = internal.DefaultConfigPath()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			logger.Debug("using config file", "path", path)
			return internal.LoadConfig(path)
		}
	}
	return internal.NewDefaultConfig(), nil
}

// expandInputs resolves globs, keeping any format prefix on each match
func expandInputs(args []string, fallback string) ([]string, error) {
	if len(args) == 0 {
		args = []string{fallback}
	}
	var out []string
	for _, arg := range args {
		format, path := internal.ParseFileArg(arg)
		if !strings.ContainsAny(path, "*?[") {
			out = append(out, arg)
			continue
		}
		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", path, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", path)
		}
		for _, m := range matches {
			if format != "" {
				m = format + ":" + m
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func runState(params *Params, cfg *internal.Config, logger *log.Logger, opts internal.OutputOptions, stdout io.Writer) error {
	inputs, err := expandInputs(params.Files, defaultStateInput)
	if err != nil {
		return err
	}
	output := params.Out
	if output == "" {
		output = defaultOutput
	}

	pipeline := &internal.StatePipeline{
		Scanner:    cfg.ScanStrategy(),
		Normalizer: cfg.StateNormalizer(),
		Exclude:    cfg.Normalize.Exclude,
		Logger:     logger,
	}

	outputs, err := internal.StateOutputPaths(inputs, output)
	if err != nil {
		return err
	}

	var results []*internal.StateResult
	for i, in := range inputs {
		res, err := pipeline.Run(in, outputs[i])
		if err != nil {
			if errors.Is(err, internal.ErrNoDataSheetFound) {
				return fmt.Errorf("%w (try --log-level debug to see each attempt)", err)
			}
			return err
		}
		results = append(results, res)
	}

	if params.Output == "json" {
		return internal.PrintJSON(stdout, internal.StateJSON(results, opts.Preview))
	}
	for _, res := range results {
		internal.PrintStateResult(stdout, res, opts)
	}
	return nil
}

func runVisa(params *Params, cfg *internal.Config, logger *log.Logger, opts internal.OutputOptions, stdout io.Writer) error {
	inputs, err := expandInputs(params.Files, defaultVisaInput)
	if err != nil {
		return err
	}
	if len(inputs) != 1 {
		return fmt.Errorf("visa mode takes a single input, got %d", len(inputs))
	}
	_, input := internal.ParseFileArg(inputs[0])
	output := params.Out
	if output == "" {
		output = defaultOutput
	}

	pipeline := &internal.VisaPipeline{
		Extractor: &internal.VisaExtractor{
			Config:     cfg.Visa,
			Normalizer: cfg.VisaNormalizer(),
			Exclude:    cfg.Normalize.Exclude,
		},
		Output:   output,
		Diagnose: params.Diagnose,
		Logger:   logger,
	}
	res, err := pipeline.Run(input)
	if err != nil {
		return err
	}

	if params.Output == "json" {
		return internal.PrintJSON(stdout, internal.VisaJSON(res, opts.Preview))
	}
	internal.PrintVisaResult(stdout, res, opts)
	return nil
}

func runClean(params *Params, cfg *internal.Config, logger *log.Logger, stdout io.Writer) error {
	inputs, err := expandInputs(params.Files, defaultCleanInput)
	if err != nil {
		return err
	}
	outDir := params.OutDir
	if outDir == "" {
		outDir = defaultCleanDir
	}

	cleaner := &internal.Cleaner{Policy: cfg.FillPolicy(), OutDir: outDir, Logger: logger}
	var results []*internal.CleanResult
	for _, in := range inputs {
		res, err := cleaner.CleanFile(in)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if params.Output == "json" {
		return internal.PrintJSON(stdout, internal.CleanJSON(results))
	}
	internal.PrintCleanResults(stdout, results)
	return nil
}
