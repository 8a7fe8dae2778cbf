package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ScanConfig tunes the data region search
type ScanConfig struct {
	MaxHeaderRows      int     `yaml:"max_header_rows,omitempty"`
	MinDateRatio       float64 `yaml:"min_date_ratio,omitempty"`
	MinNumericColumns  int     `yaml:"min_numeric_columns,omitempty"`
	PlaceholderPattern string  `yaml:"placeholder_pattern,omitempty"`
	Sheet              string  `yaml:"sheet,omitempty"` // Only search this sheet

	placeholder *regexp.Regexp
}

// NormalizeConfig controls how category labels become state codes
type NormalizeConfig struct {
	Scheme string `yaml:"scheme,omitempty"` // names | series-id

	// Entries added to (or replacing) the built-in lookup tables
	StateNames     map[string]string `yaml:"state_names,omitempty"`
	SeriesIDs      map[string]string `yaml:"series_ids,omitempty"`
	VisaStateNames map[string]string `yaml:"visa_state_names,omitempty"`

	// Exclude lists state codes dropped from the output. Defaults to TOTAL and OT.
	Exclude []string `yaml:"exclude,omitempty"`

	scheme Scheme
}

// VisaConfig names the columns of a cleaned series CSV
type VisaConfig struct {
	DescriptorColumn string `yaml:"descriptor_column,omitempty"`
	DateColumn       string `yaml:"date_column,omitempty"`
	ValueColumn      string `yaml:"value_column,omitempty"`
	Marker           string `yaml:"marker,omitempty"` // Descriptor substring selecting the rows to keep
}

// CleanConfig holds the missing-value policy of the cleaner
type CleanConfig struct {
	FillNumeric string `yaml:"fill_numeric,omitempty"` // mean | zero | drop
	FillText    string `yaml:"fill_text,omitempty"`    // literal | drop
	FillLiteral string `yaml:"fill_literal,omitempty"` // Text used by the literal policy

	policy FillPolicy
}

type Config struct {
	Scan      ScanConfig      `yaml:"scan,omitempty"`
	Normalize NormalizeConfig `yaml:"normalize,omitempty"`
	Visa      VisaConfig      `yaml:"visa,omitempty"`
	Clean     CleanConfig     `yaml:"clean,omitempty"`
}

// DefaultConfigPath returns the default config file path (~/.arrivals/config.yaml)
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arrivals", "config.yaml")
}

// NewDefaultConfig creates a config with every default filled in and compiled.
// Use this when no config file exists.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	if err := cfg.compile(); err != nil {
		panic(fmt.Sprintf("default config does not compile: %v", err))
	}
	return cfg
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.compile(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// compile fills defaults for unset fields and validates the rest
func (c *Config) compile() error {
	s := &c.Scan
	if s.MaxHeaderRows == 0 {
		s.MaxHeaderRows = DefaultMaxHeaderRows
	}
	if s.MaxHeaderRows < 0 {
		return fmt.Errorf("invalid max_header_rows %d: must be positive", s.MaxHeaderRows)
	}
	if s.MinDateRatio == 0 {
		s.MinDateRatio = DefaultMinDateRatio
	}
	if s.MinDateRatio < 0 || s.MinDateRatio >= 1 {
		return fmt.Errorf("invalid min_date_ratio %v: must be in [0, 1)", s.MinDateRatio)
	}
	if s.MinNumericColumns == 0 {
		s.MinNumericColumns = DefaultMinNumericColumns
	}
	if s.MinNumericColumns < 0 {
		return fmt.Errorf("invalid min_numeric_columns %d: must be positive", s.MinNumericColumns)
	}
	if s.PlaceholderPattern == "" {
		s.PlaceholderPattern = DefaultPlaceholderPattern
	}
	re, err := regexp.Compile(s.PlaceholderPattern)
	if err != nil {
		return fmt.Errorf("invalid placeholder pattern %q: %w", s.PlaceholderPattern, err)
	}
	s.placeholder = re

	n := &c.Normalize
	scheme, err := ParseScheme(n.Scheme)
	if err != nil {
		return err
	}
	n.scheme = scheme
	if n.Exclude == nil {
		n.Exclude = append([]string(nil), DefaultExclusions...)
	}

	v := &c.Visa
	if v.DescriptorColumn == "" {
		v.DescriptorColumn = "unnamed_0"
	}
	if v.DateColumn == "" {
		v.DateColumn = "unnamed_6"
	}
	if v.ValueColumn == "" {
		v.ValueColumn = "unnamed_7"
	}
	if v.Marker == "" {
		v.Marker = "Short-term Visitors arriving"
	}

	policy, err := ParseFillPolicy(c.Clean.FillNumeric, c.Clean.FillText, c.Clean.FillLiteral)
	if err != nil {
		return err
	}
	c.Clean.policy = policy
	return nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ScanStrategy builds the scanner described by the scan section
func (c *Config) ScanStrategy() ScanStrategy {
	return ScanStrategy{
		MaxHeaderRows: c.Scan.MaxHeaderRows,
		Sheet:         c.Scan.Sheet,
		Placeholder:   c.Scan.placeholder,
		Predicate: DataLikeness{
			MinDateRatio:      c.Scan.MinDateRatio,
			MinNumericColumns: c.Scan.MinNumericColumns,
		},
	}
}

// Scheme returns the compiled normalization scheme
func (c *Config) Scheme() Scheme {
	return c.Normalize.scheme
}

// SetScheme overrides the configured scheme (e.g. from a command line flag)
func (c *Config) SetScheme(s string) error {
	scheme, err := ParseScheme(s)
	if err != nil {
		return err
	}
	c.Normalize.Scheme = string(scheme)
	c.Normalize.scheme = scheme
	return nil
}

// StateNormalizer builds the normalizer for the state pipeline
func (c *Config) StateNormalizer() *Normalizer {
	switch c.Normalize.scheme {
	case SchemeSeriesID:
		return NewNormalizer(SchemeSeriesID, c.Normalize.SeriesIDs)
	default:
		return NewNormalizer(SchemeNames, c.Normalize.StateNames)
	}
}

// VisaNormalizer builds the normalizer for the visa pipeline
func (c *Config) VisaNormalizer() *Normalizer {
	return NewVisaNormalizer(c.Normalize.VisaStateNames)
}

// FillPolicy returns the compiled missing-value policy
func (c *Config) FillPolicy() FillPolicy {
	return c.Clean.policy
}

// GenerateConfigTemplate returns a config with every default written out,
// including the built-in lookup tables, as a starting point for editing
func GenerateConfigTemplate() *Config {
	cfg := NewDefaultConfig()
	cfg.Normalize.Scheme = string(SchemeNames)
	cfg.Normalize.StateNames = DefaultStateNames
	cfg.Normalize.SeriesIDs = DefaultSeriesIDs
	cfg.Normalize.VisaStateNames = DefaultVisaStateNames
	cfg.Clean.FillNumeric = string(cfg.Clean.policy.Numeric)
	cfg.Clean.FillText = string(cfg.Clean.policy.Text)
	cfg.Clean.FillLiteral = cfg.Clean.policy.Literal
	return cfg
}
