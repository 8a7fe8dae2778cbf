package internal

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Reader loads a file into a workbook
type Reader interface {
	Read(path string) (*Workbook, error)
}

// ReaderFunc is a function that implements Reader
type ReaderFunc func(path string) (*Workbook, error)

func (f ReaderFunc) Read(path string) (*Workbook, error) {
	return f(path)
}

// readers is the registry of available readers, keyed by format name
var readers = map[string]Reader{}

// extensions maps lower-case file extensions to a registered format
var extensions = map[string]string{}

// RegisterReader registers a reader with the given format name and the file
// extensions it handles by default
func RegisterReader(name string, r Reader, exts ...string) {
	readers[name] = r
	for _, ext := range exts {
		extensions[strings.ToLower(ext)] = name
	}
}

// GetReader returns the reader for the given format
func GetReader(format string) (Reader, error) {
	r, ok := readers[format]
	if !ok {
		return nil, fmt.Errorf("unknown input format: %s (available: %v)", format, AvailableFormats())
	}
	return r, nil
}

// AvailableFormats returns the registered format names, sorted
func AvailableFormats() []string {
	var formats []string
	for name := range readers {
		formats = append(formats, name)
	}
	slices.Sort(formats)
	return formats
}

// IsKnownFormat returns true if the name is a registered format
func IsKnownFormat(name string) bool {
	_, ok := readers[name]
	return ok
}

// ParseFileArg parses a file argument that may have a format prefix.
// Returns (format, path). If no valid prefix, format is empty.
// Example: "xlsx:data.bin" → ("xlsx", "data.bin")
// Example: "data.xlsx" → ("", "data.xlsx")
// Example: "C:\path\file.xlsx" → ("", "C:\path\file.xlsx") // Windows path
func ParseFileArg(arg string) (format, path string) {
	idx := strings.Index(arg, ":")
	if idx == -1 {
		return "", arg
	}
	prefix := arg[:idx]
	if IsKnownFormat(prefix) {
		return prefix, arg[idx+1:]
	}
	return "", arg // Not a known format, treat whole thing as path
}

// ReadWorkbook reads a file argument, honouring a format prefix and
// falling back to the file extension.
func ReadWorkbook(arg string) (*Workbook, error) {
	format, path := ParseFileArg(arg)
	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		var ok bool
		if format, ok = extensions[ext]; !ok {
			return nil, fmt.Errorf("unsupported file type %q for %s (available: %v)", ext, path, AvailableFormats())
		}
	}
	r, err := GetReader(format)
	if err != nil {
		return nil, err
	}
	return r.Read(path)
}

func init() {
	// Register built-in readers
	RegisterReader("xlsx", ReaderFunc(ReadXLSX), ".xlsx", ".xlsm", ".xltx")
	RegisterReader("csv", ReaderFunc(ReadDelimited), ".csv")
}
