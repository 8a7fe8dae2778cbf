package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// OutputOptions controls how run results are displayed
type OutputOptions struct {
	Preview int // Rows of output to show
	Numbers NumberFormat
}

// JSONOutput is the root JSON output object
type JSONOutput struct {
	Mode  string     `json:"mode"`
	Files []JSONFile `json:"files"`
}

// JSONFile summarizes one converted input
type JSONFile struct {
	Input     string              `json:"input"`
	Output    string              `json:"output"`
	Sheet     string              `json:"sheet,omitempty"`
	HeaderRow *int                `json:"header_row,omitempty"`
	Scheme    string              `json:"scheme,omitempty"`
	Records   int                 `json:"records"`
	Dropped   map[string]int      `json:"dropped,omitempty"`
	Unmapped  []string            `json:"unmapped,omitempty"`
	Preview   []map[string]string `json:"preview,omitempty"`
}

// previewRows bounds a requested preview size to [0, available]
func previewRows(requested, available int) int {
	return min(max(requested, 0), available)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// StateJSON builds the JSON summary of a state run
func StateJSON(results []*StateResult, preview int) JSONOutput {
	out := JSONOutput{Mode: "state"}
	for _, r := range results {
		hdr := r.HeaderRow
		f := JSONFile{
			Input:     r.Input,
			Output:    r.Output,
			Sheet:     r.Sheet,
			HeaderRow: &hdr,
			Scheme:    string(r.Scheme),
			Records:   len(r.Records),
			Dropped: map[string]int{
				"columns":  len(r.Melt.DroppedColumns),
				"rows":     r.Melt.DroppedRows,
				"values":   r.Melt.DroppedValues,
				"excluded": r.Excluded,
			},
			Unmapped: r.Unmapped,
		}
		for _, rec := range r.Records[:previewRows(preview, len(r.Records))] {
			f.Preview = append(f.Preview, map[string]string{
				"year_month": rec.YearMonth,
				"state":      rec.State,
				"arrivals":   strconv.FormatFloat(rec.Arrivals, 'f', -1, 64),
			})
		}
		out.Files = append(out.Files, f)
	}
	return out
}

// VisaJSON builds the JSON summary of a visa run
func VisaJSON(r *VisaResult, preview int) JSONOutput {
	f := JSONFile{
		Input:   r.Input,
		Output:  r.Output,
		Records: len(r.Records),
		Dropped: map[string]int{
			"dates":    r.Stats.BadDates,
			"values":   r.Stats.BadValues,
			"excluded": r.Stats.Excluded,
		},
	}
	for _, rec := range r.Records[:previewRows(preview, len(r.Records))] {
		f.Preview = append(f.Preview, map[string]string{
			"date":     rec.Date,
			"state":    rec.State,
			"category": rec.Category,
			"arrivals": strconv.FormatFloat(rec.Arrivals, 'f', -1, 64),
		})
	}
	return JSONOutput{Mode: "visa", Files: []JSONFile{f}}
}

// CleanJSON builds the JSON summary of a clean run
func CleanJSON(results []*CleanResult) JSONOutput {
	out := JSONOutput{Mode: "clean"}
	for _, r := range results {
		out.Files = append(out.Files, JSONFile{
			Input:   r.Input,
			Output:  r.Output,
			Sheet:   r.Sheet,
			Records: r.Stats.Rows,
			Dropped: map[string]int{
				"duplicates": r.Stats.Duplicates,
				"rows":       r.Stats.DroppedRows,
			},
		})
	}
	return out
}

// PrintJSON outputs a run summary in JSON format
func PrintJSON(w io.Writer, out JSONOutput) error {
	return writeJSON(w, out)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// PrintStateResult prints the parsed sheet and a preview of the table
func PrintStateResult(w io.Writer, r *StateResult, opts OutputOptions) {
	fmt.Fprintf(w, "Parsed sheet %q (header row %d) and saved: %s\n", r.Sheet, r.HeaderRow, r.Output)
	fmt.Fprintf(w, "Records: %d (dropped %d undated rows, %d missing/negative values, %d excluded)\n\n",
		len(r.Records), r.Melt.DroppedRows, r.Melt.DroppedValues, r.Excluded)

	n := previewRows(opts.Preview, len(r.Records))
	if n == 0 {
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"year_month", "state", "arrivals"})
	for _, rec := range r.Records[:n] {
		t.AppendRow(table.Row{rec.YearMonth, rec.State, opts.Numbers.Format(rec.Arrivals)})
	}
	if n < len(r.Records) {
		t.AppendFooter(table.Row{"", "", text.FgHiBlack.Sprintf("… %d more", len(r.Records)-n)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	t.Render()
}

// PrintVisaResult prints a preview of the visa table and, if requested,
// the numeric column profile
func PrintVisaResult(w io.Writer, r *VisaResult, opts OutputOptions) {
	if len(r.Profile) > 0 {
		fmt.Fprintln(w, "Top numeric columns by max value:")
		PrintColumnProfile(w, r.Profile, 8, opts.Numbers)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Visiting visa data saved to %s (%d records)\n\n", r.Output, len(r.Records))
	n := previewRows(opts.Preview, len(r.Records))
	if n == 0 {
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"date", "state", "category", "arrivals"})
	for _, rec := range r.Records[:n] {
		t.AppendRow(table.Row{rec.Date, rec.State, rec.Category, opts.Numbers.Format(rec.Arrivals)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})
	t.Render()
}

// PrintColumnProfile prints up to limit column profiles
func PrintColumnProfile(w io.Writer, profile []ColumnProfile, limit int, nf NumberFormat) {
	t := newTable(w)
	t.AppendHeader(table.Row{"col", "n_nonnull", "min", "max"})
	for _, p := range profile[:previewRows(limit, len(profile))] {
		t.AppendRow(table.Row{p.Column, p.NonNull, nf.Format(p.Min), nf.Format(p.Max)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()
}

// PrintCleanResults prints one line per cleaned file and a total
func PrintCleanResults(w io.Writer, results []*CleanResult) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Input", "Output", "Rows", "Duplicates", "Dropped", "Filled"})
	total := 0
	for _, r := range results {
		st := r.Stats
		total += st.Rows
		t.AppendRow(table.Row{r.Input, r.Output, st.Rows, st.Duplicates, st.DroppedRows, st.FilledNumeric + st.FilledText})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{"", text.Bold.Sprint("Total"), text.Bold.Sprint(total), "", "", ""})
	t.Render()
	fmt.Fprintf(w, "All %d files have been cleaned\n", len(results))
}
