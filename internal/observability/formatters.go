// Package observability provides formatted CLI output for detection results.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/jonathan/estate-desk/internal/db"
	"github.com/jonathan/estate-desk/internal/dedup"
	"github.com/jonathan/estate-desk/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow caps the members listed per group
	maxItemsToShow = 10
)

// Printer writes boxed, optionally coloured, summaries. Colour follows
// color.NoColor, which is off when stdout is not a terminal.
type Printer struct {
	out    io.Writer
	title  func(a ...any) string
	high   func(a ...any) string
	medium func(a ...any) string
	low    func(a ...any) string
	dim    func(a ...any) string
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:    out,
		title:  color.New(color.FgCyan, color.Bold).SprintFunc(),
		high:   color.New(color.FgRed, color.Bold).SprintFunc(),
		medium: color.New(color.FgYellow).SprintFunc(),
		low:    color.New(color.FgGreen).SprintFunc(),
		dim:    color.New(color.FgHiBlack).SprintFunc(),
	}
}

// boxLine is one row of a box; paint colours it after padding
type boxLine struct {
	text  string
	paint func(a ...any) string
}

func plain(text string) boxLine { return boxLine{text: text} }

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, lines []boxLine) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", p.title(pad(title)))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range lines {
		text := pad(line.text)
		if line.paint != nil {
			text = line.paint(text)
		}
		fmt.Fprintf(p.out, "│ %s │\n", text)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or pads s to the box's inner width, counting runes
func pad(s string) string {
	width := boxWidth - 4
	if utf8.RuneCountInString(s) > width {
		s = string([]rune(s)[:width-3]) + "..."
	}
	return fmt.Sprintf("%-*s", width, s)
}

// scorePaint picks a colour by how likely the group is a real duplicate
func (p *Printer) scorePaint(score float64) func(a ...any) string {
	switch {
	case score >= dedup.ReasonThreshold+0.1:
		return p.high
	case score >= dedup.ReasonThreshold:
		return p.medium
	default:
		return p.low
	}
}

// PrintSummary outputs the detection settings and counts.
func (p *Printer) PrintSummary(records, groups int, opts dedup.Options) {
	clustering := opts.Clustering
	if clustering == "" {
		clustering = dedup.ClusterGreedy
	}
	accents := "exact"
	if opts.FoldAccents {
		accents = "folded"
	}
	lines := []boxLine{
		plain(fmt.Sprintf("Records:     %d", records)),
		plain(fmt.Sprintf("Groups:      %d", groups)),
		plain(fmt.Sprintf("Threshold:   %.2f", opts.Threshold)),
		plain(fmt.Sprintf("Clustering:  %s", clustering)),
		plain(fmt.Sprintf("Accents:     %s", accents)),
	}
	p.printBox("DUPLICATE DETECTION", lines)
}

// PrintDuplicateGroups outputs one box per group, highest score first.
func PrintDuplicateGroups[T dedup.Record](p *Printer, groups []types.DuplicateGroup[T]) {
	if len(groups) == 0 {
		p.printBox("NO DUPLICATES FOUND", []boxLine{plain("Every record looks unique at this threshold.")})
		return
	}

	for i, g := range groups {
		lines := []boxLine{
			{text: fmt.Sprintf("Score: %.0f%%", g.Score*100), paint: p.scorePaint(g.Score)},
		}
		for _, reason := range g.Reasons {
			lines = append(lines, plain("  • "+reason))
		}
		lines = append(lines, plain(""))

		count := min(len(g.Members), maxItemsToShow)
		for _, m := range g.Members[:count] {
			lines = append(lines, plain(describe(m.DedupKey(), m.DedupFields())))
		}
		if len(g.Members) > maxItemsToShow {
			lines = append(lines, boxLine{
				text:  fmt.Sprintf("  ... and %d more", len(g.Members)-maxItemsToShow),
				paint: p.dim,
			})
		}

		p.printBox(fmt.Sprintf("GROUP %d of %d (%d records)", i+1, len(groups), len(g.Members)), lines)
	}
}

// describe renders a record as "key: name <email> phone"
func describe(key string, f dedup.Fields) string {
	var sb strings.Builder
	sb.WriteString(key)
	sb.WriteString(":")
	if f.Name != "" {
		sb.WriteString(" " + f.Name)
	}
	if f.Email != "" {
		sb.WriteString(" <" + f.Email + ">")
	}
	if f.Phone != nil && *f.Phone != "" {
		sb.WriteString(" " + *f.Phone)
	}
	return sb.String()
}

// PrintScan outputs a stored scan and its groups.
func (p *Printer) PrintScan(scan *db.Scan) {
	if scan == nil {
		return
	}

	lines := []boxLine{
		plain(fmt.Sprintf("Scan:        %s", scan.ID)),
		plain(fmt.Sprintf("Kind:        %s", scan.Kind)),
		plain(fmt.Sprintf("Records:     %d", scan.RecordCount)),
		plain(fmt.Sprintf("Groups:      %d", scan.GroupCount)),
	}
	if scan.DismissedCount > 0 {
		lines = append(lines, boxLine{
			text:  fmt.Sprintf("Dismissed:   %d", scan.DismissedCount),
			paint: p.dim,
		})
	}
	lines = append(lines,
		plain(fmt.Sprintf("Threshold:   %.2f (%s)", scan.Threshold, scan.Clustering)),
	)
	p.printBox("DUPLICATE SCAN", lines)

	if scan.GroupCount > 0 {
		PrintDuplicateGroups(p, scan.Groups)
	}
}
