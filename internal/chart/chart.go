// Package chart renders the daily series as an SVG bar chart of
// day-over-day changes.
package chart

import (
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lazypower/texprogress/internal/series"
)

// DefaultTitle is shown at the top of both the chart and the empty state.
const DefaultTitle = "📝 LaTeX Writing Progress"

// EmptyMessage marks the placeholder rendered for an empty series.
const EmptyMessage = "No data yet. Start writing!"

const (
	width      = 500.0
	height     = 200.0
	padding    = 40.0
	titleBand  = 30.0
	plotHeight = height - 2*padding - titleBand
	plotWidth  = width - 2*padding
	barGap     = 2.0
	maxBar     = 20.0
)

const (
	colorUp      = "#2ea44f"
	colorDown    = "#cf222e"
	colorNeutral = "#57606a"
)

// Options controls rendering.
type Options struct {
	// Now stamps the footer. Only the UTC date is shown.
	Now   time.Time
	Title string
}

// Render produces a standalone SVG document for records, which must be
// sorted ascending by date.
func Render(records []series.Record, opts Options) string {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	if len(records) == 0 {
		return renderEmpty(title)
	}

	deltas := series.Deltas(records)
	scale := maxAbsChange(deltas)
	baseline := padding + titleBand + plotHeight/2
	barWidth := math.Min(maxBar, (plotWidth-10)/float64(len(deltas)))

	var bars strings.Builder
	for i, d := range deltas {
		x := padding + float64(i)*(barWidth+barGap)
		h := math.Abs(float64(d.Change)) / scale * (plotHeight/2 - 10)
		y, color := baseline-h, colorUp
		if d.Change < 0 {
			y, color = baseline, colorDown
		}
		fmt.Fprintf(&bars, `<rect class="bar" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2">`,
			x, y, barWidth, math.Max(h, 1), color)
		fmt.Fprintf(&bars, "<title>%s: %+d words (total: %d)</title></rect>\n", escape(d.Date), d.Change, d.Total)
	}

	last := deltas[len(deltas)-1]
	changeText, changeColor := summary(last.Change)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`+"\n", width, height, width, height)
	b.WriteString("  <style>\n")
	b.WriteString("    .title { font: bold 14px sans-serif; fill: #24292f; }\n")
	b.WriteString("    .total { font: bold 18px sans-serif; fill: #24292f; }\n")
	fmt.Fprintf(&b, "    .change { font: bold 12px sans-serif; fill: %s; }\n", changeColor)
	b.WriteString("    .label { font: 10px sans-serif; fill: #57606a; }\n")
	b.WriteString("  </style>\n")
	fmt.Fprintf(&b, `  <rect width="%.0f" height="%.0f" fill="#ffffff" rx="6" stroke="#d0d7de"/>`+"\n", width, height)
	fmt.Fprintf(&b, `  <text x="%.1f" y="25.0" class="title">%s</text>`+"\n", padding, escape(title))
	fmt.Fprintf(&b, `  <text x="%.1f" y="20.0" class="total" text-anchor="end">%s words</text>`+"\n", width-padding, humanize.Comma(int64(last.Total)))
	fmt.Fprintf(&b, `  <text x="%.1f" y="35.0" class="change" text-anchor="end">%s</text>`+"\n", width-padding, changeText)
	fmt.Fprintf(&b, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#d0d7de" stroke-width="1"/>`+"\n", padding, baseline, width-padding, baseline)
	b.WriteString(bars.String())
	fmt.Fprintf(&b, `  <text x="%.1f" y="%.1f" class="label">Last %d days</text>`+"\n", padding, height-10, len(records))
	fmt.Fprintf(&b, `  <text x="%.1f" y="%.1f" class="label" text-anchor="end">Updated: %s</text>`+"\n", width-padding, height-10, series.Day(opts.Now))
	b.WriteString("</svg>\n")
	return b.String()
}

// maxAbsChange returns the largest absolute change, or 1 when every change
// is zero.
func maxAbsChange(deltas []series.Delta) float64 {
	m := 0
	for _, d := range deltas {
		c := d.Change
		if c < 0 {
			c = -c
		}
		if c > m {
			m = c
		}
	}
	if m == 0 {
		return 1
	}
	return float64(m)
}

func summary(change int) (text, color string) {
	switch {
	case change > 0:
		return fmt.Sprintf("%+d words today! 📈", change), colorUp
	case change < 0:
		return fmt.Sprintf("%d words today 📉", change), colorDown
	default:
		return "No change today", colorNeutral
	}
}

func renderEmpty(title string) string {
	return `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="120" viewBox="0 0 400 120">
  <style>
    .title { font: bold 14px sans-serif; fill: #24292f; }
    .subtitle { font: 12px sans-serif; fill: #57606a; }
  </style>
  <rect width="400" height="120" fill="#f6f8fa" rx="6"/>
  <text x="200" y="50" class="title" text-anchor="middle">` + escape(title) + `</text>
  <text x="200" y="75" class="subtitle" text-anchor="middle">` + EmptyMessage + `</text>
</svg>
`
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

// WriteFile writes svg to path through a temp file and rename, creating
// parent directories.
func WriteFile(path, svg string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".chart-*.svg")
	if err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(svg); err != nil {
		tmp.Close()
		return fmt.Errorf("write chart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
