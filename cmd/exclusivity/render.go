package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexshd/exclusivity"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var summaryColumns = []string{"algorithm", "trials", "failures", "mean/call", "p50/call", "p99/call", "max dev", "speedup"}

// renderSummary lays out one row per variant. Speedup is the reference
// (first) variant's median per-call time over the row's.
func renderSummary(summaries []exclusivity.VariantSummary) string {
	if len(summaries) == 0 {
		return dimStyle.Render("no results") + "\n"
	}

	rows := [][]string{summaryColumns}
	ref := summaries[0].PerCall.P50
	for _, s := range summaries {
		speedup := "-"
		if s.PerCall.P50 > 0 && ref > 0 {
			speedup = fmt.Sprintf("%.2fx", float64(ref)/float64(s.PerCall.P50))
		}
		rows = append(rows, []string{
			s.Algorithm,
			strconv.Itoa(s.Trials),
			strconv.Itoa(s.Failures),
			formatDuration(s.PerCall.Mean),
			formatDuration(s.PerCall.P50),
			formatDuration(s.PerCall.P99),
			fmt.Sprintf("%.3g", s.MaxDeviation),
			speedup,
		})
	}

	widths := make([]int, len(summaryColumns))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			style := lipgloss.NewStyle().Width(widths[i] + 2)
			if i > 0 {
				style = style.Align(lipgloss.Right).Width(widths[i]).MarginLeft(2)
			}
			switch {
			case r == 0:
				style = style.Inherit(headerStyle)
			case i == 2 && cell != "0":
				style = style.Inherit(failStyle)
			}
			cells[i] = style.Render(cell)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteByte('\n')
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.Round(time.Nanosecond).String()
}
