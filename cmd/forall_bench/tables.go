package main

import (
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
	redRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "9", Dark: "9"}).
			PaddingLeft(1).PaddingRight(1)
)

// reportTable renders one row per backend, failed ones in red.
func reportTable(results []result) *lgtable.Table {
	table := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			switch {
			case row == lgtable.HeaderRow:
				return headerRowStyle
			case results[row].err != nil:
				s = redRowStyle
			case row%2 == 0:
				s = evenRowStyle
			default:
				s = oddRowStyle
			}
			if col >= 2 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	table.Headers("Backend", "Description", "Loops", "Indices", "Time", "Indices/s", "Status")
	for _, r := range results {
		status := "ok"
		if r.err != nil {
			status = "FAILED"
		}
		rate := "-"
		if secs := r.elapsed.Seconds(); secs > 0 {
			rate = humanize.SIWithDigits(float64(r.indices)/secs, 1, "")
		}
		table.Row(r.config, r.description, humanize.Comma(int64(r.loops)), humanize.Comma(r.indices),
			r.elapsed.Round(1e6).String(), rate, status)
	}
	return table
}
