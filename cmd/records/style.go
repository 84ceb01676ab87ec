package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func heading(s string) string { return headingStyle.Render(s) }

func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return mutedStyle.Render("(none)")
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		String()
}
