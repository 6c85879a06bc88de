package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	titleStyle lipgloss.Style
	fieldStyle lipgloss.Style
	errorStyle lipgloss.Style
)

func init() {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		titleStyle = lipgloss.NewStyle()
		fieldStyle = lipgloss.NewStyle()
		errorStyle = lipgloss.NewStyle()
		return
	}
	titleStyle = lipgloss.NewStyle().Bold(true)
	fieldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
}
